// Package events implements a minimal process-wide event dispatcher. Domain
// components publish named events on it and any number of listeners consume
// them; publishing with no listeners subscribed is a no-op.
package events

import (
	"sync"

	"go.vocdoni.io/dvote/log"
)

// Handler is a listener callback. Handlers run synchronously in the
// dispatching goroutine, in subscription order.
type Handler func(payload any)

// Dispatcher routes published events to the handlers subscribed to their
// name. It is safe for concurrent use.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewDispatcher creates an empty event dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string][]Handler),
	}
}

// Subscribe registers a handler for the given event name.
func (d *Dispatcher) Subscribe(name string, handler Handler) {
	if handler == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = append(d.handlers[name], handler)
}

// Dispatch publishes an event to every handler subscribed to its name. The
// call returns once all handlers have run; the payload is discarded
// afterwards, no retention or replay is provided.
func (d *Dispatcher) Dispatch(name string, payload any) {
	d.mu.RLock()
	handlers := make([]Handler, len(d.handlers[name]))
	copy(handlers, d.handlers[name])
	d.mu.RUnlock()

	if len(handlers) == 0 {
		log.Debugf("events: no listeners for %q", name)
		return
	}
	for _, handler := range handlers {
		handler(payload)
	}
}
