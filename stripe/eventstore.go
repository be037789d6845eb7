package stripe

import (
	"sync"
	"time"
)

const defaultEventTTL = 24 * time.Hour

// memoryEventStore remembers which webhook event IDs have already been
// processed, so replayed deliveries can be skipped. Entries expire after the
// TTL; a restart forgets everything, which at worst republishes an event.
type memoryEventStore struct {
	mu     sync.RWMutex
	events map[string]time.Time
	ttl    time.Duration
}

func newMemoryEventStore(ttl time.Duration) *memoryEventStore {
	if ttl == 0 {
		ttl = defaultEventTTL
	}
	store := &memoryEventStore{
		events: make(map[string]time.Time),
		ttl:    ttl,
	}
	go store.cleanup()
	return store
}

func (m *memoryEventStore) exists(eventID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.events[eventID]
	return ok
}

func (m *memoryEventStore) markProcessed(eventID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[eventID] = time.Now()
}

// cleanup drops expired entries periodically.
func (m *memoryEventStore) cleanup() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		m.mu.Lock()
		now := time.Now()
		for eventID, seen := range m.events {
			if now.Sub(seen) > m.ttl {
				delete(m.events, eventID)
			}
		}
		m.mu.Unlock()
	}
}
