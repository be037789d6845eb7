package events

import (
	"sync"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestDispatcher(t *testing.T) {
	c := qt.New(t)
	dispatcher := NewDispatcher()

	var got []any
	dispatcher.Subscribe("order.created", func(payload any) {
		got = append(got, payload)
	})
	dispatcher.Subscribe("order.created", func(payload any) {
		got = append(got, payload)
	})

	// unrelated event names do not reach the listeners
	dispatcher.Dispatch("order.deleted", "ignored")
	c.Assert(got, qt.HasLen, 0)

	dispatcher.Dispatch("order.created", 42)
	c.Assert(got, qt.DeepEquals, []any{42, 42})

	// dispatching with no listeners at all is a no-op
	dispatcher.Dispatch("never.subscribed", nil)
}

func TestDispatcherConcurrentSubscribe(t *testing.T) {
	c := qt.New(t)
	dispatcher := NewDispatcher()

	var mu sync.Mutex
	count := 0
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dispatcher.Subscribe("tick", func(any) {
				mu.Lock()
				count++
				mu.Unlock()
			})
		}()
	}
	wg.Wait()

	dispatcher.Dispatch("tick", nil)
	c.Assert(count, qt.Equals, 8)
}
