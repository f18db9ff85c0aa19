package events

import (
	"sync"
	"time"
)

// Handler receives events dispatched by the bus
type Handler func(Event)

// Bus fans events out to subscribed handlers. Events are dispatched in
// emit order from a single goroutine, so handlers never run concurrently
// with each other.
type Bus struct {
	mu       sync.Mutex
	handlers []Handler
	events   chan Event
	done     chan struct{}
	closing  sync.Once
}

// NewBus creates a new event bus with the specified buffer capacity
// and starts its dispatch loop.
func NewBus(capacity int) *Bus {
	b := &Bus{
		events: make(chan Event, capacity),
		done:   make(chan struct{}),
	}
	go b.dispatch()
	return b
}

// Subscribe registers a handler for all subsequent events.
// Register handlers before emitting; events already dispatched are not replayed.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Emit publishes an event to all subscribed handlers. The event time is
// stamped here if the caller left it zero. Emit must not be called after
// Close.
func (b *Bus) Emit(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	b.events <- e
}

// Close stops the bus after all pending events have been dispatched.
// Callers must stop emitting before Close.
func (b *Bus) Close() error {
	b.closing.Do(func() {
		close(b.events)
	})
	<-b.done
	return nil
}

func (b *Bus) dispatch() {
	defer close(b.done)
	for e := range b.events {
		b.mu.Lock()
		handlers := make([]Handler, len(b.handlers))
		copy(handlers, b.handlers)
		b.mu.Unlock()

		for _, h := range handlers {
			h(e)
		}
	}
}
