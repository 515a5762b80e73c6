// Package events provides the in-process broadcast bus. Exactly two
// topics exist: dashboard state updates and auth changes. Any component
// may subscribe; publishers never block on slow subscribers.
package events

import (
	"sync"
	"time"
)

// Topic names the broadcast channels carried by the bus.
type Topic string

const (
	// TopicDashboardStateUpdated fires whenever the dashboard engine
	// adopts a new state, from snapshot or realtime push.
	TopicDashboardStateUpdated Topic = "dashboard-state-updated"
	// TopicAuthChanged fires when the active identity or tokens change.
	TopicAuthChanged Topic = "auth-changed"
)

// StateUpdate is the payload for TopicDashboardStateUpdated.
// Previous is nil on the first adoption.
type StateUpdate struct {
	Previous  any
	Current   any
	ChangedBy string
	At        time.Time
}

// Handler receives a published payload. Handlers run on the publisher's
// goroutine and must not block.
type Handler func(payload any)

// Bus is a minimal topic-keyed broadcast. The zero value is not usable;
// call NewBus.
type Bus struct {
	mu   sync.RWMutex
	subs map[Topic]map[int]Handler
	next int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Topic]map[int]Handler)}
}

// Subscribe registers a handler and returns a cancel func that removes it.
func (b *Bus) Subscribe(topic Topic, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]Handler)
	}
	id := b.next
	b.next++
	b.subs[topic][id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[topic], id)
	}
}

// Publish delivers payload to every subscriber of the topic.
// A panicking handler is dropped silently; delivery is best-effort.
func (b *Bus) Publish(topic Topic, payload any) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[topic]))
	for _, h := range b.subs[topic] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() { _ = recover() }()
			h(payload)
		}()
	}
}

var defaultBus = NewBus()

// Default returns the process-wide bus shared by all components.
func Default() *Bus { return defaultBus }
