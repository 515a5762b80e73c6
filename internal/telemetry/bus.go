// Package telemetry holds the bounded bus of per-request observability
// traces surfaced as toast cards in the TUI. Emission is best-effort:
// nothing in here may fail the HTTP call that produced the trace.
package telemetry

import (
	"sync"
	"time"
)

// Capacity is the maximum number of live traces; the oldest is evicted
// first when a new trace arrives at capacity.
const Capacity = 4

// TTL is the auto-dismiss window, counted from first observation.
const TTL = 10 * time.Second

// Bus is a bounded FIFO of traces with monotonic local ids.
type Bus struct {
	mu     sync.Mutex
	traces []Trace
	nextID int
	now    func() time.Time
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{nextID: 1, now: time.Now}
}

// Emit appends the trace, evicting the oldest when over capacity.
// Returns the assigned id.
func (b *Bus) Emit(t Trace) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	t.ID = b.nextID
	b.nextID++

	b.traces = append(b.traces, t)
	if len(b.traces) > Capacity {
		b.traces = b.traces[len(b.traces)-Capacity:]
	}
	return t.ID
}

// Dismiss removes the trace with the given id, if present.
func (b *Bus) Dismiss(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.traces {
		if b.traces[i].ID == id {
			b.traces = append(b.traces[:i], b.traces[i+1:]...)
			return
		}
	}
}

// Tick marks unobserved traces as observed, drops expired ones, and
// returns the survivors in arrival order. Renderers call this once per
// frame; the first call a trace survives starts its countdown.
func (b *Bus) Tick() []Trace {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	live := b.traces[:0]
	for _, t := range b.traces {
		if t.observedAt.IsZero() {
			t.observedAt = now
		} else if now.Sub(t.observedAt) >= TTL {
			continue
		}
		live = append(live, t)
	}
	b.traces = live

	out := make([]Trace, len(b.traces))
	copy(out, b.traces)
	return out
}

// Traces returns a copy of the live traces without touching countdowns.
func (b *Bus) Traces() []Trace {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Trace, len(b.traces))
	copy(out, b.traces)
	return out
}

// Len returns the number of live traces.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.traces)
}
