package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/naviya/naviya/internal/events"
	"github.com/naviya/naviya/internal/features"
)

// Snapshotter fetches the authoritative state document for a user.
// A nil state with a nil error means the backend has no record yet.
type Snapshotter interface {
	DashboardSnapshot(ctx context.Context, userID string) (*State, error)
}

// Push is one upsert from the realtime change stream: the full new row.
type Push struct {
	Row json.RawMessage
}

// Channel is a per-user change stream. Subscribe returns a channel that
// closes when ctx is cancelled or the stream ends. A nil Channel means
// realtime is disabled and the engine runs REST-only.
type Channel interface {
	Subscribe(ctx context.Context, userID string) (<-chan Push, error)
}

// Engine owns the State for the active user. All methods are safe for
// concurrent use; none of them panic or surface errors to predicates.
type Engine struct {
	snap Snapshotter
	ch   Channel
	bus  *events.Bus
	now  func() time.Time

	mu         sync.Mutex
	userID     string
	state      *State
	loading    bool
	err        string
	lastUpdate time.Time

	// pushes arriving while the snapshot fetch is in flight are held
	// here and replayed in arrival order once the fetch resolves.
	fetching bool
	buffered []*State

	cancel context.CancelFunc
}

// NewEngine creates an engine. ch may be nil (realtime disabled).
func NewEngine(snap Snapshotter, ch Channel, bus *events.Bus) *Engine {
	if bus == nil {
		bus = events.Default()
	}
	return &Engine{snap: snap, ch: ch, bus: bus, now: time.Now}
}

// SetUser switches the active user. Any previous subscription is torn
// down, state is cleared before anything is fetched, and a fresh
// snapshot+subscription cycle starts. Empty id just tears down.
func (e *Engine) SetUser(ctx context.Context, userID string) {
	e.mu.Lock()
	if userID == e.userID && userID != "" {
		e.mu.Unlock()
		return
	}
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.userID = userID
	e.state = nil
	e.err = ""
	e.lastUpdate = time.Time{}
	e.buffered = nil
	e.loading = userID != ""
	// Mark the fetch window open before the subscription starts so a
	// push that beats the snapshot request is buffered, not applied.
	e.fetching = userID != ""
	e.mu.Unlock()

	if userID == "" {
		return
	}

	subCtx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()

	// The subscription opens before the snapshot is issued so pushes
	// inside the fetch window are buffered rather than lost.
	e.subscribe(subCtx, userID)
	go e.fetch(subCtx, userID)
}

// Close tears down the subscription.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// Refresh re-fetches the snapshot for the current user.
func (e *Engine) Refresh(ctx context.Context) {
	e.mu.Lock()
	userID := e.userID
	e.loading = userID != ""
	e.fetching = userID != ""
	e.mu.Unlock()
	if userID == "" {
		return
	}
	e.fetch(ctx, userID)
}

// State returns a copy of the current state, or nil before load.
func (e *Engine) State() *State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Loading reports whether a snapshot fetch is outstanding.
func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// Err returns the last snapshot error message, empty when healthy.
func (e *Engine) Err() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// LastUpdate returns when a realtime push last landed; zero if never.
func (e *Engine) LastUpdate() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastUpdate
}

// CanAccess is a pure predicate over the current state. With no state
// loaded only the mentor is open.
func (e *Engine) CanAccess(f features.Key) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return f == features.Mentor
	}
	return e.state.FlagFor(f)
}

// UnlockedFeatures returns the accessible features in presentation order.
func (e *Engine) UnlockedFeatures() []features.Key {
	var out []features.Key
	for _, k := range features.Keys() {
		if e.CanAccess(k) {
			out = append(out, k)
		}
	}
	return out
}

// fetch loads the snapshot and reconciles it with any buffered pushes.
func (e *Engine) fetch(ctx context.Context, userID string) {
	e.mu.Lock()
	e.fetching = true
	e.mu.Unlock()

	snap, err := e.snap.DashboardSnapshot(ctx, userID)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.fetching = false
	if userID != e.userID {
		// User switched while the fetch was in flight; drop the result.
		return
	}
	e.loading = false

	switch {
	case err != nil && errors.Is(err, context.Canceled):
		return
	case err != nil:
		// Keep whatever was loaded before; never regress flags locally.
		e.err = err.Error()
		slog.Warn("dashboard snapshot failed", "user", userID, "err", err)
	case snap == nil:
		e.err = ""
		if e.state == nil {
			e.adoptLocked(DefaultState(userID), "")
		}
	default:
		e.err = ""
		e.adoptLocked(snap, "")
	}

	// Buffered realtime pushes win over the snapshot, in arrival order.
	for _, st := range e.buffered {
		e.applyPushLocked(st)
	}
	e.buffered = nil
}

// subscribe starts the realtime pump when a channel is configured.
func (e *Engine) subscribe(ctx context.Context, userID string) {
	if e.ch == nil {
		return
	}
	pushes, err := e.ch.Subscribe(ctx, userID)
	if err != nil {
		slog.Warn("realtime subscribe failed", "user", userID, "err", err)
		return
	}

	go func() {
		for p := range pushes {
			var st State
			if err := json.Unmarshal(p.Row, &st); err != nil {
				slog.Warn("realtime push unmarshal", "err", err)
				continue
			}

			e.mu.Lock()
			if userID != e.userID {
				e.mu.Unlock()
				return
			}
			if e.fetching {
				e.buffered = append(e.buffered, &st)
			} else {
				e.applyPushLocked(&st)
			}
			e.mu.Unlock()
		}
	}()
}

// applyPushLocked replaces the state with a pushed row. Last writer
// wins on updated_at: a push older than the current record is ignored.
func (e *Engine) applyPushLocked(st *State) {
	if e.state != nil && e.state.UpdatedAt != nil && st.UpdatedAt != nil &&
		st.UpdatedAt.Before(*e.state.UpdatedAt) {
		return
	}
	e.lastUpdate = e.now()
	e.adoptLocked(st, changedBy(st))
}

// adoptLocked installs a new state record and broadcasts the change.
func (e *Engine) adoptLocked(st *State, by string) {
	previous := e.state
	st = st.Clone()
	st.FeaturesUnlocked = st.CountUnlocked()
	e.state = st

	e.bus.Publish(events.TopicDashboardStateUpdated, events.StateUpdate{
		Previous:  previous,
		Current:   st.Clone(),
		ChangedBy: by,
		At:        e.now(),
	})
}

func changedBy(st *State) string {
	if st.LastUpdatedByAgent != nil {
		return *st.LastUpdatedByAgent
	}
	return ""
}
