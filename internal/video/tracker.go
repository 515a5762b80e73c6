// Package video accounts wall-clock watch time for an embedded tutorial
// player. The counter advances only while the player reports PLAYING;
// seeking never advances it, which is what makes completion
// cheat-resistant. The client-side counter is authoritative for this
// session; the backend record is authoritative for cross-device resume.
package video

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/naviya/naviya/internal/api"
)

// saveEvery is the incremental play time between persistence writes.
const saveEvery = 5 * time.Second

// Saver persists one progress record. *api.Client satisfies this.
type Saver interface {
	SaveVideoProgress(ctx context.Context, req api.VideoProgressSave) (*api.VideoProgressSaveResponse, error)
}

// Key identifies the video a tracker mounts: user x roadmap x node.
type Key struct {
	UserID    string
	RoadmapID string
	NodeID    string
	VideoID   string
	Title     string
}

// Tracker follows one mounted player. Not safe for concurrent use by
// multiple players; the owning view drives it from its update loop.
type Tracker struct {
	saver    Saver
	key      Key
	duration time.Duration
	onDone   func()
	now      func() time.Time

	mu          sync.Mutex
	playing     bool
	playedSince time.Time     // valid while playing
	accumulated time.Duration // playtime banked across pauses
	lastSaved   time.Duration
	completed   bool
	closed      bool

	// saves are serialized through one goroutine so an earlier write
	// can never be overtaken by a later one for the same node.
	saveCh chan api.VideoProgressSave
	done   chan struct{}
}

// NewTracker mounts a tracker for one video. onDone fires exactly once
// when the full duration has been watched; it may be nil.
func NewTracker(saver Saver, key Key, duration time.Duration, onDone func()) *Tracker {
	t := &Tracker{
		saver:    saver,
		key:      key,
		duration: duration,
		onDone:   onDone,
		now:      time.Now,
		saveCh:   make(chan api.VideoProgressSave, 16),
		done:     make(chan struct{}),
	}
	go t.saveLoop()
	return t
}

// OnPlay records a transition into the PLAYING state.
func (t *Tracker) OnPlay() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.playing || t.completed || t.closed {
		return
	}
	t.playing = true
	t.playedSince = t.now()
}

// OnPause records a transition out of the PLAYING state and banks the
// play time accrued since OnPlay.
func (t *Tracker) OnPause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bankLocked()
}

// OnSeek is a position jump. It deliberately does not touch the
// counter: skipping ahead earns no watch time.
func (t *Tracker) OnSeek() {}

// Elapsed returns the accounted play time so far.
func (t *Tracker) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsedLocked()
}

// Completed reports whether the terminal completion fired.
func (t *Tracker) Completed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completed
}

// Tick checks the 5-second persistence boundary and the completion
// condition. The owning view calls it about once a second.
func (t *Tracker) Tick() {
	t.mu.Lock()
	if t.completed || t.closed {
		t.mu.Unlock()
		return
	}

	elapsed := t.elapsedLocked()
	if elapsed >= t.duration && t.duration > 0 {
		// Terminal write: watched == duration, counter stops.
		t.completed = true
		t.bankLocked()
		t.accumulated = t.duration
		t.lastSaved = t.duration
		req := t.saveRequestLocked(t.duration)
		onDone := t.onDone
		t.mu.Unlock()

		t.enqueue(req)
		if onDone != nil {
			onDone()
		}
		return
	}

	if elapsed-t.lastSaved >= saveEvery {
		t.lastSaved = elapsed
		req := t.saveRequestLocked(elapsed)
		t.mu.Unlock()
		t.enqueue(req)
		return
	}
	t.mu.Unlock()
}

// Close stops the counter and the save loop. Safe to call twice.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.bankLocked()
	t.closed = true
	t.mu.Unlock()
	close(t.saveCh)
	<-t.done
}

func (t *Tracker) elapsedLocked() time.Duration {
	e := t.accumulated
	if t.playing {
		e += t.now().Sub(t.playedSince)
	}
	if t.duration > 0 && e > t.duration {
		e = t.duration
	}
	return e
}

func (t *Tracker) bankLocked() {
	if !t.playing {
		return
	}
	t.accumulated += t.now().Sub(t.playedSince)
	if t.duration > 0 && t.accumulated > t.duration {
		t.accumulated = t.duration
	}
	t.playing = false
}

func (t *Tracker) saveRequestLocked(watched time.Duration) api.VideoProgressSave {
	return api.VideoProgressSave{
		UserID:          t.key.UserID,
		RoadmapID:       t.key.RoadmapID,
		NodeID:          t.key.NodeID,
		VideoID:         t.key.VideoID,
		VideoTitle:      t.key.Title,
		DurationSeconds: int(t.duration / time.Second),
		WatchedSeconds:  int(watched / time.Second),
	}
}

func (t *Tracker) enqueue(req api.VideoProgressSave) {
	select {
	case t.saveCh <- req:
	default:
		// Queue full: drop the intermediate save. The next boundary or
		// the terminal write carries a larger watched_seconds anyway.
	}
}

func (t *Tracker) saveLoop() {
	defer close(t.done)
	for req := range t.saveCh {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if _, err := t.saver.SaveVideoProgress(ctx, req); err != nil {
			slog.Debug("video progress save failed", "node", req.NodeID, "err", err)
		}
		cancel()
	}
}
