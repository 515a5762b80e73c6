// Package heartbeat emits the periodic activity beacon while a feature
// view is open. Beacons are suppressed when the terminal is not focused
// or the user has gone idle; sends are fire-and-forget.
package heartbeat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/naviya/naviya/internal/api"
)

// Sender posts one beacon. *api.Client satisfies this.
type Sender interface {
	SendHeartbeat(ctx context.Context, hb api.Heartbeat) error
}

// Monitor tracks visibility and input recency for one feature view and
// beats on a fixed period.
type Monitor struct {
	sender  Sender
	userID  string
	feature string
	period  time.Duration
	idleMax time.Duration
	now     func() time.Time

	mu        sync.Mutex
	visible   bool
	lastInput time.Time
}

// New creates a monitor for one mounted feature view. The view starts
// visible with input considered fresh.
func New(sender Sender, userID, feature string, period, idleMax time.Duration) *Monitor {
	m := &Monitor{
		sender:  sender,
		userID:  userID,
		feature: feature,
		period:  period,
		idleMax: idleMax,
		now:     time.Now,
		visible: true,
	}
	m.lastInput = m.now()
	return m
}

// SetVisible records terminal focus changes.
func (m *Monitor) SetVisible(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visible = v
}

// RecordInput marks user activity (key press, mouse event).
func (m *Monitor) RecordInput() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastInput = m.now()
}

// Run beats once immediately, then on every period tick until ctx is
// cancelled. Errors are swallowed; a beacon is never retried.
func (m *Monitor) Run(ctx context.Context) {
	m.beat(ctx)

	ticker := time.NewTicker(m.period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if m.Active() {
				m.beat(ctx)
			}
		}
	}
}

// Active reports whether a beacon would fire this tick: visible and
// not idle past the cutoff.
func (m *Monitor) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visible && m.now().Sub(m.lastInput) <= m.idleMax
}

func (m *Monitor) beat(ctx context.Context) {
	if m.userID == "" {
		return
	}
	hb := api.Heartbeat{
		UserID:  m.userID,
		Feature: m.feature,
		Seconds: int(m.period / time.Second),
	}
	if err := m.sender.SendHeartbeat(ctx, hb); err != nil {
		slog.Debug("heartbeat dropped", "feature", m.feature, "err", err)
	}
}
