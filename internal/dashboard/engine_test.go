package dashboard

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/naviya/naviya/internal/events"
	"github.com/naviya/naviya/internal/features"
)

// fakeSnapshotter serves canned snapshots and can hold the response
// until released to widen the fetch window.
type fakeSnapshotter struct {
	mu    sync.Mutex
	state *State
	err   error
	hold  chan struct{}
	calls int
}

func (f *fakeSnapshotter) DashboardSnapshot(ctx context.Context, userID string) (*State, error) {
	f.mu.Lock()
	f.calls++
	hold := f.hold
	st, err := f.state, f.err
	f.mu.Unlock()
	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return st.Clone(), err
}

// fakeChannel hands the engine a push channel the test writes to.
type fakeChannel struct {
	pushes chan Push
}

func (f *fakeChannel) Subscribe(ctx context.Context, userID string) (<-chan Push, error) {
	return f.pushes, nil
}

func pushFor(t *testing.T, st *State) Push {
	t.Helper()
	row, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("marshal push: %v", err)
	}
	return Push{Row: row}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not reached within deadline")
}

func TestEngineDefaultsWhenBackendHasNoRecord(t *testing.T) {
	snap := &fakeSnapshotter{} // nil state, nil error
	e := NewEngine(snap, nil, events.NewBus())
	e.SetUser(context.Background(), "u1")

	waitFor(t, func() bool { return !e.Loading() })

	st := e.State()
	if st == nil {
		t.Fatal("expected default state")
	}
	if !st.MentorReady || st.CurrentPhase != "onboarding" {
		t.Errorf("default state = %+v, want mentor open in onboarding phase", st)
	}
	if st.CountUnlocked() != 0 {
		t.Errorf("CountUnlocked = %d, want 0", st.CountUnlocked())
	}
	if !e.CanAccess(features.Mentor) {
		t.Error("mentor should be open by default")
	}
	if e.CanAccess(features.Roadmap) {
		t.Error("roadmap should be locked by default")
	}
}

func TestEngineSnapshotErrorKeepsPriorState(t *testing.T) {
	ts := time.Now()
	snap := &fakeSnapshotter{state: &State{
		UserID:      "u1",
		MentorReady: true,
		ResumeReady: true,
		UpdatedAt:   &ts,
	}}
	e := NewEngine(snap, nil, events.NewBus())
	e.SetUser(context.Background(), "u1")
	waitFor(t, func() bool { return !e.Loading() })

	if !e.CanAccess(features.ResumeAnalysis) {
		t.Fatal("resume should be unlocked after first snapshot")
	}

	snap.mu.Lock()
	snap.err = context.DeadlineExceeded
	snap.mu.Unlock()
	e.Refresh(context.Background())
	waitFor(t, func() bool { return !e.Loading() })

	if !e.CanAccess(features.ResumeAnalysis) {
		t.Error("snapshot failure must not regress unlocked features")
	}
	if e.Err() == "" {
		t.Error("expected error message to be recorded")
	}
}

func TestEngineCanAccessWithoutState(t *testing.T) {
	e := NewEngine(&fakeSnapshotter{}, nil, events.NewBus())
	if !e.CanAccess(features.Mentor) {
		t.Error("mentor should be open before any load")
	}
	for _, k := range []features.Key{features.ResumeAnalysis, features.Roadmap, features.SkillAssessment, features.MockInterview} {
		if e.CanAccess(k) {
			t.Errorf("%s should be locked before any load", k)
		}
	}
}

func TestEnginePushDuringFetchIsBuffered(t *testing.T) {
	t0 := time.Now()
	t1 := t0.Add(time.Minute)

	snap := &fakeSnapshotter{
		state: &State{UserID: "u1", MentorReady: true, UpdatedAt: &t0},
		hold:  make(chan struct{}),
	}
	ch := &fakeChannel{pushes: make(chan Push, 4)}
	e := NewEngine(snap, ch, events.NewBus())
	e.SetUser(context.Background(), "u1")

	// Push lands while the snapshot request is still in flight.
	agent := "roadmap_agent"
	ch.pushes <- pushFor(t, &State{
		UserID:             "u1",
		MentorReady:        true,
		RoadmapReady:       true,
		LastUpdatedByAgent: &agent,
		UpdatedAt:          &t1,
	})

	// The push must not surface before the fetch resolves.
	time.Sleep(20 * time.Millisecond)
	if st := e.State(); st != nil {
		t.Fatalf("state adopted during fetch window: %+v", st)
	}

	close(snap.hold)
	waitFor(t, func() bool {
		st := e.State()
		return st != nil && st.RoadmapReady
	})

	st := e.State()
	if st.FeaturesUnlocked != 1 {
		t.Errorf("FeaturesUnlocked = %d, want 1", st.FeaturesUnlocked)
	}
	if e.LastUpdate().IsZero() {
		t.Error("LastUpdate should be set after a push lands")
	}
}

func TestEngineStalePushIgnored(t *testing.T) {
	t0 := time.Now()
	stale := t0.Add(-time.Hour)

	snap := &fakeSnapshotter{state: &State{
		UserID:      "u1",
		MentorReady: true,
		ResumeReady: true,
		UpdatedAt:   &t0,
	}}
	ch := &fakeChannel{pushes: make(chan Push, 4)}
	e := NewEngine(snap, ch, events.NewBus())
	e.SetUser(context.Background(), "u1")
	waitFor(t, func() bool { return e.State() != nil })

	ch.pushes <- pushFor(t, &State{UserID: "u1", MentorReady: true, UpdatedAt: &stale})

	// Give the pump a beat, then confirm nothing regressed.
	time.Sleep(30 * time.Millisecond)
	if !e.CanAccess(features.ResumeAnalysis) {
		t.Error("stale push must not overwrite a newer record")
	}
}

func TestEngineUserSwitchClearsState(t *testing.T) {
	ts := time.Now()
	snap := &fakeSnapshotter{state: &State{
		UserID:      "u1",
		MentorReady: true,
		ResumeReady: true,
		UpdatedAt:   &ts,
	}}
	e := NewEngine(snap, nil, events.NewBus())
	e.SetUser(context.Background(), "u1")
	waitFor(t, func() bool { return e.State() != nil })

	// Switching tears the old state down before the new fetch lands.
	snap.mu.Lock()
	snap.hold = make(chan struct{})
	snap.mu.Unlock()
	e.SetUser(context.Background(), "u2")

	if st := e.State(); st != nil {
		t.Errorf("state should be nil right after a user switch, got %+v", st)
	}
	if e.CanAccess(features.ResumeAnalysis) {
		t.Error("previous user's unlocks must not leak into the new session")
	}
	close(snap.hold)
	waitFor(t, func() bool { return !e.Loading() })
}

func TestEnginePublishesChangeEvents(t *testing.T) {
	bus := events.NewBus()
	var mu sync.Mutex
	var got []events.StateUpdate
	bus.Subscribe(events.TopicDashboardStateUpdated, func(payload any) {
		if u, ok := payload.(events.StateUpdate); ok {
			mu.Lock()
			got = append(got, u)
			mu.Unlock()
		}
	})

	t0 := time.Now()
	t1 := t0.Add(time.Minute)
	snap := &fakeSnapshotter{state: &State{UserID: "u1", MentorReady: true, UpdatedAt: &t0}}
	ch := &fakeChannel{pushes: make(chan Push, 1)}
	e := NewEngine(snap, ch, bus)
	e.SetUser(context.Background(), "u1")
	waitFor(t, func() bool { return e.State() != nil })

	agent := "resume_agent"
	ch.pushes <- pushFor(t, &State{
		UserID:             "u1",
		MentorReady:        true,
		ResumeReady:        true,
		LastUpdatedByAgent: &agent,
		UpdatedAt:          &t1,
	})
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) >= 2
	})

	mu.Lock()
	defer mu.Unlock()
	last := got[len(got)-1]
	if last.ChangedBy != "resume_agent" {
		t.Errorf("ChangedBy = %q, want resume_agent", last.ChangedBy)
	}
	prev, _ := last.Previous.(*State)
	cur, _ := last.Current.(*State)
	if prev == nil || cur == nil {
		t.Fatalf("payload types: previous=%T current=%T", last.Previous, last.Current)
	}
	if prev.ResumeReady || !cur.ResumeReady {
		t.Error("previous/current pair does not reflect the transition")
	}
}
