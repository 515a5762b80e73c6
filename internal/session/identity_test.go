package session

import (
	"testing"

	"github.com/naviya/naviya/internal/events"
	"github.com/naviya/naviya/internal/store"
)

func newTestManager(t *testing.T) (*Manager, *store.Store, *events.Bus) {
	t.Helper()
	s, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	bus := events.NewBus()
	return NewManager(s, bus), s, bus
}

func TestCurrentWhenLoggedOut(t *testing.T) {
	m, _, _ := newTestManager(t)
	id, err := m.Current()
	if err != nil {
		t.Fatal(err)
	}
	if id != nil {
		t.Errorf("Current = %+v, want nil", id)
	}
}

func TestLoginPersistsAndBroadcasts(t *testing.T) {
	m, _, bus := newTestManager(t)

	var fired []any
	bus.Subscribe(events.TopicAuthChanged, func(p any) { fired = append(fired, p) })

	id := Identity{ID: "u1", Name: "Ada", Email: "ada@example.com"}
	if err := m.Login(id, Tokens{Access: "acc", Refresh: "ref"}); err != nil {
		t.Fatal(err)
	}

	got, err := m.Current()
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.ID != "u1" || got.Email != "ada@example.com" {
		t.Errorf("Current = %+v", got)
	}
	tok := m.Tokens()
	if tok.Access != "acc" || tok.Refresh != "ref" {
		t.Errorf("Tokens = %+v", tok)
	}
	if len(fired) != 1 {
		t.Errorf("auth-changed fired %d times, want 1", len(fired))
	}
}

func TestLoginRejectsEmptyID(t *testing.T) {
	m, _, _ := newTestManager(t)
	if err := m.Login(Identity{}, Tokens{}); err == nil {
		t.Error("login with empty id should fail")
	}
}

func TestLogoutClearsSessionOnly(t *testing.T) {
	m, s, bus := newTestManager(t)
	m.Login(Identity{ID: "u1"}, Tokens{Access: "acc"})
	s.Set(store.KeyTheme, "dark")
	s.Set(store.KeyOnboardingPrefix+"u1", "{}")

	var fired int
	bus.Subscribe(events.TopicAuthChanged, func(any) { fired++ })

	if err := m.Logout(); err != nil {
		t.Fatal(err)
	}
	if id, _ := m.Current(); id != nil {
		t.Error("identity survived logout")
	}
	if tok := m.Tokens(); tok.Access != "" || tok.Refresh != "" {
		t.Error("tokens survived logout")
	}
	if fired != 1 {
		t.Errorf("auth-changed fired %d times, want 1", fired)
	}

	// Theme and onboarding are preserved for the next login.
	if _, ok, _ := s.Get(store.KeyTheme); !ok {
		t.Error("theme cleared by logout")
	}
	if _, ok, _ := s.Get(store.KeyOnboardingPrefix + "u1"); !ok {
		t.Error("onboarding record cleared by logout")
	}
}
