// Package session owns the active user identity and auth tokens. Both
// are opaque to the client: tokens are never inspected, the identity is
// whatever the backend issued at login.
package session

import (
	"encoding/json"
	"fmt"

	"github.com/naviya/naviya/internal/events"
	"github.com/naviya/naviya/internal/store"
)

// Identity is the authenticated user read from local storage.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Tokens holds the opaque bearer tokens.
type Tokens struct {
	Access  string
	Refresh string
}

// Manager reads and writes the session through the local store and
// broadcasts auth changes on the event bus.
type Manager struct {
	store *store.Store
	bus   *events.Bus
}

// NewManager creates a session manager over the given store.
func NewManager(s *store.Store, bus *events.Bus) *Manager {
	if bus == nil {
		bus = events.Default()
	}
	return &Manager{store: s, bus: bus}
}

// Current returns the stored identity, or nil when nobody is logged in.
func (m *Manager) Current() (*Identity, error) {
	raw, ok, err := m.store.Get(store.KeyUser)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var id Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		return nil, fmt.Errorf("parse stored identity: %w", err)
	}
	if id.ID == "" {
		return nil, nil
	}
	return &id, nil
}

// Tokens returns the stored token pair. Missing tokens are empty strings.
func (m *Manager) Tokens() Tokens {
	access, _, _ := m.store.Get(store.KeyAccessToken)
	refresh, _, _ := m.store.Get(store.KeyRefreshToken)
	return Tokens{Access: access, Refresh: refresh}
}

// Login persists the identity and tokens and fires auth-changed.
func (m *Manager) Login(id Identity, tok Tokens) error {
	if id.ID == "" {
		return fmt.Errorf("login: empty user id")
	}

	raw, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	if err := m.store.Set(store.KeyUser, string(raw)); err != nil {
		return err
	}
	if err := m.store.Set(store.KeyAccessToken, tok.Access); err != nil {
		return err
	}
	if err := m.store.Set(store.KeyRefreshToken, tok.Refresh); err != nil {
		return err
	}

	m.bus.Publish(events.TopicAuthChanged, id)
	return nil
}

// Logout clears identity and tokens and fires auth-changed. The stored
// theme and onboarding records survive a logout.
func (m *Manager) Logout() error {
	for _, key := range []string{store.KeyUser, store.KeyAccessToken, store.KeyRefreshToken} {
		if err := m.store.Delete(key); err != nil {
			return err
		}
	}
	m.bus.Publish(events.TopicAuthChanged, nil)
	return nil
}
