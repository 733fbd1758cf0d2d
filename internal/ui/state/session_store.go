// file name — /internal/ui/state/session_store.go
package state

import (
	"sync"

	"github.com/Its-donkey/circuit-console/internal/ui/model"
)

// SessionStore holds the per-page connection state.
//
// The WASM runtime only touches it from the event loop and the request
// goroutines it spawns, so a plain RWMutex is enough.
type SessionStore struct {
	mu      sync.RWMutex
	session model.Session
}

// NewSessionStore seeds a store from the server-rendered connection flag.
func NewSessionStore(connected bool) *SessionStore {
	return &SessionStore{session: model.Session{Connected: connected}}
}

// Snapshot returns a copy of the current session.
//
// Callers can safely modify the returned targets without affecting the store.
func (s *SessionStore) Snapshot() model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp := s.session
	cp.Targets = make([]model.Target, len(s.session.Targets))
	copy(cp.Targets, s.session.Targets)
	return cp
}

// Update replaces the current session.
func (s *SessionStore) Update(session model.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := session
	cp.Targets = make([]model.Target, len(session.Targets))
	copy(cp.Targets, session.Targets)
	s.session = cp
}

// Connected reports the current connection flag.
func (s *SessionStore) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Connected
}

// Disconnect clears the connection flag and keeps the remaining fields.
func (s *SessionStore) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Connected = false
}
