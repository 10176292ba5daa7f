// Package session persists the signed-in user between runs.
//
// The backend owns authentication; the client only remembers the flag, the
// user name and an optional bearer token it was handed at login.
package session

import (
	"encoding/json"
	"errors"
	"sync"

	"thgletter/internal/logging"
)

// Key is the record name the session is stored under.
const Key = "thg_session_v1"

// Session is the persisted login state.
type Session struct {
	Authenticated bool   `json:"auth"`
	CurrentUser   string `json:"currentUser"`
	Token         string `json:"token"`
}

// Valid reports whether s describes a usable login.
func (s Session) Valid() bool {
	return s.Authenticated && s.CurrentUser != ""
}

// Manager loads and saves the session record. Storage failures never reach
// the caller: a broken record reads as signed out, a failed write is logged.
type Manager struct {
	mu      sync.Mutex
	kv      KV
	current Session
}

// NewManager returns a Manager over kv. Call Load to restore a saved login.
func NewManager(kv KV) *Manager {
	return &Manager{kv: kv}
}

// Load restores the session from storage and returns it. Anything other than
// an authenticated record with a user name yields the zero Session.
func (m *Manager) Load() Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = read(m.kv)
	if m.current.Valid() {
		logging.Session("restored session for %s", m.current.CurrentUser)
	}
	return m.current
}

func read(kv KV) Session {
	data, err := kv.Get(Key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logging.SessionDebug("session read failed: %v", err)
		}
		return Session{}
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		logging.SessionDebug("session record unreadable: %v", err)
		return Session{}
	}
	if !s.Valid() {
		return Session{}
	}
	return s
}

// Save records s. An unauthenticated session deletes the record.
func (m *Manager) Save(s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !s.Valid() {
		s = Session{}
	}
	m.current = s

	if !s.Authenticated {
		if err := m.kv.Delete(Key); err != nil {
			logging.SessionDebug("session delete failed: %v", err)
		}
		return
	}

	data, err := json.Marshal(s)
	if err != nil {
		logging.SessionDebug("session encode failed: %v", err)
		return
	}
	if err := m.kv.Set(Key, data); err != nil {
		logging.SessionDebug("session write failed: %v", err)
	}
}

// Clear is Save(Session{}).
func (m *Manager) Clear() {
	m.Save(Session{})
}

// Current returns the last loaded or saved session.
func (m *Manager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Token returns the current bearer token. It satisfies api.TokenSource.
func (m *Manager) Token() string {
	return m.Current().Token
}

// Peek reads the stored record without changing the manager's view.
// The watcher uses it to decide whether an on-disk change signed the user out.
func (m *Manager) Peek() Session {
	return read(m.kv)
}
