// Package session holds the in-memory session and player registries.
package session

import (
	"fmt"
	"sync"

	"github.com/planning-poker/backend/internal/model"
)

// Registry maps session ids to sessions for the lifetime of the process.
type Registry struct {
	maxSessions int

	mu       sync.RWMutex
	sessions map[string]*Session
}

// Config holds configuration for the session registry.
type Config struct {
	// MaxSessions caps the number of sessions. Zero means unlimited.
	MaxSessions int
}

// NewRegistry creates a new session registry.
func NewRegistry(config Config) *Registry {
	return &Registry{
		maxSessions: config.MaxSessions,
		sessions:    make(map[string]*Session),
	}
}

// CreateIfAbsent returns the session with id unchanged if it exists, or
// creates an empty one. The bool reports whether a session was created.
func (m *Registry) CreateIfAbsent(id, name string) (*Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		return s, false, nil
	}

	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		return nil, false, fmt.Errorf("%w: maximum sessions (%d) reached", model.ErrSessionLimit, m.maxSessions)
	}

	s := newSession(id, name)
	m.sessions[id] = s
	return s, true, nil
}

// Find returns the session with id.
func (m *Registry) Find(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return s, nil
}

// Count returns the number of sessions.
func (m *Registry) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// MaxSessions returns the configured session cap.
func (m *Registry) MaxSessions() int {
	return m.maxSessions
}
