package tui

import "sync"

// SessionRegistry tracks live SSH survey sessions.
// Thread-safe for concurrent access.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]string // session ID -> respondent
}

// NewSessionRegistry creates a new session registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]string),
	}
}

// Register adds a session for respondent. With exclusive set it refuses a
// respondent who already has a live session.
func (r *SessionRegistry) Register(id, respondent string, exclusive bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if exclusive {
		for _, who := range r.sessions {
			if who == respondent {
				return false
			}
		}
	}
	r.sessions[id] = respondent
	return true
}

// Unregister removes a session from the registry.
func (r *SessionRegistry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Active reports whether respondent has a live session.
func (r *SessionRegistry) Active(respondent string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, who := range r.sessions {
		if who == respondent {
			return true
		}
	}
	return false
}

// Count returns the number of registered sessions.
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
