// Package terminal wires a browser terminal to SSH sessions on managed
// devices. It relays bytes between a websocket and the device; terminal
// emulation happens entirely in the browser.
package terminal

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrSessionNotFound = errors.New("terminal session not found")

// Session is one pending or active terminal connection. The target is
// resolved from a device record when the session is issued, so the
// websocket handshake carries only the opaque session id.
type Session struct {
	ID         string
	DeviceID   int64
	DeviceName string
	Host       string
	Port       int
	Username   string
	Password   string
	CreatedAt  time.Time
}

// SessionRegistry issues one-shot session ids. A session is claimed by the
// websocket upgrade and unusable afterwards; unclaimed sessions expire.
type SessionRegistry struct {
	ttl time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionRegistry(ttl time.Duration) *SessionRegistry {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SessionRegistry{
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

// Issue stores the session under a fresh id and returns it.
func (r *SessionRegistry) Issue(s Session) string {
	s.ID = uuid.New().String()
	s.CreatedAt = time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune()
	r.sessions[s.ID] = &s
	return s.ID
}

// Claim removes and returns the session. Expired and already-claimed ids
// both yield ErrSessionNotFound.
func (r *SessionRegistry) Claim(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune()
	s, ok := r.sessions[id]
	if !ok {
		return nil, errors.Wrap(ErrSessionNotFound, id)
	}
	delete(r.sessions, id)
	return s, nil
}

// Len reports the number of unclaimed sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune()
	return len(r.sessions)
}

// prune drops expired sessions; callers hold the lock.
func (r *SessionRegistry) prune() {
	cutoff := time.Now().Add(-r.ttl)
	for id, s := range r.sessions {
		if s.CreatedAt.Before(cutoff) {
			delete(r.sessions, id)
		}
	}
}
