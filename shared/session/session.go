package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/dracory/slidebase/internal/browser"
	"github.com/google/uuid"
)

// SessionCookieName is the name of the session cookie
const SessionCookieName = "sb_sid"

// Session represents one browser session
type Session struct {
	ID        string
	CreatedAt time.Time
	LastSeen  time.Time

	mu   sync.Mutex
	view *browser.Controller
}

// View returns the session's controller, creating it with newView on first use.
func (s *Session) View(newView func() *browser.Controller) *browser.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view == nil {
		s.view = newView()
	}
	return s.view
}

var (
	sessionsMu sync.RWMutex
	sessions   = map[string]*Session{}
)

// EnsureSession returns the existing session from cookie or creates a new one.
func EnsureSession(w http.ResponseWriter, r *http.Request) *Session {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		sessionsMu.Lock()
		s, ok := sessions[c.Value]
		if ok {
			s.LastSeen = time.Now()
		}
		sessionsMu.Unlock()
		if ok {
			return s
		}
	}

	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		LastSeen:  now,
	}

	sessionsMu.Lock()
	sessions[s.ID] = s
	sessionsMu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	return s
}

// GetSession retrieves an existing session by ID
func GetSession(sessionID string) (*Session, bool) {
	sessionsMu.RLock()
	defer sessionsMu.RUnlock()
	s, exists := sessions[sessionID]
	return s, exists
}

// DeleteSession removes a session
func DeleteSession(sessionID string) {
	sessionsMu.Lock()
	defer sessionsMu.Unlock()
	delete(sessions, sessionID)
}

// PruneIdle drops sessions not seen for longer than maxIdle and returns how
// many were removed.
func PruneIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	sessionsMu.Lock()
	defer sessionsMu.Unlock()
	removed := 0
	for id, s := range sessions {
		if s.LastSeen.Before(cutoff) {
			delete(sessions, id)
			removed++
		}
	}
	return removed
}

// Count returns the number of live sessions.
func Count() int {
	sessionsMu.RLock()
	defer sessionsMu.RUnlock()
	return len(sessions)
}
