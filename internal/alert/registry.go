package alert

import (
	"context"
	"sync"
	"time"
)

// SessionTTL bounds the zone memory of a session whose token expiry was never
// recorded with Open.
const SessionTTL = 7 * 24 * time.Hour

// Session is the zone memory of one signed-in session. Obtain it locked from
// Registry.Lock and release it with Unlock. A nil Session observes nothing.
type Session struct {
	mu       sync.Mutex
	notifier *Notifier
}

// Observe runs an observation through the session's notifier. The caller holds the lock.
func (s *Session) Observe(subjectID, subjectName string, percentage float64, minimumAttendance int) *Event {
	if s == nil {
		return nil
	}
	return s.notifier.Observe(subjectID, subjectName, percentage, minimumAttendance)
}

// Forget removes a subject from the session's memory. The caller holds the lock.
func (s *Session) Forget(subjectID string) {
	if s == nil {
		return
	}
	s.notifier.Forget(subjectID)
}

// Unlock releases the session.
func (s *Session) Unlock() {
	if s == nil {
		return
	}
	s.mu.Unlock()
}

type sessionEntry struct {
	session   *Session
	expiresAt time.Time
}

// Registry holds one notifier per session so that zone memory never leaks
// between users or devices. Memory is discarded on Drop or once the session's
// token has expired and Sweep runs.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	now      func() time.Time
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*sessionEntry),
		now:      time.Now,
	}
}

// Open records when a session's token expires, creating its memory if needed.
func (r *Registry) Open(sessionID string, expiresAt time.Time) {
	if sessionID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entry(sessionID).expiresAt = expiresAt
}

// entry returns the session entry, creating it on first use. r.mu must be held.
func (r *Registry) entry(sessionID string) *sessionEntry {
	e, ok := r.sessions[sessionID]
	if !ok {
		e = &sessionEntry{
			session:   &Session{notifier: NewNotifier()},
			expiresAt: r.now().Add(SessionTTL),
		}
		r.sessions[sessionID] = e
	}
	return e
}

// Lock returns the session's memory locked for exclusive use. Work done between
// Lock and Unlock, including storage writes, reaches the notifier in the order
// it was committed. An empty session id returns nil.
func (r *Registry) Lock(sessionID string) *Session {
	if sessionID == "" {
		return nil
	}
	r.mu.Lock()
	s := r.entry(sessionID).session
	r.mu.Unlock()

	s.mu.Lock()
	return s
}

// Observe runs a single observation through the session's notifier.
// An empty session id is ignored.
func (r *Registry) Observe(sessionID, subjectID, subjectName string, percentage float64, minimumAttendance int) *Event {
	s := r.Lock(sessionID)
	defer s.Unlock()
	return s.Observe(subjectID, subjectName, percentage, minimumAttendance)
}

// Drop discards the whole zone memory of a session.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

// Sweep discards sessions whose token has expired and returns how many were removed.
func (r *Registry) Sweep() int {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.sessions {
		if !now.Before(e.expiresAt) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Sessions returns the number of sessions currently tracked.
func (r *Registry) Sessions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
