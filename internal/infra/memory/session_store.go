package memory

import (
	"sync"

	"quiz-tutor-bot/internal/domain"
)

// SessionStore is the in-memory implementation of app.SessionStore: a
// process-wide map from user ID to the outstanding session. One mutex
// guards the map; reads and clears are a single critical section, which
// is what makes grading at-most-once under duplicate submissions.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]domain.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]domain.Session)}
}

// Put stores the session for a user, replacing any pending one.
func (s *SessionStore) Put(userID int64, session domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = session
}

// TakeAndClear atomically removes and returns the user's session.
// The second return is false when no question is outstanding.
func (s *SessionStore) TakeAndClear(userID int64) (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[userID]
	if ok {
		delete(s.sessions, userID)
	}
	return session, ok
}

// Clear discards the user's session, if any, without grading it.
func (s *SessionStore) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}
