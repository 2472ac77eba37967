package redis

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-tutor-bot/internal/domain"
)

// SessionStore is a Redis-aware implementation of app.SessionStore.
// Notes:
//   - The session payload stays in a local in-memory map so TakeAndClear
//     remains a single in-process atomic step (the duplicate-grading guard).
//   - Redis carries best-effort liveness markers per user, which makes
//     outstanding questions observable across operator tooling and expire
//     on their own.
//   - Losing the markers is harmless: a pending question is simply
//     forgotten, which matches the crash semantics of the in-memory store.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration

	mu       sync.Mutex
	sessions map[int64]domain.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[int64]domain.Session),
	}
}

func (s *SessionStore) Put(userID int64, session domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = session
	_ = s.client.Set(context.Background(), s.key(userID), strconv.FormatInt(session.QuestionID, 10), s.ttl).Err()
}

func (s *SessionStore) TakeAndClear(userID int64) (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[userID]
	if ok {
		delete(s.sessions, userID)
		_ = s.client.Del(context.Background(), s.key(userID)).Err()
	}
	return session, ok
}

func (s *SessionStore) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[userID]; !ok {
		return
	}
	delete(s.sessions, userID)
	_ = s.client.Del(context.Background(), s.key(userID)).Err()
}

func (s *SessionStore) key(userID int64) string {
	return "quiz:session:" + strconv.FormatInt(userID, 10)
}
