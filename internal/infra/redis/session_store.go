package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"n5-drill-service/internal/app"
)

// SessionStore is a Redis-aware implementation of SessionRepository.
// Sessions live in process; Redis carries a liveness marker per user
// (practice:session:{userID}) so other instances can see who is practicing.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Put(userID string, session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(userID), "1", s.ttl).Err()
}

func (s *SessionStore) Get(userID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[userID]
	return session, ok
}

func (s *SessionStore) Delete(userID string, session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.sessions[userID]
	if !ok || current != session {
		return
	}
	delete(s.sessions, userID)
	_ = s.client.Del(context.Background(), s.key(userID)).Err()
}

// Active reports whether any instance holds a live session for the user.
func (s *SessionStore) Active(ctx context.Context, userID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SessionStore) key(userID string) string {
	return "practice:session:" + userID
}
