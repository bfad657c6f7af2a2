package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"n5-drill-service/internal/domain"
)

// Store keeps users and attempts in process memory. It implements both
// app.UserRepository and app.AttemptRepository.
type Store struct {
	clock func() time.Time

	mu       sync.RWMutex
	users    map[string]domain.User
	attempts []domain.Attempt
}

func NewStore() *Store {
	return NewStoreWithClock(time.Now)
}

// NewStoreWithClock is used by tests that need deterministic attempt timestamps.
func NewStoreWithClock(clock func() time.Time) *Store {
	return &Store{
		clock: clock,
		users: make(map[string]domain.User),
	}
}

// PutUser inserts or replaces a user record.
func (s *Store) PutUser(user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.clock()
	}
	s.users[user.ID] = user
}

func (s *Store) GetUser(_ context.Context, userID string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) GetUsers(_ context.Context, userIDs []string) (map[string]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.User, len(userIDs))
	for _, id := range userIDs {
		if user, ok := s.users[id]; ok {
			out[id] = user
		}
	}
	return out, nil
}

func (s *Store) UpdateUser(_ context.Context, userID string, update domain.UserUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if update.Experience != nil {
		user.Experience = *update.Experience
	}
	if update.Streak != nil {
		user.Streak = *update.Streak
	}
	if update.Name != nil {
		name := *update.Name
		user.Name = &name
	}
	if update.AvatarURL != nil {
		avatar := *update.AvatarURL
		user.AvatarURL = &avatar
	}
	s.users[userID] = user
	return nil
}

func (s *Store) SaveAttempt(_ context.Context, attempt domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt.ID = uuid.NewString()
	attempt.CreatedAt = s.clock()
	s.attempts = append(s.attempts, attempt)
	return nil
}

func (s *Store) AttemptsSince(_ context.Context, since time.Time) ([]domain.AttemptRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]domain.AttemptRow, 0, len(s.attempts))
	for _, a := range s.attempts {
		if a.CreatedAt.Before(since) {
			continue
		}
		rows = append(rows, domain.AttemptRow{UserID: a.UserID, Points: a.Points, Correct: a.Correct})
	}
	return rows, nil
}

// Attempts returns a copy of every stored attempt in insertion order.
func (s *Store) Attempts() []domain.Attempt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Attempt(nil), s.attempts...)
}
