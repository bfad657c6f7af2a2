package app

import (
	"context"
	"sync"

	"n5-drill-service/internal/domain"
)

// UserSnapshot is the read-mostly copy of a user that a session scores against.
// It is refreshed from storage on demand and never written directly.
type UserSnapshot struct {
	users  UserRepository
	userID string

	mu     sync.RWMutex
	user   domain.User
	loaded bool
}

func NewUserSnapshot(users UserRepository, userID string) *UserSnapshot {
	return &UserSnapshot{users: users, userID: userID}
}

// UserID returns the id the snapshot tracks.
func (u *UserSnapshot) UserID() string {
	return u.userID
}

// Refresh re-reads the user from storage. On failure the previous copy is kept.
func (u *UserSnapshot) Refresh(ctx context.Context) (domain.User, error) {
	user, err := u.users.GetUser(ctx, u.userID)
	if err != nil {
		return domain.User{}, err
	}
	u.mu.Lock()
	u.user = user
	u.loaded = true
	u.mu.Unlock()
	return user, nil
}

// Current returns the cached user and whether one has been loaded.
func (u *UserSnapshot) Current() (domain.User, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.user, u.loaded
}

// Streak returns the cached streak, zero when nothing is loaded.
func (u *UserSnapshot) Streak() int {
	user, ok := u.Current()
	if !ok {
		return 0
	}
	return user.Streak
}
