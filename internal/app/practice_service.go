package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"n5-drill-service/internal/domain"
)

// ExerciseRepository loads exercises (from cache/backing store).
type ExerciseRepository interface {
	FetchExercises(ctx context.Context, filter domain.ExerciseFilter) ([]domain.Exercise, error)
}

// AttemptRepository stores answered exercises and reads them back for ranking.
type AttemptRepository interface {
	SaveAttempt(ctx context.Context, attempt domain.Attempt) error
	AttemptsSince(ctx context.Context, since time.Time) ([]domain.AttemptRow, error)
}

// UserRepository reads and writes user records.
type UserRepository interface {
	GetUser(ctx context.Context, userID string) (domain.User, error)
	GetUsers(ctx context.Context, userIDs []string) (map[string]domain.User, error)
	UpdateUser(ctx context.Context, userID string, update domain.UserUpdate) error
}

// SessionRepository abstracts where live practice sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	Put(userID string, session *Session)
	Get(userID string) (*Session, bool)
	// Delete removes the session only if it is still the one stored for the user.
	Delete(userID string, session *Session)
}

// PracticeConfig holds the practice defaults shared by every session.
type PracticeConfig struct {
	Level        string
	DefaultLimit int
}

// PracticeService owns the practice session of each connected user.
type PracticeService struct {
	sessions    SessionRepository
	exercises   ExerciseRepository
	users       UserRepository
	progression *Progression
	cfg         PracticeConfig
	logger      *zap.Logger
	now         func() time.Time
}

func NewPracticeService(
	sessions SessionRepository,
	exercises ExerciseRepository,
	users UserRepository,
	progression *Progression,
	cfg PracticeConfig,
	logger *zap.Logger,
) *PracticeService {
	return NewPracticeServiceWithClock(sessions, exercises, users, progression, cfg, logger, time.Now)
}

// NewPracticeServiceWithClock is used by tests that need deterministic elapsed times.
func NewPracticeServiceWithClock(
	sessions SessionRepository,
	exercises ExerciseRepository,
	users UserRepository,
	progression *Progression,
	cfg PracticeConfig,
	logger *zap.Logger,
	now func() time.Time,
) *PracticeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Level == "" {
		cfg.Level = "N5"
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 10
	}
	return &PracticeService{
		sessions:    sessions,
		exercises:   exercises,
		users:       users,
		progression: progression,
		cfg:         cfg,
		logger:      logger,
		now:         now,
	}
}

// DefaultLimit is the batch size used when a client does not ask for one.
func (s *PracticeService) DefaultLimit() int {
	return s.cfg.DefaultLimit
}

// Start loads the user's snapshot and installs a fresh, empty session for them.
// A previous session of the same user is reset.
func (s *PracticeService) Start(ctx context.Context, userID string) (*Session, error) {
	snapshot := NewUserSnapshot(s.users, userID)
	if _, err := snapshot.Refresh(ctx); err != nil {
		return nil, err
	}

	if previous, ok := s.sessions.Get(userID); ok {
		previous.Reset()
	}

	session := NewSession(SessionOptions{
		Exercises:   s.exercises,
		Progression: s.progression,
		User:        snapshot,
		Level:       s.cfg.Level,
		Now:         s.now,
	})
	s.sessions.Put(userID, session)
	s.logger.Debug("practice session started", zap.String("user_id", userID))
	return session, nil
}

// Session returns the current session of the user.
func (s *PracticeService) Session(userID string) (*Session, error) {
	session, ok := s.sessions.Get(userID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Leave discards the session. Work still in flight completes but is not observed.
func (s *PracticeService) Leave(userID string, session *Session) {
	session.Reset()
	s.sessions.Delete(userID, session)
	s.logger.Debug("practice session closed", zap.String("user_id", userID))
}
