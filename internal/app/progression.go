package app

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"n5-drill-service/internal/domain"
)

// CompletionInput is what a finished round hands to the progression updater.
type CompletionInput struct {
	Results      []domain.Result
	Score        int
	CorrectCount int
}

// CompletionReport summarizes the writes performed when a round finished.
type CompletionReport struct {
	SavedAttempts int     `json:"savedAttempts"`
	Experience    int     `json:"experience"`
	Streak        int     `json:"streak"`
	UserUpdated   bool    `json:"userUpdated"`
	Failures      []error `json:"-"`
}

// Err joins every recorded failure, nil when all writes succeeded.
func (r CompletionReport) Err() error {
	return errors.Join(r.Failures...)
}

// Warnings renders failures for display.
func (r CompletionReport) Warnings() []string {
	if len(r.Failures) == 0 {
		return nil
	}
	out := make([]string, len(r.Failures))
	for i, err := range r.Failures {
		out[i] = err.Error()
	}
	return out
}

// NextStreak grows the streak after a perfect, non-empty round and resets it otherwise.
func NextStreak(current, correctCount, answered int) int {
	if answered > 0 && correctCount == answered {
		return current + 1
	}
	return 0
}

// Progression persists a finished round and updates the user's experience and streak.
type Progression struct {
	attempts AttemptRepository
	users    UserRepository
	logger   *zap.Logger
}

func NewProgression(attempts AttemptRepository, users UserRepository, logger *zap.Logger) *Progression {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Progression{attempts: attempts, users: users, logger: logger}
}

// Complete writes every result as an attempt, then the new experience and streak,
// then refreshes the snapshot. Each write is tried once and independently; failures
// are collected in the report instead of aborting the remaining writes.
func (p *Progression) Complete(ctx context.Context, in CompletionInput, snapshot *UserSnapshot) CompletionReport {
	var report CompletionReport

	user, ok := snapshot.Current()
	if !ok {
		err := &domain.PersistenceError{Op: "complete round", Err: domain.ErrUserNotLoaded}
		p.logger.Error("finishing practice without a user", zap.String("user_id", snapshot.UserID()))
		report.Failures = append(report.Failures, err)
		return report
	}

	for _, result := range in.Results {
		err := p.attempts.SaveAttempt(ctx, domain.Attempt{
			UserID:         user.ID,
			ExerciseID:     result.ExerciseID,
			Correct:        result.Correct,
			ElapsedSeconds: result.ElapsedSeconds,
			Points:         result.Points,
			Type:           result.Type,
		})
		if err != nil {
			p.logger.Error("save attempt failed",
				zap.String("user_id", user.ID),
				zap.String("exercise_id", result.ExerciseID),
				zap.Error(err))
			report.Failures = append(report.Failures, &domain.PersistenceError{
				Op:         "save attempt",
				ExerciseID: result.ExerciseID,
				Err:        err,
			})
			continue
		}
		report.SavedAttempts++
	}

	report.Experience = user.Experience + in.Score
	report.Streak = NextStreak(user.Streak, in.CorrectCount, len(in.Results))

	exp, streak := report.Experience, report.Streak
	if err := p.users.UpdateUser(ctx, user.ID, domain.UserUpdate{Experience: &exp, Streak: &streak}); err != nil {
		p.logger.Error("update user stats failed", zap.String("user_id", user.ID), zap.Error(err))
		report.Failures = append(report.Failures, &domain.PersistenceError{Op: "update user stats", Err: err})
	} else {
		report.UserUpdated = true
		p.logger.Info("user stats updated",
			zap.String("user_id", user.ID),
			zap.Int("exp", exp),
			zap.Int("streak", streak))
	}

	if _, err := snapshot.Refresh(ctx); err != nil {
		p.logger.Warn("refresh user failed", zap.String("user_id", user.ID), zap.Error(err))
		report.Failures = append(report.Failures, &domain.PersistenceError{Op: "refresh user", Err: err})
	}
	return report
}
