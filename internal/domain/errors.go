package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when a user has no practice session.
	ErrSessionNotFound = errors.New("practice session not found")
	// ErrUserNotFound indicates the user record does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserNotLoaded is returned when progression runs without a user snapshot.
	ErrUserNotLoaded = errors.New("user snapshot not loaded")
	// ErrNoExercises indicates a fetch returned no usable exercises.
	ErrNoExercises = errors.New("no exercises available")
	// ErrInvalidLimit is returned for a non-positive batch size.
	ErrInvalidLimit = errors.New("limit must be positive")
	// ErrUnknownExerciseType is returned for a type outside the enumeration.
	ErrUnknownExerciseType = errors.New("unknown exercise type")
	// ErrNoActiveExercise is returned when the cursor is not on a playable exercise.
	ErrNoActiveExercise = errors.New("no active exercise")
	// ErrAlreadyAnswered rejects a second submission for the same exercise.
	ErrAlreadyAnswered = errors.New("exercise already answered")
	// ErrNotAnswered rejects advancing past an unanswered exercise.
	ErrNotAnswered = errors.New("current exercise not answered")
	// ErrSessionBusy is returned while a load is still in flight.
	ErrSessionBusy = errors.New("session is loading")
	// ErrSessionReset means the session was reset while the operation ran.
	ErrSessionReset = errors.New("session was reset")
	// ErrInvalidProfile rejects a profile update with no usable fields.
	ErrInvalidProfile = errors.New("invalid profile update")
	// ErrUnauthenticated is returned when no caller identity could be resolved.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// LoadError wraps a failure to populate a session with exercises.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load exercises: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// PersistenceError records one failed write during session completion.
type PersistenceError struct {
	Op         string
	ExerciseID string
	Err        error
}

func (e *PersistenceError) Error() string {
	if e.ExerciseID != "" {
		return fmt.Sprintf("%s (exercise %s): %v", e.Op, e.ExerciseID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// AggregationError wraps a failure to compute the weekly ranking.
type AggregationError struct {
	Err error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("weekly ranking: %v", e.Err)
}

func (e *AggregationError) Unwrap() error { return e.Err }
