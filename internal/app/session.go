package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"n5-drill-service/internal/domain"
)

// SessionState is the lifecycle position of a practice round.
type SessionState int

const (
	StateEmpty SessionState = iota
	StateLoading
	StateInProgress
	StateFinished
)

func (s SessionState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateInProgress:
		return "in_progress"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// SessionOptions wires a session to its collaborators.
type SessionOptions struct {
	Exercises   ExerciseRepository
	Progression *Progression
	User        *UserSnapshot
	Level       string
	Now         func() time.Time
	Rand        *rand.Rand
}

// Session is one practice round for one user.
//
// Operations are serialized by mu, which is never held across a storage call.
// generation is bumped on every clear so that a load or completion that was in
// flight when the session got reset drops its outcome.
type Session struct {
	exercises   ExerciseRepository
	progression *Progression
	user        *UserSnapshot
	level       string
	now         func() time.Time
	rnd         *rand.Rand

	mu         sync.Mutex
	state      SessionState
	generation uint64
	items      []domain.Exercise
	index      int
	score      int
	correct    int
	totalTime  int
	results    []domain.Result
	startedAt  time.Time
	answered   bool
	report     *CompletionReport
}

func NewSession(opts SessionOptions) *Session {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Session{
		exercises:   opts.Exercises,
		progression: opts.Progression,
		user:        opts.User,
		level:       opts.Level,
		now:         now,
		rnd:         rnd,
	}
}

// User returns the snapshot the session scores against.
func (s *Session) User() *UserSnapshot {
	return s.user
}

// Load fetches up to limit exercises of the given types, shuffles them and starts
// the round. On failure the session is left empty and a *domain.LoadError is returned.
func (s *Session) Load(ctx context.Context, types []domain.ExerciseType, limit int) error {
	if limit <= 0 {
		return &domain.LoadError{Err: domain.ErrInvalidLimit}
	}
	for _, typ := range types {
		if !typ.Valid() {
			return &domain.LoadError{Err: domain.ErrUnknownExerciseType}
		}
	}

	s.mu.Lock()
	if s.state == StateLoading {
		s.mu.Unlock()
		return domain.ErrSessionBusy
	}
	s.clearLocked()
	s.state = StateLoading
	gen := s.generation
	s.mu.Unlock()

	fetched, err := s.exercises.FetchExercises(ctx, domain.ExerciseFilter{
		Types: types,
		Level: s.level,
		Limit: limit,
	})

	usable := make([]domain.Exercise, 0, len(fetched))
	for _, ex := range fetched {
		if ex.Usable() {
			usable = append(usable, ex)
		}
	}
	if len(usable) > limit {
		usable = usable[:limit]
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return domain.ErrSessionReset
	}
	if err != nil {
		s.state = StateEmpty
		return &domain.LoadError{Err: err}
	}
	if len(usable) == 0 {
		s.state = StateEmpty
		return &domain.LoadError{Err: domain.ErrNoExercises}
	}

	shuffleExercises(s.rnd, usable)
	s.items = usable
	s.index = 0
	s.startedAt = s.now()
	s.state = StateInProgress
	return nil
}

// SubmitAnswer grades the answer for the current exercise and appends its result.
// Only one submission is accepted per exercise.
func (s *Session) SubmitAnswer(answer string) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInProgress || s.index >= len(s.items) {
		return domain.Result{}, domain.ErrNoActiveExercise
	}
	if s.answered {
		return domain.Result{}, domain.ErrAlreadyAnswered
	}

	ex := s.items[s.index]
	elapsed := elapsedSeconds(s.startedAt, s.now())
	correct := AnswersMatch(answer, ex.CorrectAnswer)
	result := domain.Result{
		ExerciseID:     ex.ID,
		Correct:        correct,
		ElapsedSeconds: elapsed,
		Points:         CalculatePoints(correct, elapsed, s.user.Streak()),
		Type:           ex.Type,
	}

	s.results = append(s.results, result)
	s.score += result.Points
	if correct {
		s.correct++
	}
	s.totalTime += elapsed
	s.answered = true
	return result, nil
}

// Advance moves to the next exercise. Passing the last one runs the progression
// updater and waits for it before the session is marked finished; persistence
// failures end up in the completion report and do not block the transition.
// It returns true once the session is finished.
func (s *Session) Advance(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.state != StateInProgress || s.index >= len(s.items) {
		s.mu.Unlock()
		return false, domain.ErrNoActiveExercise
	}
	if !s.answered {
		s.mu.Unlock()
		return false, domain.ErrNotAnswered
	}

	s.index++
	s.answered = false
	if s.index < len(s.items) {
		s.startedAt = s.now()
		s.mu.Unlock()
		return false, nil
	}

	in := CompletionInput{
		Results:      append([]domain.Result(nil), s.results...),
		Score:        s.score,
		CorrectCount: s.correct,
	}
	gen := s.generation
	s.mu.Unlock()

	report := s.progression.Complete(ctx, in, s.user)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return false, domain.ErrSessionReset
	}
	s.report = &report
	s.state = StateFinished
	return true, nil
}

// Reset returns the session to its empty state from any state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Session) clearLocked() {
	s.generation++
	s.state = StateEmpty
	s.items = nil
	s.index = 0
	s.score = 0
	s.correct = 0
	s.totalTime = 0
	s.results = nil
	s.startedAt = time.Time{}
	s.answered = false
	s.report = nil
}

// SessionSnapshot is a read-only copy of the session.
type SessionSnapshot struct {
	State        SessionState
	Index        int
	Total        int
	Current      *domain.Exercise
	Answered     bool
	Score        int
	CorrectCount int
	TotalTime    int
	Results      []domain.Result
	StartedAt    time.Time
	Report       *CompletionReport
}

// Accuracy is the rounded share of correct answers among recorded results.
func (s SessionSnapshot) Accuracy() int {
	return domain.Accuracy(s.CorrectCount, len(s.Results))
}

// Snapshot copies the current state.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := SessionSnapshot{
		State:        s.state,
		Index:        s.index,
		Total:        len(s.items),
		Answered:     s.answered,
		Score:        s.score,
		CorrectCount: s.correct,
		TotalTime:    s.totalTime,
		Results:      append([]domain.Result(nil), s.results...),
		StartedAt:    s.startedAt,
	}
	if s.state == StateInProgress && s.index < len(s.items) {
		current := s.items[s.index]
		snap.Current = &current
	}
	if s.report != nil {
		report := *s.report
		snap.Report = &report
	}
	return snap
}

// ElapsedSeconds reports whole seconds spent on the current exercise so far.
func (s *Session) ElapsedSeconds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startedAt.IsZero() {
		return 0
	}
	return elapsedSeconds(s.startedAt, s.now())
}

func elapsedSeconds(start, now time.Time) int {
	d := now.Sub(start)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}
