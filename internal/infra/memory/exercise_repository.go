package memory

import (
	"context"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"n5-drill-service/internal/domain"
)

// ExerciseLoader fetches exercises from a backing store (e.g., Postgres).
type ExerciseLoader interface {
	FetchExercises(ctx context.Context, filter domain.ExerciseFilter) ([]domain.Exercise, error)
}

// ExerciseRepository caches exercise batches per filter with TTL to avoid repeated DB hits.
type ExerciseRepository struct {
	loader ExerciseLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedBatch
}

type cachedBatch struct {
	exercises []domain.Exercise
	expiresAt time.Time
}

func NewExerciseRepository(loader ExerciseLoader, ttl time.Duration) *ExerciseRepository {
	return &ExerciseRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedBatch),
	}
}

func (r *ExerciseRepository) FetchExercises(ctx context.Context, filter domain.ExerciseFilter) ([]domain.Exercise, error) {
	key := FilterKey(filter)
	if batch, ok := r.lookup(key); ok {
		return batch, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		if batch, ok := r.lookup(key); ok {
			return batch, nil
		}

		batch, err := r.loader.FetchExercises(ctx, filter)
		if err != nil {
			return nil, err
		}
		if r.ttl > 0 && len(batch) > 0 {
			r.mu.Lock()
			r.cache[key] = cachedBatch{
				exercises: batch,
				expiresAt: r.clock().Add(r.ttlWithJitterLocked()),
			}
			r.mu.Unlock()
		}
		return batch, nil
	})
	if err != nil {
		return nil, err
	}
	return copyExercises(result.([]domain.Exercise)), nil
}

func (r *ExerciseRepository) lookup(key string) ([]domain.Exercise, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[key]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return nil, false
	}
	return copyExercises(entry.exercises), true
}

func (r *ExerciseRepository) ttlWithJitterLocked() time.Duration {
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// FilterKey renders a filter as a stable cache key; type order does not matter.
func FilterKey(filter domain.ExerciseFilter) string {
	types := make([]string, len(filter.Types))
	for i, t := range filter.Types {
		types[i] = string(t)
	}
	sort.Strings(types)
	if len(types) == 0 {
		types = []string{"*"}
	}
	return filter.Level + ":" + strings.Join(types, ",") + ":" + strconv.Itoa(filter.Limit)
}

// copyExercises hands callers their own slice so a session shuffle never reorders the cache.
func copyExercises(in []domain.Exercise) []domain.Exercise {
	return append([]domain.Exercise(nil), in...)
}

// StaticExerciseLoader is a simple loader backed by an in-memory slice (useful for tests/demos).
type StaticExerciseLoader struct {
	exercises []domain.Exercise
}

func NewStaticExerciseLoader(exercises []domain.Exercise) *StaticExerciseLoader {
	return &StaticExerciseLoader{exercises: exercises}
}

// FetchExercises mirrors the SQL loader: matching level and types, newest id first, limited.
func (l *StaticExerciseLoader) FetchExercises(_ context.Context, filter domain.ExerciseFilter) ([]domain.Exercise, error) {
	wanted := make(map[domain.ExerciseType]bool, len(filter.Types))
	for _, t := range filter.Types {
		wanted[t] = true
	}

	out := make([]domain.Exercise, 0, len(l.exercises))
	for _, ex := range l.exercises {
		if filter.Level != "" && ex.Level != filter.Level {
			continue
		}
		if len(wanted) > 0 && !wanted[ex.Type] {
			continue
		}
		out = append(out, ex)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}
