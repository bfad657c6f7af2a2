package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"n5-drill-service/internal/domain"
	"n5-drill-service/internal/infra/memory"
)

// ExerciseLoader fetches exercises from a backing store (e.g., Postgres).
type ExerciseLoader interface {
	FetchExercises(ctx context.Context, filter domain.ExerciseFilter) ([]domain.Exercise, error)
}

// ExerciseRepository caches exercise batches in Redis and falls back to a loader on miss.
// Batches are stored as JSON: SET exercises:{level}:{types}:{limit} <json> EX ttl
type ExerciseRepository struct {
	client *redis.Client
	loader ExerciseLoader
	ttl    time.Duration
	logger *zap.Logger
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewExerciseRepository(client *redis.Client, loader ExerciseLoader, ttl time.Duration, logger *zap.Logger) *ExerciseRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExerciseRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		logger: logger,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ExerciseRepository) FetchExercises(ctx context.Context, filter domain.ExerciseFilter) ([]domain.Exercise, error) {
	key := r.key(filter)
	if batch, ok := r.cached(ctx, key); ok {
		return batch, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if batch, ok := r.cached(ctx, key); ok {
			return batch, nil
		}

		batch, err := r.loader.FetchExercises(ctx, filter)
		if err != nil {
			return nil, err
		}
		if len(batch) > 0 {
			r.store(ctx, key, batch)
		}
		return batch, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.Exercise(nil), result.([]domain.Exercise)...), nil
}

// cached treats any Redis failure as a miss so the loader keeps serving.
func (r *ExerciseRepository) cached(ctx context.Context, key string) ([]domain.Exercise, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("exercise cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var batch []domain.Exercise
	if err := json.Unmarshal(raw, &batch); err != nil {
		r.logger.Warn("exercise cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return batch, len(batch) > 0
}

func (r *ExerciseRepository) store(ctx context.Context, key string, batch []domain.Exercise) {
	raw, err := json.Marshal(batch)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err(); err != nil {
		r.logger.Warn("exercise cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (r *ExerciseRepository) key(filter domain.ExerciseFilter) string {
	return "exercises:" + memory.FilterKey(filter)
}

func (r *ExerciseRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
