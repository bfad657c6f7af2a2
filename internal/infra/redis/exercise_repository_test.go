package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"n5-drill-service/internal/domain"
	"n5-drill-service/internal/infra/memory"
)

func TestExerciseRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	loader := &countingLoader{ExerciseLoader: memory.NewStaticExerciseLoader(memory.SampleExercises())}
	repo := NewExerciseRepository(client, loader, time.Minute, nil)

	filter := domain.ExerciseFilter{Types: []domain.ExerciseType{domain.KanjiReading, domain.ParticleChoice}, Level: "N5", Limit: 10}
	first, err := repo.FetchExercises(context.Background(), filter)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 exercises, got %d", len(first))
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}

	key := "exercises:" + memory.FilterKey(filter)
	if !mr.Exists(key) {
		t.Fatalf("expected redis key %s to be set", key)
	}
	if ttl := mr.TTL(key); ttl < time.Minute || ttl > time.Minute+6*time.Second {
		t.Fatalf("ttl %v outside jitter window", ttl)
	}

	// Second call should hit cache, loader not incremented.
	second, err := repo.FetchExercises(context.Background(), filter)
	if err != nil {
		t.Fatalf("fetch cached: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if len(second) != 2 || second[0].ID != first[0].ID || second[0].CorrectAnswer != first[0].CorrectAnswer {
		t.Fatalf("cached batch differs: %+v vs %+v", second, first)
	}
}

func TestExerciseRepositoryFallsBackWhenRedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := newClient(mr)
	mr.Close()

	loader := &countingLoader{ExerciseLoader: memory.NewStaticExerciseLoader(memory.SampleExercises())}
	repo := NewExerciseRepository(client, loader, time.Minute, nil)

	got, err := repo.FetchExercises(context.Background(), domain.ExerciseFilter{Level: "N5", Limit: 3})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 exercises from loader, got %d", len(got))
	}
}

func TestExerciseRepositoryPropagatesLoaderError(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	boom := errors.New("db down")
	repo := NewExerciseRepository(newClient(mr), failingLoader{err: boom}, time.Minute, nil)
	if _, err := repo.FetchExercises(context.Background(), domain.ExerciseFilter{Level: "N5", Limit: 3}); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
}

type countingLoader struct {
	ExerciseLoader
	calls int
}

func (l *countingLoader) FetchExercises(ctx context.Context, filter domain.ExerciseFilter) ([]domain.Exercise, error) {
	l.calls++
	return l.ExerciseLoader.FetchExercises(ctx, filter)
}

type failingLoader struct{ err error }

func (l failingLoader) FetchExercises(context.Context, domain.ExerciseFilter) ([]domain.Exercise, error) {
	return nil, l.err
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
