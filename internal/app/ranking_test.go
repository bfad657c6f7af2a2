package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"n5-drill-service/internal/app"
	"n5-drill-service/internal/domain"
	"n5-drill-service/internal/infra/memory"
)

func TestWeekStartIsSundayMidnight(t *testing.T) {
	loc := time.FixedZone("JST", 9*3600)
	tests := []struct {
		now  time.Time
		want time.Time
	}{
		// Friday 2026-10-16 -> Sunday 2026-10-11
		{now: time.Date(2026, 10, 16, 18, 30, 0, 0, loc), want: time.Date(2026, 10, 11, 0, 0, 0, 0, loc)},
		// Sunday itself
		{now: time.Date(2026, 10, 11, 0, 0, 1, 0, loc), want: time.Date(2026, 10, 11, 0, 0, 0, 0, loc)},
		// Saturday crossing a month boundary
		{now: time.Date(2026, 11, 7, 23, 59, 0, 0, loc), want: time.Date(2026, 11, 1, 0, 0, 0, 0, loc)},
		// UTC instant that is already Monday in JST
		{now: time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC), want: time.Date(2026, 10, 18, 0, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		if got := app.WeekStart(tt.now, loc); !got.Equal(tt.want) {
			t.Fatalf("WeekStart(%v) = %v, want %v", tt.now, got, tt.want)
		}
	}
}

func TestWeeklyRankingEmptyWindow(t *testing.T) {
	store := memory.NewStore()
	ranking := app.NewRankingAggregator(store, store, time.UTC, 10)

	entries, err := ranking.Weekly(context.Background())
	if err != nil {
		t.Fatalf("weekly: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", entries)
	}
}

func TestWeeklyRankingOrdersAndAggregates(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	clock := now.Add(-7 * 24 * time.Hour)
	store := memory.NewStoreWithClock(func() time.Time { return clock })

	alice, avatar := "Alice", "https://cdn.example.com/a.png"
	store.PutUser(domain.User{ID: "u-alice", Name: &alice, AvatarURL: &avatar})
	store.PutUser(domain.User{ID: "u-bob"})

	// Last week's attempt must not count.
	_ = store.SaveAttempt(ctx, domain.Attempt{UserID: "u-bob", Correct: true, Points: 500})
	clock = now.Add(-time.Hour)
	_ = store.SaveAttempt(ctx, domain.Attempt{UserID: "u-alice", Correct: true, Points: 20})
	_ = store.SaveAttempt(ctx, domain.Attempt{UserID: "u-alice", Correct: false, Points: 0})
	_ = store.SaveAttempt(ctx, domain.Attempt{UserID: "u-bob", Correct: true, Points: 12})
	_ = store.SaveAttempt(ctx, domain.Attempt{UserID: "u-carol", Correct: true, Points: 30})

	ranking := app.NewRankingAggregatorWithClock(store, store, time.UTC, 10, func() time.Time { return now })
	entries, err := ranking.Weekly(ctx)
	if err != nil {
		t.Fatalf("weekly: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %+v", entries)
	}

	if entries[0].UserID != "u-carol" || entries[0].Name != "Usuario" || entries[0].AvatarURL != nil {
		t.Fatalf("expected unknown carol first with placeholder, got %+v", entries[0])
	}
	if e := entries[1]; e.UserID != "u-alice" || e.Name != "Alice" || e.AvatarURL == nil ||
		e.TotalPoints != 20 || e.TotalAttempts != 2 || e.TotalCorrect != 1 {
		t.Fatalf("unexpected alice entry %+v", e)
	}
	if e := entries[2]; e.UserID != "u-bob" || e.Name != "Usuario" || e.TotalPoints != 12 || e.TotalAttempts != 1 {
		t.Fatalf("unexpected bob entry %+v", e)
	}
}

func TestWeeklyRankingTruncatesAndBreaksTies(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	for i := 0; i < 25; i++ {
		points := 10
		if i == 24 {
			points = 99
		}
		_ = store.SaveAttempt(ctx, domain.Attempt{UserID: fmt.Sprintf("u%02d", i), Correct: true, Points: points})
	}

	entries, err := app.NewRankingAggregator(store, store, time.UTC, 0).Weekly(ctx)
	if err != nil {
		t.Fatalf("weekly: %v", err)
	}
	if len(entries) != app.DefaultRankingSize {
		t.Fatalf("expected %d entries, got %d", app.DefaultRankingSize, len(entries))
	}
	if entries[0].UserID != "u24" {
		t.Fatalf("expected top scorer first, got %s", entries[0].UserID)
	}
	for i := 1; i < len(entries); i++ {
		want := fmt.Sprintf("u%02d", i-1)
		if entries[i].UserID != want {
			t.Fatalf("position %d: expected %s by id tie-break, got %s", i, want, entries[i].UserID)
		}
	}
}

func TestWeeklyRankingStorageFailure(t *testing.T) {
	store := memory.NewStore()
	ranking := app.NewRankingAggregator(failingAttempts{err: errors.New("timeout")}, store, time.UTC, 10)

	_, err := ranking.Weekly(context.Background())
	var aggErr *domain.AggregationError
	if !errors.As(err, &aggErr) {
		t.Fatalf("expected AggregationError, got %v", err)
	}
}
