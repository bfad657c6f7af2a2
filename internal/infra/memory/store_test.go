package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"n5-drill-service/internal/domain"
)

func TestStoreUpdateUser(t *testing.T) {
	store := NewStore()
	store.PutUser(DemoUser())

	exp, streak := 120, 3
	if err := store.UpdateUser(context.Background(), DemoUserID, domain.UserUpdate{Experience: &exp, Streak: &streak}); err != nil {
		t.Fatalf("update: %v", err)
	}
	user, err := store.GetUser(context.Background(), DemoUserID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if user.Experience != 120 || user.Streak != 3 || user.Name == nil || *user.Name != "Demo" {
		t.Fatalf("unexpected user %+v", user)
	}

	if err := store.UpdateUser(context.Background(), "ghost", domain.UserUpdate{Streak: &streak}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestStoreAttemptsSince(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	store := NewStoreWithClock(func() time.Time { return now })

	_ = store.SaveAttempt(context.Background(), domain.Attempt{UserID: "u1", ExerciseID: "ex-01", Correct: true, Points: 15})
	now = now.Add(48 * time.Hour)
	_ = store.SaveAttempt(context.Background(), domain.Attempt{UserID: "u2", ExerciseID: "ex-02", Points: 0})

	rows, err := store.AttemptsSince(context.Background(), now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("attempts since: %v", err)
	}
	if len(rows) != 1 || rows[0].UserID != "u2" {
		t.Fatalf("unexpected rows %+v", rows)
	}

	all := store.Attempts()
	if len(all) != 2 || all[0].ID == "" || all[0].ID == all[1].ID {
		t.Fatalf("expected distinct server-assigned ids, got %+v", all)
	}
}
