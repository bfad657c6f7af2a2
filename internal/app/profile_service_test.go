package app_test

import (
	"context"
	"errors"
	"testing"

	"n5-drill-service/internal/app"
	"n5-drill-service/internal/domain"
	"n5-drill-service/internal/infra/memory"
)

func TestProfileServiceUpdate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.PutUser(domain.User{ID: "u1", Experience: 320})
	profiles := app.NewProfileService(store)

	name, avatar := "  Hana ", "avatars/u1.png"
	profile, err := profiles.UpdateProfile(ctx, "u1", &name, &avatar)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if profile.Name == nil || *profile.Name != "Hana" || profile.AvatarURL == nil || *profile.AvatarURL != "avatars/u1.png" {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if profile.Level != 3 {
		t.Fatalf("expected level 3 for 320 exp, got %d", profile.Level)
	}

	blank := "   "
	if _, err := profiles.UpdateProfile(ctx, "u1", &blank, nil); !errors.Is(err, domain.ErrInvalidProfile) {
		t.Fatalf("expected ErrInvalidProfile for blank name, got %v", err)
	}
	if _, err := profiles.UpdateProfile(ctx, "u1", nil, nil); !errors.Is(err, domain.ErrInvalidProfile) {
		t.Fatalf("expected ErrInvalidProfile for empty update, got %v", err)
	}
	if _, err := profiles.Profile(ctx, "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
