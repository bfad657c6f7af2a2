package app

import (
	"context"
	"strings"

	"n5-drill-service/internal/domain"
)

// ProfileService exposes a user's record and derived level.
type ProfileService struct {
	users UserRepository
}

func NewProfileService(users UserRepository) *ProfileService {
	return &ProfileService{users: users}
}

// Profile returns the user together with level data.
func (s *ProfileService) Profile(ctx context.Context, userID string) (domain.Profile, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	return domain.NewProfile(user), nil
}

// UpdateProfile changes the display name and/or avatar reference.
// A nil argument leaves the field untouched; a blank name is rejected.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, name, avatarURL *string) (domain.Profile, error) {
	var update domain.UserUpdate
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return domain.Profile{}, domain.ErrInvalidProfile
		}
		update.Name = &trimmed
	}
	if avatarURL != nil {
		trimmed := strings.TrimSpace(*avatarURL)
		update.AvatarURL = &trimmed
	}
	if update.Empty() {
		return domain.Profile{}, domain.ErrInvalidProfile
	}

	if err := s.users.UpdateUser(ctx, userID, update); err != nil {
		return domain.Profile{}, err
	}
	return s.Profile(ctx, userID)
}
