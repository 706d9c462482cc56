package usecase

import (
	"context"
	"strings"

	"diet-planner-api/internal/domain"
	"diet-planner-api/internal/domain/model"
	"diet-planner-api/internal/domain/ports/repository"
)

// ProfileUseCase manages the profile attributes diet generation reads.
type ProfileUseCase struct {
	repo repository.ProfileRepository
}

func NewProfileUseCase(repo repository.ProfileRepository) *ProfileUseCase {
	return &ProfileUseCase{repo: repo}
}

// Upsert validates and stores the profile.
func (uc *ProfileUseCase) Upsert(ctx context.Context, p *model.Profile) error {
	if strings.TrimSpace(p.UserID) == "" {
		return domain.ErrInvalidArgument
	}
	if p.WeightKg <= 0 || p.HeightCm <= 0 {
		return domain.ErrInvalidArgument
	}
	return uc.repo.Save(ctx, nil, p)
}

// Get retrieves the profile for a user.
func (uc *ProfileUseCase) Get(ctx context.Context, userID string) (*model.Profile, error) {
	return uc.repo.FindByUser(ctx, nil, userID)
}
