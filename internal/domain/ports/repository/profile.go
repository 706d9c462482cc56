package repository

import (
	"context"

	"diet-planner-api/internal/domain/model"
)

// ProfileRepository stores user profiles. The generation core only reads
// profiles; it snapshots them into the GenerationRequest at submission.
type ProfileRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Profile) error
	FindByUser(ctx context.Context, tx Tx, userID string) (*model.Profile, error)
}
