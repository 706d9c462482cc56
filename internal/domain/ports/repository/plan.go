package repository

import (
	"context"

	"diet-planner-api/internal/domain/model"
)

// PlanRepository stores completed diet plans. Records are append-only:
// Save inserts, nothing updates or deletes them.
type PlanRepository interface {
	Save(ctx context.Context, tx Tx, rec *model.PlanRecord) error

	// FindLatestByUser returns the most recent record for the user by
	// creation time, or domain.ErrNotFound.
	FindLatestByUser(ctx context.Context, tx Tx, userID string) (*model.PlanRecord, error)

	// ListByUser returns records for the user, newest first.
	ListByUser(ctx context.Context, tx Tx, userID string, offset, limit int) ([]*model.PlanRecord, error)
}
