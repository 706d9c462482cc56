package postgres

import (
	"time"

	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"diet-planner-api/internal/domain"
	"diet-planner-api/internal/domain/model"
	"diet-planner-api/internal/domain/ports/repository"
)

var _ repository.PlanRepository = (*planRepo)(nil)

type planRepo struct{ pool *pgxpool.Pool }

func NewPlanRepo(pool *pgxpool.Pool) *planRepo {
	return &planRepo{pool: pool}
}

// Save inserts a new record. There is deliberately no ON CONFLICT clause:
// plan records are append-only and never rewritten.
func (r *planRepo) Save(ctx context.Context, tx repository.Tx, rec *model.PlanRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	const q = `
INSERT INTO diet_plans (id, user_id, plan_data, created_at)
VALUES ($1, $2, $3, $4);`

	_, err := execSQL(ctx, r.pool, tx, q, rec.ID, rec.UserID, rec.PlanData, rec.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *planRepo) FindLatestByUser(ctx context.Context, tx repository.Tx, userID string) (*model.PlanRecord, error) {
	const q = `
SELECT id, user_id, plan_data, created_at
FROM diet_plans
WHERE user_id=$1
ORDER BY created_at DESC, id DESC
LIMIT 1;`

	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}

	rec := &model.PlanRecord{}
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.PlanData, &rec.CreatedAt); err != nil {
		return nil, translateScanErr(err)
	}
	return rec, nil
}

func (r *planRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.PlanRecord, error) {
	const q = `
SELECT id, user_id, plan_data, created_at
FROM diet_plans
WHERE user_id=$1
ORDER BY created_at DESC, id DESC
OFFSET $2 LIMIT $3;`

	rows, err := pickRows(ctx, r.pool, tx, q, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.PlanRecord
	for rows.Next() {
		rec := &model.PlanRecord{}
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.PlanData, &rec.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
