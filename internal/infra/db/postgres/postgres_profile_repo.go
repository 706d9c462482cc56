package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"diet-planner-api/internal/domain"
	"diet-planner-api/internal/domain/model"
	"diet-planner-api/internal/domain/ports/repository"
)

var _ repository.ProfileRepository = (*profileRepo)(nil)

type profileRepo struct{ pool *pgxpool.Pool }

func NewProfileRepo(pool *pgxpool.Pool) *profileRepo {
	return &profileRepo{pool: pool}
}

func (r *profileRepo) Save(ctx context.Context, tx repository.Tx, p *model.Profile) error {
	p.UpdatedAt = time.Now()

	const q = `
INSERT INTO profiles (user_id, weight_kg, height_cm, region, eating_habits, goal, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (user_id) DO UPDATE SET
  weight_kg = EXCLUDED.weight_kg,
  height_cm = EXCLUDED.height_cm,
  region = EXCLUDED.region,
  eating_habits = EXCLUDED.eating_habits,
  goal = EXCLUDED.goal,
  updated_at = EXCLUDED.updated_at;`

	_, err := execSQL(ctx, r.pool, tx, q, p.UserID, p.WeightKg, p.HeightCm, p.Region, p.EatingHabits, p.Goal, p.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *profileRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Profile, error) {
	const q = `
SELECT user_id, weight_kg, height_cm, region, eating_habits, goal, updated_at
FROM profiles WHERE user_id=$1;`

	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}

	p := &model.Profile{}
	if err := row.Scan(&p.UserID, &p.WeightKg, &p.HeightCm, &p.Region, &p.EatingHabits, &p.Goal, &p.UpdatedAt); err != nil {
		return nil, translateScanErr(err)
	}
	return p, nil
}
