package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"diet-planner-api/internal/domain/model"
	"diet-planner-api/internal/domain/ports/repository"
	"diet-planner-api/internal/infra/metrics"
	red "diet-planner-api/internal/infra/redis"
)

var _ repository.PlanRepository = (*planRepoCacheDecorator)(nil)

// planRepoCacheDecorator caches the latest plan per user in Redis. The
// latest-plan lookup is the hot path of tiered status retrieval once a
// job record has expired, so it is worth keeping off the database.
type planRepoCacheDecorator struct {
	inner repository.PlanRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewPlanRepoCacheDecorator(inner repository.PlanRepository, cache red.RedisClient, ttl time.Duration) repository.PlanRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &planRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func latestPlanKey(userID string) string {
	return fmt.Sprintf("diet:latest_plan:%s", userID)
}

// Save writes through and invalidates the user's latest-plan entry, since
// the new record is by definition the most recent.
func (d *planRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, rec *model.PlanRecord) error {
	if err := d.inner.Save(ctx, tx, rec); err != nil {
		return err
	}
	d.cache.Del(ctx, latestPlanKey(rec.UserID))
	return nil
}

func (d *planRepoCacheDecorator) FindLatestByUser(ctx context.Context, tx repository.Tx, userID string) (*model.PlanRecord, error) {
	key := latestPlanKey(userID)
	if val, err := d.cache.Get(ctx, key); err == nil {
		var rec model.PlanRecord
		if json.Unmarshal([]byte(val), &rec) == nil {
			metrics.IncCacheRequest("latest_plan", "hit")
			return &rec, nil
		}
	}

	metrics.IncCacheRequest("latest_plan", "miss")
	rec, err := d.inner.FindLatestByUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(rec); err == nil {
		d.cache.Set(ctx, key, b, d.ttl)
	}
	return rec, nil
}

// ListByUser is not cached; history reads are rare and paginated.
func (d *planRepoCacheDecorator) ListByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.PlanRecord, error) {
	return d.inner.ListByUser(ctx, tx, userID, offset, limit)
}
