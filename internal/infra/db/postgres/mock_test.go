//go:build !integration

package postgres

import (
	"context"
	"time"

	"diet-planner-api/internal/domain/model"
	"diet-planner-api/internal/domain/ports/repository"
	red "diet-planner-api/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerPlanRepo mocks the database repository that the cache decorator wraps.
type mockInnerPlanRepo struct {
	SaveFunc             func(ctx context.Context, tx repository.Tx, rec *model.PlanRecord) error
	FindLatestByUserFunc func(ctx context.Context, tx repository.Tx, userID string) (*model.PlanRecord, error)
	ListByUserFunc       func(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.PlanRecord, error)
}

func (m *mockInnerPlanRepo) Save(ctx context.Context, tx repository.Tx, rec *model.PlanRecord) error {
	return m.SaveFunc(ctx, tx, rec)
}
func (m *mockInnerPlanRepo) FindLatestByUser(ctx context.Context, tx repository.Tx, userID string) (*model.PlanRecord, error) {
	return m.FindLatestByUserFunc(ctx, tx, userID)
}
func (m *mockInnerPlanRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.PlanRecord, error) {
	return m.ListByUserFunc(ctx, tx, userID, offset, limit)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc    func(ctx context.Context, keys ...string) error
	PingFunc   func(ctx context.Context) error
	IncrFunc   func(ctx context.Context, key string) (int64, error)
	ExpireFunc func(ctx context.Context, key string, expiration time.Duration) error
	CloseFunc  func() error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return m.PingFunc(ctx) }
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	return m.IncrFunc(ctx, key)
}
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return m.ExpireFunc(ctx, key, expiration)
}
func (m *mockRedisClient) Close() error { return m.CloseFunc() }
