//go:build !integration

package postgres

import (
	"context"
	"time"

	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/model"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/ports/repository"
	red "github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerTariffRepo mocks the database repository that the tariff
// decorator wraps.
type mockInnerTariffRepo struct {
	FindByIDFunc   func(ctx context.Context, tx repository.Tx, id string) (*model.Tariff, error)
	ListActiveFunc func(ctx context.Context, tx repository.Tx) ([]*model.Tariff, error)
}

func (m *mockInnerTariffRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Tariff, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerTariffRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Tariff, error) {
	return m.ListActiveFunc(ctx, tx)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc  func(ctx context.Context, key string) (string, error)
	SetFunc  func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc  func(ctx context.Context, keys ...string) error
	PingFunc func(ctx context.Context) error
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
func (m *mockRedisClient) Close() error                   { return nil }
