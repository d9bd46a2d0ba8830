//go:build !integration

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/model"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/ports/repository"
)

func TestTariffRepoCacheDecorator(t *testing.T) {
	ctx := context.Background()
	tariff := &model.Tariff{ID: "tariff-123", Name: "Monthly", DurationDays: 30}
	tariffJSON, _ := json.Marshal(tariff)

	t.Run("FindByID should return from cache on hit", func(t *testing.T) {
		// Arrange
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) {
				return string(tariffJSON), nil // Simulate cache hit
			},
		}
		innerRepoCalled := false
		mockInnerRepo := &mockInnerTariffRepo{
			FindByIDFunc: func(ctx context.Context, tx repository.Tx, id string) (*model.Tariff, error) {
				innerRepoCalled = true // This should not be called
				return nil, nil
			},
		}

		decorator := NewTariffRepoCacheDecorator(mockInnerRepo, mockRedis)

		// Act
		result, err := decorator.FindByID(ctx, nil, "tariff-123")

		// Assert
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if result == nil || result.ID != "tariff-123" {
			t.Error("did not return the cached tariff")
		}
		if innerRepoCalled {
			t.Error("inner repository should not be called on a cache hit")
		}
	})

	t.Run("FindByID should fall through and populate the cache on miss", func(t *testing.T) {
		var setKey string
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) {
				return "", errors.New("redis: nil") // Simulate cache miss
			},
			SetFunc: func(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
				setKey = key
				return nil
			},
		}
		mockInnerRepo := &mockInnerTariffRepo{
			FindByIDFunc: func(ctx context.Context, tx repository.Tx, id string) (*model.Tariff, error) {
				return tariff, nil
			},
		}

		decorator := NewTariffRepoCacheDecorator(mockInnerRepo, mockRedis)

		result, err := decorator.FindByID(ctx, nil, "tariff-123")
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if result.Name != "Monthly" {
			t.Error("did not return the tariff from the inner repository")
		}
		if setKey != "tariff:tariff-123" {
			t.Errorf("expected the cache to be populated under 'tariff:tariff-123', but got %q", setKey)
		}
	})

	t.Run("FindByID should propagate inner repository errors", func(t *testing.T) {
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) {
				return "", errors.New("redis: nil")
			},
		}
		wantErr := errors.New("db down")
		mockInnerRepo := &mockInnerTariffRepo{
			FindByIDFunc: func(ctx context.Context, tx repository.Tx, id string) (*model.Tariff, error) {
				return nil, wantErr
			},
		}

		decorator := NewTariffRepoCacheDecorator(mockInnerRepo, mockRedis)

		if _, err := decorator.FindByID(ctx, nil, "tariff-123"); !errors.Is(err, wantErr) {
			t.Errorf("expected the inner error, but got %v", err)
		}
	})

	t.Run("ListActive should serve the cached list", func(t *testing.T) {
		listJSON, _ := json.Marshal([]*model.Tariff{tariff})
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) {
				if key != "tariffs:active" {
					t.Errorf("unexpected cache key: %s", key)
				}
				return string(listJSON), nil
			},
		}
		mockInnerRepo := &mockInnerTariffRepo{
			ListActiveFunc: func(ctx context.Context, tx repository.Tx) ([]*model.Tariff, error) {
				t.Error("inner repository should not be called on a cache hit")
				return nil, nil
			},
		}

		decorator := NewTariffRepoCacheDecorator(mockInnerRepo, mockRedis)

		ts, err := decorator.ListActive(ctx, nil)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if len(ts) != 1 || ts[0].ID != "tariff-123" {
			t.Errorf("unexpected list: %+v", ts)
		}
	})
}
