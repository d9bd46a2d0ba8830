package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/model"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/ports/repository"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/infra/metrics"
	red "github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/infra/redis"
)

var _ repository.TariffRepository = (*tariffRepoCacheDecorator)(nil)

// tariffRepoCacheDecorator is a read-through cache. Tariffs change only
// through the admin console, so a short TTL is the whole invalidation
// story on this side.
type tariffRepoCacheDecorator struct {
	inner repository.TariffRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewTariffRepoCacheDecorator(inner repository.TariffRepository, cache red.RedisClient) repository.TariffRepository {
	return &tariffRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   15 * time.Minute,
	}
}

func (d *tariffRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Tariff, error) {
	key := fmt.Sprintf("tariff:%s", id)
	if val, err := d.cache.Get(ctx, key); err == nil {
		var t model.Tariff
		if json.Unmarshal([]byte(val), &t) == nil {
			metrics.IncCacheOp("tariff", "hit")
			return &t, nil
		}
	}

	metrics.IncCacheOp("tariff", "miss")
	t, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(t); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return t, nil
}

func (d *tariffRepoCacheDecorator) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Tariff, error) {
	const key = "tariffs:active"
	if val, err := d.cache.Get(ctx, key); err == nil {
		var ts []*model.Tariff
		if json.Unmarshal([]byte(val), &ts) == nil {
			metrics.IncCacheOp("tariff_list", "hit")
			return ts, nil
		}
	}

	metrics.IncCacheOp("tariff_list", "miss")
	ts, err := d.inner.ListActive(ctx, tx)
	if err != nil {
		return nil, err
	}
	if len(ts) > 0 {
		if b, err := json.Marshal(ts); err == nil {
			_ = d.cache.Set(ctx, key, b, d.ttl)
		}
	}
	return ts, nil
}
