package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/model"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/ports/adapter"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/infra/metrics"
)

var _ adapter.EntitlementCache = (*EntitlementCache)(nil)

// EntitlementCache holds advisory snapshots of control-plane
// entitlements. The control plane stays authoritative; settlement
// invalidates the snapshot after every patch.
type EntitlementCache struct {
	client RedisClient
	ttl    time.Duration
}

func NewEntitlementCache(client RedisClient, ttl time.Duration) *EntitlementCache {
	return &EntitlementCache{client: client, ttl: ttl}
}

func key(externalID string) string { return "entitlement:" + externalID }

func (c *EntitlementCache) Store(ctx context.Context, ent model.Entitlement) error {
	data, err := json.Marshal(ent)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(ent.ExternalID), data, c.ttl)
}

func (c *EntitlementCache) Get(ctx context.Context, externalID string) (*model.Entitlement, error) {
	data, err := c.client.Get(ctx, key(externalID))
	if err != nil {
		if IsNil(err) {
			metrics.IncCacheOp("entitlement", "miss")
			return nil, nil
		}
		metrics.IncCacheOp("entitlement", "error")
		return nil, err
	}
	var ent model.Entitlement
	if err := json.Unmarshal([]byte(data), &ent); err != nil {
		return nil, err
	}
	metrics.IncCacheOp("entitlement", "hit")
	return &ent, nil
}

func (c *EntitlementCache) Invalidate(ctx context.Context, externalID string) error {
	metrics.IncCacheOp("entitlement", "invalidate")
	return c.client.Del(ctx, key(externalID))
}
