package quote

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores the provider's coin catalog between calls.
type Cache interface {
	GetAssets(ctx context.Context) ([]Asset, bool, error)
	SetAssets(ctx context.Context, assets []Asset) error
}

// DefaultAssetsKey is the Redis key holding the JSON-encoded catalog.
const DefaultAssetsKey = "quote:assets"

// RedisCache is a Cache backed by a single Redis string with a TTL.
type RedisCache struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

// NewRedisCache wraps rdb. A non-positive ttl stores without expiry.
func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisCache{rdb: rdb, key: DefaultAssetsKey, ttl: ttl}
}

// GetAssets returns the cached catalog. A missing key is (nil, false, nil).
func (c *RedisCache) GetAssets(ctx context.Context) ([]Asset, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var out []Asset
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// SetAssets replaces the cached catalog.
func (c *RedisCache) SetAssets(ctx context.Context, assets []Asset) error {
	raw, err := json.Marshal(assets)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key, raw, c.ttl).Err()
}

var _ Cache = (*RedisCache)(nil)
