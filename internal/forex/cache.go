package forex

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"pricefx/internal/domain"
)

// RedisSnapshotCache keeps the last observed rate per pair in Redis.
type RedisSnapshotCache struct {
	client *redis.Client
}

func NewRedisSnapshotCache(client *redis.Client) *RedisSnapshotCache {
	return &RedisSnapshotCache{client: client}
}

func snapshotKey(from, to domain.Currency) string {
	return fmt.Sprintf("fxrate:%s:%s", from, to)
}

func (c *RedisSnapshotCache) Get(ctx context.Context, from, to domain.Currency) (decimal.Decimal, error) {
	data, err := c.client.Get(ctx, snapshotKey(from, to)).Result()
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(data)
}

func (c *RedisSnapshotCache) Set(ctx context.Context, from, to domain.Currency, rate decimal.Decimal, ttl time.Duration) error {
	return c.client.Set(ctx, snapshotKey(from, to), rate.String(), ttl).Err()
}
