package cache

import (
	"context"
	"time"

	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/usecase"
	"github.com/redis/go-redis/v9"
)

// RedisOrderCache mirrors the latest order status for cheap polling reads.
type RedisOrderCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisOrderCache(rdb *redis.Client, ttl time.Duration) *RedisOrderCache {
	return &RedisOrderCache{rdb: rdb, ttl: ttl}
}

func (r *RedisOrderCache) SetStatus(ctx context.Context, number string, status string) error {
	return r.rdb.Set(ctx, "order:status:"+number, status, r.ttl).Err()
}

func (r *RedisOrderCache) GetStatus(ctx context.Context, number string) (string, error) {
	val, err := r.rdb.Get(ctx, "order:status:"+number).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

var _ usecase.OrderCache = (*RedisOrderCache)(nil)
