package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const statsKeyPrefix = "stats:"

// ダッシュボード集計結果をRedisに短時間キャッシュする
type RedisStatsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStatsCache(rdb *redis.Client, ttl time.Duration) *RedisStatsCache {
	return &RedisStatsCache{rdb: rdb, ttl: ttl}
}

func (c *RedisStatsCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.rdb.Get(ctx, statsKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *RedisStatsCache) Set(ctx context.Context, key string, value []byte) error {
	return c.rdb.Set(ctx, statsKeyPrefix+key, value, c.ttl).Err()
}

// Redisを使わない構成用
type NopStatsCache struct{}

func (NopStatsCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NopStatsCache) Set(context.Context, string, []byte) error         { return nil }
