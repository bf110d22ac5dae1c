package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hobbycircles/hobby-circles/internal/config"
)

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	return c.Client.Incr(ctx, key).Result()
}

// KeyUserCount is the roster-size counter key.
func (c *RedisCache) KeyUserCount() string { return "users:count" }

// KeyActivityCount is the activity-board-size counter key.
func (c *RedisCache) KeyActivityCount() string { return "activities:count" }

// KeyMatchCount generates the cache key for a match-count query.
// The key carries the full query signature so different radii or
// interest filters never collide.
func (c *RedisCache) KeyMatchCount(username string, radiusKm float64, interest string) string {
	return fmt.Sprintf("matches:count:%s:%g:%s", username, radiusKm, interest)
}

// GetCount reads a numeric counter, treating a missing key as a cache miss.
// Refreshes the TTL on hit since the key is evidently still in use.
func (c *RedisCache) GetCount(ctx context.Context, key string) (int64, bool, error) {
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil // cache miss
	} else if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil // unparseable value counts as a miss
	}
	_ = c.Client.Expire(ctx, key, time.Hour).Err()
	return n, true, nil
}

// SetCount stores a numeric counter with a 1h TTL.
func (c *RedisCache) SetCount(ctx context.Context, key string, count int64) error {
	return c.Client.Set(ctx, key, strconv.FormatInt(count, 10), time.Hour).Err()
}
