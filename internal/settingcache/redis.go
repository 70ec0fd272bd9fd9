// Package settingcache fronts the Setting table with a short-TTL Redis
// cache so the retrieval engine can re-read tunables on every request
// without hitting the database each time.
package settingcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dkoraitest/consultant-copilot/internal/types/interfaces"
)

// RedisCache implements interfaces.SettingCache over a Redis client.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

var _ interfaces.SettingCache = (*RedisCache)(nil)

// New connects to addr and verifies the connection with a ping. ttl <= 0
// falls back to a 5-minute default, matching the "cheap, short TTL"
// tunable-read contract.
func New(addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisCache{client: client, ttl: defaultTTL(ttl), prefix: "setting:"}, nil
}

// defaultTTL falls back to a 5-minute cache window when the caller did not
// configure one.
func defaultTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 5 * time.Minute
	}
	return ttl
}

func (c *RedisCache) key(settingKey string) string {
	return c.prefix + settingKey
}

// Get returns the cached value, or (ok=false) on a cache miss.
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %q: %w", key, err)
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string) error {
	return c.client.Set(ctx, c.key(key), value, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
