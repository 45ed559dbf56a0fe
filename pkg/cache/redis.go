package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements Cache on a Redis instance, for server deployments
// where several processes share one cache.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis at addr ("host:port") and verifies the
// connection with a ping.
func NewRedisCache(ctx context.Context, addr string) (Cache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisCache{client: client}, nil
}

// Get retrieves a value. redis.Nil is a miss, not an error.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value. A non-positive ttl stores without expiration.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete removes a value. Deleting a missing key is not an error.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Close releases the connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ensure RedisCache implements Cache.
var _ Cache = (*RedisCache)(nil)
