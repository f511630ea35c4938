package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisParameterCache stores the parameter snapshot in a Redis hash.
// This is suitable for distributed deployments where multiple instances
// should see parameter changes without each hitting the database.
type RedisParameterCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisParameterCache creates a new Redis-backed parameter cache
func NewRedisParameterCache(cfg RedisConfig, ttl time.Duration) (*RedisParameterCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisParameterCache{
		client: client,
		key:    "params:snapshot",
		ttl:    ttl,
	}, nil
}

// NewRedisParameterCacheWithClient creates a cache with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisParameterCacheWithClient(client *redis.Client, key string, ttl time.Duration) *RedisParameterCache {
	if key == "" {
		key = "params:snapshot"
	}
	return &RedisParameterCache{
		client: client,
		key:    key,
		ttl:    ttl,
	}
}

// GetAll returns the cached snapshot, or nil when the hash does not exist
func (c *RedisParameterCache) GetAll(ctx context.Context) (map[string]string, error) {
	params, err := c.client.HGetAll(ctx, c.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read parameter cache: %w", err)
	}
	if len(params) == 0 {
		return nil, nil
	}
	return params, nil
}

// SetAll replaces the cached snapshot atomically
func (c *RedisParameterCache) SetAll(ctx context.Context, params map[string]string) error {
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, c.key)
	if len(params) > 0 {
		values := make(map[string]interface{}, len(params))
		for k, v := range params {
			values[k] = v
		}
		pipe.HSet(ctx, c.key, values)
		if c.ttl > 0 {
			pipe.Expire(ctx, c.key, c.ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write parameter cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached snapshot
func (c *RedisParameterCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate parameter cache: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisParameterCache) Close() error {
	return c.client.Close()
}

// Ensure RedisParameterCache implements ParameterCache
var _ ParameterCache = (*RedisParameterCache)(nil)
