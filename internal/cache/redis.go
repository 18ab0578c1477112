package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pingTimeout = 5 * time.Second
	scanBatch   = 100
)

// RedisCache is the Redis connection behind the parse cache and the seasons
// stream
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to redisURL and checks that the server answers
func NewRedisCache(ctx context.Context, redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	rc := &RedisCache{client: redis.NewClient(opt)}
	if err := rc.HealthCheck(ctx); err != nil {
		rc.client.Close()
		return nil, fmt.Errorf("redis at %s not answering: %w", opt.Addr, err)
	}
	return rc, nil
}

// Close closes the connection pool
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Client exposes the pool for stream publishing
func (rc *RedisCache) Client() *redis.Client {
	return rc.client
}

// HealthCheck pings Redis
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	return rc.client.Ping(ctx).Err()
}

// Set stores value under key; a zero ttl never expires
func (rc *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return rc.client.Set(ctx, key, value, ttl).Err()
}

// Get returns the value under key, or redis.Nil when there is none
func (rc *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return rc.client.Get(ctx, key).Result()
}

// DeletePrefix removes every key starting with prefix and reports how many
// were removed
func (rc *RedisCache) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	var keys []string
	iter := rc.client.Scan(ctx, 0, prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("scanning %s*: %w", prefix, err)
	}

	removed := 0
	for start := 0; start < len(keys); start += scanBatch {
		end := min(start+scanBatch, len(keys))
		n, err := rc.client.Del(ctx, keys[start:end]...).Result()
		if err != nil {
			return removed, fmt.Errorf("deleting %s*: %w", prefix, err)
		}
		removed += int(n)
	}
	return removed, nil
}
