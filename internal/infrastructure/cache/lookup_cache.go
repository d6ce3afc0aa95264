package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sskmusic7/salt-life-excursions-sub001/internal/domain/excursion"
)

const defaultLookupKeyPrefix = "excursions:lookup:"

// InMemoryLookupCache caches catalog payloads in process memory
type InMemoryLookupCache struct {
	m *ttlMap
}

// NewInMemoryLookupCache creates a new in-memory lookup cache
func NewInMemoryLookupCache() *InMemoryLookupCache {
	return &InMemoryLookupCache{m: newTTLMap(defaultCleanupInterval)}
}

// Get returns the cached value
func (c *InMemoryLookupCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.m.get(key)
	return v, ok, nil
}

// Set stores a copy of value for ttl
func (c *InMemoryLookupCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.m.set(key, append([]byte(nil), value...), ttl)
	return nil
}

// Close stops the cleanup goroutine
func (c *InMemoryLookupCache) Close() error {
	c.m.close()
	return nil
}

// Size returns the number of entries (for testing/monitoring)
func (c *InMemoryLookupCache) Size() int {
	return c.m.size()
}

// RedisLookupCache caches catalog payloads in Redis
type RedisLookupCache struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisLookupCache creates a lookup cache on an existing Redis client
func NewRedisLookupCache(client redis.UniversalClient, keyPrefix string) *RedisLookupCache {
	if keyPrefix == "" {
		keyPrefix = defaultLookupKeyPrefix
	}
	return &RedisLookupCache{client: client, keyPrefix: keyPrefix}
}

// Get returns the cached value; redis.Nil is a miss
func (c *RedisLookupCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache: %w", err)
	}
	return v, true, nil
}

// Set stores value for ttl
func (c *RedisLookupCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisLookupCache) Close() error {
	return c.client.Close()
}

var (
	_ excursion.LookupCache = (*InMemoryLookupCache)(nil)
	_ excursion.LookupCache = (*RedisLookupCache)(nil)
)
