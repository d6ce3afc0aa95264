package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sskmusic7/salt-life-excursions-sub001/internal/domain/shared"
)

const defaultGuardKeyPrefix = "excursions:cart:submitted:"

// RedisSubmissionGuard implements SubmissionGuard using Redis so that
// multiple instances share submission state
type RedisSubmissionGuard struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisSubmissionGuard creates a guard on an existing Redis client
func NewRedisSubmissionGuard(client redis.UniversalClient, keyPrefix string) *RedisSubmissionGuard {
	if keyPrefix == "" {
		keyPrefix = defaultGuardKeyPrefix
	}
	return &RedisSubmissionGuard{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// MarkSubmitted uses SETNX so only one caller wins the key
func (g *RedisSubmissionGuard) MarkSubmitted(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark submission: %w", err)
	}
	return ok, nil
}

// Release deletes the key
func (g *RedisSubmissionGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release submission: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (g *RedisSubmissionGuard) Close() error {
	return g.client.Close()
}

var _ shared.SubmissionGuard = (*RedisSubmissionGuard)(nil)
