package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sskmusic7/salt-life-excursions-sub001/internal/domain/excursion"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/domain/shared"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/infrastructure/config"
)

const pingTimeout = 5 * time.Second

// Factory creates the guard and lookup cache based on configuration
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	dial                  func(config.RedisConfig) (redis.UniversalClient, error)
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory stores when Redis is unavailable.
// Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		dial:                  NewRedisClient,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg config.RedisConfig) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// CreateSubmissionGuard returns a Redis guard when Redis is enabled and
// reachable, otherwise an in-memory guard if fallback is allowed
func (f *Factory) CreateSubmissionGuard() (shared.SubmissionGuard, error) {
	client, err := f.redis()
	if err == nil && client != nil {
		f.logger.Info("using Redis submission guard")
		return NewRedisSubmissionGuard(client, ""), nil
	}
	if err != nil && !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for submission guard but unavailable: %w", err)
	}
	if err != nil {
		f.logger.Warn("Redis unavailable, falling back to in-memory submission guard. "+
			"Duplicate carts are not detected across instances.",
			zap.Error(err),
		)
	}
	return NewInMemorySubmissionGuard(), nil
}

// CreateLookupCache returns a Redis cache when Redis is enabled and
// reachable, otherwise an in-memory cache
func (f *Factory) CreateLookupCache() (excursion.LookupCache, error) {
	client, err := f.redis()
	if err == nil && client != nil {
		f.logger.Info("using Redis lookup cache")
		return NewRedisLookupCache(client, ""), nil
	}
	if err != nil && !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for lookup cache but unavailable: %w", err)
	}
	if err != nil {
		f.logger.Warn("Redis unavailable, falling back to in-memory lookup cache", zap.Error(err))
	}
	return NewInMemoryLookupCache(), nil
}

// redis returns (nil, nil) when Redis is disabled
func (f *Factory) redis() (redis.UniversalClient, error) {
	if !f.redisConfig.Enabled {
		return nil, nil
	}
	return f.dial(f.redisConfig)
}
