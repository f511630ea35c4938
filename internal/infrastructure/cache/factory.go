package cache

import (
	"fmt"
	"time"

	"github.com/potting/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ParameterCacheFactory creates parameter caches based on configuration
type ParameterCacheFactory struct {
	redisConfig           config.RedisConfig
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ParameterCacheFactoryOption is a functional option for configuring the factory
type ParameterCacheFactoryOption func(*ParameterCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ParameterCacheFactoryOption {
	return func(f *ParameterCacheFactory) {
		f.logger = logger
	}
}

// WithTTL sets the snapshot TTL. Zero means entries never expire and only
// explicit invalidation drops them.
func WithTTL(ttl time.Duration) ParameterCacheFactoryOption {
	return func(f *ParameterCacheFactory) {
		f.ttl = ttl
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) ParameterCacheFactoryOption {
	return func(f *ParameterCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewParameterCacheFactory creates a new factory
func NewParameterCacheFactory(cfg config.RedisConfig, opts ...ParameterCacheFactoryOption) *ParameterCacheFactory {
	f := &ParameterCacheFactory{
		redisConfig:           cfg,
		ttl:                   10 * time.Minute,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisCache creates a Redis-backed parameter cache
func (f *ParameterCacheFactory) CreateRedisCache() (ParameterCache, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	cache, err := NewRedisParameterCache(redisCfg, f.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis parameter cache: %w", err)
	}

	return cache, nil
}

// CreateInMemoryCache creates an in-memory parameter cache
func (f *ParameterCacheFactory) CreateInMemoryCache() ParameterCache {
	return NewInMemoryParameterCache(f.ttl)
}

// CreateCache creates a parameter cache, Redis first with in-memory fallback
// when allowed. In-memory caches do not share invalidation across instances,
// so a parameter change may take one TTL to reach other nodes.
func (f *ParameterCacheFactory) CreateCache() (ParameterCache, error) {
	cache, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis parameter cache")
		return cache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for parameter cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory parameter cache",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}
