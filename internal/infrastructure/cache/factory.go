package cache

import (
	"fmt"
	"io"
	"time"

	"github.com/invoiceflow/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// CatalogCacheFactory creates the template catalog cache based on configuration
type CatalogCacheFactory struct {
	redisConfig           config.RedisConfig
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// CatalogCacheFactoryOption is a functional option for configuring the factory
type CatalogCacheFactoryOption func(*CatalogCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) CatalogCacheFactoryOption {
	return func(f *CatalogCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to memory when Redis is unavailable.
// Default is true.
func WithInMemoryFallback(allow bool) CatalogCacheFactoryOption {
	return func(f *CatalogCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewCatalogCacheFactory creates a new factory
func NewCatalogCacheFactory(cfg config.RedisConfig, ttl time.Duration, opts ...CatalogCacheFactoryOption) *CatalogCacheFactory {
	f := &CatalogCacheFactory{
		redisConfig:           cfg,
		ttl:                   ttl,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRedisCache creates a Redis-backed catalog cache
func (f *CatalogCacheFactory) CreateRedisCache() (*RedisCatalogCache, error) {
	c, err := NewRedisCatalogCache(RedisConfig{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, WithCatalogTTL(f.ttl), WithCacheLogger(f.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis catalog cache: %w", err)
	}
	return c, nil
}

// CreateCache returns a Redis cache when Redis is enabled and reachable, otherwise an in-memory one.
// The returned closer releases the Redis client and is never nil.
func (f *CatalogCacheFactory) CreateCache() (TemplateCatalogCache, io.Closer, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory template catalog cache")
		return NewInMemoryCatalogCache(f.ttl), nopCloser{}, nil
	}

	c, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("Using Redis template catalog cache", zap.String("addr", f.redisConfig.Addr()))
		return c, c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, nil, fmt.Errorf("Redis required for template catalog cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory template catalog cache",
		zap.Error(err))
	return NewInMemoryCatalogCache(f.ttl), nopCloser{}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
