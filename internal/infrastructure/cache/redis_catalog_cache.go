package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/invoiceflow/backend/internal/domain/invoicing"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultCatalogKey = "invoiceflow:invoice_templates"

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisCatalogCache stores the template catalog in Redis so all instances share it
type RedisCatalogCache struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	key        string
	ttl        time.Duration
	logger     *zap.Logger
}

// RedisCatalogCacheOption is a functional option for configuring the cache
type RedisCatalogCacheOption func(*RedisCatalogCache)

// WithCacheLogger sets the logger for the cache
func WithCacheLogger(logger *zap.Logger) RedisCatalogCacheOption {
	return func(c *RedisCatalogCache) {
		c.logger = logger
	}
}

// WithCatalogKey overrides the Redis key
func WithCatalogKey(key string) RedisCatalogCacheOption {
	return func(c *RedisCatalogCache) {
		c.key = key
	}
}

// WithCatalogTTL sets the expiry of the cached catalog
func WithCatalogTTL(ttl time.Duration) RedisCatalogCacheOption {
	return func(c *RedisCatalogCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// NewRedisCatalogCache connects to Redis and verifies the connection
func NewRedisCatalogCache(cfg RedisConfig, opts ...RedisCatalogCacheOption) (*RedisCatalogCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c := NewRedisCatalogCacheWithClient(client, opts...)
	c.ownsClient = true
	return c, nil
}

// NewRedisCatalogCacheWithClient creates a cache with an existing Redis client.
// The caller retains ownership of the client and is responsible for closing it.
func NewRedisCatalogCacheWithClient(client *redis.Client, opts ...RedisCatalogCacheOption) *RedisCatalogCache {
	c := &RedisCatalogCache{
		client: client,
		key:    defaultCatalogKey,
		ttl:    DefaultCatalogTTL,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get reads the catalog; a missing key is a miss, not an error
func (c *RedisCatalogCache) Get(ctx context.Context) ([]invoicing.TemplateDescriptor, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("Cache miss for template catalog")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template catalog from cache: %w", err)
	}
	return decodeCatalog(data)
}

// Set writes the catalog with the configured TTL
func (c *RedisCatalogCache) Set(ctx context.Context, templates []invoicing.TemplateDescriptor) error {
	if templates == nil {
		return nil
	}
	data, err := encodeCatalog(templates)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set template catalog in cache: %w", err)
	}
	return nil
}

// Invalidate deletes the cached catalog
func (c *RedisCatalogCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate template catalog: %w", err)
	}
	return nil
}

// Close closes the client if this cache created it
func (c *RedisCatalogCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

var _ TemplateCatalogCache = (*RedisCatalogCache)(nil)
