package cache

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/invoiceflow/backend/internal/domain/invoicing"
)

// InMemoryCatalogCache keeps the template catalog in process memory
type InMemoryCatalogCache struct {
	mu        sync.RWMutex
	templates []invoicing.TemplateDescriptor
	expiresAt time.Time
	ttl       time.Duration
	now       func() time.Time

	// Stats for monitoring
	hits   int64
	misses int64
}

// NewInMemoryCatalogCache creates an empty cache; a non-positive ttl uses DefaultCatalogTTL
func NewInMemoryCatalogCache(ttl time.Duration) *InMemoryCatalogCache {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &InMemoryCatalogCache{ttl: ttl, now: time.Now}
}

// Get returns a copy of the cached catalog, or nil when empty or expired
func (c *InMemoryCatalogCache) Get(ctx context.Context) ([]invoicing.TemplateDescriptor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.templates == nil || c.now().After(c.expiresAt) {
		atomic.AddInt64(&c.misses, 1)
		return nil, nil
	}
	atomic.AddInt64(&c.hits, 1)
	return slices.Clone(c.templates), nil
}

// Set replaces the cached catalog
func (c *InMemoryCatalogCache) Set(ctx context.Context, templates []invoicing.TemplateDescriptor) error {
	if templates == nil {
		return nil
	}
	c.mu.Lock()
	c.templates = slices.Clone(templates)
	c.expiresAt = c.now().Add(c.ttl)
	c.mu.Unlock()
	return nil
}

// Invalidate drops the cached catalog
func (c *InMemoryCatalogCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	c.templates = nil
	c.mu.Unlock()
	return nil
}

// Stats returns hit and miss counters
func (c *InMemoryCatalogCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

var _ TemplateCatalogCache = (*InMemoryCatalogCache)(nil)
