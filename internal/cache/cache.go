package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/types"
)

// Metrics receives cache hit/miss notifications
type Metrics interface {
	IncrementCacheHit()
	IncrementCacheMiss()
}

// Store is the backing store consulted on a miss
type Store interface {
	SaveAssessment(ctx context.Context, a *types.Assessment) error
	GetAssessment(ctx context.Context, id string) (*types.Assessment, error)
	DeleteAssessment(ctx context.Context, id string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CacheItem represents a cached item with expiration
type CacheItem struct {
	Value     types.Assessment
	ExpiresAt time.Time
}

// IsExpired checks if the cache item has expired
func (c *CacheItem) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Cache is a read-through TTL cache in front of an assessment store.
// Assessments are immutable once written; entries leave the cache when they
// expire or when the assessment is deleted through the cache.
type Cache struct {
	mu      sync.RWMutex
	items   map[string]*CacheItem
	ttl     time.Duration
	store   Store
	metrics Metrics
	now     func() time.Time

	stop chan struct{}
	once sync.Once
}

// NewCache creates a new cache with the specified TTL. metrics may be nil.
func NewCache(store Store, ttl time.Duration, metrics Metrics) *Cache {
	c := &Cache{
		items:   make(map[string]*CacheItem),
		ttl:     ttl,
		store:   store,
		metrics: metrics,
		now:     time.Now,
		stop:    make(chan struct{}),
	}

	go c.cleanup(5 * time.Minute)

	return c
}

// cleanup removes expired items periodically
func (c *Cache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.evictExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache) evictExpired() {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, item := range c.items {
		if item.IsExpired(now) {
			delete(c.items, key)
		}
	}
}

// Close stops the cleanup goroutine
func (c *Cache) Close() {
	c.once.Do(func() { close(c.stop) })
}

// SaveAssessment writes through to the store and caches the result
func (c *Cache) SaveAssessment(ctx context.Context, a *types.Assessment) error {
	if err := c.store.SaveAssessment(ctx, a); err != nil {
		return err
	}
	c.set(*a)
	return nil
}

// GetAssessment serves from memory when fresh, otherwise loads from the store
func (c *Cache) GetAssessment(ctx context.Context, id string) (*types.Assessment, error) {
	c.mu.RLock()
	item, ok := c.items[id]
	c.mu.RUnlock()

	if ok && !item.IsExpired(c.now()) {
		c.hit()
		a := item.Value
		return &a, nil
	}

	c.miss()
	a, err := c.store.GetAssessment(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(*a)
	return a, nil
}

// DeleteAssessment deletes from the store and drops any cached copy
func (c *Cache) DeleteAssessment(ctx context.Context, id string) error {
	err := c.store.DeleteAssessment(ctx, id)

	c.mu.Lock()
	delete(c.items, id)
	c.mu.Unlock()

	return err
}

// DeleteOlderThan purges the store and evicts cached assessments created before cutoff
func (c *Cache) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := c.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for id, item := range c.items {
		if item.Value.CreatedAt.Before(cutoff) {
			delete(c.items, id)
		}
	}

	return n, nil
}

func (c *Cache) set(a types.Assessment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[a.ID] = &CacheItem{Value: a, ExpiresAt: c.now().Add(c.ttl)}
}

func (c *Cache) hit() {
	if c.metrics != nil {
		c.metrics.IncrementCacheHit()
	}
}

func (c *Cache) miss() {
	if c.metrics != nil {
		c.metrics.IncrementCacheMiss()
	}
}

// Size returns the number of items in the cache
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// Stats returns cache statistics
func (c *Cache) Stats() map[string]interface{} {
	now := c.now()
	c.mu.RLock()
	defer c.mu.RUnlock()

	totalItems := len(c.items)
	expiredItems := 0
	for _, item := range c.items {
		if item.IsExpired(now) {
			expiredItems++
		}
	}

	return map[string]interface{}{
		"total_items":   totalItems,
		"expired_items": expiredItems,
		"active_items":  totalItems - expiredItems,
		"ttl_seconds":   c.ttl.Seconds(),
	}
}
