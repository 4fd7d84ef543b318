// Package cache provides a Redis read-through cache for catalog reads.
// Checkout never goes through the cache: correctness reads happen inside the
// storage transaction. Cache failures degrade to the database, never to an
// error surfaced to the caller.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/pixelpalace/storefront-api/internal/domain/catalog"
)

var _ catalog.ProductRepository = (*ProductCache)(nil)

// ProductCache decorates a catalog.ProductRepository with Redis caching of
// get-by-id and list-by-category reads. Search is passed through (its key
// space is unbounded). Mutations invalidate the product key; category lists
// rely on the TTL, which is why it should stay short.
type ProductCache struct {
	next catalog.ProductRepository
	rdb  redis.Cmdable
	ttl  time.Duration
	lg   *zap.Logger
}

// NewProductCache wraps next with a Redis cache using the given TTL.
func NewProductCache(next catalog.ProductRepository, rdb redis.Cmdable, ttl time.Duration, lg *zap.Logger) *ProductCache {
	return &ProductCache{next: next, rdb: rdb, ttl: ttl, lg: lg}
}

func productKey(id int) string      { return fmt.Sprintf("product:%d", id) }
func categoryListKey(id int) string { return fmt.Sprintf("products:category:%d", id) }

// GetByID returns the cached product when present, falling back to the
// database and populating the cache on a miss.
func (c *ProductCache) GetByID(ctx context.Context, id int) (*catalog.Product, error) {
	key := productKey(id)

	var p catalog.Product
	if c.lookup(ctx, key, &p) {
		return &p, nil
	}

	fresh, err := c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, fresh)
	return fresh, nil
}

// ListByCategory returns the cached product list for a category, falling
// back to the database on a miss.
func (c *ProductCache) ListByCategory(ctx context.Context, categoryID int) ([]catalog.Product, error) {
	key := categoryListKey(categoryID)

	var products []catalog.Product
	if c.lookup(ctx, key, &products) {
		return products, nil
	}

	fresh, err := c.next.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, fresh)
	return fresh, nil
}

// Search is a pass-through; arbitrary filter combinations are not cached.
func (c *ProductCache) Search(ctx context.Context, f catalog.SearchFilter) ([]catalog.Product, error) {
	return c.next.Search(ctx, f)
}

// Create writes through and drops the affected category list.
func (c *ProductCache) Create(ctx context.Context, p catalog.Product) (int, error) {
	id, err := c.next.Create(ctx, p)
	if err != nil {
		return 0, err
	}
	c.invalidate(ctx, categoryListKey(p.CategoryID))
	return id, nil
}

// Update writes through and drops the product key. Category lists age out
// via the TTL.
func (c *ProductCache) Update(ctx context.Context, id int, upd catalog.ProductUpdate) error {
	if err := c.next.Update(ctx, id, upd); err != nil {
		return err
	}
	c.invalidate(ctx, productKey(id))
	return nil
}

// Delete writes through and drops the product key.
func (c *ProductCache) Delete(ctx context.Context, id int) error {
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, productKey(id))
	return nil
}

// lookup reads and unmarshals key into dst, reporting whether it hit.
func (c *ProductCache) lookup(ctx context.Context, key string, dst any) bool {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.lg.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.lg.Warn("cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// store marshals v under key with the configured TTL. Best-effort.
func (c *ProductCache) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.lg.Warn("cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.lg.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// invalidate drops a key. Best-effort.
func (c *ProductCache) invalidate(ctx context.Context, key string) {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		c.lg.Warn("cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}
