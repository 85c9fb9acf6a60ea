package service

import (
	"context"
	"errors"
	"time"

	"github.com/soberstay/marketplace/pkg/cache"
	"github.com/soberstay/marketplace/pkg/logger"
	"github.com/soberstay/marketplace/pkg/search"
	"github.com/soberstay/marketplace/services/marketplace/internal/repository"
)

// Cache is the JSON cache in front of the public catalog. *cache.Store
// implements it.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) error
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const (
	keyApprovedListings = "listings:approved"
	keyFeatured         = "featured:all"
)

// catalog serves the approved listing set and the featured set through the
// cache. Any write to either table must call invalidate.
type catalog struct {
	listings repository.ListingRepository
	featured repository.FeaturedRepository
	cache    Cache
	ttl      time.Duration
}

func (c *catalog) approved(ctx context.Context) ([]search.Listing, error) {
	return cached(ctx, c, keyApprovedListings, func(ctx context.Context) ([]search.Listing, error) {
		return c.listings.ListByStatus(ctx, search.StatusApproved)
	})
}

func (c *catalog) featuredRecords(ctx context.Context) ([]search.FeaturedRecord, error) {
	return cached(ctx, c, keyFeatured, c.featured.List)
}

func (c *catalog) invalidate(ctx context.Context) {
	if err := c.cache.Delete(ctx, keyApprovedListings, keyFeatured); err != nil {
		logger.WarnContext(ctx, "Failed to invalidate catalog cache", "error", err)
	}
}

// cached reads key from the cache, falling back to load on a miss or a
// cache failure. Load results are written back best effort.
func cached[T any](ctx context.Context, c *catalog, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	var out []T
	err := c.cache.GetJSON(ctx, key, &out)
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		logger.WarnContext(ctx, "Catalog cache read failed", "key", key, "error", err)
	}

	out, err = load(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.cache.SetJSON(ctx, key, out, c.ttl); err != nil {
		logger.WarnContext(ctx, "Catalog cache write failed", "key", key, "error", err)
	}
	return out, nil
}
