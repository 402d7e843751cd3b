package cachemanager

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// ReadThroughCache loads a value with fn on a miss and stores it. Concurrent
// misses on the same key share one call to fn.
type ReadThroughCache[K comparable, V any, I any] struct {
	cache     CacheManager[K, V]
	fn        func(ctx context.Context, input I) (V, error)
	cacheable func(V) bool
	bypass    bool
	loads     singleflight.Group
}

// NewReadThroughCache creates a read-through cache over cache.
func NewReadThroughCache[K comparable, V any, I any](
	cache CacheManager[K, V],
	fn func(ctx context.Context, input I) (V, error),
) *ReadThroughCache[K, V, I] {
	return &ReadThroughCache[K, V, I]{
		cache: cache,
		fn:    fn,
	}
}

// WithCacheable sets a predicate deciding whether a loaded value is stored.
// Lookups that found nothing (a nil pointer, say) should not be cached.
func (r *ReadThroughCache[K, V, I]) WithCacheable(pred func(V) bool) *ReadThroughCache[K, V, I] {
	r.cacheable = pred
	return r
}

// WithBypass sends every call straight to fn when skip is true.
func (r *ReadThroughCache[K, V, I]) WithBypass(skip bool) *ReadThroughCache[K, V, I] {
	r.bypass = skip
	return r
}

// Get returns the cached value for key or loads it.
func (r *ReadThroughCache[K, V, I]) Get(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	if r.bypass {
		return r.fn(ctx, input)
	}
	if value, ok := r.cache.Get(ctx, key); ok {
		return value, nil
	}
	return r.load(ctx, key, input, ttl)
}

// GetWithRefresh is Get, extending the ttl of a cached value.
func (r *ReadThroughCache[K, V, I]) GetWithRefresh(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	if r.bypass {
		return r.fn(ctx, input)
	}
	if value, ok := r.cache.GetWithRefresh(ctx, key, ttl); ok {
		return value, nil
	}
	return r.load(ctx, key, input, ttl)
}

// Invalidate drops key from the underlying cache.
func (r *ReadThroughCache[K, V, I]) Invalidate(ctx context.Context, key K) error {
	return r.cache.Delete(ctx, key)
}

func (r *ReadThroughCache[K, V, I]) load(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	v, err, _ := r.loads.Do(fmt.Sprint(key), func() (any, error) {
		value, err := r.fn(ctx, input)
		if err != nil {
			return value, err
		}
		if r.cacheable == nil || r.cacheable(value) {
			r.cache.Set(ctx, key, value, ttl)
		}
		return value, nil
	})
	value, _ := v.(V)
	return value, err
}
