// Package cachemanager provides a small generic cache abstraction and a
// read-through helper on top of it. The tracking layer uses it for
// experiment-by-name lookups.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager stores values by key with a per-entry ttl.
type CacheManager[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
}
