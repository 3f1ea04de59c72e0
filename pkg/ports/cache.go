package ports

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by Cache.Get when the key is not present.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores encoded render results under opaque string keys.
//
// Values are byte slices so the engine owns the encoding and adapters stay
// dumb. Implementations may evict or expire entries at any time; a render
// must never depend on a Set being durable.
type Cache interface {
	// Get retrieves the value for key. Returns ErrCacheMiss if absent,
	// expired or evicted.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}
