package cache

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates the requested key is not in the store
	ErrNotFound = errors.New("cache key not found")

	// ErrQuotaExceeded indicates the store refused a write because it is full
	ErrQuotaExceeded = errors.New("cache quota exceeded")
)

// Store is the session-scoped key/value storage behind the page cache.
// Implemented by MemoryStore (single process) and RedisStore (shared).
type Store interface {
	// Get returns the stored value or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A full store returns ErrQuotaExceeded
	// and is left unchanged.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry owned by the store.
	Clear(ctx context.Context) error
}
