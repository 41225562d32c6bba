// Package cache stores rendered books keyed by a content hash of their
// inputs, so re-rendering an unchanged program is free. Backends share one
// interface: a file cache for normal CLI use, a redis cache for shared
// setups, and a null cache for --no-cache runs.
package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// Cache is a byte-oriented key-value store with optional expiry. A miss is
// reported through the bool, not an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// DefaultDir returns the cache directory for rendered books, honoring the
// user cache dir convention.
func DefaultDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "narrate")
}
