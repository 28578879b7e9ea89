// Package cache abstracts the shared key/value backend used for provider
// response caching and rate-limit counters. The backend is selected once at
// process start: a networked Redis store when configured, otherwise the
// degraded variants (always-miss Null for caching, in-process Memory for
// counters). Selection is never re-probed per call.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Store is the shared backend boundary: get, set-with-expiry, and atomic
// increment-with-expiry. All entries carry a real expiry so multiple
// processes observe consistent TTLs without coordination.
type Store interface {
	// Get returns the payload stored under key, or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores val under key with the given TTL. Writes are all-or-nothing
	// per key.
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	// Incr atomically increments the counter under key, starting a fresh
	// window of the given length on first touch. Returns the post-increment
	// count and the remaining time until the window resets.
	Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}
