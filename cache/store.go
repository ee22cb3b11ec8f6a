package cache

import (
	"context"
	"time"
)

// Store is a key-value store with per key expiry. Implementations must
// make Increment and IncrementWithTTL atomic; the verification flows
// rely on that for attempt counting and rate limiting under concurrent
// requests.
type Store interface {
	// Set stores value under key with the given TTL, replacing any
	// existing value and its remaining TTL. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Get loads the value stored under key into out. It reports false
	// when the key is absent or expired, without error.
	Get(ctx context.Context, key string, out any) (bool, error)

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether the key is present and unexpired.
	Exists(ctx context.Context, key string) (bool, error)

	// TTL returns the remaining lifetime of a key. ok is false when the
	// key is absent; a zero duration with ok true means no expiry.
	TTL(ctx context.Context, key string) (time.Duration, bool, error)

	// Increment atomically adds one to the integer counter at key,
	// creating it at 1, and returns the new value.
	Increment(ctx context.Context, key string) (int64, error)

	// IncrementWithTTL behaves like Increment and additionally applies
	// ttl when the increment created the key.
	IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
