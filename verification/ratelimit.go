package verification

import (
	"context"
	"time"

	"github.com/logistero/go-userauth/cache"
)

const rateLimitKeyPrefix = "rate-limit:"

// RateLimiter caps how often an action may run per identifier inside a
// sliding-start window. The whole check is one atomic increment, so
// two concurrent callers can never both slip under the limit.
type RateLimiter struct {
	store  cache.Store
	prefix string
	max    int64
	window time.Duration
}

// NewRateLimiter builds a limiter for the given key prefix, for
// example "sms:send:". The window starts when the first request
// creates the counter and is not extended by later requests.
func NewRateLimiter(store cache.Store, prefix string, max int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		store:  store,
		prefix: prefix,
		max:    max,
		window: window,
	}
}

// Allow reports whether the identifier may perform the action now.
func (r *RateLimiter) Allow(ctx context.Context, identifier string) (bool, error) {
	count, err := r.store.IncrementWithTTL(ctx, r.key(identifier), r.window)
	if err != nil {
		return false, err
	}

	return count <= r.max, nil
}

// Reset clears the counter for the identifier.
func (r *RateLimiter) Reset(ctx context.Context, identifier string) error {
	return r.store.Delete(ctx, r.key(identifier))
}

func (r *RateLimiter) key(identifier string) string {
	return rateLimitKeyPrefix + r.prefix + identifier
}
