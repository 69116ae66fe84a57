package ratelimit

import (
	"context"
	"time"
)

// Limiter is a sliding-window rate limiter keyed by an arbitrary string,
// e.g. "bookmark-create-{userID}". Limits are supplied per call so one
// limiter instance serves every keyed policy.
type Limiter struct {
	store Store
}

// NewLimiter creates a sliding window rate limiter over the given store.
func NewLimiter(store Store) *Limiter {
	return &Limiter{store: store}
}

// Allow reports whether another attempt is permitted for the key. Exactly
// maxAttempts calls succeed within the window; further calls are denied
// until enough of the window elapses. Denied calls leave no trace, so
// hammering a denied key never extends the lockout.
func (l *Limiter) Allow(ctx context.Context, key string, maxAttempts int64, window time.Duration) (bool, error) {
	return l.store.Record(ctx, key, window, maxAttempts)
}

// Reset clears the recorded history for a key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.store.Reset(ctx, key)
}
