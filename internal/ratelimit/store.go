package ratelimit

import (
	"context"
	"time"
)

// Store defines the interface for rate limit data storage.
type Store interface {
	// Record prunes timestamps older than window, then appends one for
	// the current attempt unless limit timestamps already remain. It
	// returns true when the attempt was recorded (allowed). Denied
	// attempts are not recorded.
	Record(ctx context.Context, key string, window time.Duration, limit int64) (bool, error)

	// Reset clears all recorded history for the key.
	Reset(ctx context.Context, key string) error
}
