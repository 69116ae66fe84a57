package cache

import (
	"context"
	"time"
)

// Entry is a cached payload with its write and expiry timestamps.
type Entry struct {
	Payload   []byte    `json:"payload"`
	WrittenAt time.Time `json:"writtenAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the entry is past its expiry at the given time.
func (e *Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Tier is one cache layer. Get returns (nil, nil) on a miss; expired
// entries count as misses and are removed on touch.
type Tier interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry *Entry) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
