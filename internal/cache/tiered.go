package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Tiered is the two-tier local cache: a bounded memory tier backed by an
// optional persistent tier. Reads check memory first; a persistent hit
// backfills memory. Writes go to both tiers. Persistent-tier failures
// are logged and swallowed, degrading to memory-only caching; they never
// reach the caller.
type Tiered struct {
	memory     Tier
	persistent Tier // may be nil
	logger     *zap.Logger
}

// NewTiered creates a tiered cache. persistent may be nil for a
// memory-only cache.
func NewTiered(memory, persistent Tier, logger *zap.Logger) *Tiered {
	return &Tiered{
		memory:     memory,
		persistent: persistent,
		logger:     logger,
	}
}

// Set stores value in both tiers with the given TTL.
func (c *Tiered) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	now := time.Now()
	entry := &Entry{
		Payload:   value,
		WrittenAt: now,
		ExpiresAt: now.Add(ttl),
	}

	if err := c.memory.Set(ctx, key, entry); err != nil {
		c.logger.Warn("memory cache write failed", zap.String("key", key), zap.Error(err))
	}

	if c.persistent == nil {
		return
	}

	if err := c.persistent.Set(ctx, key, entry); err != nil {
		c.logger.Warn("persistent cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Get retrieves a live entry, checking memory then the persistent tier.
func (c *Tiered) Get(ctx context.Context, key string) ([]byte, bool) {
	if entry, err := c.memory.Get(ctx, key); err == nil && entry != nil {
		return entry.Payload, true
	}

	if c.persistent == nil {
		return nil, false
	}

	entry, err := c.persistent.Get(ctx, key)
	if err != nil {
		c.logger.Warn("persistent cache read failed", zap.String("key", key), zap.Error(err))

		return nil, false
	}

	if entry == nil {
		return nil, false
	}

	// Backfill the memory tier with the remaining lifetime.
	_ = c.memory.Set(ctx, key, entry)

	return entry.Payload, true
}

// Remove deletes the key from both tiers.
func (c *Tiered) Remove(ctx context.Context, key string) {
	_ = c.memory.Remove(ctx, key)

	if c.persistent != nil {
		if err := c.persistent.Remove(ctx, key); err != nil {
			c.logger.Warn("persistent cache remove failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// Clear empties both tiers.
func (c *Tiered) Clear(ctx context.Context) {
	_ = c.memory.Clear(ctx)

	if c.persistent != nil {
		if err := c.persistent.Clear(ctx); err != nil {
			c.logger.Warn("persistent cache clear failed", zap.Error(err))
		}
	}
}
