// Package stats keeps per-record access statistics with deliberate
// write-throttling so popular shared records don't amplify writes.
package stats

import (
	"context"
	"time"

	"github.com/savedlinks/thumbnailer/internal/cache"
	"github.com/savedlinks/thumbnailer/internal/messaging"
	"go.uber.org/zap"
)

const (
	cooldownKeyPrefix = "stats_cooldown_"

	// DefaultCooldown is the minimum interval between stats writes for
	// the same record.
	DefaultCooldown = 24 * time.Hour
)

// RecordToucher updates a record's access count and last-accessed time.
type RecordToucher interface {
	Touch(ctx context.Context, key string, at time.Time) error
}

// Tracker throttles access-stat updates behind a cooldown gate stored in
// the tiered cache. The gate is best-effort: it may under- or over-count
// slightly across process restarts, which is accepted.
type Tracker struct {
	repo            RecordToucher
	cache           *cache.Tiered
	cooldown        time.Duration
	publishAccessed messaging.Publish[AccessedEvent]
	logger          *zap.Logger
}

// NewTracker creates an access stats tracker. cooldown <= 0 falls back
// to DefaultCooldown; publishAccessed may be nil.
func NewTracker(
	repo RecordToucher,
	tiered *cache.Tiered,
	cooldown time.Duration,
	publishAccessed messaging.Publish[AccessedEvent],
	logger *zap.Logger,
) *Tracker {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}

	return &Tracker{
		repo:            repo,
		cache:           tiered,
		cooldown:        cooldown,
		publishAccessed: publishAccessed,
		logger:          logger,
	}
}

// Touch bumps the record's access stats unless a touch happened within
// the cooldown window. Every failure is swallowed; stats must never
// block thumbnail delivery.
func (t *Tracker) Touch(ctx context.Context, key string) {
	gateKey := cooldownKeyPrefix + key

	if _, hot := t.cache.Get(ctx, gateKey); hot {
		return
	}

	now := time.Now()

	if err := t.repo.Touch(ctx, key, now); err != nil {
		t.logger.Warn("access stats update failed",
			zap.String("key", key),
			zap.Error(err),
		)

		return
	}

	t.cache.Set(ctx, gateKey, []byte("1"), t.cooldown)

	if t.publishAccessed == nil {
		return
	}

	event := &AccessedEvent{Key: key, AccessedAt: now}
	if err := t.publishAccessed(event); err != nil {
		t.logger.Warn("failed to publish access event",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
