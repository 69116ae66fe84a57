package store

import (
	"context"

	"github.com/savedlinks/thumbnailer/internal/stats"
	"go.uber.org/zap"
)

// Noop is a no-op implementation of stats.Store that logs events.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a new no-op stats store.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SaveGenerated(_ context.Context, event *stats.GeneratedEvent) error {
	n.logger.Info("thumbnail generated event received",
		zap.String("key", event.Key),
		zap.String("originalUrl", event.OriginalURL),
		zap.String("kind", event.Kind),
		zap.String("source", event.Source),
		zap.Time("createdAt", event.CreatedAt),
	)

	return nil
}

func (n *Noop) SaveAccessed(_ context.Context, event *stats.AccessedEvent) error {
	n.logger.Info("thumbnail accessed event received",
		zap.String("key", event.Key),
		zap.Time("accessedAt", event.AccessedAt),
	)

	return nil
}
