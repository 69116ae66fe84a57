package stats

import "context"

// Store defines the interface for persisting thumbnail lifecycle events.
type Store interface {
	SaveGenerated(ctx context.Context, event *GeneratedEvent) error
	SaveAccessed(ctx context.Context, event *AccessedEvent) error
}
