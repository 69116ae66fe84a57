package stats

import "time"

// Topics for thumbnail lifecycle events.
const (
	TopicThumbnailGenerated = "thumbnail.generated"
	TopicThumbnailAccessed  = "thumbnail.accessed"
)

// GeneratedEvent is emitted when the resolver produces a fresh thumbnail.
type GeneratedEvent struct {
	Key         string    `json:"key"`
	OriginalURL string    `json:"originalUrl"`
	Kind        string    `json:"kind"`
	Source      string    `json:"source"`
	UploadedBy  string    `json:"uploadedBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AccessedEvent is emitted when a dedup hit serves an existing record.
type AccessedEvent struct {
	Key        string    `json:"key"`
	AccessedAt time.Time `json:"accessedAt"`
	CallerID   string    `json:"callerId,omitempty"`
}
