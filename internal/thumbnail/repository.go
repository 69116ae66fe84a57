package thumbnail

import (
	"context"
	"time"
)

// MetadataRepository is the shared dedup registry. It has no per-record
// access control of its own; ownership is enforced upstream by the guard.
type MetadataRepository interface {
	// Save creates a record. Implementations treat an existing key as a
	// benign conflict: the first writer wins and Save does not overwrite.
	Save(ctx context.Context, record *Record) error

	// GetByKey retrieves a record by its storage key (hash or uniquified
	// regeneration key). Returns ErrNotFound when absent.
	GetByKey(ctx context.Context, key string) (*Record, error)

	// GetByHash retrieves the canonical record for a URL hash, i.e. the
	// one whose key equals the hash. Returns ErrNotFound when absent.
	GetByHash(ctx context.Context, hash URLHash) (*Record, error)

	// Touch increments the access count and refreshes the last-accessed
	// timestamp. Throttling is the caller's concern.
	Touch(ctx context.Context, key string, at time.Time) error

	// Delete removes a record. Reference checks happen upstream.
	Delete(ctx context.Context, key string) error
}

// BlobMetadata is descriptive metadata stored alongside an uploaded
// screenshot.
type BlobMetadata struct {
	OriginalURL string
	Kind        Kind
	Source      string
	UploadedBy  string
	URLHash     URLHash
	CreatedAt   time.Time
}

// BlobStore holds rendered screenshot images. Direct links and favicons
// are never re-hosted, only referenced, so they never reach this store.
type BlobStore interface {
	// Put writes the blob at the given path and returns a stable
	// reference for it.
	Put(ctx context.Context, path string, data []byte, meta BlobMetadata) (string, error)

	// Get reads the blob at the given path. Returns ErrNotFound when
	// absent.
	Get(ctx context.Context, path string) ([]byte, error)

	// Delete removes the blob at the given path.
	Delete(ctx context.Context, path string) error
}
