// Package bookmarks is the boundary collaborator around the thumbnail
// core: bookmark storage, creation rate limiting, and the ownership
// cache invalidation hook.
package bookmarks

import (
	"context"
	"time"
)

// Bookmark is a saved link. Owned exclusively by its creator; the
// thumbnail reference is set by the resolver, never authored directly.
type Bookmark struct {
	ID           string
	OwnerID      string
	URL          string
	Title        string
	Description  string
	Tags         []string
	ThumbnailRef string
	FaviconRef   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Store defines the interface for bookmark storage operations.
type Store interface {
	Save(ctx context.Context, bookmark *Bookmark) error
	GetByID(ctx context.Context, id string) (*Bookmark, error)
	Update(ctx context.Context, bookmark *Bookmark) error
	Delete(ctx context.Context, id string) error

	// ListURLsByOwner materializes the owner's bookmark URLs for the
	// access control guard.
	ListURLsByOwner(ctx context.Context, ownerID string) ([]string, error)

	// CountByURL reports how many bookmarks across all users reference
	// the URL; used by the thumbnail cleanup pass.
	CountByURL(ctx context.Context, url string) (int64, error)
}
