package bookmarks

import (
	"context"
	"fmt"
	"time"

	"github.com/savedlinks/thumbnailer/internal/extract"
	"github.com/savedlinks/thumbnailer/internal/ratelimit"
	"github.com/savedlinks/thumbnailer/internal/resolver"
	"github.com/savedlinks/thumbnailer/internal/thumbnail"
	"go.uber.org/zap"
)

const (
	// CreateLimit and CreateWindow cap bookmark creation per user.
	CreateLimit  = 10
	CreateWindow = time.Minute
)

// ThumbnailResolver produces a thumbnail for a bookmark's URL.
type ThumbnailResolver interface {
	Resolve(ctx context.Context, req resolver.Request) (*thumbnail.Result, error)
}

// OwnershipInvalidator drops a caller's cached bookmark-URL set.
type OwnershipInvalidator interface {
	Invalidate(ctx context.Context, callerID string)
}

// CreateInput is the user-authored part of a bookmark.
type CreateInput struct {
	URL         string
	Title       string
	Description string
	Tags        []string
}

// Service owns bookmark mutations. Every mutation invalidates the
// owner's cached ownership view so the access guard stays fresh. A
// thumbnail failure never blocks a bookmark from being created or
// edited.
type Service struct {
	store     Store
	resolver  ThumbnailResolver
	limiter   *ratelimit.Limiter
	ownership OwnershipInvalidator
	newID     func() string
	logger    *zap.Logger
}

// NewService creates a bookmark service.
func NewService(
	store Store,
	thumbnails ThumbnailResolver,
	limiter *ratelimit.Limiter,
	ownership OwnershipInvalidator,
	newID func() string,
	logger *zap.Logger,
) *Service {
	return &Service{
		store:     store,
		resolver:  thumbnails,
		limiter:   limiter,
		ownership: ownership,
		newID:     newID,
		logger:    logger,
	}
}

// Create stores a new bookmark. Creation is rate limited per owner; the
// thumbnail is resolved with the ownership check skipped since no
// bookmark exists yet inside this transaction.
func (s *Service) Create(ctx context.Context, ownerID string, input CreateInput) (*Bookmark, error) {
	limitKey := fmt.Sprintf("bookmark-create-%s", ownerID)

	allowed, err := s.limiter.Allow(ctx, limitKey, CreateLimit, CreateWindow)
	if err != nil {
		return nil, err
	}

	if !allowed {
		return nil, fmt.Errorf("%w: bookmark creation", thumbnail.ErrRateLimited)
	}

	normalized, err := thumbnail.NormalizeURL(input.URL)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	bookmark := &Bookmark{
		ID:          s.newID(),
		OwnerID:     ownerID,
		URL:         normalized,
		Title:       input.Title,
		Description: input.Description,
		Tags:        input.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if favicon, ok := extract.FaviconURL(normalized); ok {
		bookmark.FaviconRef = favicon
	}

	result, err := s.resolver.Resolve(ctx, resolver.Request{
		URL:               normalized,
		CallerID:          ownerID,
		SkipAuthorization: true,
	})
	if err != nil {
		s.logger.Warn("thumbnail resolution failed during bookmark creation",
			zap.String("url", normalized),
			zap.Error(err),
		)
	} else if !result.Empty() {
		bookmark.ThumbnailRef = result.ThumbnailURL
	}

	if err := s.store.Save(ctx, bookmark); err != nil {
		return nil, err
	}

	s.ownership.Invalidate(ctx, ownerID)

	return bookmark, nil
}

// Get returns a bookmark the caller owns.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*Bookmark, error) {
	bookmark, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if bookmark.OwnerID != ownerID {
		return nil, thumbnail.ErrAccessDenied
	}

	return bookmark, nil
}

// Update applies user edits to an owned bookmark.
func (s *Service) Update(ctx context.Context, ownerID string, bookmark *Bookmark) error {
	if bookmark.OwnerID != ownerID {
		return thumbnail.ErrAccessDenied
	}

	bookmark.UpdatedAt = time.Now()

	if err := s.store.Update(ctx, bookmark); err != nil {
		return err
	}

	s.ownership.Invalidate(ctx, ownerID)

	return nil
}

// Delete removes an owned bookmark.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	bookmark, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if bookmark.OwnerID != ownerID {
		return thumbnail.ErrAccessDenied
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.ownership.Invalidate(ctx, ownerID)

	return nil
}
