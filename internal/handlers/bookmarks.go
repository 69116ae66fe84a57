package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/savedlinks/thumbnailer/internal/bookmarks"
	"github.com/savedlinks/thumbnailer/internal/middleware"
	"github.com/savedlinks/thumbnailer/internal/thumbnail"
	"go.uber.org/zap"
)

// BookmarkHandler handles bookmark CRUD operations.
type BookmarkHandler struct {
	service *bookmarks.Service
	logger  *zap.Logger
}

// NewBookmarkHandler creates a bookmark handler.
func NewBookmarkHandler(service *bookmarks.Service, logger *zap.Logger) *BookmarkHandler {
	return &BookmarkHandler{service: service, logger: logger}
}

// Create stores a new bookmark for the caller.
func (h *BookmarkHandler) Create(ctx context.Context, req *CreateBookmarkRequest) (*BookmarkResponse, error) {
	callerID, ok := middleware.CallerFromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("missing caller identity")
	}

	bookmark, err := h.service.Create(ctx, callerID, bookmarks.CreateInput{
		URL:         req.Body.URL,
		Title:       req.Body.Title,
		Description: req.Body.Description,
		Tags:        req.Body.Tags,
	})
	if err != nil {
		switch {
		case errors.Is(err, thumbnail.ErrRateLimited):
			return nil, huma.Error429TooManyRequests("bookmark creation rate limit exceeded")
		case errors.Is(err, thumbnail.ErrInvalidURL):
			return nil, huma.Error400BadRequest("invalid url")
		default:
			h.logger.Error("bookmark creation failed", zap.Error(err))

			return nil, huma.Error500InternalServerError("failed to create bookmark")
		}
	}

	return bookmarkResponse(bookmark), nil
}

// Get returns one of the caller's bookmarks.
func (h *BookmarkHandler) Get(ctx context.Context, req *BookmarkByIDRequest) (*BookmarkResponse, error) {
	callerID, ok := middleware.CallerFromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("missing caller identity")
	}

	bookmark, err := h.service.Get(ctx, callerID, req.ID)
	if err != nil {
		switch {
		case errors.Is(err, thumbnail.ErrNotFound):
			return nil, huma.Error404NotFound("bookmark not found")
		case errors.Is(err, thumbnail.ErrAccessDenied):
			return nil, huma.Error403Forbidden("not your bookmark")
		default:
			return nil, huma.Error500InternalServerError("failed to get bookmark")
		}
	}

	return bookmarkResponse(bookmark), nil
}

// Delete removes one of the caller's bookmarks.
func (h *BookmarkHandler) Delete(ctx context.Context, req *BookmarkByIDRequest) (*struct{}, error) {
	callerID, ok := middleware.CallerFromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("missing caller identity")
	}

	if err := h.service.Delete(ctx, callerID, req.ID); err != nil {
		switch {
		case errors.Is(err, thumbnail.ErrNotFound):
			return nil, huma.Error404NotFound("bookmark not found")
		case errors.Is(err, thumbnail.ErrAccessDenied):
			return nil, huma.Error403Forbidden("not your bookmark")
		default:
			return nil, huma.Error500InternalServerError("failed to delete bookmark")
		}
	}

	return nil, nil
}

func bookmarkResponse(bookmark *bookmarks.Bookmark) *BookmarkResponse {
	resp := &BookmarkResponse{}
	resp.Body.ID = bookmark.ID
	resp.Body.URL = bookmark.URL
	resp.Body.Title = bookmark.Title
	resp.Body.Description = bookmark.Description
	resp.Body.Tags = bookmark.Tags
	resp.Body.ThumbnailURL = bookmark.ThumbnailRef
	resp.Body.FaviconURL = bookmark.FaviconRef
	resp.Body.CreatedAt = bookmark.CreatedAt
	resp.Body.UpdatedAt = bookmark.UpdatedAt

	return resp
}
