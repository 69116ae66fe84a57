package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/savedlinks/thumbnailer/internal/middleware"
	"github.com/savedlinks/thumbnailer/internal/resolver"
	"github.com/savedlinks/thumbnailer/internal/thumbnail"
	"go.uber.org/zap"
)

// ThumbnailService is the resolver surface the handler needs.
type ThumbnailService interface {
	Resolve(ctx context.Context, req resolver.Request) (*thumbnail.Result, error)
	Regenerate(ctx context.Context, req resolver.Request) (*thumbnail.Result, error)
}

// ThumbnailHandler handles thumbnail resolution operations.
type ThumbnailHandler struct {
	service ThumbnailService
	logger  *zap.Logger
}

// NewThumbnailHandler creates a thumbnail handler.
func NewThumbnailHandler(service ThumbnailService, logger *zap.Logger) *ThumbnailHandler {
	return &ThumbnailHandler{service: service, logger: logger}
}

// Resolve resolves a thumbnail for a URL the caller owns a bookmark for.
func (h *ThumbnailHandler) Resolve(ctx context.Context, req *ResolveThumbnailRequest) (*ThumbnailResponse, error) {
	return h.run(ctx, req.Body.URL, h.service.Resolve)
}

// Regenerate forces a fresh render for a URL the caller owns a bookmark
// for, leaving any existing shared record untouched.
func (h *ThumbnailHandler) Regenerate(ctx context.Context, req *ResolveThumbnailRequest) (*ThumbnailResponse, error) {
	return h.run(ctx, req.Body.URL, h.service.Regenerate)
}

func (h *ThumbnailHandler) run(
	ctx context.Context,
	url string,
	op func(ctx context.Context, req resolver.Request) (*thumbnail.Result, error),
) (*ThumbnailResponse, error) {
	callerID, ok := middleware.CallerFromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("missing caller identity")
	}

	result, err := op(ctx, resolver.Request{URL: url, CallerID: callerID})
	if err != nil {
		switch {
		case errors.Is(err, thumbnail.ErrAccessDenied):
			return nil, huma.Error403Forbidden("no bookmark for url")
		case errors.Is(err, thumbnail.ErrInvalidURL):
			return nil, huma.Error400BadRequest("invalid url")
		default:
			h.logger.Error("thumbnail resolution failed",
				zap.String("url", url),
				zap.Error(err),
			)

			return nil, huma.Error500InternalServerError("thumbnail resolution failed")
		}
	}

	resp := &ThumbnailResponse{}
	resp.Body.ThumbnailURL = result.ThumbnailURL
	resp.Body.Kind = string(result.Kind)
	resp.Body.Source = result.Source
	resp.Body.BlobRef = result.BlobRef

	return resp, nil
}
