package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/savedlinks/thumbnailer/internal/thumbnail"
	"go.uber.org/zap"
)

// BlobHandler serves uploaded screenshot bytes. Dedup hits hand out
// /thumbnails/{key}/image URLs that terminate here; direct-link kinds
// are never re-hosted and have no image route.
type BlobHandler struct {
	repo   thumbnail.MetadataRepository
	blobs  thumbnail.BlobStore
	logger *zap.Logger
}

// NewBlobHandler creates a blob handler.
func NewBlobHandler(repo thumbnail.MetadataRepository, blobs thumbnail.BlobStore, logger *zap.Logger) *BlobHandler {
	return &BlobHandler{repo: repo, blobs: blobs, logger: logger}
}

// Image streams the stored screenshot for a registry key.
func (h *BlobHandler) Image(ctx context.Context, req *ThumbnailImageRequest) (*ThumbnailImageResponse, error) {
	record, err := h.repo.GetByKey(ctx, req.Key)
	if err != nil {
		if errors.Is(err, thumbnail.ErrNotFound) {
			return nil, huma.Error404NotFound("unknown thumbnail")
		}

		h.logger.Error("thumbnail lookup failed", zap.String("key", req.Key), zap.Error(err))

		return nil, huma.Error500InternalServerError("thumbnail lookup failed")
	}

	// Direct links carry no blob.
	if record.BlobPath == "" {
		return nil, huma.Error404NotFound("thumbnail has no stored image")
	}

	data, err := h.blobs.Get(ctx, record.BlobPath)
	if err != nil {
		if errors.Is(err, thumbnail.ErrNotFound) {
			return nil, huma.Error404NotFound("stored image is gone")
		}

		h.logger.Error("blob read failed", zap.String("path", record.BlobPath), zap.Error(err))

		return nil, huma.Error500InternalServerError("blob read failed")
	}

	return &ThumbnailImageResponse{ContentType: "image/jpeg", Body: data}, nil
}
