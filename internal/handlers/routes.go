package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers the thumbnail, blob, and bookmark routes.
func RegisterRoutes(api huma.API, thumbnails *ThumbnailHandler, blobs *BlobHandler, bookmarksHandler *BookmarkHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "resolve-thumbnail",
		Method:      http.MethodPost,
		Path:        "/thumbnails/resolve",
		Summary:     "Resolve a thumbnail",
		Description: "Resolves a thumbnail for a URL the caller owns a bookmark for, walking the cache, dedup registry, and fallback chain.",
		Tags:        []string{"Thumbnails"},
	}, thumbnails.Resolve)

	huma.Register(api, huma.Operation{
		OperationID: "regenerate-thumbnail",
		Method:      http.MethodPost,
		Path:        "/thumbnails/regenerate",
		Summary:     "Regenerate a thumbnail",
		Description: "Forces a fresh render, writing a new record under a uniquified key so existing shared records are never disturbed.",
		Tags:        []string{"Thumbnails"},
	}, thumbnails.Regenerate)

	huma.Register(api, huma.Operation{
		OperationID: "get-thumbnail-image",
		Method:      http.MethodGet,
		Path:        "/thumbnails/{key}/image",
		Summary:     "Fetch a stored screenshot",
		Description: "Serves the uploaded screenshot bytes behind a hosted thumbnail URL. Direct-link thumbnails are not re-hosted and 404 here.",
		Tags:        []string{"Thumbnails"},
	}, blobs.Image)

	huma.Register(api, huma.Operation{
		OperationID: "create-bookmark",
		Method:      http.MethodPost,
		Path:        "/bookmarks",
		Summary:     "Create bookmark",
		Description: "Creates a bookmark, resolving its thumbnail inline. Rate limited per user.",
		Tags:        []string{"Bookmarks"},
	}, bookmarksHandler.Create)

	huma.Register(api, huma.Operation{
		OperationID: "get-bookmark",
		Method:      http.MethodGet,
		Path:        "/bookmarks/{id}",
		Summary:     "Get bookmark",
		Tags:        []string{"Bookmarks"},
	}, bookmarksHandler.Get)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-bookmark",
		Method:        http.MethodDelete,
		Path:          "/bookmarks/{id}",
		Summary:       "Delete bookmark",
		Tags:          []string{"Bookmarks"},
		DefaultStatus: http.StatusNoContent,
	}, bookmarksHandler.Delete)
}
