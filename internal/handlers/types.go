package handlers

import "time"

// ResolveThumbnailRequest asks for a thumbnail for a bookmarked URL.
type ResolveThumbnailRequest struct {
	Body struct {
		URL string `doc:"The bookmarked URL to resolve a thumbnail for" example:"https://example.com/article" json:"url"`
	}
}

// ThumbnailResponse is the resolved thumbnail for a URL.
type ThumbnailResponse struct {
	Body struct {
		ThumbnailURL string `doc:"Direct link, or a /thumbnails/{key}/image path for hosted screenshots" json:"thumbnailUrl,omitempty"`
		Kind         string `doc:"One of video, screenshot, favicon"                                     json:"kind"`
		Source       string `doc:"Which tier produced the thumbnail"                                     json:"source"`
		BlobRef      string `doc:"Opaque storage reference for uploaded screenshots"                     json:"blobRef,omitempty"`
	}
}

// ThumbnailImageRequest addresses a stored screenshot by registry key.
type ThumbnailImageRequest struct {
	Key string `doc:"The thumbnail registry key" path:"key"`
}

// ThumbnailImageResponse is the raw screenshot image.
type ThumbnailImageResponse struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// CreateBookmarkRequest is the request body for creating a bookmark.
type CreateBookmarkRequest struct {
	Body struct {
		URL         string   `doc:"The URL to bookmark" example:"https://example.com/article" json:"url"`
		Title       string   `doc:"Bookmark title"      json:"title,omitempty"`
		Description string   `doc:"Bookmark description" json:"description,omitempty"`
		Tags        []string `doc:"Tag set"             json:"tags,omitempty"`
	}
}

// BookmarkResponse is a stored bookmark.
type BookmarkResponse struct {
	Body struct {
		ID           string    `json:"id"`
		URL          string    `json:"url"`
		Title        string    `json:"title,omitempty"`
		Description  string    `json:"description,omitempty"`
		Tags         []string  `json:"tags,omitempty"`
		ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
		FaviconURL   string    `json:"faviconUrl,omitempty"`
		CreatedAt    time.Time `json:"createdAt"`
		UpdatedAt    time.Time `json:"updatedAt"`
	}
}

// BookmarkByIDRequest addresses a bookmark by its id.
type BookmarkByIDRequest struct {
	ID string `doc:"The bookmark id" path:"id"`
}
