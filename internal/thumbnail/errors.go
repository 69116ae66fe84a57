package thumbnail

import "errors"

var (
	// ErrNotFound indicates no record exists for the given key.
	ErrNotFound = errors.New("thumbnail not found")

	// ErrInvalidURL indicates the input could not be parsed as an absolute URL.
	ErrInvalidURL = errors.New("invalid url")

	// ErrAccessDenied indicates the caller owns no bookmark for the URL
	// and did not skip the ownership check.
	ErrAccessDenied = errors.New("access denied")

	// ErrRateLimited indicates the caller exceeded a sliding-window limit.
	ErrRateLimited = errors.New("rate limited")

	// ErrUpstreamUnavailable indicates the rendering service is missing
	// credentials, timed out, or answered non-2xx.
	ErrUpstreamUnavailable = errors.New("rendering service unavailable")

	// ErrUploadFailed indicates the blob store rejected a screenshot write.
	ErrUploadFailed = errors.New("blob upload failed")
)
