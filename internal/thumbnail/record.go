package thumbnail

import "time"

// Kind classifies how a thumbnail was produced. Only screenshot-kind
// results carry an uploaded blob; video and favicon kinds reference
// externally hosted images directly.
type Kind string

const (
	KindVideo      Kind = "video"
	KindScreenshot Kind = "screenshot"
	KindFavicon    Kind = "favicon"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindVideo, KindScreenshot, KindFavicon:
		return true
	}

	return false
}

// URLHash is the hex digest of a normalized URL.
type URLHash string

// Record is an entry in the shared dedup registry. Records are keyed by
// the URL hash, except regenerated records which carry a uniquified key
// derived from the base hash so the canonical record is never overwritten.
// Kind and BlobRef are immutable after creation; only the access stats
// fields are updated in place.
type Record struct {
	Key            string // url hash, or "{hash}_{suffix}" for regenerated records
	OriginalURL    string
	URLHash        URLHash
	BlobRef        string // uploaded blob reference, or the direct URL for video/favicon kinds
	BlobPath       string // empty for direct links
	Kind           Kind
	Source         string
	UploadedBy     string
	AccessCount    int64
	LastAccessedAt time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Result is what the resolver hands back to callers.
type Result struct {
	ThumbnailURL string
	Kind         Kind
	Source       string
	BlobRef      string
	BlobPath     string
}

// Empty reports whether no thumbnail could be produced.
func (r *Result) Empty() bool {
	return r.ThumbnailURL == "" && r.BlobRef == ""
}

// EmptyResult is the terminal fallback: no thumbnail available. It is a
// soft outcome, not an error.
func EmptyResult() *Result {
	return &Result{Kind: KindFavicon, Source: "none"}
}
