// Package access enforces that a caller may only resolve thumbnails for
// URLs it owns a bookmark for.
package access

import (
	"context"
	"encoding/json"
	"time"

	"github.com/savedlinks/thumbnailer/internal/cache"
	"github.com/savedlinks/thumbnailer/internal/thumbnail"
	"go.uber.org/zap"
)

const (
	directoryKeyPrefix = "bookmark_urls_"
	directoryTTL       = 5 * time.Minute
)

// Lister materializes the set of bookmark URLs a caller owns. Implemented
// by the bookmark store outside this package.
type Lister interface {
	ListURLsByOwner(ctx context.Context, ownerID string) ([]string, error)
}

// Directory caches per-caller bookmark URL sets in the tiered cache. The
// bookmark-mutation hook must call Invalidate so the ownership view
// stays fresh.
type Directory struct {
	lister Lister
	cache  *cache.Tiered
	logger *zap.Logger
}

// NewDirectory creates a cached bookmark-URL directory.
func NewDirectory(lister Lister, tiered *cache.Tiered, logger *zap.Logger) *Directory {
	return &Directory{
		lister: lister,
		cache:  tiered,
		logger: logger,
	}
}

// URLs returns the caller's owned URL set, normalized. A cold cache
// loads through the lister rather than assuming anything about access.
func (d *Directory) URLs(ctx context.Context, callerID string) (map[string]struct{}, error) {
	key := directoryKeyPrefix + callerID

	if payload, ok := d.cache.Get(ctx, key); ok {
		var urls []string
		if err := json.Unmarshal(payload, &urls); err == nil {
			return toSet(urls), nil
		}

		d.cache.Remove(ctx, key)
	}

	urls, err := d.lister.ListURLsByOwner(ctx, callerID)
	if err != nil {
		return nil, err
	}

	normalized := make([]string, 0, len(urls))

	for _, raw := range urls {
		u, err := thumbnail.NormalizeURL(raw)
		if err != nil {
			d.logger.Warn("skipping unparsable bookmark url",
				zap.String("callerId", callerID),
				zap.String("url", raw),
			)

			continue
		}

		normalized = append(normalized, u)
	}

	if payload, err := json.Marshal(normalized); err == nil {
		d.cache.Set(ctx, key, payload, directoryTTL)
	}

	return toSet(normalized), nil
}

// Invalidate drops the cached URL set for a caller. Called on every
// bookmark create, update, and delete.
func (d *Directory) Invalidate(ctx context.Context, callerID string) {
	d.cache.Remove(ctx, directoryKeyPrefix+callerID)
}

func toSet(urls []string) map[string]struct{} {
	set := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		set[u] = struct{}{}
	}

	return set
}
