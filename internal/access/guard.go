package access

import (
	"context"
	"fmt"

	"github.com/savedlinks/thumbnailer/internal/thumbnail"
	"go.uber.org/zap"
)

// OwnershipSource provides the caller's owned bookmark URL set.
type OwnershipSource interface {
	URLs(ctx context.Context, callerID string) (map[string]struct{}, error)
}

// Guard is the ownership gate in front of the resolver. The shared
// metadata and blob stores have no per-record access control of their
// own, so this check is the only one.
type Guard struct {
	source OwnershipSource
	logger *zap.Logger
}

// NewGuard creates an access control guard.
func NewGuard(source OwnershipSource, logger *zap.Logger) *Guard {
	return &Guard{source: source, logger: logger}
}

// Authorize returns nil when the caller may resolve a thumbnail for the
// URL. skip is only valid during the bookmark-creation transaction,
// where no bookmark exists yet. Otherwise the caller must own at least
// one bookmark whose URL equals the given URL.
func (g *Guard) Authorize(ctx context.Context, rawURL, callerID string, skip bool) error {
	if skip {
		return nil
	}

	normalized, err := thumbnail.NormalizeURL(rawURL)
	if err != nil {
		return err
	}

	owned, err := g.source.URLs(ctx, callerID)
	if err != nil {
		// Fail closed: an unreadable ownership view is a denial, not a pass.
		g.logger.Warn("ownership lookup failed",
			zap.String("callerId", callerID),
			zap.Error(err),
		)

		return fmt.Errorf("%w: ownership lookup failed", thumbnail.ErrAccessDenied)
	}

	if _, ok := owned[normalized]; !ok {
		return fmt.Errorf("%w: no bookmark for url", thumbnail.ErrAccessDenied)
	}

	return nil
}
