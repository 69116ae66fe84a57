package resolver

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/savedlinks/thumbnailer/internal/extract"
	"github.com/savedlinks/thumbnailer/internal/render"
	"github.com/savedlinks/thumbnailer/internal/thumbnail"
	"go.uber.org/zap"
)

// stage is one tier of the fallback chain. A stage returns a nil result
// to pass to the next tier; an error marks an unexpected failure that
// triggers the direct retry path. Expected failures (service down,
// candidate not validating) are swallowed inside the stage.
type stage struct {
	name string
	run  func(ctx context.Context, q *query) (*thumbnail.Result, error)
}

func (r *Resolver) stages() []stage {
	return []stage{
		{"cache", r.cacheStage},
		{"dedup", r.dedupStage},
		{"render", r.renderStage},
		{"livestream", r.liveStreamStage},
		{"platform", r.platformStage},
		{"favicon", r.faviconStage},
	}
}

// runStages walks the ordered chain, short-circuiting on the first
// result. Exhausting every tier yields the empty result, not an error.
func (r *Resolver) runStages(ctx context.Context, q *query) (*thumbnail.Result, error) {
	for _, s := range r.stages() {
		result, err := s.run(ctx, q)
		if err != nil {
			return nil, err
		}

		if result != nil {
			r.logger.Debug("thumbnail resolved",
				zap.String("stage", s.name),
				zap.String("url", q.normalized),
				zap.String("kind", string(result.Kind)),
			)

			return result, nil
		}
	}

	return thumbnail.EmptyResult(), nil
}

// resolveDirect is the last-ditch path: render then favicon, bypassing
// cache and dedup entirely.
func (r *Resolver) resolveDirect(ctx context.Context, q *query) (*thumbnail.Result, error) {
	rendered, err := r.renderer.Render(ctx, q.normalized, q.opts)
	if err == nil {
		return r.renderedResult(ctx, q, rendered)
	}

	if candidate, ok := extract.FaviconURL(q.normalized); ok && r.probe.IsImage(ctx, candidate) {
		return &thumbnail.Result{
			ThumbnailURL: candidate,
			Kind:         thumbnail.KindFavicon,
			Source:       "favicon-service",
			BlobRef:      candidate,
		}, nil
	}

	return nil, err
}

func (r *Resolver) cacheStage(ctx context.Context, q *query) (*thumbnail.Result, error) {
	payload, ok := r.cache.Get(ctx, resultKeyPrefix+q.normalized)
	if !ok {
		return nil, nil
	}

	var result thumbnail.Result
	if err := json.Unmarshal(payload, &result); err != nil {
		r.cache.Remove(ctx, resultKeyPrefix+q.normalized)

		return nil, nil
	}

	return &result, nil
}

// dedupStage serves a previously rendered screenshot from the shared
// registry. Direct-link kinds deliberately do not satisfy this step:
// they carry no upload cost and are re-derived cheaply instead of being
// trusted as authoritative.
func (r *Resolver) dedupStage(ctx context.Context, q *query) (*thumbnail.Result, error) {
	record, err := r.repo.GetByHash(ctx, q.hash)
	if err != nil {
		if errors.Is(err, thumbnail.ErrNotFound) {
			return nil, nil
		}

		return nil, err
	}

	if record.Kind != thumbnail.KindScreenshot {
		return nil, nil
	}

	if r.tracker != nil {
		r.tracker.Touch(ctx, record.Key)
	}

	// Screenshots are re-served through the image route; the raw blob
	// reference is not dereferenceable by clients.
	result := &thumbnail.Result{
		ThumbnailURL: "/thumbnails/" + record.Key + "/image",
		Kind:         record.Kind,
		Source:       record.Source,
		BlobRef:      record.BlobRef,
		BlobPath:     record.BlobPath,
	}

	r.cacheResult(ctx, q, result)

	return result, nil
}

func (r *Resolver) renderStage(ctx context.Context, q *query) (*thumbnail.Result, error) {
	rendered, err := r.renderer.Render(ctx, q.normalized, q.opts)
	if err != nil {
		if errors.Is(err, thumbnail.ErrUpstreamUnavailable) {
			r.logger.Warn("rendering service unavailable",
				zap.String("url", q.normalized),
				zap.Error(err),
			)

			return nil, nil
		}

		return nil, err
	}

	return r.renderedResult(ctx, q, rendered)
}

// renderedResult persists a render outcome and shapes the caller result.
func (r *Resolver) renderedResult(ctx context.Context, q *query, rendered *render.Result) (*thumbnail.Result, error) {
	if rendered.IsVideoThumbnail {
		return r.directLinkResult(ctx, q, rendered.ThumbnailURL, thumbnail.KindVideo, renderSource(rendered), true), nil
	}

	result, err := r.persistScreenshot(ctx, q, rendered, string(q.hash))
	if err != nil {
		// Degrade to the unpersisted screenshot rather than losing the render.
		r.logger.Warn("screenshot not persisted",
			zap.String("url", q.normalized),
			zap.Error(err),
		)
	}

	r.cacheResult(ctx, q, result)

	return result, nil
}

func (r *Resolver) liveStreamStage(ctx context.Context, q *query) (*thumbnail.Result, error) {
	if !extract.IsLiveStreamHost(q.normalized) {
		return nil, nil
	}

	match, ok := extract.Extract(q.normalized)
	if !ok || !match.NeedsLookup {
		return nil, nil
	}

	candidate, ok := r.lookup.ProfileImageURL(ctx, match.ID)
	if !ok {
		return nil, nil
	}

	return r.directLinkResult(ctx, q, candidate, thumbnail.KindVideo, match.Platform, true), nil
}

func (r *Resolver) platformStage(ctx context.Context, q *query) (*thumbnail.Result, error) {
	match, ok := extract.Extract(q.normalized)
	if !ok || match.NeedsLookup {
		return nil, nil
	}

	if !r.probe.IsImage(ctx, match.ThumbnailURL) {
		return nil, nil
	}

	return r.directLinkResult(ctx, q, match.ThumbnailURL, thumbnail.KindVideo, match.Platform, true), nil
}

func (r *Resolver) faviconStage(ctx context.Context, q *query) (*thumbnail.Result, error) {
	candidate, ok := extract.FaviconURL(q.normalized)
	if !ok {
		return nil, nil
	}

	if !r.probe.IsImage(ctx, candidate) {
		return nil, nil
	}

	return r.directLinkResult(ctx, q, candidate, thumbnail.KindFavicon, "favicon-service", true), nil
}

func renderSource(rendered *render.Result) string {
	if rendered.Source != "" {
		return rendered.Source
	}

	return "screenshot-service"
}
