// Package resolver orchestrates the thumbnail fallback chain: local
// cache, shared dedup registry, rendering service, platform direct
// links, and the generic favicon service, in that order.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/savedlinks/thumbnailer/internal/cache"
	"github.com/savedlinks/thumbnailer/internal/messaging"
	"github.com/savedlinks/thumbnailer/internal/render"
	"github.com/savedlinks/thumbnailer/internal/stats"
	"github.com/savedlinks/thumbnailer/internal/thumbnail"
	"go.uber.org/zap"
)

// DefaultCacheTTL bounds how long a resolved result is served from the
// local cache before the dedup registry is consulted again.
const DefaultCacheTTL = time.Hour

// resultKeyPrefix namespaces direct thumbnail shortcuts in the local cache.
const resultKeyPrefix = "thumbnail_"

// Renderer is the rendering service client.
type Renderer interface {
	Render(ctx context.Context, url string, opts render.Options) (*render.Result, error)
}

// Authorizer gates resolution on bookmark ownership.
type Authorizer interface {
	Authorize(ctx context.Context, rawURL, callerID string, skip bool) error
}

// AccessTracker records throttled access statistics for dedup hits.
type AccessTracker interface {
	Touch(ctx context.Context, key string)
}

// ProfileLookup resolves a live-stream channel's profile image.
type ProfileLookup interface {
	ProfileImageURL(ctx context.Context, channel string) (string, bool)
}

// ImageValidator accepts a candidate URL only after an HTTP check.
type ImageValidator interface {
	IsImage(ctx context.Context, candidateURL string) bool
}

// ReferenceCounter reports how many bookmarks anywhere still reference a
// URL; used by Cleanup only.
type ReferenceCounter interface {
	CountByURL(ctx context.Context, url string) (int64, error)
}

// Request asks for a thumbnail on behalf of a caller. SkipAuthorization
// is only valid inside the bookmark-creation transaction.
type Request struct {
	URL               string
	CallerID          string
	SkipAuthorization bool
	RenderOptions     *render.Options
}

// Resolver runs the fallback chain. All dependencies are injected so
// tests can substitute fakes; nothing here is process-global.
type Resolver struct {
	guard            Authorizer
	cache            *cache.Tiered
	repo             thumbnail.MetadataRepository
	blobs            thumbnail.BlobStore
	renderer         Renderer
	lookup           ProfileLookup
	probe            ImageValidator
	tracker          AccessTracker
	refs             ReferenceCounter
	publishGenerated messaging.Publish[stats.GeneratedEvent]
	newSuffix        func() string
	http             *http.Client
	cacheTTL         time.Duration
	logger           *zap.Logger
}

// Config collects the resolver's dependencies.
type Config struct {
	Guard            Authorizer
	Cache            *cache.Tiered
	Repo             thumbnail.MetadataRepository
	Blobs            thumbnail.BlobStore
	Renderer         Renderer
	Lookup           ProfileLookup
	Probe            ImageValidator
	Tracker          AccessTracker
	Refs             ReferenceCounter
	PublishGenerated messaging.Publish[stats.GeneratedEvent]
	NewSuffix        func() string
	HTTPClient       *http.Client
	CacheTTL         time.Duration
	Logger           *zap.Logger
}

// New creates a resolver. PublishGenerated, Tracker, and Refs may be nil;
// a nil HTTPClient uses http.DefaultClient.
func New(cfg Config) *Resolver {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}

	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}

	return &Resolver{
		guard:            cfg.Guard,
		cache:            cfg.Cache,
		repo:             cfg.Repo,
		blobs:            cfg.Blobs,
		renderer:         cfg.Renderer,
		lookup:           cfg.Lookup,
		probe:            cfg.Probe,
		tracker:          cfg.Tracker,
		refs:             cfg.Refs,
		publishGenerated: cfg.PublishGenerated,
		newSuffix:        cfg.NewSuffix,
		http:             cfg.HTTPClient,
		cacheTTL:         cfg.CacheTTL,
		logger:           cfg.Logger,
	}
}

// query carries the normalized form of a request through the stages.
type query struct {
	normalized string
	hash       thumbnail.URLHash
	callerID   string
	opts       render.Options
	noPersist  bool // regeneration re-derives direct links without recording them
}

func (r *Resolver) newQuery(req Request) (*query, error) {
	normalized, err := thumbnail.NormalizeURL(req.URL)
	if err != nil {
		return nil, err
	}

	opts := render.DefaultOptions()
	if req.RenderOptions != nil {
		opts = *req.RenderOptions
	}

	return &query{
		normalized: normalized,
		hash:       thumbnail.HashURL(normalized),
		callerID:   req.CallerID,
		opts:       opts,
	}, nil
}

// Resolve walks the fallback chain and returns the first success. Total
// failure is the empty result, never an error; only access denial (and,
// upstream of this call, rate limiting) surfaces as a hard error.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*thumbnail.Result, error) {
	if err := r.guard.Authorize(ctx, req.URL, req.CallerID, req.SkipAuthorization); err != nil {
		return nil, err
	}

	q, err := r.newQuery(req)
	if err != nil {
		return nil, err
	}

	result, err := r.runStages(ctx, q)
	if err == nil {
		return result, nil
	}

	r.logger.Warn("fallback chain failed, retrying direct path",
		zap.String("url", q.normalized),
		zap.Error(err),
	)

	// One best-effort direct retry bypassing dedup; re-raise the original
	// error only if this also fails.
	direct, derr := r.resolveDirect(ctx, q)
	if derr != nil {
		return nil, err
	}

	return direct, nil
}

// Regenerate bypasses cache and dedup and always performs a fresh
// render. Screenshot results are persisted under a uniquified key so the
// canonical record other bookmarks may depend on is never disturbed.
func (r *Resolver) Regenerate(ctx context.Context, req Request) (*thumbnail.Result, error) {
	if err := r.guard.Authorize(ctx, req.URL, req.CallerID, req.SkipAuthorization); err != nil {
		return nil, err
	}

	q, err := r.newQuery(req)
	if err != nil {
		return nil, err
	}

	rendered, err := r.renderer.Render(ctx, q.normalized, q.opts)
	if err == nil {
		if rendered.IsVideoThumbnail {
			return r.directLinkResult(ctx, q, rendered.ThumbnailURL, thumbnail.KindVideo, renderSource(rendered), false), nil
		}

		key := string(q.hash) + "_" + r.newSuffix()

		result, perr := r.persistScreenshot(ctx, q, rendered, key)
		if perr != nil {
			r.logger.Warn("regenerated screenshot not persisted",
				zap.String("key", key),
				zap.Error(perr),
			)
		}

		r.cacheResult(ctx, q, result)

		return result, nil
	}

	r.logger.Warn("regeneration render failed, re-deriving direct link",
		zap.String("url", q.normalized),
		zap.Error(err),
	)

	// Direct-link results are simply re-derived and not persisted.
	q.noPersist = true

	for _, s := range []stage{
		{"livestream", r.liveStreamStage},
		{"platform", r.platformStage},
		{"favicon", r.faviconStage},
	} {
		result, serr := s.run(ctx, q)
		if serr != nil {
			r.logger.Warn("regeneration stage failed", zap.String("stage", s.name), zap.Error(serr))

			continue
		}

		if result != nil {
			return result, nil
		}
	}

	return thumbnail.EmptyResult(), nil
}

// Cleanup deletes the canonical record and its blob, but only when no
// bookmark anywhere still references the URL.
func (r *Resolver) Cleanup(ctx context.Context, rawURL string) error {
	normalized, err := thumbnail.NormalizeURL(rawURL)
	if err != nil {
		return err
	}

	if r.refs != nil {
		count, err := r.refs.CountByURL(ctx, normalized)
		if err != nil {
			return fmt.Errorf("reference check: %w", err)
		}

		if count > 0 {
			r.logger.Debug("cleanup skipped, url still referenced",
				zap.String("url", normalized),
				zap.Int64("references", count),
			)

			return nil
		}
	}

	hash := thumbnail.HashURL(normalized)

	record, err := r.repo.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, thumbnail.ErrNotFound) {
			return nil
		}

		return err
	}

	if record.BlobPath != "" {
		if err := r.blobs.Delete(ctx, record.BlobPath); err != nil {
			return err
		}
	}

	if err := r.repo.Delete(ctx, record.Key); err != nil {
		return err
	}

	r.cache.Remove(ctx, resultKeyPrefix+normalized)

	return nil
}
