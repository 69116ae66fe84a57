package resolver_test

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/savedlinks/thumbnailer/internal/cache"
	"github.com/savedlinks/thumbnailer/internal/render"
	"github.com/savedlinks/thumbnailer/internal/resolver"
	"github.com/savedlinks/thumbnailer/internal/stats"
	"github.com/savedlinks/thumbnailer/internal/store"
	"github.com/savedlinks/thumbnailer/internal/thumbnail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var sampleDataURL = "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte{0xFF, 0xD8, 0xFF})

type mockRenderer struct {
	result *render.Result
	err    error
	calls  int
}

func (m *mockRenderer) Render(context.Context, string, render.Options) (*render.Result, error) {
	m.calls++

	if m.err != nil {
		return nil, m.err
	}

	return m.result, nil
}

type mockGuard struct {
	err  error
	skip []bool
}

func (m *mockGuard) Authorize(_ context.Context, _, _ string, skip bool) error {
	m.skip = append(m.skip, skip)

	if skip {
		return nil
	}

	return m.err
}

type mockLookup struct {
	url string
	ok  bool
}

func (m *mockLookup) ProfileImageURL(context.Context, string) (string, bool) {
	return m.url, m.ok
}

// probeStub validates candidates against a predicate instead of the network.
type probeStub struct {
	allow func(url string) bool
}

func (p *probeStub) IsImage(_ context.Context, url string) bool {
	if p.allow == nil {
		return false
	}

	return p.allow(url)
}

type trackerStub struct {
	keys []string
}

func (t *trackerStub) Touch(_ context.Context, key string) {
	t.keys = append(t.keys, key)
}

type refsStub struct {
	count int64
	err   error
}

func (r *refsStub) CountByURL(context.Context, string) (int64, error) {
	return r.count, r.err
}

type fixture struct {
	resolver  *resolver.Resolver
	repo      *store.MemoryStore
	blobs     *store.MemoryBlobStore
	cache     *cache.Tiered
	renderer  *mockRenderer
	guard     *mockGuard
	lookup    *mockLookup
	probe     *probeStub
	tracker   *trackerStub
	refs      *refsStub
	generated []*stats.GeneratedEvent
}

func newFixture(t *testing.T, mutate ...func(*fixture)) *fixture {
	t.Helper()

	f := &fixture{
		repo:     store.NewMemoryStore(),
		blobs:    store.NewMemoryBlobStore(),
		cache:    cache.NewTiered(cache.NewMemoryTier(100), nil, zap.NewNop()),
		renderer: &mockRenderer{err: thumbnail.ErrUpstreamUnavailable},
		guard:    &mockGuard{},
		lookup:   &mockLookup{},
		probe:    &probeStub{},
		tracker:  &trackerStub{},
		refs:     &refsStub{},
	}

	for _, m := range mutate {
		m(f)
	}

	f.resolver = resolver.New(resolver.Config{
		Guard:    f.guard,
		Cache:    f.cache,
		Repo:     f.repo,
		Blobs:    f.blobs,
		Renderer: f.renderer,
		Lookup:   f.lookup,
		Probe:    f.probe,
		Tracker:  f.tracker,
		Refs:     f.refs,
		PublishGenerated: func(event *stats.GeneratedEvent) error {
			f.generated = append(f.generated, event)

			return nil
		},
		NewSuffix: func() string { return "a1b2c3d4" },
		Logger:    zap.NewNop(),
	})

	return f
}

func allowAll(string) bool { return true }

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("platform link when rendering is unavailable", func(t *testing.T) {
		f := newFixture(t, func(f *fixture) {
			f.probe.allow = allowAll
		})

		result, err := f.resolver.Resolve(ctx, resolver.Request{
			URL:      "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			CallerID: "user-1",
		})

		require.NoError(t, err)
		assert.Equal(t, "https://img.youtube.com/vi/dQw4w9WgXcQ/maxresdefault.jpg", result.ThumbnailURL)
		assert.Equal(t, thumbnail.KindVideo, result.Kind)
		assert.Equal(t, "youtube", result.Source)
		assert.Empty(t, result.BlobPath, "direct links upload nothing")
		assert.Equal(t, 0, f.blobs.Len())

		// A metadata-only record is kept for bookkeeping.
		normalized, _ := thumbnail.NormalizeURL("https://www.youtube.com/watch?v=dQw4w9WgXcQ")
		record, err := f.repo.GetByHash(ctx, thumbnail.HashURL(normalized))
		require.NoError(t, err)
		assert.Equal(t, thumbnail.KindVideo, record.Kind)
		assert.Equal(t, result.ThumbnailURL, record.BlobRef)
		assert.Empty(t, record.BlobPath)
	})

	t.Run("fresh screenshot is rendered and persisted", func(t *testing.T) {
		f := newFixture(t, func(f *fixture) {
			f.renderer = &mockRenderer{result: &render.Result{ThumbnailURL: sampleDataURL}}
		})

		result, err := f.resolver.Resolve(ctx, resolver.Request{
			URL:      "https://example.com/article",
			CallerID: "user-1",
		})

		require.NoError(t, err)
		assert.Equal(t, thumbnail.KindScreenshot, result.Kind)
		assert.Equal(t, sampleDataURL, result.ThumbnailURL)
		assert.Equal(t, 1, f.blobs.Len())

		normalized, _ := thumbnail.NormalizeURL("https://example.com/article")
		hash := thumbnail.HashURL(normalized)

		record, err := f.repo.GetByHash(ctx, hash)
		require.NoError(t, err)
		assert.Equal(t, string(hash), record.Key)
		assert.Equal(t, "thumbnails/"+string(hash)+".jpg", record.BlobPath)
		assert.Equal(t, result.BlobRef, record.BlobRef)
		assert.Equal(t, "user-1", record.UploadedBy)

		require.Len(t, f.generated, 1)
		assert.Equal(t, record.Key, f.generated[0].Key)
	})

	t.Run("second resolution reuses the uploaded screenshot", func(t *testing.T) {
		f := newFixture(t, func(f *fixture) {
			f.renderer = &mockRenderer{result: &render.Result{ThumbnailURL: sampleDataURL}}
		})

		first, err := f.resolver.Resolve(ctx, resolver.Request{URL: "https://example.com", CallerID: "user-1"})
		require.NoError(t, err)

		// Drop the local cache so the dedup registry is actually consulted.
		f.cache.Clear(ctx)

		second, err := f.resolver.Resolve(ctx, resolver.Request{URL: "https://example.com", CallerID: "user-2"})
		require.NoError(t, err)

		assert.Equal(t, first.BlobRef, second.BlobRef, "both callers must share one blob")
		assert.Equal(t, 1, f.renderer.calls, "second resolution must not render again")
		assert.Equal(t, 1, f.blobs.Len(), "exactly one upload for the shared url")
		assert.Len(t, f.tracker.keys, 1, "dedup hit should touch access stats")

		hash := thumbnail.HashURL("https://example.com")
		assert.Equal(t, "/thumbnails/"+string(hash)+"/image", second.ThumbnailURL,
			"registry hit must hand out the image route, not the raw blob ref")
	})

	t.Run("cache hit skips every downstream tier", func(t *testing.T) {
		f := newFixture(t, func(f *fixture) {
			f.probe.allow = allowAll
		})

		req := resolver.Request{URL: "https://vimeo.com/123456789", CallerID: "user-1"}

		first, err := f.resolver.Resolve(ctx, req)
		require.NoError(t, err)

		f.probe.allow = nil // downstream tiers would fail now

		second, err := f.resolver.Resolve(ctx, req)
		require.NoError(t, err)

		assert.Equal(t, first.ThumbnailURL, second.ThumbnailURL)
	})

	t.Run("live stream resolves through profile lookup", func(t *testing.T) {
		f := newFixture(t, func(f *fixture) {
			f.lookup = &mockLookup{url: "https://unavatar.io/twitch/somechannel", ok: true}
		})

		result, err := f.resolver.Resolve(ctx, resolver.Request{
			URL:      "https://www.twitch.tv/somechannel",
			CallerID: "user-1",
		})

		require.NoError(t, err)
		assert.Equal(t, "https://unavatar.io/twitch/somechannel", result.ThumbnailURL)
		assert.Equal(t, thumbnail.KindVideo, result.Kind)
		assert.Equal(t, "twitch", result.Source)
	})

	t.Run("favicon is the last resort", func(t *testing.T) {
		f := newFixture(t, func(f *fixture) {
			f.probe.allow = func(url string) bool {
				return url == "https://www.google.com/s2/favicons?domain=example.com&sz=128"
			}
		})

		result, err := f.resolver.Resolve(ctx, resolver.Request{
			URL:      "https://example.com/article",
			CallerID: "user-1",
		})

		require.NoError(t, err)
		assert.Equal(t, thumbnail.KindFavicon, result.Kind)
		assert.Equal(t, "favicon-service", result.Source)
	})

	t.Run("total failure yields the empty result, not an error", func(t *testing.T) {
		f := newFixture(t)

		result, err := f.resolver.Resolve(ctx, resolver.Request{
			URL:      "https://example.com",
			CallerID: "user-1",
		})

		require.NoError(t, err)
		assert.True(t, result.Empty())
		assert.Equal(t, "none", result.Source)
	})

	t.Run("access denied surfaces as a hard error", func(t *testing.T) {
		f := newFixture(t, func(f *fixture) {
			f.guard = &mockGuard{err: thumbnail.ErrAccessDenied}
		})

		_, err := f.resolver.Resolve(ctx, resolver.Request{
			URL:      "https://example.com",
			CallerID: "user-2",
		})

		assert.ErrorIs(t, err, thumbnail.ErrAccessDenied)
	})

	t.Run("skip authorization bypasses the guard", func(t *testing.T) {
		f := newFixture(t, func(f *fixture) {
			f.guard = &mockGuard{err: thumbnail.ErrAccessDenied}
		})

		_, err := f.resolver.Resolve(ctx, resolver.Request{
			URL:               "https://example.com",
			CallerID:          "user-1",
			SkipAuthorization: true,
		})

		assert.NoError(t, err)
	})

	t.Run("invalid url rejected", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.resolver.Resolve(ctx, resolver.Request{URL: "not a url", CallerID: "user-1"})

		assert.ErrorIs(t, err, thumbnail.ErrInvalidURL)
	})

	t.Run("unexpected failure falls back to the direct favicon path", func(t *testing.T) {
		f := newFixture(t, func(f *fixture) {
			// Not ErrUpstreamUnavailable: an unexpected failure mid-chain.
			f.renderer = &mockRenderer{err: errors.New("render panic")}
			f.probe.allow = func(url string) bool {
				return url == "https://www.google.com/s2/favicons?domain=example.com&sz=128"
			}
		})

		result, err := f.resolver.Resolve(ctx, resolver.Request{
			URL:      "https://example.com",
			CallerID: "user-1",
		})

		require.NoError(t, err)
		assert.Equal(t, thumbnail.KindFavicon, result.Kind)
	})

	t.Run("unexpected failure with no fallback re-raises the original error", func(t *testing.T) {
		cause := errors.New("render panic")
		f := newFixture(t, func(f *fixture) {
			f.renderer = &mockRenderer{err: cause}
		})

		_, err := f.resolver.Resolve(ctx, resolver.Request{
			URL:      "https://example.com",
			CallerID: "user-1",
		})

		assert.ErrorIs(t, err, cause)
	})
}

func TestRegenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh render under a uniquified key", func(t *testing.T) {
		f := newFixture(t, func(f *fixture) {
			f.renderer = &mockRenderer{result: &render.Result{ThumbnailURL: sampleDataURL}}
		})

		// Seed the canonical record other bookmarks may depend on.
		first, err := f.resolver.Resolve(ctx, resolver.Request{URL: "https://example.com", CallerID: "user-1"})
		require.NoError(t, err)

		regenerated, err := f.resolver.Regenerate(ctx, resolver.Request{URL: "https://example.com", CallerID: "user-1"})
		require.NoError(t, err)

		normalized, _ := thumbnail.NormalizeURL("https://example.com")
		hash := thumbnail.HashURL(normalized)

		assert.Equal(t, "blob://thumbnails/"+string(hash)+"_a1b2c3d4.jpg", regenerated.BlobRef)
		assert.NotEqual(t, first.BlobRef, regenerated.BlobRef)

		canonical, err := f.repo.GetByHash(ctx, hash)
		require.NoError(t, err)
		assert.Equal(t, first.BlobRef, canonical.BlobRef, "canonical record must be untouched")

		assert.Equal(t, 2, f.blobs.Len())
		assert.Equal(t, 2, f.renderer.calls, "regeneration always renders fresh")
	})

	t.Run("render failure re-derives the direct link without recording it", func(t *testing.T) {
		f := newFixture(t, func(f *fixture) {
			f.probe.allow = allowAll
		})

		result, err := f.resolver.Regenerate(ctx, resolver.Request{
			URL:      "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			CallerID: "user-1",
		})

		require.NoError(t, err)
		assert.Equal(t, "https://img.youtube.com/vi/dQw4w9WgXcQ/maxresdefault.jpg", result.ThumbnailURL)

		normalized, _ := thumbnail.NormalizeURL("https://www.youtube.com/watch?v=dQw4w9WgXcQ")
		_, err = f.repo.GetByHash(ctx, thumbnail.HashURL(normalized))
		assert.ErrorIs(t, err, thumbnail.ErrNotFound, "re-derived links are not recorded")
	})

	t.Run("authorization still applies", func(t *testing.T) {
		f := newFixture(t, func(f *fixture) {
			f.guard = &mockGuard{err: thumbnail.ErrAccessDenied}
		})

		_, err := f.resolver.Regenerate(ctx, resolver.Request{URL: "https://example.com", CallerID: "user-2"})

		assert.ErrorIs(t, err, thumbnail.ErrAccessDenied)
	})
}

func TestCleanup(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, f *fixture) thumbnail.URLHash {
		t.Helper()

		_, err := f.resolver.Resolve(ctx, resolver.Request{URL: "https://example.com", CallerID: "user-1"})
		require.NoError(t, err)

		normalized, _ := thumbnail.NormalizeURL("https://example.com")

		return thumbnail.HashURL(normalized)
	}

	t.Run("removes record and blob when unreferenced", func(t *testing.T) {
		f := newFixture(t, func(f *fixture) {
			f.renderer = &mockRenderer{result: &render.Result{ThumbnailURL: sampleDataURL}}
		})
		hash := seed(t, f)

		require.NoError(t, f.resolver.Cleanup(ctx, "https://example.com"))

		_, err := f.repo.GetByHash(ctx, hash)
		assert.ErrorIs(t, err, thumbnail.ErrNotFound)
		assert.Equal(t, 0, f.blobs.Len())
	})

	t.Run("kept while any bookmark still references the url", func(t *testing.T) {
		f := newFixture(t, func(f *fixture) {
			f.renderer = &mockRenderer{result: &render.Result{ThumbnailURL: sampleDataURL}}
			f.refs.count = 2
		})
		hash := seed(t, f)

		require.NoError(t, f.resolver.Cleanup(ctx, "https://example.com"))

		_, err := f.repo.GetByHash(ctx, hash)
		assert.NoError(t, err)
		assert.Equal(t, 1, f.blobs.Len())
	})

	t.Run("missing record is not an error", func(t *testing.T) {
		f := newFixture(t)

		assert.NoError(t, f.resolver.Cleanup(ctx, "https://example.com"))
	})
}
