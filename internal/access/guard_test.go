package access_test

import (
	"context"
	"errors"
	"testing"

	"github.com/savedlinks/thumbnailer/internal/access"
	"github.com/savedlinks/thumbnailer/internal/cache"
	"github.com/savedlinks/thumbnailer/internal/thumbnail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubLister struct {
	urls  map[string][]string
	err   error
	calls int
}

func (s *stubLister) ListURLsByOwner(_ context.Context, ownerID string) ([]string, error) {
	s.calls++

	if s.err != nil {
		return nil, s.err
	}

	return s.urls[ownerID], nil
}

func newDirectory(lister *stubLister) *access.Directory {
	tiered := cache.NewTiered(cache.NewMemoryTier(10), nil, zap.NewNop())

	return access.NewDirectory(lister, tiered, zap.NewNop())
}

func TestGuardAuthorize(t *testing.T) {
	ctx := context.Background()

	t.Run("owner passes", func(t *testing.T) {
		lister := &stubLister{urls: map[string][]string{
			"user-1": {"https://example.com/article"},
		}}
		guard := access.NewGuard(newDirectory(lister), zap.NewNop())

		assert.NoError(t, guard.Authorize(ctx, "https://example.com/article", "user-1", false))
	})

	t.Run("equivalent url spellings pass", func(t *testing.T) {
		lister := &stubLister{urls: map[string][]string{
			"user-1": {"HTTPS://EXAMPLE.COM:443/article/"},
		}}
		guard := access.NewGuard(newDirectory(lister), zap.NewNop())

		assert.NoError(t, guard.Authorize(ctx, "https://example.com/article", "user-1", false))
	})

	t.Run("non-owner denied", func(t *testing.T) {
		lister := &stubLister{urls: map[string][]string{
			"user-1": {"https://example.com/article"},
		}}
		guard := access.NewGuard(newDirectory(lister), zap.NewNop())

		err := guard.Authorize(ctx, "https://example.com/article", "user-2", false)

		assert.ErrorIs(t, err, thumbnail.ErrAccessDenied)
	})

	t.Run("lookup failure denies", func(t *testing.T) {
		lister := &stubLister{err: errors.New("db down")}
		guard := access.NewGuard(newDirectory(lister), zap.NewNop())

		err := guard.Authorize(ctx, "https://example.com", "user-1", false)

		assert.ErrorIs(t, err, thumbnail.ErrAccessDenied)
	})

	t.Run("skip bypasses the check", func(t *testing.T) {
		lister := &stubLister{err: errors.New("db down")}
		guard := access.NewGuard(newDirectory(lister), zap.NewNop())

		assert.NoError(t, guard.Authorize(ctx, "https://example.com", "user-1", true))
	})

	t.Run("invalid url rejected", func(t *testing.T) {
		guard := access.NewGuard(newDirectory(&stubLister{}), zap.NewNop())

		err := guard.Authorize(ctx, "not a url", "user-1", false)

		assert.ErrorIs(t, err, thumbnail.ErrInvalidURL)
	})
}

func TestDirectoryCaching(t *testing.T) {
	ctx := context.Background()

	t.Run("second read is served from cache", func(t *testing.T) {
		lister := &stubLister{urls: map[string][]string{
			"user-1": {"https://example.com/a", "https://example.com/b"},
		}}
		directory := newDirectory(lister)

		first, err := directory.URLs(ctx, "user-1")
		require.NoError(t, err)

		second, err := directory.URLs(ctx, "user-1")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, lister.calls)
	})

	t.Run("invalidate forces a reload", func(t *testing.T) {
		lister := &stubLister{urls: map[string][]string{
			"user-1": {"https://example.com/a"},
		}}
		directory := newDirectory(lister)

		_, err := directory.URLs(ctx, "user-1")
		require.NoError(t, err)

		directory.Invalidate(ctx, "user-1")

		lister.urls["user-1"] = append(lister.urls["user-1"], "https://example.com/new")

		urls, err := directory.URLs(ctx, "user-1")
		require.NoError(t, err)

		assert.Contains(t, urls, "https://example.com/new")
		assert.Equal(t, 2, lister.calls)
	})

	t.Run("unparsable urls are skipped not fatal", func(t *testing.T) {
		lister := &stubLister{urls: map[string][]string{
			"user-1": {"not a url", "https://example.com/ok"},
		}}
		directory := newDirectory(lister)

		urls, err := directory.URLs(ctx, "user-1")

		require.NoError(t, err)
		assert.Contains(t, urls, "https://example.com/ok")
		assert.Len(t, urls, 1)
	})
}
