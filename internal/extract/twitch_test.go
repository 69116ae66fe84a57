package extract_test

import (
	"context"
	"strings"
	"testing"

	"github.com/savedlinks/thumbnailer/internal/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubValidator accepts any candidate URL containing accept.
type stubValidator struct {
	accept string
	seen   []string
}

func (s *stubValidator) IsImage(_ context.Context, candidateURL string) bool {
	s.seen = append(s.seen, candidateURL)

	return s.accept != "" && strings.Contains(candidateURL, s.accept)
}

func TestTwitchResolver(t *testing.T) {
	ctx := context.Background()
	endpoints := []string{
		"https://lookup-a.test/%s",
		"https://lookup-b.test/%s",
	}

	t.Run("first endpoint wins", func(t *testing.T) {
		probe := &stubValidator{accept: "lookup-a.test"}
		resolver := extract.NewTwitchResolverWithEndpoints(probe, endpoints, zap.NewNop())

		got, ok := resolver.ProfileImageURL(ctx, "somechannel")

		require.True(t, ok)
		assert.Equal(t, "https://lookup-a.test/somechannel", got)
		assert.Len(t, probe.seen, 1, "later endpoints must not be probed")
	})

	t.Run("falls through to second endpoint", func(t *testing.T) {
		probe := &stubValidator{accept: "lookup-b.test"}
		resolver := extract.NewTwitchResolverWithEndpoints(probe, endpoints, zap.NewNop())

		got, ok := resolver.ProfileImageURL(ctx, "somechannel")

		require.True(t, ok)
		assert.Equal(t, "https://lookup-b.test/somechannel", got)
	})

	t.Run("falls back to conventional cdn url", func(t *testing.T) {
		probe := &stubValidator{accept: "static-cdn.jtvnw.net"}
		resolver := extract.NewTwitchResolverWithEndpoints(probe, endpoints, zap.NewNop())

		got, ok := resolver.ProfileImageURL(ctx, "somechannel")

		require.True(t, ok)
		assert.Contains(t, got, "static-cdn.jtvnw.net")
		assert.Contains(t, got, "somechannel")
	})

	t.Run("nothing validates", func(t *testing.T) {
		probe := &stubValidator{}
		resolver := extract.NewTwitchResolverWithEndpoints(probe, endpoints, zap.NewNop())

		_, ok := resolver.ProfileImageURL(ctx, "somechannel")

		assert.False(t, ok)
		assert.Len(t, probe.seen, 3, "every candidate should have been tried")
	})
}
