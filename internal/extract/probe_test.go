package extract_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/savedlinks/thumbnailer/internal/extract"
	"github.com/stretchr/testify/assert"
)

func TestProbeIsImage(t *testing.T) {
	ctx := context.Background()

	newServer := func(status int, contentType string) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodHead, r.Method)

			if contentType != "" {
				w.Header().Set("Content-Type", contentType)
			}

			w.WriteHeader(status)
		}))
	}

	t.Run("accepts 2xx image responses", func(t *testing.T) {
		srv := newServer(http.StatusOK, "image/jpeg")
		defer srv.Close()

		assert.True(t, extract.NewProbe(srv.Client()).IsImage(ctx, srv.URL))
	})

	t.Run("rejects non-image content type", func(t *testing.T) {
		srv := newServer(http.StatusOK, "text/html")
		defer srv.Close()

		assert.False(t, extract.NewProbe(srv.Client()).IsImage(ctx, srv.URL))
	})

	t.Run("rejects error status", func(t *testing.T) {
		srv := newServer(http.StatusNotFound, "image/png")
		defer srv.Close()

		assert.False(t, extract.NewProbe(srv.Client()).IsImage(ctx, srv.URL))
	})

	t.Run("rejects unreachable host", func(t *testing.T) {
		srv := newServer(http.StatusOK, "image/png")
		srv.Close()

		assert.False(t, extract.NewProbe(srv.Client()).IsImage(ctx, srv.URL))
	})
}
