package middleware_test

import (
	"context"
	"testing"

	"github.com/savedlinks/thumbnailer/internal/middleware"
	"github.com/stretchr/testify/assert"
)

func TestCallerContext(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		ctx := middleware.ContextWithCaller(context.Background(), "user-1")

		id, ok := middleware.CallerFromContext(ctx)

		assert.True(t, ok)
		assert.Equal(t, "user-1", id)
	})

	t.Run("absent caller", func(t *testing.T) {
		_, ok := middleware.CallerFromContext(context.Background())
		assert.False(t, ok)
	})

	t.Run("empty caller is treated as absent", func(t *testing.T) {
		ctx := middleware.ContextWithCaller(context.Background(), "")

		_, ok := middleware.CallerFromContext(ctx)
		assert.False(t, ok)
	})
}
