//go:build integration

package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/savedlinks/thumbnailer/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

func TestRateLimitRedisStoreIntegration(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr: getRedisAddr(),
	})
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	s := store.NewRateLimitRedisStore(client)

	t.Run("allows up to the limit", func(t *testing.T) {
		key := "it-limit"
		defer s.Reset(ctx, key)

		for i := 0; i < 3; i++ {
			allowed, err := s.Record(ctx, key, time.Minute, 3)
			require.NoError(t, err)
			assert.True(t, allowed)
		}

		allowed, err := s.Record(ctx, key, time.Minute, 3)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("window elapse frees capacity", func(t *testing.T) {
		key := "it-window"
		defer s.Reset(ctx, key)

		allowed, err := s.Record(ctx, key, time.Second, 1)
		require.NoError(t, err)
		require.True(t, allowed)

		allowed, err = s.Record(ctx, key, time.Second, 1)
		require.NoError(t, err)
		require.False(t, allowed)

		time.Sleep(1100 * time.Millisecond)

		allowed, err = s.Record(ctx, key, time.Second, 1)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("reset clears the key", func(t *testing.T) {
		key := "it-reset"

		allowed, err := s.Record(ctx, key, time.Minute, 1)
		require.NoError(t, err)
		require.True(t, allowed)

		require.NoError(t, s.Reset(ctx, key))

		allowed, err = s.Record(ctx, key, time.Minute, 1)
		require.NoError(t, err)
		assert.True(t, allowed)
	})
}
