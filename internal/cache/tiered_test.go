package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/savedlinks/thumbnailer/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// failingTier simulates a persistent tier that is down (e.g. quota).
type failingTier struct{}

func (f *failingTier) Get(context.Context, string) (*cache.Entry, error) {
	return nil, errors.New("tier down")
}

func (f *failingTier) Set(context.Context, string, *cache.Entry) error {
	return errors.New("tier down")
}

func (f *failingTier) Remove(context.Context, string) error { return errors.New("tier down") }
func (f *failingTier) Clear(context.Context) error          { return errors.New("tier down") }

func TestTieredCache(t *testing.T) {
	ctx := context.Background()

	t.Run("set then get", func(t *testing.T) {
		tiered := cache.NewTiered(cache.NewMemoryTier(10), nil, zap.NewNop())

		tiered.Set(ctx, "key", []byte("value"), time.Minute)

		got, ok := tiered.Get(ctx, "key")

		require.True(t, ok)
		assert.Equal(t, []byte("value"), got)
	})

	t.Run("expired entry reads as absent", func(t *testing.T) {
		tiered := cache.NewTiered(cache.NewMemoryTier(10), nil, zap.NewNop())

		tiered.Set(ctx, "key", []byte("value"), 30*time.Millisecond)

		_, ok := tiered.Get(ctx, "key")
		assert.True(t, ok, "should be retrievable before expiry")

		time.Sleep(40 * time.Millisecond)

		_, ok = tiered.Get(ctx, "key")
		assert.False(t, ok, "should be absent after expiry")
	})

	t.Run("persistent hit backfills memory", func(t *testing.T) {
		memory := cache.NewMemoryTier(10)
		persistent := cache.NewMemoryTier(10)
		tiered := cache.NewTiered(memory, persistent, zap.NewNop())

		// Simulate an entry that only survives in the persistent tier.
		now := time.Now()
		err := persistent.Set(ctx, "key", &cache.Entry{
			Payload:   []byte("value"),
			WrittenAt: now,
			ExpiresAt: now.Add(time.Minute),
		})
		require.NoError(t, err)

		got, ok := tiered.Get(ctx, "key")

		require.True(t, ok)
		assert.Equal(t, []byte("value"), got)

		entry, err := memory.Get(ctx, "key")
		require.NoError(t, err)
		assert.NotNil(t, entry, "memory tier should be backfilled")
	})

	t.Run("persistent failures degrade to memory-only", func(t *testing.T) {
		tiered := cache.NewTiered(cache.NewMemoryTier(10), &failingTier{}, zap.NewNop())

		tiered.Set(ctx, "key", []byte("value"), time.Minute)

		got, ok := tiered.Get(ctx, "key")

		require.True(t, ok, "memory tier must still serve the entry")
		assert.Equal(t, []byte("value"), got)

		tiered.Remove(ctx, "key")

		_, ok = tiered.Get(ctx, "key")
		assert.False(t, ok)
	})

	t.Run("remove deletes from both tiers", func(t *testing.T) {
		memory := cache.NewMemoryTier(10)
		persistent := cache.NewMemoryTier(10)
		tiered := cache.NewTiered(memory, persistent, zap.NewNop())

		tiered.Set(ctx, "key", []byte("value"), time.Minute)
		tiered.Remove(ctx, "key")

		_, ok := tiered.Get(ctx, "key")
		assert.False(t, ok)

		entry, err := persistent.Get(ctx, "key")
		require.NoError(t, err)
		assert.Nil(t, entry)
	})

	t.Run("clear empties the cache", func(t *testing.T) {
		tiered := cache.NewTiered(cache.NewMemoryTier(10), cache.NewMemoryTier(10), zap.NewNop())

		tiered.Set(ctx, "a", []byte("1"), time.Minute)
		tiered.Set(ctx, "b", []byte("2"), time.Minute)
		tiered.Clear(ctx)

		_, ok := tiered.Get(ctx, "a")
		assert.False(t, ok)

		_, ok = tiered.Get(ctx, "b")
		assert.False(t, ok)
	})
}
