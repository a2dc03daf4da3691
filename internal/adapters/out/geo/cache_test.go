package geo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		cache := NewMemoryCache()

		require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Minute))

		value, ok, err := cache.Get(ctx, "k")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []byte("v"), value)
	})

	t.Run("miss", func(t *testing.T) {
		cache := NewMemoryCache()

		_, ok, err := cache.Get(ctx, "absent")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("expired entries are evicted on read", func(t *testing.T) {
		cache := NewMemoryCache()
		base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		cache.now = func() time.Time { return base }

		require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Hour))

		cache.now = func() time.Time { return base.Add(time.Hour + time.Second) }

		_, ok, err := cache.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, cache.entries)
	})

	t.Run("overwrite refreshes the deadline", func(t *testing.T) {
		cache := NewMemoryCache()
		base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		cache.now = func() time.Time { return base }

		require.NoError(t, cache.Set(ctx, "k", []byte("old"), time.Minute))
		cache.now = func() time.Time { return base.Add(30 * time.Second) }
		require.NoError(t, cache.Set(ctx, "k", []byte("new"), time.Minute))

		cache.now = func() time.Time { return base.Add(80 * time.Second) }
		value, ok, err := cache.Get(ctx, "k")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []byte("new"), value)
	})
}
