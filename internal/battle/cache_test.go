package battle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"empires-server/internal/combat"
)

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := NewMemoryCache()
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Minute))

	value, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), value)

	now = now.Add(time.Minute)
	_, ok, err = cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len())
}

func TestMemoryCache_NoTTL(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	cache.now = func() time.Time { return time.Unix(0, 0) }

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), 0))
	cache.now = func() time.Time { return time.Unix(1<<40, 0) }

	_, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryCache_CopiesValue(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	value := []byte("abc")

	require.NoError(t, cache.Set(ctx, "k", value, 0))
	value[0] = 'x'

	stored, _, _ := cache.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), stored)
}

func TestCacheKey(t *testing.T) {
	req := SimulateRequest{
		Attacker: combat.Force{Ground: 10},
		Defender: combat.Force{Ground: 8},
		Options:  combat.Options{Seed: 42},
	}

	a, err := CacheKey("volley", "v1", req)
	require.NoError(t, err)
	b, err := CacheKey("volley", "v1", req)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Contains(t, a, cacheKeyPrefix)

	other, err := CacheKey("unified", "v1", req)
	require.NoError(t, err)
	assert.NotEqual(t, a, other)

	req.Options.Seed = 43
	reseeded, err := CacheKey("volley", "v1", req)
	require.NoError(t, err)
	assert.NotEqual(t, a, reseeded)
}

func TestNewCache_FallsBackToMemory(t *testing.T) {
	cache := NewCache(nil, discardLogger())
	assert.Equal(t, "memory", cache.Backend())
	assert.NoError(t, cache.Ping(context.Background()))
}
