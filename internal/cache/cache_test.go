package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestMemoryCache(t *testing.T, maxKeys int) Cache {
	t.Helper()
	c := NewMemoryCache(&Config{
		TTL:             time.Minute,
		MaxKeys:         maxKeys,
		CleanupInterval: time.Hour,
		KeyPrefix:       "test:",
	}, zap.NewNop())
	t.Cleanup(func() { c.Close() })
	return c
}

func TestMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := newTestMemoryCache(t, 10)

	_, found := c.Get(ctx, "route_region:1")
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "route_region:1", []byte("7"), 0))

	value, found := c.Get(ctx, "route_region:1")
	require.True(t, found)
	assert.Equal(t, []byte("7"), value)

	require.NoError(t, c.Delete(ctx, "route_region:1"))
	_, found = c.Get(ctx, "route_region:1")
	assert.False(t, found)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := newTestMemoryCache(t, 10)

	require.NoError(t, c.Set(ctx, "short", []byte("x"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, found := c.Get(ctx, "short")
	assert.False(t, found)
}

func TestMemoryCache_EvictsOldestWhenFull(t *testing.T) {
	ctx := context.Background()
	c := newTestMemoryCache(t, 3)

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("k%d", i), []byte{byte(i)}, 0))
		time.Sleep(time.Millisecond)
	}
	require.NoError(t, c.Set(ctx, "k3", []byte{3}, 0))

	_, found := c.Get(ctx, "k0")
	assert.False(t, found, "oldest entry is evicted")
	_, found = c.Get(ctx, "k3")
	assert.True(t, found)
	assert.Equal(t, int64(3), c.Stats().Keys)
}

func TestMemoryCache_HealthAfterClose(t *testing.T) {
	c := NewMemoryCache(DefaultConfig(), zap.NewNop())
	require.NoError(t, c.Health(context.Background()))
	require.NoError(t, c.Close())
	assert.Error(t, c.Health(context.Background()))
	assert.NoError(t, c.Close(), "close is idempotent")
}

func TestNewCache_UnsupportedProvider(t *testing.T) {
	_, err := NewCache(&Config{Provider: "memcached"}, zap.NewNop())
	assert.Error(t, err)
}
