package forge_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/forgeworks-io/forge-client/pkg/forge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	t.Parallel()

	cache := forge.NewMemoryCache(10)
	ctx := context.Background()

	entry := &forge.CacheEntry{
		Data:      []byte(`{"id":"job-1"}`),
		ExpiresAt: time.Now().Add(time.Minute),
		ETag:      "abc123",
	}

	require.NoError(t, cache.Set(ctx, "jobs/job-1", entry))

	got, err := cache.Get(ctx, "jobs/job-1")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, got.Data)
	assert.Equal(t, "abc123", got.ETag)
}

func TestMemoryCache_GetNonExistent(t *testing.T) {
	t.Parallel()

	cache := forge.NewMemoryCache(10)

	_, err := cache.Get(context.Background(), "missing")
	require.ErrorIs(t, err, forge.ErrCacheKeyNotFound)
}

func TestMemoryCache_GetExpired(t *testing.T) {
	t.Parallel()

	cache := forge.NewMemoryCache(10)
	ctx := context.Background()

	entry := &forge.CacheEntry{
		Data:      []byte(`stale`),
		ExpiresAt: time.Now().Add(-time.Second),
	}

	require.NoError(t, cache.Set(ctx, "jobs/job-1", entry))

	_, err := cache.Get(ctx, "jobs/job-1")
	require.ErrorIs(t, err, forge.ErrCacheEntryExpired)

	// The expired entry is dropped, so the second read is a plain miss.
	_, err = cache.Get(ctx, "jobs/job-1")
	require.ErrorIs(t, err, forge.ErrCacheKeyNotFound)
}

func TestMemoryCache_NoExpiry(t *testing.T) {
	t.Parallel()

	cache := forge.NewMemoryCache(10)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "pinned", &forge.CacheEntry{Data: []byte(`v`)}))

	got, err := cache.Get(ctx, "pinned")
	require.NoError(t, err)
	assert.Equal(t, []byte(`v`), got.Data)
}

func TestMemoryCache_Delete(t *testing.T) {
	t.Parallel()

	cache := forge.NewMemoryCache(10)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "jobs/job-1", &forge.CacheEntry{Data: []byte(`x`)}))
	require.NoError(t, cache.Delete(ctx, "jobs/job-1"))

	_, err := cache.Get(ctx, "jobs/job-1")
	require.ErrorIs(t, err, forge.ErrCacheKeyNotFound)

	// Deleting a missing key is not an error.
	require.NoError(t, cache.Delete(ctx, "jobs/job-1"))
}

func TestMemoryCache_Clear(t *testing.T) {
	t.Parallel()

	cache := forge.NewMemoryCache(10)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, cache.Set(ctx, fmt.Sprintf("key-%d", i), &forge.CacheEntry{Data: []byte(`x`)}))
	}

	require.NoError(t, cache.Clear(ctx))

	for i := 0; i < 5; i++ {
		_, err := cache.Get(ctx, fmt.Sprintf("key-%d", i))
		require.ErrorIs(t, err, forge.ErrCacheKeyNotFound)
	}
}

func TestMemoryCache_EvictsAtCapacity(t *testing.T) {
	t.Parallel()

	cache := forge.NewMemoryCache(3)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, cache.Set(ctx, fmt.Sprintf("key-%d", i), &forge.CacheEntry{
			Data:      []byte(`x`),
			ExpiresAt: time.Now().Add(time.Minute),
		}))
	}

	hits := 0

	for i := 0; i < 4; i++ {
		if _, err := cache.Get(ctx, fmt.Sprintf("key-%d", i)); err == nil {
			hits++
		}
	}

	assert.Equal(t, 3, hits, "capacity must hold after eviction")
}

func TestMemoryCache_EvictsExpiredFirst(t *testing.T) {
	t.Parallel()

	cache := forge.NewMemoryCache(2)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "fresh", &forge.CacheEntry{
		Data:      []byte(`x`),
		ExpiresAt: time.Now().Add(time.Minute),
	}))
	require.NoError(t, cache.Set(ctx, "stale", &forge.CacheEntry{
		Data:      []byte(`x`),
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	require.NoError(t, cache.Set(ctx, "incoming", &forge.CacheEntry{
		Data:      []byte(`x`),
		ExpiresAt: time.Now().Add(time.Minute),
	}))

	_, err := cache.Get(ctx, "fresh")
	assert.NoError(t, err, "a live entry must survive eviction while an expired one exists")
}

func TestNoOpCache(t *testing.T) {
	t.Parallel()

	cache := forge.NewNoOpCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", &forge.CacheEntry{Data: []byte(`x`)}))

	_, err := cache.Get(ctx, "key")
	require.ErrorIs(t, err, forge.ErrCacheDisabled)
}
