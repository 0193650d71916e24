package feeds

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestCacheServesUntilBumped(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	calls := 0
	loader := func(ctx context.Context) (any, error) {
		calls++
		return []Event{{Kind: KindEarthquake, Place: "near Pune"}}, nil
	}

	key, err := cache.BuildKey(ctx, "feeds:events", "", "100")
	require.NoError(t, err)

	var first, second []Event
	require.NoError(t, cache.FetchJSON(ctx, key, &first, loader))
	require.NoError(t, cache.FetchJSON(ctx, key, &second, loader))
	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)

	// A version bump orphans the old key, forcing a reload.
	require.NoError(t, cache.Bump(ctx))
	bumpedKey, err := cache.BuildKey(ctx, "feeds:events", "", "100")
	require.NoError(t, err)
	assert.NotEqual(t, key, bumpedKey)

	var third []Event
	require.NoError(t, cache.FetchJSON(ctx, bumpedKey, &third, loader))
	assert.Equal(t, 2, calls)
}

func TestNilCachePassesThrough(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, "feeds:events", "fire", "10")
	require.NoError(t, err)
	assert.Equal(t, "feeds:events:fire:10", key)

	var events []Event
	require.NoError(t, cache.FetchJSON(ctx, key, &events, func(ctx context.Context) (any, error) {
		return []Event{{Kind: KindFire}}, nil
	}))
	require.Len(t, events, 1)
	require.NoError(t, cache.Bump(ctx))
}
