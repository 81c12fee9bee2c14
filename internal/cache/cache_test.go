// internal/cache/cache_test.go

package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/RecipeScrapexter/pkg/types"
)

func TestNopCache(t *testing.T) {
	var c Cache = NopCache{}
	_, err := c.Get(context.Background(), "https://example.com")
	assert.True(t, errors.Is(err, ErrMiss))
	assert.NoError(t, c.Set(context.Background(), "k", &Entry{}))
	assert.NoError(t, c.Close())
}

func TestRedisCacheKey(t *testing.T) {
	c := NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), 0, "")
	defer c.Close()

	k1 := c.Key("https://example.com/pancakes")
	k2 := c.Key("  https://example.com/pancakes ")
	k3 := c.Key("https://example.com/waffles")

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.Contains(t, k1, DefaultKeyPrefix)
	assert.Equal(t, 24*time.Hour, c.ttl)
}

// Runs only when REDIS_ADDR points at a disposable Redis instance.
func TestRedisCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisConfig{Addr: addr, TTL: time.Minute, Prefix: "recipescrapexter:test:"})
	require.NoError(t, err)
	defer c.Close()

	url := "https://example.com/test-" + time.Now().Format("150405.000")
	defer c.Delete(ctx, url)

	_, err = c.Get(ctx, url)
	assert.True(t, errors.Is(err, ErrMiss))

	entry := &Entry{Recipe: &types.Recipe{Title: "Pancakes", Servings: types.Int(4)}, Strategy: "json-ld"}
	require.NoError(t, c.Set(ctx, url, entry))

	got, err := c.Get(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, "Pancakes", got.Recipe.Title)
	assert.Equal(t, 4, *got.Recipe.Servings)
	assert.Equal(t, "json-ld", got.Strategy)
	assert.False(t, got.StoredAt.IsZero())
}
