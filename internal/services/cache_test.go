package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/intelmarket/gestor-pav/internal/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisCache(t *testing.T, ttl time.Duration) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheService(client, ttl, logger.Discard()), mr
}

func TestCacheService_RedisRoundTrip(t *testing.T) {
	cache, mr := newRedisCache(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "abc", "value"))
	assert.True(t, mr.Exists(CacheKeyPrefix+"abc"))
	assert.Equal(t, time.Hour, mr.TTL(CacheKeyPrefix+"abc"))

	got, err := cache.Get(ctx, CacheKeyPrefix+"abc")
	require.NoError(t, err)
	assert.Equal(t, "value", got)

	exists, err := cache.Exists(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, cache.Delete(ctx, "abc"))
	_, err = cache.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCacheService_JSON(t *testing.T) {
	cache, _ := newRedisCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.SetJSON(ctx, "k", map[string]any{"nome": "Acme"}))

	var out map[string]any
	require.NoError(t, cache.GetJSON(ctx, "k", &out))
	assert.Equal(t, "Acme", out["nome"])

	require.NoError(t, cache.Set(ctx, "broken", "{"))
	assert.Error(t, cache.GetJSON(ctx, "broken", &out))
}

func TestCacheService_ClearOnlyOwnKeys(t *testing.T) {
	cache, mr := newRedisCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, mr.Set("other:key", "keep"))
	require.NoError(t, cache.Set(ctx, "a", "1"))
	require.NoError(t, cache.Set(ctx, "b", "2"))

	require.NoError(t, cache.Clear(ctx))

	assert.False(t, mr.Exists(CacheKeyPrefix+"a"))
	assert.False(t, mr.Exists(CacheKeyPrefix+"b"))
	assert.True(t, mr.Exists("other:key"))
}

func TestCacheService_FallsBackToMemory(t *testing.T) {
	cache, mr := newRedisCache(t, time.Minute)
	ctx := context.Background()
	mr.Close()

	require.NoError(t, cache.Set(ctx, "k", "v"))
	got, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	health := cache.Health()
	assert.Equal(t, "unhealthy", health["status"])
}

func TestCacheService_MemoryExpiry(t *testing.T) {
	cache := NewCacheService(nil, 10*time.Millisecond, logger.Discard())
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", "v"))
	_, err := cache.Get(ctx, "k")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	_, err = cache.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	assert.Equal(t, "disabled", cache.Health()["status"])
}

func TestCacheService_Stats(t *testing.T) {
	cache, _ := newRedisCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", "v"))
	_, _ = cache.Get(ctx, "k")
	_, _ = cache.Get(ctx, "missing")

	stats, err := cache.GetStats(ctx)
	require.NoError(t, err)

	redisStats := stats["redis"].(map[string]interface{})
	assert.Equal(t, true, redisStats["available"])
	assert.Equal(t, 1, redisStats["keys"])

	lookups := stats["lookups"].(map[string]interface{})
	assert.Equal(t, uint64(1), lookups["hits"])
	assert.Equal(t, uint64(1), lookups["misses"])
	assert.Equal(t, 50.0, lookups["hit_rate"])
}

func TestCacheService_StatsCountsAcrossScanPages(t *testing.T) {
	cache, mr := newRedisCache(t, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3*scanCount+7; i++ {
		require.NoError(t, mr.Set(fmt.Sprintf("%s%d", CacheKeyPrefix, i), "{}"))
	}
	require.NoError(t, mr.Set("other:key", "keep"))

	stats, err := cache.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3*scanCount+7, stats["redis"].(map[string]interface{})["keys"])

	require.NoError(t, cache.Clear(ctx))
	assert.Equal(t, []string{"other:key"}, mr.Keys())
}

func TestCacheService_StatsWhenRedisDown(t *testing.T) {
	cache, mr := newRedisCache(t, time.Minute)
	mr.Close()

	stats, err := cache.GetStats(context.Background())
	require.NoError(t, err)

	redisStats := stats["redis"].(map[string]interface{})
	assert.Equal(t, false, redisStats["available"])
	assert.NotEmpty(t, redisStats["error"])
}
