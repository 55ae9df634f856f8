package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goRedis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todoapp/infras/otel/mocks"
	"todoapp/shared/cache"
)

func newTestCache(t *testing.T) (cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := goRedis.NewClient(&goRedis.Options{Addr: server.Addr()})

	return cache.NewRedisCache(client, mocks.NewOtel()), server
}

func TestRedisCache_SaveAndGet(t *testing.T) {
	t.Run("round-trips a struct as JSON", func(t *testing.T) {
		redisCache, _ := newTestCache(t)

		type payload struct {
			Name  string `json:"name"`
			Count int    `json:"count"`
		}

		require.NoError(t, redisCache.Save(context.Background(), "key", payload{Name: "a", Count: 2}, 60))

		var got payload
		require.NoError(t, redisCache.Get(context.Background(), "key", &got))
		assert.Equal(t, payload{Name: "a", Count: 2}, got)
	})

	t.Run("stores strings verbatim", func(t *testing.T) {
		redisCache, server := newTestCache(t)

		require.NoError(t, redisCache.Save(context.Background(), "key", "plain", 60))

		raw, err := server.Get("key")
		require.NoError(t, err)
		assert.Equal(t, "plain", raw)

		var got string
		require.NoError(t, redisCache.Get(context.Background(), "key", &got))
		assert.Equal(t, "plain", got)
	})

	t.Run("missing key reports cache.Nil", func(t *testing.T) {
		redisCache, _ := newTestCache(t)

		var got string
		err := redisCache.Get(context.Background(), "absent", &got)

		require.Error(t, err)
		assert.ErrorIs(t, err, cache.Nil)
	})

	t.Run("entries expire", func(t *testing.T) {
		redisCache, server := newTestCache(t)

		require.NoError(t, redisCache.Save(context.Background(), "key", "plain", 1))

		server.FastForward(2 * time.Second)

		var got string
		assert.ErrorIs(t, redisCache.Get(context.Background(), "key", &got), cache.Nil)
	})
}

func TestRedisCache_Increment(t *testing.T) {
	t.Run("counts up and keeps the original expiry", func(t *testing.T) {
		redisCache, server := newTestCache(t)

		count, err := redisCache.Increment(context.Background(), "counter", 60)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		firstTTL := server.TTL("counter")
		assert.Equal(t, 60*time.Second, firstTTL)

		count, err = redisCache.Increment(context.Background(), "counter", 60)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		// Further increments must not re-arm the window.
		assert.Equal(t, firstTTL, server.TTL("counter"))
	})

	t.Run("starts over once the window elapses", func(t *testing.T) {
		redisCache, server := newTestCache(t)

		_, err := redisCache.Increment(context.Background(), "counter", 1)
		require.NoError(t, err)

		server.FastForward(2 * time.Second)

		count, err := redisCache.Increment(context.Background(), "counter", 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestRedisCache_Delete(t *testing.T) {
	redisCache, _ := newTestCache(t)

	require.NoError(t, redisCache.Save(context.Background(), "key", "plain", 60))
	require.NoError(t, redisCache.Delete(context.Background(), "key"))

	var got string
	assert.ErrorIs(t, redisCache.Get(context.Background(), "key", &got), cache.Nil)
}
