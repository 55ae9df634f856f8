package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goRedis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"todoapp/config"
	"todoapp/infras/otel/mocks"
	"todoapp/shared/cache"
	"todoapp/transport/http/middleware"
)

func newLimitedHandler(t *testing.T, enable bool, maxRequests, windowSecs int) (http.Handler, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := goRedis.NewClient(&goRedis.Options{Addr: server.Addr()})

	cfg := &config.Config{}
	cfg.App.RateLimiter.Enable = enable
	cfg.App.RateLimiter.MaxRequests = maxRequests
	cfg.App.RateLimiter.WindowSeconds = windowSecs

	appMiddleware := middleware.NewAppMiddleware(mocks.NewOtel(), cfg, cache.NewRedisCache(client, mocks.NewOtel()))

	return appMiddleware.RateLimit()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})), server
}

func TestRateLimit(t *testing.T) {
	t.Run("requests beyond the window limit are rejected", func(t *testing.T) {
		handler, _ := newLimitedHandler(t, true, 2, 60)

		for i := 0; i < 2; i++ {
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, http.StatusOK, recorder.Code)
		}

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
	})

	t.Run("sets rate limit headers", func(t *testing.T) {
		handler, _ := newLimitedHandler(t, true, 5, 60)

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, "5", recorder.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "4", recorder.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, "60", recorder.Header().Get("X-RateLimit-Window"))
	})

	t.Run("steady traffic does not keep the window alive", func(t *testing.T) {
		handler, server := newLimitedHandler(t, true, 2, 1)

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, recorder.Code)

		server.FastForward(600 * time.Millisecond)

		recorder = httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, recorder.Code)

		// The counter dies one second after the first request even though a
		// second one arrived mid-window.
		server.FastForward(600 * time.Millisecond)

		recorder = httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "1", recorder.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("disabled limiter passes everything through", func(t *testing.T) {
		handler, _ := newLimitedHandler(t, false, 1, 60)

		for i := 0; i < 5; i++ {
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, http.StatusOK, recorder.Code)
		}
	})
}
