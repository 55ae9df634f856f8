package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"todoapp/config"
	"todoapp/infras/otel/mocks"
	"todoapp/transport/http/middleware"
)

func newAppMiddleware() middleware.AppMiddleware {
	return middleware.NewAppMiddleware(mocks.NewOtel(), &config.Config{}, nil)
}

func TestRecovery(t *testing.T) {
	t.Run("turns a panic into a 500", func(t *testing.T) {
		handler := newAppMiddleware().Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	})

	t.Run("passes healthy requests through", func(t *testing.T) {
		handler := newAppMiddleware().Recovery(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusTeapot, recorder.Code)
	})
}

func TestTracing(t *testing.T) {
	handler := newAppMiddleware().Tracing(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/todo", nil)
	request.Header.Set("X-Request-ID", "req-1")

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusAccepted, recorder.Code)
}
