package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todoapp/config"
	"todoapp/infras/otel/mocks"
	"todoapp/internal/client/gateway"
	"todoapp/internal/domains/todo/model/dto"
	"todoapp/shared/failure"
)

func boolPtr(b bool) *bool { return &b }

func int64Ptr(i int64) *int64 { return &i }

func newTestGateway(t *testing.T, backend http.HandlerFunc) gateway.Todo {
	t.Helper()

	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.Client.TodoServiceURL = server.URL + "/todo"

	return gateway.NewTodoGateway(cfg, mocks.NewOtel())
}

func TestTodoGateway_List(t *testing.T) {
	t.Run("attaches the bearer token and decodes the list", func(t *testing.T) {
		gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/todo", r.URL.Path)
			assert.Equal(t, "Bearer the-token", r.Header.Get("Authorization"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"id":1,"owner-id":"alice","description":"buy milk","completed":false}]`))
		})

		todos, err := gw.List(context.Background(), "the-token")

		require.NoError(t, err)
		require.Len(t, todos, 1)
		assert.Equal(t, "alice", todos[0].OwnerID)
	})

	t.Run("maps an upstream 401 onto a failure with that status", func(t *testing.T) {
		gw := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		_, err := gw.List(context.Background(), "expired-token")

		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
	})
}

func TestTodoGateway_Create(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req dto.CreateTodoRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "buy milk", req.Description)

		w.Header().Set("Location", "/todo/7")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":7,"owner-id":"alice","description":"buy milk","completed":false}`))
	})

	created, err := gw.Create(context.Background(), "the-token", dto.CreateTodoRequest{
		Description: "buy milk",
		Completed:   boolPtr(false),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
}

func TestTodoGateway_Update(t *testing.T) {
	t.Run("puts to the todo's path", func(t *testing.T) {
		gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/todo/7", r.URL.Path)

			_, _ = w.Write([]byte(`{"id":7,"owner-id":"alice","description":"buy oat milk","completed":true}`))
		})

		updated, err := gw.Update(context.Background(), "the-token", 7, dto.UpdateTodoRequest{
			ID:          int64Ptr(7),
			Description: "buy oat milk",
			Completed:   boolPtr(true),
		})

		require.NoError(t, err)
		assert.True(t, updated.Completed)
	})

	t.Run("surfaces a foreign-todo 403", func(t *testing.T) {
		gw := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})

		_, err := gw.Update(context.Background(), "the-token", 7, dto.UpdateTodoRequest{
			ID:          int64Ptr(7),
			Description: "buy oat milk",
			Completed:   boolPtr(true),
		})

		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
		assert.EqualError(t, err, http.StatusText(http.StatusForbidden))
	})
}

func TestTodoGateway_Delete(t *testing.T) {
	t.Run("accepts a 204 with no body", func(t *testing.T) {
		gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/todo/7", r.URL.Path)

			w.WriteHeader(http.StatusNoContent)
		})

		assert.NoError(t, gw.Delete(context.Background(), "the-token", 7))
	})

	t.Run("surfaces an absent-todo 404", func(t *testing.T) {
		gw := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		err := gw.Delete(context.Background(), "the-token", 7)

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}
