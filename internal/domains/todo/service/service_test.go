package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"todoapp/infras/otel/mocks"
	todoMocks "todoapp/internal/domains/todo/mocks"
	"todoapp/internal/domains/todo/model"
	"todoapp/internal/domains/todo/model/dto"
	"todoapp/internal/domains/todo/service"
	"todoapp/shared/failure"
)

func boolPtr(b bool) *bool { return &b }

func int64Ptr(i int64) *int64 { return &i }

func TestTodoService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := todoMocks.NewMockTodo(ctrl)
	svc := service.New(mockRepo, mocks.NewOtel())

	t.Run("returns the stored todo with its generated id", func(t *testing.T) {
		mockRepo.EXPECT().
			Insert(gomock.Any(), model.Todo{OwnerID: "alice", Description: "buy milk"}).
			Return(model.Todo{ID: 7, OwnerID: "alice", Description: "buy milk"}, nil)

		res, err := svc.Create(context.Background(), "alice", dto.CreateTodoRequest{
			Description: "buy milk",
			Completed:   boolPtr(false),
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(7), res.ID)
		assert.Equal(t, "alice", res.OwnerID)
	})

	t.Run("propagates repository failures", func(t *testing.T) {
		mockRepo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			Return(model.Todo{}, errors.New("connection refused"))

		_, err := svc.Create(context.Background(), "alice", dto.CreateTodoRequest{
			Description: "buy milk",
			Completed:   boolPtr(false),
		})

		assert.Error(t, err)
	})
}

func TestTodoService_GetAllByOwner(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := todoMocks.NewMockTodo(ctrl)
	svc := service.New(mockRepo, mocks.NewOtel())

	t.Run("maps all rows for the owner", func(t *testing.T) {
		mockRepo.EXPECT().
			GetAllByOwner(gomock.Any(), "alice").
			Return([]model.Todo{
				{ID: 1, OwnerID: "alice", Description: "a"},
				{ID: 2, OwnerID: "alice", Description: "b", Completed: true},
			}, nil)

		res, err := svc.GetAllByOwner(context.Background(), "alice")

		assert.NoError(t, err)
		assert.Len(t, res, 2)
		assert.True(t, res[1].Completed)
	})

	t.Run("returns an empty slice when the owner has no todos", func(t *testing.T) {
		mockRepo.EXPECT().
			GetAllByOwner(gomock.Any(), "bob").
			Return([]model.Todo{}, nil)

		res, err := svc.GetAllByOwner(context.Background(), "bob")

		assert.NoError(t, err)
		assert.Empty(t, res)
	})
}

func TestTodoService_Get(t *testing.T) {
	tests := []struct {
		name      string
		subject   string
		setupMock func(mockRepo *todoMocks.MockTodo)
		wantCode  int
	}{
		{
			name:    "owner reads their own todo through the owner-scoped query",
			subject: "alice",
			setupMock: func(mockRepo *todoMocks.MockTodo) {
				mockRepo.EXPECT().
					GetByIDAndOwner(gomock.Any(), int64(1), "alice").
					Return(model.Todo{ID: 1, OwnerID: "alice", Description: "a"}, nil)
			},
			wantCode: 0,
		},
		{
			name:    "absent todo is not found",
			subject: "alice",
			setupMock: func(mockRepo *todoMocks.MockTodo) {
				mockRepo.EXPECT().
					GetByIDAndOwner(gomock.Any(), int64(1), "alice").
					Return(model.Todo{}, nil)
				mockRepo.EXPECT().
					GetByID(gomock.Any(), int64(1)).
					Return(model.Todo{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name:    "foreign todo is forbidden, not hidden",
			subject: "bob",
			setupMock: func(mockRepo *todoMocks.MockTodo) {
				mockRepo.EXPECT().
					GetByIDAndOwner(gomock.Any(), int64(1), "bob").
					Return(model.Todo{}, nil)
				mockRepo.EXPECT().
					GetByID(gomock.Any(), int64(1)).
					Return(model.Todo{ID: 1, OwnerID: "alice", Description: "a"}, nil)
			},
			wantCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRepo := todoMocks.NewMockTodo(ctrl)
			tt.setupMock(mockRepo)

			svc := service.New(mockRepo, mocks.NewOtel())

			res, err := svc.Get(context.Background(), 1, tt.subject)

			if tt.wantCode == 0 {
				assert.NoError(t, err)
				assert.Equal(t, int64(1), res.ID)

				return
			}

			assert.Error(t, err)
			assert.Equal(t, tt.wantCode, failure.GetCode(err))
		})
	}
}

func TestTodoService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := todoMocks.NewMockTodo(ctrl)
	svc := service.New(mockRepo, mocks.NewOtel())

	req := dto.UpdateTodoRequest{
		ID:          int64Ptr(1),
		Description: "buy oat milk",
		Completed:   boolPtr(true),
	}

	t.Run("owner updates their own todo", func(t *testing.T) {
		mockRepo.EXPECT().
			GetByID(gomock.Any(), int64(1)).
			Return(model.Todo{ID: 1, OwnerID: "alice", Description: "buy milk"}, nil)
		mockRepo.EXPECT().
			Update(gomock.Any(), model.Todo{ID: 1, OwnerID: "alice", Description: "buy oat milk", Completed: true}).
			Return(nil)

		res, err := svc.Update(context.Background(), "alice", req)

		assert.NoError(t, err)
		assert.Equal(t, "buy oat milk", res.Description)
		assert.True(t, res.Completed)
		assert.Equal(t, "alice", res.OwnerID)
	})

	t.Run("foreign todo is forbidden and never written", func(t *testing.T) {
		mockRepo.EXPECT().
			GetByID(gomock.Any(), int64(1)).
			Return(model.Todo{ID: 1, OwnerID: "alice", Description: "buy milk"}, nil)

		_, err := svc.Update(context.Background(), "bob", req)

		assert.Error(t, err)
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})

	t.Run("absent todo is not found", func(t *testing.T) {
		mockRepo.EXPECT().
			GetByID(gomock.Any(), int64(1)).
			Return(model.Todo{}, nil)

		_, err := svc.Update(context.Background(), "alice", req)

		assert.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestTodoService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := todoMocks.NewMockTodo(ctrl)
	svc := service.New(mockRepo, mocks.NewOtel())

	t.Run("owner deletes their own todo", func(t *testing.T) {
		mockRepo.EXPECT().
			GetByID(gomock.Any(), int64(1)).
			Return(model.Todo{ID: 1, OwnerID: "alice"}, nil)
		mockRepo.EXPECT().
			Delete(gomock.Any(), int64(1)).
			Return(nil)

		assert.NoError(t, svc.Delete(context.Background(), 1, "alice"))
	})

	t.Run("foreign todo is forbidden and never deleted", func(t *testing.T) {
		mockRepo.EXPECT().
			GetByID(gomock.Any(), int64(1)).
			Return(model.Todo{ID: 1, OwnerID: "alice"}, nil)

		err := svc.Delete(context.Background(), 1, "bob")

		assert.Error(t, err)
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})

	t.Run("absent todo is not found", func(t *testing.T) {
		mockRepo.EXPECT().
			GetByID(gomock.Any(), int64(1)).
			Return(model.Todo{}, nil)

		err := svc.Delete(context.Background(), 1, "alice")

		assert.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}
