package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Todo=MockService

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"todoapp/infras/otel"
	"todoapp/internal/domains/todo/model"
	"todoapp/internal/domains/todo/model/dto"
	"todoapp/internal/domains/todo/repository"
	"todoapp/shared/constant"
	"todoapp/shared/failure"
)

const (
	msgNotFound = "Record not found"
	msgNotOwner = "You don't have permission to access this resource"
)

// Todo owns the business rules: ownership enforcement, not-found
// translation and DTO/entity mapping. Every read/update/delete takes the
// caller's subject and classifies absent rows as NotFound and foreign rows
// as Forbidden from a single authoritative read.
type Todo interface {
	Create(ctx context.Context, ownerID string, req dto.CreateTodoRequest) (dto.TodoResponse, error)
	GetAllByOwner(ctx context.Context, ownerID string) ([]dto.TodoResponse, error)
	Get(ctx context.Context, id int64, subject string) (dto.TodoResponse, error)
	Update(ctx context.Context, subject string, req dto.UpdateTodoRequest) (dto.TodoResponse, error)
	Delete(ctx context.Context, id int64, subject string) error
}

type serviceImpl struct {
	repo repository.Todo
	otel otel.Otel
}

func New(repo repository.Todo, otel otel.Otel) Todo {
	return &serviceImpl{
		repo: repo,
		otel: otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, ownerID string, req dto.CreateTodoRequest) (res dto.TodoResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	created, err := s.repo.Insert(ctx, req.ToModel(ownerID))
	if err != nil {
		log.Error().Err(err).Msg("failed to create todo")

		return res, fmt.Errorf("failed to create todo: %w", err)
	}

	res.FromModel(created)

	return res, nil
}

func (s *serviceImpl) GetAllByOwner(ctx context.Context, ownerID string) (res []dto.TodoResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAllByOwner")
	defer scope.End()
	defer scope.TraceIfError(err)

	models, err := s.repo.GetAllByOwner(ctx, ownerID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get todos")

		return nil, fmt.Errorf("failed to get todos: %w", err)
	}

	return dto.FromModels(models), nil
}

func (s *serviceImpl) Get(ctx context.Context, id int64, subject string) (res dto.TodoResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	todo, err := s.repo.GetByIDAndOwner(ctx, id, subject)
	if err != nil {
		log.Error().Err(err).Msg("failed to get todo")

		return res, fmt.Errorf("failed to get todo: %w", err)
	}

	// A miss on the owner-scoped read is either an absent row or somebody
	// else's; authorize re-reads without the owner filter to tell them apart.
	if todo.ID == 0 {
		todo, err = s.authorize(ctx, id, subject)
		if err != nil {
			return res, err
		}
	}

	res.FromModel(todo)

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, subject string, req dto.UpdateTodoRequest) (res dto.TodoResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	todo, err := s.authorize(ctx, *req.ID, subject)
	if err != nil {
		return res, err
	}

	todo.Description = req.Description
	todo.Completed = *req.Completed

	if err = s.repo.Update(ctx, todo); err != nil {
		log.Error().Err(err).Msg("failed to update todo")

		return res, fmt.Errorf("failed to update todo: %w", err)
	}

	res.FromModel(todo)

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id int64, subject string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	if _, err = s.authorize(ctx, id, subject); err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, id); err != nil {
		log.Error().Err(err).Msg("failed to delete todo")

		return fmt.Errorf("failed to delete todo: %w", err)
	}

	return nil
}

// authorize performs a single authoritative read and classifies the outcome:
// no row is NotFound, a row owned by another subject is Forbidden.
func (s *serviceImpl) authorize(ctx context.Context, id int64, subject string) (model.Todo, error) {
	todo, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to get todo")

		return model.Todo{}, fmt.Errorf("failed to get todo: %w", err)
	}

	if todo.ID == 0 {
		return model.Todo{}, failure.NotFound(msgNotFound) //nolint:wrapcheck
	}

	if todo.OwnerID != subject {
		log.Warn().Int64("id", id).Str("subject", subject).Msg("todo owned by another subject")

		return model.Todo{}, failure.Forbidden(msgNotOwner) //nolint:wrapcheck
	}

	return todo, nil
}
