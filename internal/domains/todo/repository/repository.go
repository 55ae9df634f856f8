package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"todoapp/infras/otel"
	"todoapp/infras/postgres"
	"todoapp/internal/domains/todo/model"
	"todoapp/shared/constant"
	"todoapp/shared/logger"
)

// Todo is the data-access abstraction over the todos table. Lookups return a
// zero-value model and nil error when no row matches; callers decide what an
// absent row means. Store-level failures are infrastructure errors.
type Todo interface {
	Insert(ctx context.Context, mod model.Todo) (model.Todo, error)
	GetByID(ctx context.Context, id int64) (model.Todo, error)
	GetByIDAndOwner(ctx context.Context, id int64, ownerID string) (model.Todo, error)
	GetAllByOwner(ctx context.Context, ownerID string) ([]model.Todo, error)
	Update(ctx context.Context, mod model.Todo) error
	Delete(ctx context.Context, id int64) error
}

type repositoryImpl struct {
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Todo {
	return &repositoryImpl{
		db:   db,
		otel: otel,
	}
}

const (
	queryInsert = `INSERT INTO todos (owner_id, description, completed) VALUES ($1, $2, $3) RETURNING id`

	queryGetByID = `SELECT id, owner_id, description, completed FROM todos WHERE id = $1`

	queryGetByIDAndOwner = `SELECT id, owner_id, description, completed FROM todos WHERE id = $1 AND owner_id = $2`

	queryGetAllByOwner = `SELECT id, owner_id, description, completed FROM todos WHERE owner_id = $1 ORDER BY description ASC`

	queryUpdate = `UPDATE todos SET description = $1, completed = $2 WHERE id = $3`

	queryDelete = `DELETE FROM todos WHERE id = $1`
)

func (repo *repositoryImpl) Insert(ctx context.Context, mod model.Todo) (res model.Todo, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".todo.Insert")
	defer scope.End()
	defer scope.TraceIfError(err)

	scope.SetAttribute(constant.OtelQueryAttributeKey, queryInsert)

	tx, err := repo.db.Write.BeginTxx(ctx, nil)
	if err != nil {
		logger.ErrorWithStack(err)

		return res, fmt.Errorf("failed to begin transaction (%s): %w", model.EntityName, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res = mod

	err = tx.QueryRowxContext(ctx, queryInsert, mod.OwnerID, mod.Description, mod.Completed).Scan(&res.ID)
	if err != nil {
		logger.ErrorWithStack(err)

		return res, fmt.Errorf("failed to insert data (%s): %w", model.EntityName, err)
	}

	if err = tx.Commit(); err != nil {
		logger.ErrorWithStack(err)

		return res, fmt.Errorf("failed to commit transaction (%s): %w", model.EntityName, err)
	}

	return res, nil
}

func (repo *repositoryImpl) GetByID(ctx context.Context, id int64) (model.Todo, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".todo.GetByID")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, queryGetByID)

	var mod model.Todo

	err := repo.db.Read.GetContext(ctx, &mod, queryGetByID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Todo{}, nil
	}

	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return model.Todo{}, fmt.Errorf("failed to get data (%s): %w", model.EntityName, err)
	}

	return mod, nil
}

func (repo *repositoryImpl) GetByIDAndOwner(ctx context.Context, id int64, ownerID string) (model.Todo, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".todo.GetByIDAndOwner")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, queryGetByIDAndOwner)

	var mod model.Todo

	err := repo.db.Read.GetContext(ctx, &mod, queryGetByIDAndOwner, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Todo{}, nil
	}

	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return model.Todo{}, fmt.Errorf("failed to get data (%s): %w", model.EntityName, err)
	}

	return mod, nil
}

func (repo *repositoryImpl) GetAllByOwner(ctx context.Context, ownerID string) ([]model.Todo, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".todo.GetAllByOwner")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, queryGetAllByOwner)

	models := []model.Todo{}

	err := repo.db.Read.SelectContext(ctx, &models, queryGetAllByOwner, ownerID)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to get all data (%s): %w", model.EntityName, err)
	}

	return models, nil
}

func (repo *repositoryImpl) Update(ctx context.Context, mod model.Todo) (err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".todo.Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	scope.SetAttribute(constant.OtelQueryAttributeKey, queryUpdate)

	tx, err := repo.db.Write.BeginTxx(ctx, nil)
	if err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to begin transaction (%s): %w", model.EntityName, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, queryUpdate, mod.Description, mod.Completed, mod.ID); err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to update data (%s): %w", model.EntityName, err)
	}

	if err = tx.Commit(); err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to commit transaction (%s): %w", model.EntityName, err)
	}

	return nil
}

func (repo *repositoryImpl) Delete(ctx context.Context, id int64) (err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".todo.Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	scope.SetAttribute(constant.OtelQueryAttributeKey, queryDelete)

	tx, err := repo.db.Write.BeginTxx(ctx, nil)
	if err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to begin transaction (%s): %w", model.EntityName, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, queryDelete, id); err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to delete data (%s): %w", model.EntityName, err)
	}

	if err = tx.Commit(); err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to commit transaction (%s): %w", model.EntityName, err)
	}

	return nil
}
