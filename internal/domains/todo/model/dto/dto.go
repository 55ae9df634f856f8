package dto

import (
	"todoapp/internal/domains/todo/model"
)

// CreateTodoRequest is the POST /todo payload. Completed is a pointer so a
// missing field is rejected rather than defaulting to false.
type CreateTodoRequest struct {
	Description string `json:"description" validate:"required,notblank,max=255"`
	Completed   *bool  `json:"completed" validate:"required"`
}

func (c *CreateTodoRequest) ToModel(ownerID string) model.Todo {
	return model.Todo{
		OwnerID:     ownerID,
		Description: c.Description,
		Completed:   *c.Completed,
	}
}

// UpdateTodoRequest is the PUT /todo/{id} payload. The id must match the
// path; owner-id is ignored as input, ownership is decided by the stored row.
type UpdateTodoRequest struct {
	ID          *int64 `json:"id" validate:"required"`
	OwnerID     string `json:"owner-id"`
	Description string `json:"description" validate:"required,notblank,max=255"`
	Completed   *bool  `json:"completed" validate:"required"`
}

// TodoResponse is the wire representation of a todo. The owner key is
// hyphenated on the wire.
type TodoResponse struct {
	ID          int64  `json:"id"`
	OwnerID     string `json:"owner-id"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

func (r *TodoResponse) FromModel(mod model.Todo) {
	r.ID = mod.ID
	r.OwnerID = mod.OwnerID
	r.Description = mod.Description
	r.Completed = mod.Completed
}

func FromModels(models []model.Todo) []TodoResponse {
	responses := make([]TodoResponse, len(models))
	for i, mod := range models {
		responses[i].FromModel(mod)
	}

	return responses
}
