package model

const (
	TableName  = "todos"
	EntityName = "todo"

	FieldID          = "id"
	FieldOwnerID     = "owner_id"
	FieldDescription = "description"
	FieldCompleted   = "completed"
)

// Todo is a single item in the store. ID is assigned by the store on
// creation; OwnerID is the subject claim of the creating user. Both are
// immutable after creation.
type Todo struct {
	ID          int64  `db:"id"`
	OwnerID     string `db:"owner_id"`
	Description string `db:"description"`
	Completed   bool   `db:"completed"`
}
