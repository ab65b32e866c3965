package types

import "time"

// Todo is a single item on a user's list.
type Todo struct {
	// ID is the unique identifier of the todo.
	ID int `json:"id" db:"id"`

	// UserID references the owning user. Ownership never transfers.
	UserID int `json:"user_id" db:"user_id"`

	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`
	Completed   bool   `json:"completed" db:"completed"`

	// CreatedAt is the timestamp when the todo was inserted.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TodoFields holds the mutable fields of a Todo. Updates replace all three.
type TodoFields struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}
