package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kanak-sys/ToDo-App/types"
)

// TodoRepository handles persistence for todos. Every mutation is scoped to
// the owning user inside a single statement.
type TodoRepository struct {
	db      *sql.DB
	timeout time.Duration
}

func NewTodoRepository(db *sql.DB, timeout time.Duration) *TodoRepository {
	return &TodoRepository{db: db, timeout: timeout}
}

func (r *TodoRepository) ListByUser(ctx context.Context, userID int) ([]types.Todo, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	const query = `
		SELECT id, user_id, title, description, completed, created_at
		FROM todos
		WHERE user_id = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	todos := make([]types.Todo, 0)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return todos, nil
}

func (r *TodoRepository) Create(ctx context.Context, userID int, title, description string) (types.Todo, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	const query = `
		INSERT INTO todos (user_id, title, description, completed)
		VALUES ($1, $2, $3, false)
		RETURNING id, user_id, title, description, completed, created_at`
	todo, err := scanTodo(r.db.QueryRowContext(ctx, query, userID, title, description))
	if err != nil {
		return types.Todo{}, fmt.Errorf("db error: %w", err)
	}
	return todo, nil
}

// Update replaces the mutable fields of the todo identified by id when it
// belongs to userID. Missing and foreign rows both yield ErrNotFound.
func (r *TodoRepository) Update(ctx context.Context, userID, id int, fields types.TodoFields) (types.Todo, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	const query = `
		UPDATE todos
		SET title = $1,
			description = $2,
			completed = $3
		WHERE id = $4 AND user_id = $5
		RETURNING id, user_id, title, description, completed, created_at`
	todo, err := scanTodo(r.db.QueryRowContext(
		ctx,
		query,
		fields.Title,
		fields.Description,
		fields.Completed,
		id,
		userID,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Todo{}, ErrNotFound
		}
		return types.Todo{}, fmt.Errorf("db error: %w", err)
	}
	return todo, nil
}

// Delete removes the todo identified by id when it belongs to userID.
func (r *TodoRepository) Delete(ctx context.Context, userID, id int) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	const query = `DELETE FROM todos WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (types.Todo, error) {
	var todo types.Todo
	err := row.Scan(
		&todo.ID,
		&todo.UserID,
		&todo.Title,
		&todo.Description,
		&todo.Completed,
		&todo.CreatedAt,
	)
	return todo, err
}
