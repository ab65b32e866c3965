package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/kanak-sys/ToDo-App/internal/mq"
	"github.com/kanak-sys/ToDo-App/internal/store"
	"github.com/kanak-sys/ToDo-App/types"
)

// TodoRepository defines persistence operations for todos. Update and Delete
// must match id and owner in one statement.
type TodoRepository interface {
	ListByUser(ctx context.Context, userID int) ([]types.Todo, error)
	Create(ctx context.Context, userID int, title, description string) (types.Todo, error)
	Update(ctx context.Context, userID, id int, fields types.TodoFields) (types.Todo, error)
	Delete(ctx context.Context, userID, id int) error
}

// EventPublisher receives committed todo mutations.
type EventPublisher interface {
	Publish(ctx context.Context, event mq.TodoEvent) error
}

// DeleteResult confirms a deletion.
type DeleteResult struct {
	Message string `json:"message"`
}

// TodoService encapsulates todo use-cases. Every operation is scoped to the
// verified caller uid.
type TodoService struct {
	repo   TodoRepository
	events EventPublisher
	log    *slog.Logger
}

func NewTodoService(repo TodoRepository, events EventPublisher, log *slog.Logger) *TodoService {
	if log == nil {
		log = slog.Default()
	}
	return &TodoService{repo: repo, events: events, log: log}
}

func (s *TodoService) List(ctx context.Context, uid int) ([]types.Todo, error) {
	todos, err := s.repo.ListByUser(ctx, uid)
	if err != nil {
		return nil, internal(err)
	}
	if todos == nil {
		todos = []types.Todo{}
	}
	return todos, nil
}

func (s *TodoService) Create(ctx context.Context, uid int, title, description string) (types.Todo, error) {
	if strings.TrimSpace(title) == "" {
		return types.Todo{}, validation("Todo title cannot be empty")
	}

	todo, err := s.repo.Create(ctx, uid, title, description)
	if err != nil {
		return types.Todo{}, internal(err)
	}

	s.publish(ctx, mq.TodoCreated, uid, todo.ID)
	return todo, nil
}

// Update replaces title, description and completed of the caller's todo.
func (s *TodoService) Update(ctx context.Context, uid, id int, fields types.TodoFields) (types.Todo, error) {
	if strings.TrimSpace(fields.Title) == "" {
		return types.Todo{}, validation("Todo title cannot be empty")
	}

	todo, err := s.repo.Update(ctx, uid, id, fields)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Todo{}, ErrNotFound
		}
		return types.Todo{}, internal(err)
	}

	s.publish(ctx, mq.TodoUpdated, uid, todo.ID)
	return todo, nil
}

func (s *TodoService) Delete(ctx context.Context, uid, id int) (DeleteResult, error) {
	if err := s.repo.Delete(ctx, uid, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return DeleteResult{}, ErrNotFound
		}
		return DeleteResult{}, internal(err)
	}

	s.publish(ctx, mq.TodoDeleted, uid, id)
	return DeleteResult{Message: "Todo deleted successfully"}, nil
}

// publish is best effort: the write is already committed.
func (s *TodoService) publish(ctx context.Context, eventType mq.TodoEventType, uid, todoID int) {
	if s.events == nil {
		return
	}
	err := s.events.Publish(ctx, mq.TodoEvent{Type: eventType, UserID: uid, TodoID: todoID})
	if err != nil {
		s.log.WarnContext(ctx, "publish todo event failed",
			"type", eventType,
			"user_id", uid,
			"todo_id", todoID,
			"error", err,
		)
	}
}
