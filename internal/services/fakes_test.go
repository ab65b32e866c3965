package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kanak-sys/ToDo-App/internal/mq"
	"github.com/kanak-sys/ToDo-App/internal/store"
	"github.com/kanak-sys/ToDo-App/types"
)

type memoryUsers struct {
	mu     sync.Mutex
	users  []types.User
	err    error
	create error
}

func (m *memoryUsers) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	for _, u := range m.users {
		if u.Email == email || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryUsers) GetByEmail(ctx context.Context, email string) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return types.User{}, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *memoryUsers) Create(ctx context.Context, user types.User) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.create != nil {
		return types.User{}, m.create
	}
	user.ID = len(m.users) + 1
	user.CreatedAt = time.Now().UTC()
	m.users = append(m.users, user)
	return user, nil
}

type memoryTodos struct {
	mu     sync.Mutex
	nextID int
	todos  []types.Todo
	err    error
}

func (m *memoryTodos) ListByUser(ctx context.Context, userID int) ([]types.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []types.Todo
	for _, t := range m.todos {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memoryTodos) Create(ctx context.Context, userID int, title, description string) (types.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return types.Todo{}, m.err
	}
	m.nextID++
	todo := types.Todo{ID: m.nextID, UserID: userID, Title: title, Description: description, CreatedAt: time.Now().UTC()}
	m.todos = append(m.todos, todo)
	return todo, nil
}

func (m *memoryTodos) Update(ctx context.Context, userID, id int, fields types.TodoFields) (types.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return types.Todo{}, m.err
	}
	for i, t := range m.todos {
		if t.ID == id && t.UserID == userID {
			t.Title, t.Description, t.Completed = fields.Title, fields.Description, fields.Completed
			m.todos[i] = t
			return t, nil
		}
	}
	return types.Todo{}, store.ErrNotFound
}

func (m *memoryTodos) Delete(ctx context.Context, userID, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for i, t := range m.todos {
		if t.ID == id && t.UserID == userID {
			m.todos = append(m.todos[:i], m.todos[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

type recordedEvents struct {
	mu     sync.Mutex
	events []mq.TodoEvent
	err    error
}

func (r *recordedEvents) Publish(ctx context.Context, event mq.TodoEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

var errStoreDown = errors.New("store down")
