package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kanak-sys/ToDo-App/types"
)

const defaultTimeout = 10 * time.Second

// Client calls the todo API. Authenticated calls take the Session explicitly.
type Client struct {
	baseURL string
	http    *http.Client
	store   TokenStore
	now     func() time.Time
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, store TokenStore, opts ...Option) *Client {
	if store == nil {
		store = &MemoryStore{}
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		store:   store,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session loads the stored session. An expired token is cleared and
// reported as ErrSessionExpired.
func (c *Client) Session() (Session, error) {
	s, err := c.store.Load()
	if err != nil {
		return Session{}, err
	}
	if s.Expired(c.now()) {
		_ = c.store.Clear()
		return Session{}, ErrSessionExpired
	}
	return s, nil
}

func (c *Client) Signup(ctx context.Context, username, email, password string) (Session, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	return c.authenticate(ctx, "/auth/signup", body)
}

func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	body := map[string]string{"email": email, "password": password}
	return c.authenticate(ctx, "/auth/login", body)
}

// Logout forgets the session locally. Tokens cannot be revoked server-side.
func (c *Client) Logout() error {
	return c.store.Clear()
}

// ListTodos returns the caller's todos. A 404 is read as an empty list.
func (c *Client) ListTodos(ctx context.Context, s Session) ([]types.Todo, error) {
	var todos []types.Todo
	err := c.do(ctx, s, http.MethodGet, "/todos", nil, &todos)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return []types.Todo{}, nil
	}
	if err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []types.Todo{}
	}
	return todos, nil
}

func (c *Client) CreateTodo(ctx context.Context, s Session, title, description string) (types.Todo, error) {
	var todo types.Todo
	body := map[string]string{"title": title, "description": description}
	err := c.do(ctx, s, http.MethodPost, "/todos", body, &todo)
	return todo, err
}

// UpdateTodo replaces all mutable fields of todo id.
func (c *Client) UpdateTodo(ctx context.Context, s Session, id int, fields types.TodoFields) (types.Todo, error) {
	var todo types.Todo
	err := c.do(ctx, s, http.MethodPut, fmt.Sprintf("/todos/%d", id), fields, &todo)
	return todo, err
}

// ToggleTodo flips completed, resending the current title and description.
func (c *Client) ToggleTodo(ctx context.Context, s Session, todo types.Todo) (types.Todo, error) {
	return c.UpdateTodo(ctx, s, todo.ID, types.TodoFields{
		Title:       todo.Title,
		Description: todo.Description,
		Completed:   !todo.Completed,
	})
}

func (c *Client) DeleteTodo(ctx context.Context, s Session, id int) (string, error) {
	var res struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, s, http.MethodDelete, fmt.Sprintf("/todos/%d", id), nil, &res)
	return res.Message, err
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (Session, error) {
	var s Session
	if err := c.send(ctx, "", http.MethodPost, path, body, &s); err != nil {
		return Session{}, err
	}
	if !s.Valid() {
		return Session{}, errors.New("server returned no token")
	}
	if err := c.store.Save(s); err != nil {
		return Session{}, fmt.Errorf("save session: %w", err)
	}
	return s, nil
}

func (c *Client) do(ctx context.Context, s Session, method, path string, body, out any) error {
	if !s.Valid() {
		return ErrNoSession
	}
	err := c.send(ctx, s.Token, method, path, body, out)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		// Only forget the stored session if it is the one that was rejected.
		if stored, loadErr := c.store.Load(); loadErr == nil && stored.Token == s.Token {
			_ = c.store.Clear()
		}
		return ErrSessionExpired
	}
	return err
}

func (c *Client) send(ctx context.Context, token, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return &APIError{Status: resp.StatusCode, Message: errBody.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Me returns the identity the server reads from the session token.
func (c *Client) Me(ctx context.Context, s Session) (types.Identity, error) {
	var identity types.Identity
	err := c.do(ctx, s, http.MethodGet, "/auth/me", nil, &identity)
	return identity, err
}
