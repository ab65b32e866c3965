package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/kanak-sys/ToDo-App/internal/auth"
	"github.com/kanak-sys/ToDo-App/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_LoginSavesSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@x.io", body["email"])
		assert.Equal(t, "pw1", body["password"])
		writeJSON(w, http.StatusOK, map[string]any{
			"user":  map[string]any{"id": 1, "username": "alice", "email": "a@x.io"},
			"token": "T1",
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := &MemoryStore{}
	c := New(srv.URL, store)

	s, err := c.Login(context.Background(), "a@x.io", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "T1", s.Token)
	assert.Equal(t, "alice", s.User.Username)

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, s, saved)
}

func TestClient_LoginFailureSurfacesMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid email or password"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := &MemoryStore{}
	c := New(srv.URL, store)

	_, err := c.Login(context.Background(), "a@x.io", "nope")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Invalid email or password", apiErr.Error())

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestClient_UnauthorizedClearsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /todos", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := &MemoryStore{}
	s := Session{Token: "stale"}
	require.NoError(t, store.Save(s))
	c := New(srv.URL, store)

	_, err := c.ListTodos(context.Background(), s)
	assert.ErrorIs(t, err, ErrSessionExpired)

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestClient_UnauthorizedKeepsNewerStoredSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /todos", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := &MemoryStore{}
	current := Session{Token: "current"}
	require.NoError(t, store.Save(current))
	c := New(srv.URL, store)

	_, err := c.ListTodos(context.Background(), Session{Token: "stale"})
	assert.ErrorIs(t, err, ErrSessionExpired)

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, current, saved)
}

func TestClient_ListSendsBearerAndTreats404AsEmpty(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("GET /todos", func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "Bearer T1", r.Header.Get("Authorization"))
		if calls == 1 {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		writeJSON(w, http.StatusOK, []types.Todo{{ID: 1, UserID: 1, Title: "buy milk"}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL, nil)
	s := Session{Token: "T1"}

	todos, err := c.ListTodos(context.Background(), s)
	require.NoError(t, err)
	assert.NotNil(t, todos)
	assert.Empty(t, todos)

	todos, err = c.ListTodos(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, "buy milk", todos[0].Title)
}

func TestClient_ToggleSendsFullReplace(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /todos/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.PathValue("id"))
		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.Equal(t, map[string]any{
			"title":       "buy milk",
			"description": "2 liters",
			"completed":   true,
		}, raw)
		writeJSON(w, http.StatusOK, types.Todo{ID: 7, UserID: 1, Title: "buy milk", Description: "2 liters", Completed: true})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL, nil)
	todo := types.Todo{ID: 7, UserID: 1, Title: "buy milk", Description: "2 liters"}

	got, err := c.ToggleTodo(context.Background(), Session{Token: "T1"}, todo)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Equal(t, "2 liters", got.Description)
}

func TestClient_CreateAndDelete(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /todos", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusCreated, types.Todo{ID: 1, UserID: 1, Title: body["title"], Description: body["description"]})
	})
	mux.HandleFunc("DELETE /todos/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "1" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Todo not found or unauthorized"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Todo deleted successfully"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL, nil)
	s := Session{Token: "T1"}

	todo, err := c.CreateTodo(context.Background(), s, "buy milk", "")
	require.NoError(t, err)
	assert.Equal(t, 1, todo.ID)
	assert.Equal(t, "", todo.Description)

	msg, err := c.DeleteTodo(context.Background(), s, 1)
	require.NoError(t, err)
	assert.Equal(t, "Todo deleted successfully", msg)

	_, err = c.DeleteTodo(context.Background(), s, 2)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Todo not found or unauthorized", apiErr.Message)
}

func TestClient_RequiresSession(t *testing.T) {
	c := New("http://127.0.0.1:1", nil)
	_, err := c.ListTodos(context.Background(), Session{})
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestClient_SessionExpiredLocally(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tokens := auth.NewTokenManager("secret").WithClock(func() time.Time { return issuedAt })
	token, err := tokens.Issue(types.Identity{ID: 1, Username: "alice", Email: "a@x.io"})
	require.NoError(t, err)

	store := &MemoryStore{}
	require.NoError(t, store.Save(Session{Token: token}))

	c := New("http://unused", store)
	c.now = func() time.Time { return issuedAt.Add(30 * time.Minute) }
	s, err := c.Session()
	require.NoError(t, err)
	assert.Equal(t, token, s.Token)

	c.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	_, err = c.Session()
	assert.ErrorIs(t, err, ErrSessionExpired)
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)

	s := Session{Token: "T1", User: types.User{ID: 1, Username: "alice", Email: "a@x.io"}}
	require.NoError(t, store.Save(s))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, s.Token, got.Token)
	assert.Equal(t, s.User.Username, got.User.Username)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestClient_Me(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer T1", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, types.Identity{ID: 1, Username: "alice", Email: "a@x.io"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	identity, err := New(srv.URL, nil).Me(context.Background(), Session{Token: "T1"})
	require.NoError(t, err)
	assert.Equal(t, types.Identity{ID: 1, Username: "alice", Email: "a@x.io"}, identity)
}
