package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/kanak-sys/ToDo-App/internal/auth"
	"github.com/kanak-sys/ToDo-App/internal/client"
	"github.com/kanak-sys/ToDo-App/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI serves one user's todos. Requests without its token get 401.
type fakeAPI struct {
	mu     sync.Mutex
	token  string
	todos  []types.Todo
	puts   []types.TodoFields
	logins []map[string]string
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	token, err := auth.NewTokenManager("test-secret").Issue(types.Identity{ID: 1, Username: "alice", Email: "a@x.io"})
	require.NoError(t, err)
	api := &fakeAPI{token: token}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		api.mu.Lock()
		api.logins = append(api.logins, body)
		api.mu.Unlock()
		if body["password"] != "pw1" {
			respond(w, http.StatusBadRequest, map[string]string{"error": "Invalid email or password"})
			return
		}
		respond(w, http.StatusOK, map[string]any{
			"user":  types.User{ID: 1, Username: "alice", Email: body["email"]},
			"token": api.token,
		})
	})
	mux.HandleFunc("GET /todos", api.authed(func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, api.todos)
	}))
	mux.HandleFunc("PUT /todos/{id}", api.authed(func(w http.ResponseWriter, r *http.Request) {
		var fields types.TodoFields
		_ = json.NewDecoder(r.Body).Decode(&fields)
		api.puts = append(api.puts, fields)
		for i, todo := range api.todos {
			if r.PathValue("id") == strconv.Itoa(todo.ID) {
				todo.Title, todo.Description, todo.Completed = fields.Title, fields.Description, fields.Completed
				api.todos[i] = todo
				respond(w, http.StatusOK, todo)
				return
			}
		}
		respond(w, http.StatusNotFound, map[string]string{"error": "Todo not found or unauthorized"})
	}))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return api, srv
}

func (a *fakeAPI) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		defer a.mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer "+a.token {
			respond(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next(w, r)
	}
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// setup points the CLI at srv with a fresh session file.
func setup(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	sessionFile := filepath.Join(t.TempDir(), "session.json")
	t.Setenv("ENV", "")
	t.Setenv("TODO_API_URL", srv.URL)
	t.Setenv("TODO_SESSION_FILE", sessionFile)

	original := readPassword
	readPassword = func(int) ([]byte, error) { return []byte("pw1"), nil }
	t.Cleanup(func() { readPassword = original })
	return sessionFile
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestLogin_PromptsAndStoresSession(t *testing.T) {
	api, srv := newFakeAPI(t)
	sessionFile := setup(t, srv)
	loginEmail = ""

	out, err := run(t, "a@x.io\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Email: ")
	assert.Contains(t, out, "Password: ")
	assert.Contains(t, out, "Logged in as alice")

	require.Len(t, api.logins, 1)
	assert.Equal(t, "a@x.io", api.logins[0]["email"])
	assert.Equal(t, "pw1", api.logins[0]["password"])

	s, err := client.NewFileStore(sessionFile).Load()
	require.NoError(t, err)
	assert.Equal(t, api.token, s.Token)
}

func TestList_PrintsTodos(t *testing.T) {
	api, srv := newFakeAPI(t)
	sessionFile := setup(t, srv)
	require.NoError(t, client.NewFileStore(sessionFile).Save(client.Session{Token: api.token}))

	out, err := run(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No todos yet")

	api.todos = []types.Todo{
		{ID: 1, UserID: 1, Title: "buy milk", Completed: true},
		{ID: 2, UserID: 1, Title: "walk dog", Description: "twice"},
	}
	out, err = run(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "[x]")
	assert.Contains(t, out, "buy milk")
	assert.Contains(t, out, "walk dog")
	assert.Contains(t, out, "twice")
}

func TestDone_TogglesWithFullReplace(t *testing.T) {
	api, srv := newFakeAPI(t)
	sessionFile := setup(t, srv)
	require.NoError(t, client.NewFileStore(sessionFile).Save(client.Session{Token: api.token}))
	api.todos = []types.Todo{{ID: 3, UserID: 1, Title: "buy milk", Description: "2 liters"}}

	out, err := run(t, "", "done", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Todo 3 is completed")
	require.Len(t, api.puts, 1)
	assert.Equal(t, types.TodoFields{Title: "buy milk", Description: "2 liters", Completed: true}, api.puts[0])
}

func TestEdit_KeepsUnchangedFields(t *testing.T) {
	api, srv := newFakeAPI(t)
	sessionFile := setup(t, srv)
	require.NoError(t, client.NewFileStore(sessionFile).Save(client.Session{Token: api.token}))
	api.todos = []types.Todo{{ID: 4, UserID: 1, Title: "buy milk", Description: "2 liters", Completed: true}}

	_, err := run(t, "", "edit", "4", "--title", "buy oat milk")
	require.NoError(t, err)
	require.Len(t, api.puts, 1)
	assert.Equal(t, types.TodoFields{Title: "buy oat milk", Description: "2 liters", Completed: true}, api.puts[0])
}

func TestList_RejectedTokenAsksForLogin(t *testing.T) {
	_, srv := newFakeAPI(t)
	sessionFile := setup(t, srv)

	forged, err := auth.NewTokenManager("other-secret").Issue(types.Identity{ID: 1, Username: "alice"})
	require.NoError(t, err)
	require.NoError(t, client.NewFileStore(sessionFile).Save(client.Session{Token: forged}))

	_, err = run(t, "", "list")
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrSessionExpired)
	assert.Contains(t, err.Error(), "todo login")

	_, err = client.NewFileStore(sessionFile).Load()
	assert.ErrorIs(t, err, client.ErrNoSession)
}

func TestList_WithoutSession(t *testing.T) {
	_, srv := newFakeAPI(t)
	setup(t, srv)

	_, err := run(t, "", "list")
	assert.ErrorIs(t, err, client.ErrNoSession)
}

func TestParseID(t *testing.T) {
	id, err := parseID("12")
	require.NoError(t, err)
	assert.Equal(t, 12, id)

	for _, bad := range []string{"abc", "0", "-3", ""} {
		_, err := parseID(bad)
		assert.Error(t, err, bad)
	}
}
