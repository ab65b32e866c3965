package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kanak-sys/ToDo-App/internal/services"
	"github.com/kanak-sys/ToDo-App/types"
)

// TodoHandler provides HTTP handlers for todos.
type TodoHandler struct {
	todoService *services.TodoService
	log         *slog.Logger
}

func NewTodoHandler(todoService *services.TodoService, log *slog.Logger) *TodoHandler {
	if log == nil {
		log = slog.Default()
	}
	return &TodoHandler{todoService: todoService, log: log}
}

// TodoRouter registers todo routes. Every route requires authMiddleware.
func TodoRouter(r chi.Router, todoService *services.TodoService, authMiddleware func(http.Handler) http.Handler, log *slog.Logger) {
	handler := NewTodoHandler(todoService, log)

	r.Use(authMiddleware)
	r.Get("/", handler.ListTodos)
	r.Post("/", handler.CreateTodo)
	r.Route("/{todoID}", func(r chi.Router) {
		r.Put("/", handler.UpdateTodo)
		r.Delete("/", handler.DeleteTodo)
	})
}

func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, services.ErrUnauthorized.Message)
		return
	}

	todos, err := h.todoService.List(r.Context(), identity.ID)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, todos)
}

func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, services.ErrUnauthorized.Message)
		return
	}

	var req CreateTodoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	todo, err := h.todoService.Create(r.Context(), identity.ID, req.Title, req.Description)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, todo)
}

func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, services.ErrUnauthorized.Message)
		return
	}

	id, ok := parseTodoID(r)
	if !ok {
		writeError(w, http.StatusNotFound, services.ErrNotFound.Message)
		return
	}

	var req types.TodoFields
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	todo, err := h.todoService.Update(r.Context(), identity.ID, id, req)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, todo)
}

func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, services.ErrUnauthorized.Message)
		return
	}

	id, ok := parseTodoID(r)
	if !ok {
		writeError(w, http.StatusNotFound, services.ErrNotFound.Message)
		return
	}

	res, err := h.todoService.Delete(r.Context(), identity.ID, id)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

type CreateTodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// parseTodoID rejects ids that cannot name a row.
func parseTodoID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "todoID"))
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
