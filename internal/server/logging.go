package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// slogFormatter adapts chi's request logging to slog.
type slogFormatter struct {
	log *slog.Logger
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return middleware.RequestLogger(&slogFormatter{log: log})
}

func (f *slogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &slogEntry{
		log: f.log.With(
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
		),
		r: r,
	}
}

type slogEntry struct {
	log *slog.Logger
	r   *http.Request
}

func (e *slogEntry) Write(status, bytes int, header http.Header, elapsed time.Duration, extra any) {
	level := slog.LevelInfo
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	e.log.Log(e.r.Context(), level, "request",
		"status", status,
		"bytes", bytes,
		"elapsed", elapsed,
	)
}

func (e *slogEntry) Panic(v any, stack []byte) {
	e.log.Error("panic", "panic", fmt.Sprint(v), "stack", string(stack))
}
