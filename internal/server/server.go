package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/kanak-sys/ToDo-App/config"
	"github.com/kanak-sys/ToDo-App/internal/auth"
	"github.com/kanak-sys/ToDo-App/internal/db"
	"github.com/kanak-sys/ToDo-App/internal/handlers"
	"github.com/kanak-sys/ToDo-App/internal/mq"
	"github.com/kanak-sys/ToDo-App/internal/services"
	"github.com/kanak-sys/ToDo-App/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	mq         *mq.MQ
	log        *slog.Logger
}

// Deps are the collaborators the router needs.
type Deps struct {
	Auth              *services.AuthService
	Todos             *services.TodoService
	Log               *slog.Logger
	AuthRatePerMinute int
}

// New opens the store and broker described by cfg and wires the router.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	broker, err := mq.Open(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn, cfg.StoreTimeout)
	todoRepo := store.NewTodoRepository(dbConn, cfg.StoreTimeout)

	authService := services.NewAuthService(userRepo, auth.NewHasher(cfg.BcryptCost), auth.NewTokenManager(cfg.JWTSecret), log)
	todoService := services.NewTodoService(todoRepo, mq.NewTodoEvents(broker), log)

	router := NewRouter(Deps{
		Auth:              authService,
		Todos:             todoService,
		Log:               log,
		AuthRatePerMinute: cfg.AuthRateLimit,
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		mq:         broker,
		log:        log,
	}, nil
}

// NewRouter builds the HTTP surface over the given services.
func NewRouter(d Deps) *chi.Mux {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		requestLogger(log),
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         300,
		}),
		middleware.Timeout(60*time.Second),
	)

	authMiddleware := handlers.RequireAuth(d.Auth)

	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		if d.AuthRatePerMinute > 0 {
			r.Use(NewClientLimiter(d.AuthRatePerMinute).Middleware(log))
		}
		handlers.AuthRouter(r, d.Auth, log)
	})
	router.Route("/todos", func(r chi.Router) {
		handlers.TodoRouter(r, d.Todos, authMiddleware, log)
	})

	return router
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.log.Info("server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then releases the broker and pool.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.mq != nil {
		_ = s.mq.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return err
}
