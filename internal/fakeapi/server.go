// Package fakeapi serves an in-memory todo collection with the same REST
// contract as the remote one. It backs `todo serve` and the HTTP tests.
package fakeapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/idilsaglam/todos/internal/logging"
	"github.com/idilsaglam/todos/internal/model"
	"github.com/idilsaglam/todos/internal/store/jsonstore"
)

// Server holds the collection and the failure switches used by tests.
type Server struct {
	mu         sync.Mutex
	todos      []model.Todo
	nextID     int
	store      *jsonstore.Store
	logger     *log.Logger
	origins    []string
	latency    time.Duration
	failList   bool
	failCreate bool
	failDelete map[int]bool
}

// Option configures a Server.
type Option func(*Server)

// WithStore persists the collection to a JSON file after every change.
func WithStore(st *jsonstore.Store) Option {
	return func(s *Server) { s.store = st }
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAllowOrigins restricts CORS to the given origins. By default every
// origin is allowed.
func WithAllowOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// WithLatency delays every response, imitating a remote round trip.
func WithLatency(d time.Duration) Option {
	return func(s *Server) { s.latency = d }
}

// New creates a server, loading the stored collection when a store is set.
func New(opts ...Option) (*Server, error) {
	s := &Server{
		nextID:     1,
		logger:     logging.Discard(),
		failDelete: map[int]bool{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store != nil {
		todos, err := s.store.Load()
		if err != nil {
			return nil, fmt.Errorf("load collection: %w", err)
		}
		s.Seed(todos...)
	}
	return s, nil
}

// Seed appends todos. A todo without an id gets the next free one.
func (s *Server) Seed(todos ...model.Todo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range todos {
		if t.ID == model.PlaceholderID {
			t.ID = s.nextID
		}
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
		s.todos = append(s.todos, t)
	}
}

// Todos returns a snapshot of the whole collection.
func (s *Server) Todos() []model.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Todo(nil), s.todos...)
}

// FailList makes GET /todos answer 500 while on is true.
func (s *Server) FailList(on bool) {
	s.mu.Lock()
	s.failList = on
	s.mu.Unlock()
}

// FailCreate makes POST /todos answer 500 while on is true.
func (s *Server) FailCreate(on bool) {
	s.mu.Lock()
	s.failCreate = on
	s.mu.Unlock()
}

// FailDelete makes DELETE /todos/<id> answer 500 for the given ids.
func (s *Server) FailDelete(ids ...int) {
	s.mu.Lock()
	for _, id := range ids {
		s.failDelete[id] = true
	}
	s.mu.Unlock()
}

// Handler builds the gin router.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), cors.New(s.corsConfig()))
	if s.latency > 0 {
		r.Use(func(c *gin.Context) {
			time.Sleep(s.latency)
			c.Next()
		})
	}

	r.GET("/todos", s.listTodos)
	r.POST("/todos", s.createTodo)
	r.DELETE("/todos/:id", s.deleteTodo)
	return r
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(s.origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.origins
	}
	return cfg
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"took", time.Since(start),
		)
	}
}
