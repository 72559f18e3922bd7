// Package server exposes the task store and the assist endpoints over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/amonks/orbit/assist"
	"github.com/amonks/orbit/task"
)

const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	Store *task.Store

	// Assistant serves the /functions/v1 endpoints. When nil those
	// endpoints are not registered.
	Assistant assist.Assistant

	// Logger defaults to a no-op logger.
	Logger *zap.SugaredLogger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Server handles task and assist requests. All store access goes through
// a single mutex, so the server is the only mutator of its store.
type Server struct {
	store     *task.Store
	assistant assist.Assistant
	logger    *zap.SugaredLogger
	now       func() time.Time

	mu sync.Mutex
}

// New creates a server.
func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.New("task store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Server{
		store:     opts.Store,
		assistant: opts.Assistant,
		logger:    logger,
		now:       now,
	}, nil
}

// Handler returns the HTTP handler for the server's routes.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/tasks", s.handleTasksList).Methods(http.MethodGet)
	router.HandleFunc("/tasks", s.handleTasksCreate).Methods(http.MethodPost)
	router.HandleFunc("/tasks/stats", s.handleTasksStats).Methods(http.MethodGet)
	router.HandleFunc("/tasks/{id}", s.handleTaskShow).Methods(http.MethodGet)
	router.HandleFunc("/tasks/{id}", s.handleTaskUpdate).Methods(http.MethodPatch)
	router.HandleFunc("/tasks/{id}", s.handleTaskDelete).Methods(http.MethodDelete)
	if s.assistant != nil {
		assist.NewHandler(s.assistant, s.logger).Register(router)
	}
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, http.StatusNotFound, fmt.Errorf("no route for %s", r.URL.Path))
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
	})
	return s.recoverHandler(s.logRequests(router))
}

// Serve runs the server on addr until it fails or receives SIGINT, then
// shuts down gracefully.
func (s *Server) Serve(addr string) error {
	server := &http.Server{
		Addr:     addr,
		Handler:  s.Handler(),
		ErrorLog: zap.NewStdLog(s.logger.Desugar()),
	}

	listenErrs := make(chan error, 1)
	go func() {
		listenErrs <- server.ListenAndServe()
	}()
	s.logger.Infow("listening", "addr", addr)

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	select {
	case err := <-listenErrs:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorw("server stopped", "error", err)
			return err
		}
		return nil
	case <-interrupts:
		s.logger.Infow("interrupt received, shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		shutdownErr := server.Shutdown(shutdownCtx)
		cancel()
		listenErr := <-listenErrs
		if errors.Is(listenErr, http.ErrServerClosed) {
			listenErr = nil
		}
		return errors.Join(shutdownErr, listenErr)
	}
}
