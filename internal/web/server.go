// Package web serves the task list as a server-rendered browser page.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tasklist/internal/config"
	"tasklist/internal/controller"
	"tasklist/internal/logging"
	"tasklist/internal/service"
)

const (
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	readHeaderTimeout = 5 * time.Second
)

// Server is the browser front end for one task list. Requests are handled
// one at a time: there is a single user and a single list.
type Server struct {
	addr    string
	log     *log.Logger
	timeout time.Duration

	// mu is the session mutex.
	mu      sync.Mutex
	ctrl    *controller.Controller
	list    *listBuffer
	input   *formInput
	dialogs *formDialogs
	loaded  bool

	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) { s.addr = addr }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithTimeout bounds background API calls.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// New creates a server over svc. The task list is loaded on the first page
// view.
func New(svc service.Service, opts ...Option) *Server {
	s := &Server{
		addr:    config.DefaultListenAddr,
		log:     logging.Discard(),
		timeout: controller.DefaultTimeout,
		list:    &listBuffer{},
		input:   &formInput{},
		dialogs: &formDialogs{},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.ctrl = controller.New(svc,
		controller.WithListView(s.list),
		controller.WithInputView(s.input),
		controller.WithDialogs(s.dialogs),
		controller.WithLogger(s.log),
		controller.WithTimeout(s.timeout),
	)
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/tasks", s.handleAdd)
	r.Post("/tasks/{id}/{action}", s.handleAction)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})

	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Controller returns the controller behind the page.
func (s *Server) Controller() *controller.Controller {
	return s.ctrl
}

// Run listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully and waits for background deletes.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.ctrl.Wait()
	return nil
}
