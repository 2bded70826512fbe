// Package server exposes the render pipeline over HTTP. It serves
// one-shot layout and render calls plus CRUD for named diagrams backed
// by a store.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/loomviz/loom/pkg/render"
	"github.com/loomviz/loom/pkg/store"
)

// Config holds server configuration.
type Config struct {
	Addr string // listen address (default: "127.0.0.1:8321")

	// ShutdownTimeout bounds graceful shutdown (default: 10s).
	ShutdownTimeout time.Duration
}

// Server wires the chi router to the render runner and diagram store.
type Server struct {
	runner *render.Runner
	store  store.Store
	logger *log.Logger
	router chi.Router
	addr   string

	shutdownTimeout time.Duration
}

// NewServer creates a server. The runner must have its format sinks
// registered by the caller; the store may be nil to disable the diagram
// endpoints.
func NewServer(cfg Config, runner *render.Runner, st store.Store, logger *log.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8321"
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		runner:          runner,
		store:           st,
		logger:          logger,
		addr:            cfg.Addr,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/render", s.handleRender)

		if s.store != nil {
			r.Route("/diagrams", func(r chi.Router) {
				r.Get("/", s.handleListDiagrams)
				r.Post("/", s.handleCreateDiagram)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetDiagram)
					r.Put("/", s.handlePutDiagram)
					r.Delete("/", s.handleDeleteDiagram)
					r.Post("/render", s.handleRenderDiagram)
				})
			})
		}
	})
	return r
}

// Router exposes the handler for tests and embedding.
func (s *Server) Router() http.Handler { return s.router }

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// requestLogger logs one line per request with the structured logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
