// Package server exposes drawing sessions over HTTP so a browser front end
// can post the same toolbar commands the CLI runs.
//
// All session routes live under /api/sessions/{id}. Requests for one
// session are serialized by a [Hub]; every mutating request saves the
// session to the store before responding. Errors are returned as
// {"code": ..., "message": ...} with the message in the language of the
// request's Accept-Language header.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/sketchmap/pkg/geo"
	"github.com/matzehuels/sketchmap/pkg/observability"
	"github.com/matzehuels/sketchmap/pkg/session"
)

// Config configures a Server.
type Config struct {
	Store  session.Store
	Logger *log.Logger
	// Engine measures features of new sessions that do not name one.
	Engine geo.Engine
	// SessionTTL is the lifetime of new sessions; zero never expires.
	SessionTTL time.Duration
	// CleanupInterval controls how often expired sessions are purged by
	// [Server.Run], which also releases editors idle for longer than the
	// interval; zero disables the sweep.
	CleanupInterval time.Duration
	// ShutdownTimeout bounds graceful shutdown. Defaults to 5s.
	ShutdownTimeout time.Duration
}

// Server is the HTTP API.
type Server struct {
	cfg    Config
	hub    *Hub
	logger *log.Logger
	router chi.Router
}

// New creates a server. cfg.Store is required.
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("server: store is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Engine == nil {
		cfg.Engine = geo.WGS84
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	s := &Server{
		cfg:    cfg,
		hub:    NewHub(cfg.Store, cfg.Logger),
		logger: cfg.Logger,
	}
	s.routes()
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Hub returns the session hub.
func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Get("/", s.handleListSessions)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)

			r.Post("/commands/{command}", s.handleCommand)
			r.Post("/vertices", s.handleAddVertex)
			r.Put("/vertices/{part}/{index}", s.handleMoveVertex)
			r.Post("/complete", s.handleComplete)
			r.Post("/cancel", s.handleCancel)

			r.Get("/features", s.handleListFeatures)
			r.Get("/features/{fid}", s.handleSelectFeature)
			r.Get("/panel", s.handlePanel)
			r.Get("/exports/{format}", s.handleExport)
		})
	})
	s.router = r
}

// requestLogger logs each request through the server logger and reports
// it to the HTTP hooks.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), elapsed)
		s.logger.Debug("http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", elapsed.Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
// When a cleanup interval is configured, expired sessions are purged in
// the background.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shCtx)
	})
	if s.cfg.CleanupInterval > 0 {
		group.Go(func() error {
			t := time.NewTicker(s.cfg.CleanupInterval)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-t.C:
					if err := s.cfg.Store.Cleanup(ctx); err != nil {
						s.logger.Warn("session cleanup failed", "error", err)
					}
					if n := s.hub.Sweep(s.cfg.CleanupInterval); n > 0 {
						s.logger.Debug("released idle sessions", "count", n)
					}
				}
			}
		})
	}
	return group.Wait()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
