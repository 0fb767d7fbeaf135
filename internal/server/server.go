// Package server exposes the lint engine over HTTP: schemas are posted as
// DDL and come back as check reports, and the rule catalogue is browsable.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

// Config carries the listen address and the knobs governing a check.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	// FailFast stops each check at the first violation unless the request
	// asks for all of them.
	FailFast bool
	// AnalyzeLimit caps how many tables a collecting check validates at
	// once. Zero means no limit.
	AnalyzeLimit int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "127.0.0.1",
		Port:            8080,
		ShutdownTimeout: 10 * time.Second,
		FailFast:        true,
		AnalyzeLimit:    4,
	}
}

// Server is the top-level HTTP server. It owns the chi router and the rule
// set requests are checked against.
type Server struct {
	cfg        Config
	rules      []lint.Rule
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
}

// New builds a Server with its routes and middleware wired. Run starts
// accepting connections.
func New(cfg Config, ruleSet []lint.Rule, logger *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		rules:  ruleSet,
		logger: logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))

	r.Get("/healthz", s.handleHealthz)

	r.Route("/api", func(r chi.Router) {
		r.Get("/rules", s.handleRules)
		r.Post("/check", s.handleCheck)
	})

	s.router = r
}

// Addr returns the address the server is configured to listen on.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))
}

// Run serves until the context is canceled, then drains in-flight requests
// before returning.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server listen: %w", err)
	}

	s.logger.Info("server starting", "addr", ln.Addr().String())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutdown signal received, draining connections")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	err = g.Wait()
	s.logger.Info("server stopped")
	return err
}

// Router returns the underlying chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP hands the request to the router, so tests can drive the
// server without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
