// Package api exposes the department-preference selector and application intake over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/CreativeUnicorns/recruitprefs"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	manager    *recruitprefs.Manager
	sessions   *recruitprefs.Sessions
	logger     recruitprefs.Logger
	metrics    *Metrics
	gatherer   prometheus.Gatherer
	adminToken string
	origins    map[string]bool
	router     *chi.Mux
	httpServer *http.Server
}

// Config holds configuration for the API server.
type Config struct {
	ListenAddress string
	Manager       *recruitprefs.Manager
	Sessions      *recruitprefs.Sessions
	Logger        recruitprefs.Logger
	// Metrics may be nil. Gatherer, when set, is served on /metrics.
	Metrics  *Metrics
	Gatherer prometheus.Gatherer
	// AdminToken guards the application review endpoints. When empty they are not mounted.
	AdminToken string
	// AllowedOrigins lists origins allowed to open selection streams. Empty means same origin only.
	AllowedOrigins []string
}

// NewServer creates and configures a new API server instance.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Manager == nil {
		return nil, errors.New("manager is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("sessions registry is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = recruitprefs.NewDefaultLogger()
	}
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":8080"
	}

	s := &Server{
		manager:    cfg.Manager,
		sessions:   cfg.Sessions,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		gatherer:   cfg.Gatherer,
		adminToken: cfg.AdminToken,
		origins:    make(map[string]bool, len(cfg.AllowedOrigins)),
		router:     chi.NewRouter(),
	}
	for _, o := range cfg.AllowedOrigins {
		s.origins[o] = true
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Selection streams are long-lived; per-message deadlines are set on the socket.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server and blocks until it is shut down.
// It returns nil after a graceful Stop.
func (s *Server) Start() error {
	s.logger.Info("API server starting", "address", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("API server stopping")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("API server stopped gracefully")
	return nil
}
