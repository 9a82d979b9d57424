// Package http provides the HTTP server for the authorization API.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clearcrm/authz/internal/config"
	"github.com/clearcrm/authz/internal/infra/http/handler"
	"github.com/clearcrm/authz/internal/infra/http/middleware"
	"github.com/clearcrm/authz/pkg/jwt"
	"github.com/clearcrm/authz/pkg/logger"
)

// Pinger reports the health of a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server.
type Server struct {
	httpServer          *http.Server
	router              chi.Router
	config              *config.Config
	logger              *logger.Logger
	authMiddleware      func(http.Handler) http.Handler
	rateLimitMiddleware func(http.Handler) http.Handler
	cleanupFuncs        []func()
}

// NewServer creates a new HTTP server with the global middleware chain
// applied.
func NewServer(cfg *config.Config, tokens *jwt.Generator, log *logger.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: log,
	}

	// Order matters: recovery first, identity before rate limiting so
	// authenticated clients are limited per user rather than per IP.
	s.router.Use(
		middleware.Recovery(log),
		middleware.RequestID(),
		middleware.BodyLimit(cfg.Server.MaxBodySize),
		middleware.Timeout(cfg.Server.RequestTimeout),
		middleware.Metrics(),
		middleware.Logger(log),
	)

	s.authMiddleware = middleware.Auth(tokens, log)

	if cfg.RateLimit.Enabled {
		rl := middleware.NewRateLimiter(&cfg.RateLimit, log)
		s.cleanupFuncs = append(s.cleanupFuncs, rl.Stop)
		s.rateLimitMiddleware = rl.Middleware()
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  time.Minute,
	}

	return s
}

// RegisterRoutes mounts health, metrics and API endpoints.
func (s *Server) RegisterRoutes(authzHandler *handler.AuthzHandler, pingers ...Pinger) {
	s.router.Get("/health", s.healthHandler(pingers))
	s.router.Get("/healthz", s.healthHandler(nil))
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api/v1/authz", func(r chi.Router) {
		r.Use(s.authMiddleware)
		if s.rateLimitMiddleware != nil {
			r.Use(s.rateLimitMiddleware)
		}
		authzHandler.RegisterRoutes(r)
	})
}

func (s *Server) healthHandler(pingers []Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		for _, p := range pingers {
			if err := p.Ping(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unhealthy"}`))
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.config.Server.Addr())

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	for _, cleanup := range s.cleanupFuncs {
		cleanup()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("HTTP server stopped")
	return nil
}
