// AngelaMos | 2026
// server.go

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/carterperez-dev/templates/dice-roller/internal/config"
)

// Readiness is flipped during shutdown so load balancers stop routing
// before connections are drained.
type Readiness interface {
	SetReady(ready bool)
	SetShutdown(shutdown bool)
}

type Config struct {
	ServerConfig  config.ServerConfig
	HealthHandler Readiness
	Logger        *slog.Logger
}

type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	health     Readiness
	logger     *slog.Logger
	handler    http.Handler
}

func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()
	router.Use(chimw.Recoverer)

	s := &Server{
		router: router,
		health: cfg.HealthHandler,
		logger: logger,
	}

	s.httpServer = &http.Server{
		Addr:              cfg.ServerConfig.Address(),
		Handler:           http.HandlerFunc(s.serveHTTP),
		ReadTimeout:       cfg.ServerConfig.ReadTimeout,
		ReadHeaderTimeout: cfg.ServerConfig.ReadTimeout,
		WriteTimeout:      cfg.ServerConfig.WriteTimeout,
		IdleTimeout:       cfg.ServerConfig.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	return s
}

func (s *Server) Router() *chi.Mux {
	return s.router
}

// Wrap installs an outermost handler around the router, for adapters that
// are not chi middleware.
func (s *Server) Wrap(wrap func(http.Handler) http.Handler) {
	s.handler = wrap(s.router)
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	if s.handler != nil {
		s.handler.ServeHTTP(w, r)
		return
	}
	s.router.ServeHTTP(w, r)
}

func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

// Shutdown marks the service as not ready, waits drainDelay for in-flight
// routing to settle, then stops accepting connections.
func (s *Server) Shutdown(ctx context.Context, drainDelay time.Duration) error {
	if s.health != nil {
		s.health.SetReady(false)
		s.health.SetShutdown(true)
	}

	s.logger.Info("draining before shutdown", "delay", drainDelay)

	select {
	case <-time.After(drainDelay):
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	s.logger.Info("http server stopped")
	return nil
}
