// Package http serves the quote API over gin.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotesync/internal/platform/config"
)

// Server wraps http.Server with a gin engine and graceful shutdown.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	config     *config.ServerConfig
	logger     *slog.Logger
}

// New creates a server. Routes are added to Engine() afterwards.
func New(cfg *config.ServerConfig, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(maxBodySize(cfg.MaxRequestSize))

	return &Server{
		engine: engine,
		httpServer: &http.Server{
			Addr:         net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port)),
			Handler:      engine,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		config: cfg,
		logger: logger,
	}
}

// Engine returns the gin engine for route registration.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start listens in the background. The returned channel yields a listen
// error, if any, and is closed when the server stops.
func (s *Server) Start() <-chan error {
	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)

		s.logger.Info("starting HTTP server",
			slog.String("addr", s.httpServer.Addr),
			slog.Duration("read_timeout", s.config.ReadTimeout),
			slog.Duration("write_timeout", s.config.WriteTimeout),
		)

		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	return errCh
}

// Run serves until ctx is cancelled, then shuts down within the configured
// shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := s.Start()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}

	return <-errCh
}

// Shutdown stops accepting connections and waits for active ones to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	s.logger.Info("HTTP server stopped")

	return nil
}

func maxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
