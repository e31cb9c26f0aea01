package api

import (
	"context"
	"net/http"
	"time"

	"github.com/oakmart/storefront-backend/pkg/logger"
)

const shutdownGrace = 15 * time.Second

// Server wraps the HTTP listener with graceful shutdown.
type Server struct {
	http *http.Server
	log  *logger.Logger
}

// NewServer builds the listener on the configured port.
func NewServer(port string, handler http.Handler, log *logger.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		log: log,
	}
}

// Start blocks serving requests until the listener closes.
func (s *Server) Start(ctx context.Context) error {
	if s.log != nil {
		s.log.Info(s.log.WithField(ctx, "addr", s.http.Addr), "http server listening")
	}
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the grace period.
func (s *Server) Shutdown(ctx context.Context) error {
	drainCtx, cancel := context.WithTimeout(ctx, shutdownGrace)
	defer cancel()
	return s.http.Shutdown(drainCtx)
}
