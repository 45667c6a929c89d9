// Package httptransport runs the signup service's HTTP frontend.
package httptransport

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Timeouts sized for the small request bodies this service handles.
const (
	readTimeout  = 5 * time.Second
	writeTimeout = 10 * time.Second
	idleTimeout  = 60 * time.Second
)

// Server wraps http.Server with the service's lifecycle: serve until the
// context is cancelled, then drain connections within the shutdown timeout.
type Server struct {
	httpServer      *http.Server
	logger          *zap.SugaredLogger
	shutdownTimeout time.Duration
}

// NewServer constructs a Server for the given address and handler.
func NewServer(address string, handler http.Handler, logger *zap.SugaredLogger, shutdownTimeout time.Duration) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Server{
		httpServer: &http.Server{
			Addr:         address,
			Handler:      handler,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  idleTimeout,
		},
		logger:          logger,
		shutdownTimeout: shutdownTimeout,
	}
}

// Run blocks until ctx is cancelled or the listener fails. On cancellation it
// drains in-flight requests before returning.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Infow("listening", "address", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("server drained")
	return nil
}
