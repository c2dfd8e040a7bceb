// Package api exposes the knowledge layer over HTTP: ingestion, semantic
// search, grounded answers, and document management, plus health probes.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vyronlabs/agencyos/internal/log"
)

const (
	// ShutdownTimeout bounds graceful shutdown on context cancellation.
	ShutdownTimeout = 10 * time.Second

	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 120 * time.Second

	// Per-IP rate limit. Ingestion and ask calls do embedding work per
	// request, so the ceiling is deliberately modest.
	rateLimitPerSecond = 20
	rateLimitBurst     = 40
)

// Server bundles the HTTP mux and all route handlers.
type Server struct {
	mux     *http.ServeMux
	limiter *rateLimiter
	logger  log.Logger
}

// Deps carries the collaborators the server routes requests to.
type Deps struct {
	Pool      *pgxpool.Pool
	Ingestor  Ingestor
	DocIngest DocumentIngestor
	Retriever Retriever
	Answerer  Answerer
	Documents DocumentStore
}

// NewServer creates a server and registers all routes.
func NewServer(deps Deps, logger log.Logger) *Server {
	mux := http.NewServeMux()

	var db Pinger
	if deps.Pool != nil {
		db = deps.Pool
	}
	NewHealthHandler(db, logger).RegisterRoutes(mux)
	NewKnowledgeHandler(deps.Ingestor, deps.Retriever, deps.Answerer, logger).RegisterRoutes(mux)
	NewDocumentsHandler(deps.DocIngest, deps.Documents, logger).RegisterRoutes(mux)

	return &Server{
		mux:     mux,
		limiter: newRateLimiter(rateLimitPerSecond, rateLimitBurst),
		logger:  logger,
	}
}

// Handler returns the root handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		recoveryMiddleware(s.logger),
		loggingMiddleware(s.logger),
		rateLimitMiddleware(s.limiter, s.logger),
	)
}

// Run serves HTTP on addr until ctx is cancelled, then shuts down
// gracefully within ShutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
