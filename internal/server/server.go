// Package server exposes the sheet upload and retrieval HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rollkeeper/rollkeeper/internal/blob"
	"github.com/rollkeeper/rollkeeper/internal/config"
	"github.com/rollkeeper/rollkeeper/internal/pdf/text"
	"github.com/rollkeeper/rollkeeper/internal/sheet/pipeline"
	"github.com/rollkeeper/rollkeeper/internal/storage"
)

// Server is the rollkeeper HTTP server.
type Server struct {
	httpServer *http.Server
	store      storage.SheetStore
	blobs      *blob.Store
	pipeline   *pipeline.Pipeline
	texts      *text.Extractor
	logger     *slog.Logger

	version       string
	maxUploadSize int64
}

// Deps are the wired dependencies the server serves requests with.
type Deps struct {
	Store    storage.SheetStore
	Blobs    *blob.Store
	Pipeline *pipeline.Pipeline
	Logger   *slog.Logger
}

// New creates a server bound to cfg's address.
func New(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.Store == nil {
		return nil, errors.New("sheet store is required")
	}
	if deps.Blobs == nil {
		return nil, errors.New("blob store is required")
	}
	if deps.Pipeline == nil {
		return nil, errors.New("extraction pipeline is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	s := &Server{
		store:         deps.Store,
		blobs:         deps.Blobs,
		pipeline:      deps.Pipeline,
		texts:         text.NewExtractor(),
		logger:        deps.Logger,
		version:       cfg.Version,
		maxUploadSize: cfg.MaxUploadSize,
	}

	mux := http.NewServeMux()
	s.routes(mux)

	s.httpServer = &http.Server{
		Addr:         cfg.Address(),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/characters/{id}/levels/{level}/sheet", s.handleUploadSheet)
	mux.HandleFunc("GET /api/characters/{id}/levels/{level}/sheet", s.handleGetSheet)
	mux.HandleFunc("GET /api/characters/{id}/levels/{level}/sheet/text", s.handleGetSheetText)
	mux.HandleFunc("DELETE /api/characters/{id}/levels/{level}/sheet", s.handleDeleteSheet)
	mux.HandleFunc("GET /api/characters/{id}/sheets", s.handleListSheets)
}

// Handler returns the HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("http server shutdown error", "error", err)
	}
	s.logger.Info("server stopped")
	return nil
}
