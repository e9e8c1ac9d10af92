// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// DefaultShutdownTimeout bounds graceful shutdown when none is configured.
const DefaultShutdownTimeout = 10 * time.Second

// HTTPServer is the lifecycle surface of *http.Server.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServiceConfig configures HTTPServerService.
type HTTPServiceConfig struct {
	// Addr is logged on start; the server listens on its own address.
	Addr string

	// ShutdownTimeout bounds draining of in-flight recommendation
	// requests. Non-positive means DefaultShutdownTimeout.
	ShutdownTimeout time.Duration
}

// HTTPServerService runs the recommendation API as a supervised service.
//
//	server := &http.Server{Addr: ":8080", Handler: router}
//	tree.AddAPIService(services.NewHTTPServerService(server, services.HTTPServiceConfig{Addr: server.Addr}, logger))
type HTTPServerService struct {
	server HTTPServer
	cfg    HTTPServiceConfig
	logger zerolog.Logger
}

// NewHTTPServerService creates the service.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func NewHTTPServerService(server HTTPServer, cfg HTTPServiceConfig, logger zerolog.Logger) *HTTPServerService {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	return &HTTPServerService{
		server: server,
		cfg:    cfg,
		logger: logger.With().Str("service", "http-server").Logger(),
	}
}

// Serve implements suture.Service. A listen failure is returned so the
// supervisor restarts the service; http.ErrServerClosed is not an error.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	h.logger.Info().Str("addr", h.cfg.Addr).Msg("API listening")

	select {
	case err, failed := <-errCh:
		if failed {
			return fmt.Errorf("http server failed: %w", err)
		}
		h.logger.Info().Msg("API closed")
		return nil

	case <-ctx.Done():
		h.logger.Info().Dur("timeout", h.cfg.ShutdownTimeout).Msg("draining API requests")

		// ctx is already canceled, so shutdown needs its own deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.cfg.ShutdownTimeout)
		defer cancel()

		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

// String identifies the service in supervisor logs.
func (h *HTTPServerService) String() string {
	return "http-server"
}
