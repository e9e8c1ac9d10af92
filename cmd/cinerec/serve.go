// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cinerec/internal/api"
	"github.com/tomtom215/cinerec/internal/config"
	"github.com/tomtom215/cinerec/internal/logging"
	"github.com/tomtom215/cinerec/internal/supervisor"
	"github.com/tomtom215/cinerec/internal/supervisor/services"
)

type serveOptions struct {
	host string
	port int
}

func newServeCmd(g *globalOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Load the catalog, build the models and serve the HTTP API until SIGINT or
SIGTERM. With recommend.reload_interval set, the catalog is re-read on that
interval and the models are rebuilt when it changed.`,
		Example: `  cinerec serve
  cinerec serve --port 9090 --data-dir ./data`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, g, opts)
		},
	}

	cmd.Flags().StringVar(&opts.host, "host", "", "listen host (default from config)")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "listen port (default from config)")

	return cmd
}

func runServe(cmd *cobra.Command, g *globalOptions, opts *serveOptions) error {
	cfg, err := g.setup()
	if err != nil {
		return err
	}
	if opts.host != "" {
		cfg.Server.Host = opts.host
	}
	if opts.port != 0 {
		cfg.Server.Port = opts.port
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	logger := logging.WithComponent("serve")
	logWarnings(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loader, closer, err := newLoader(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closer.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("error closing loader")
		}
	}()

	engine, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}

	reload := services.NewReloadService(loader, engine, services.ReloadServiceConfig{
		Interval:     cfg.Recommend.ReloadInterval,
		BuildTimeout: cfg.Recommend.BuildTimeout,
	}, logger)

	// The API only starts once a first snapshot is served.
	if _, err := reload.Reload(ctx); err != nil {
		return err
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logger), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	handler := api.NewRouter(api.NewHandler(engine, version), &api.MiddlewareConfig{
		CORSAllowedOrigins: cfg.Server.CORSOrigins,
		CORSMaxAge:         86400,
		RateLimitRequests:  cfg.Server.RateLimitReqs,
		RateLimitWindow:    cfg.Server.RateLimitWindow,
		RateLimitDisabled:  cfg.Server.RateLimitDisabled,
	})
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree.AddAPIService(services.NewHTTPServerService(server, services.HTTPServiceConfig{
		Addr:            server.Addr,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger))
	if cfg.Recommend.ReloadInterval > 0 {
		tree.AddModelService(reload)
	}

	logger.Info().
		Str("addr", server.Addr).
		Strs("strategies", cfg.Recommend.Strategies).
		Dur("reload_interval", cfg.Recommend.ReloadInterval).
		Msg("starting supervisor tree")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logger.Warn().Str("service", svc.Name).Msg("service failed to stop within timeout")
		}
	}

	logger.Info().Msg("stopped")
	return nil
}

// logWarnings reports risky server settings.
func logWarnings(cfg *config.Config) {
	if cfg.Server.RateLimitDisabled {
		logging.Warn().Msg("rate limiting is disabled (DISABLE_RATE_LIMIT=true)")
	}
	for _, o := range cfg.Server.CORSOrigins {
		if o == "*" {
			logging.Warn().Msg("CORS allows any origin (CORS_ORIGINS=*); set explicit origins for browser clients")
			break
		}
	}
}
