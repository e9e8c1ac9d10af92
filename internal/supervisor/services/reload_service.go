// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinerec/internal/catalog"
	"github.com/tomtom215/cinerec/internal/dataset"
	"github.com/tomtom215/cinerec/internal/metrics"
)

// Reload outcomes, also used as the cinerec_reloads_total result label.
const (
	ReloadBuilt     = "built"
	ReloadUnchanged = "unchanged"
	ReloadFailed    = "failed"
)

// ModelBuilder rebuilds every model from a catalog and swaps the result in.
// *recommend.Engine satisfies it.
type ModelBuilder interface {
	Build(ctx context.Context, cat *catalog.Store) error
	Catalog() *catalog.Store
}

// ReloadServiceConfig holds configuration for the reload service.
type ReloadServiceConfig struct {
	// Interval between reloads. Zero or negative disables the loop; Serve
	// then only waits for shutdown.
	Interval time.Duration

	// BuildTimeout bounds one load plus build. Zero means no limit.
	BuildTimeout time.Duration
}

// ReloadService re-reads the catalog on a timer and rebuilds the models
// when the data changed. Queries keep using the previous snapshot until
// the new one is swapped in; a failed reload leaves it in place.
type ReloadService struct {
	loader  dataset.Loader
	builder ModelBuilder
	config  ReloadServiceConfig
	logger  zerolog.Logger
	name    string
}

// NewReloadService creates a new reload service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewReloadService(loader dataset.Loader, builder ModelBuilder, cfg ReloadServiceConfig, logger zerolog.Logger) *ReloadService {
	return &ReloadService{
		loader:  loader,
		builder: builder,
		config:  cfg,
		logger:  logger.With().Str("service", "reload").Str("loader", loader.Name()).Logger(),
		name:    "reload-service",
	}
}

// Serve implements suture.Service.
func (s *ReloadService) Serve(ctx context.Context) error {
	if s.config.Interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	s.logger.Info().Dur("interval", s.config.Interval).Msg("reload service running")

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("reload service shutting down")
			return ctx.Err()

		case <-ticker.C:
			if _, err := s.Reload(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled reload failed, serving previous models")
			}
		}
	}
}

// Reload loads the catalog and rebuilds the models unless the catalog
// fingerprint matches the one being served. It returns one of the Reload*
// outcomes. serve calls it once before the tree starts.
func (s *ReloadService) Reload(ctx context.Context) (string, error) {
	if s.config.BuildTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.BuildTimeout)
		defer cancel()
	}

	start := time.Now()
	cat, stats, err := s.loader.Load(ctx)
	if err != nil {
		metrics.RecordReload(ReloadFailed)
		return ReloadFailed, fmt.Errorf("load catalog: %w", err)
	}
	ObserveLoad(stats)

	if cur := s.builder.Catalog(); cur != nil && cur.Fingerprint() == cat.Fingerprint() {
		metrics.RecordReload(ReloadUnchanged)
		s.logger.Debug().Msg("catalog unchanged, keeping models")
		return ReloadUnchanged, nil
	}

	if err := s.builder.Build(ctx, cat); err != nil {
		metrics.RecordReload(ReloadFailed)
		return ReloadFailed, fmt.Errorf("build models: %w", err)
	}
	metrics.RecordReload(ReloadBuilt)
	metrics.SetCatalogSize(cat.Len(), cat.RatingCount())

	s.logger.Info().
		Int("items", cat.Len()).
		Int("ratings", cat.RatingCount()).
		Dur("duration", time.Since(start)).
		Msg("models rebuilt")

	return ReloadBuilt, nil
}

// ObserveLoad exports a loader's statistics as metrics.
func ObserveLoad(stats *dataset.LoadStats) {
	if stats == nil {
		return
	}
	metrics.RecordCatalogLoad(stats.Loader, stats.Duration())
	for _, src := range []string{dataset.SourceMovies, dataset.SourceIMDB, dataset.SourceRatings} {
		st := stats.Source(src)
		if st == nil {
			continue
		}
		for _, reason := range st.Reasons() {
			metrics.RecordSkippedRows(src, reason, int(st.Skipped[reason]))
		}
	}
}

// String identifies the service in supervisor logs.
func (s *ReloadService) String() string {
	return s.name
}
