// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinerec/internal/catalog"
	"github.com/tomtom215/cinerec/internal/config"
	"github.com/tomtom215/cinerec/internal/database"
	"github.com/tomtom215/cinerec/internal/dataset"
	"github.com/tomtom215/cinerec/internal/metrics"
	"github.com/tomtom215/cinerec/internal/recommend"
	"github.com/tomtom215/cinerec/internal/recommend/algorithms"
	"github.com/tomtom215/cinerec/internal/recommend/storage"
)

// buildEngineConfig maps application configuration onto the engine's.
func buildEngineConfig(cfg *config.Config) *recommend.Config {
	rc := &cfg.Recommend
	return &recommend.Config{
		Strategies: append([]string(nil), rc.Strategies...),
		Content: recommend.ContentConfig{
			GenreWeight:    rc.Content.GenreWeight,
			CastWeight:     rc.Content.CastWeight,
			DirectorWeight: rc.Content.DirectorWeight,
			KeywordWeight:  rc.Content.KeywordWeight,
			MaxCast:        rc.Content.MaxCast,
		},
		Collaborative: recommend.CollaborativeConfig{
			Factors:        rc.Collaborative.Factors,
			Iterations:     rc.Collaborative.Iterations,
			Lambda:         rc.Collaborative.Lambda,
			MinItemRatings: rc.Collaborative.MinItemRatings,
			Workers:        rc.Collaborative.Workers,
		},
		Build: recommend.BuildConfig{
			Timeout:        rc.BuildTimeout,
			ModelDir:       rc.ModelDir,
			RetainVersions: rc.RetainVersions,
		},
		Limits: recommend.LimitsConfig{
			DefaultTopN: rc.TopN,
			MaxTopN:     rc.MaxTopN,
		},
		Cache: recommend.CacheConfig{
			Enabled:    rc.Cache.Enabled,
			TTL:        rc.Cache.TTL,
			MaxEntries: rc.Cache.MaxEntries,
		},
		Seed: rc.Seed,
	}
}

func ratingScale(cfg *config.Config) catalog.RatingScale {
	return catalog.RatingScale{Min: cfg.Data.RatingMin, Max: cfg.Data.RatingMax}
}

func dataFiles(cfg *config.Config) dataset.Files {
	return dataset.Files{
		Dir:     cfg.Data.Dir,
		Movies:  cfg.Data.MoviesFile,
		IMDB:    cfg.Data.IMDBFile,
		Ratings: cfg.Data.RatingsFile,
	}
}

// newLoader returns the configured dataset loader. The closer releases the
// DuckDB connection for the duckdb loader and is a no-op otherwise.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func newLoader(cfg *config.Config, logger zerolog.Logger) (dataset.Loader, io.Closer, error) {
	switch cfg.Data.Loader {
	case config.LoaderDuckDB:
		db, err := database.New(&cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("open duckdb: %w", err)
		}
		return database.NewLoader(db, dataFiles(cfg), ratingScale(cfg), logger), db, nil
	default:
		return dataset.NewCSVLoader(dataFiles(cfg), ratingScale(cfg), logger), nopCloser{}, nil
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newEngine creates the engine with the enabled algorithms, the model store
// when recommend.model_dir is set, and a build hook feeding metrics.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func newEngine(cfg *config.Config, logger zerolog.Logger) (*recommend.Engine, error) {
	engine, err := recommend.NewEngine(buildEngineConfig(cfg), logger)
	if err != nil {
		return nil, err
	}
	algorithms.Register(engine)

	if cfg.Recommend.ModelDir != "" {
		store, err := storage.NewStore(cfg.Recommend.ModelDir)
		if err != nil {
			return nil, fmt.Errorf("open model store: %w", err)
		}
		engine.SetModelStore(store)
	}

	engine.SetBuildHook(func(s recommend.Strategy, d time.Duration, restored bool) {
		metrics.RecordModelBuild(s.String(), d, restored)
	})
	return engine, nil
}

// loadAndBuild reads the catalog and builds every model.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func loadAndBuild(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*recommend.Engine, error) {
	loader, closer, err := newLoader(cfg, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := closer.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("error closing loader")
		}
	}()

	engine, err := newEngine(cfg, logger)
	if err != nil {
		return nil, err
	}

	cat, stats, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	logLoadStats(logger, stats)

	if err := engine.Build(ctx, cat); err != nil {
		return nil, err
	}
	return engine, nil
}

//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func logLoadStats(logger zerolog.Logger, stats *dataset.LoadStats) {
	if stats == nil {
		return
	}
	for _, src := range []string{dataset.SourceMovies, dataset.SourceIMDB, dataset.SourceRatings} {
		st := stats.Source(src)
		if st == nil || st.SkippedTotal() == 0 {
			continue
		}
		ev := logger.Warn().Str("source", src).Int64("skipped", st.SkippedTotal())
		for _, reason := range st.Reasons() {
			ev = ev.Int64(reason, st.Skipped[reason])
		}
		ev.Msg("dropped dataset rows")
	}
}
