// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package config

import (
	"fmt"
	"strings"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateData(); err != nil {
		return err
	}

	if err := c.validateRecommend(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateData() error {
	switch c.Data.Loader {
	case LoaderCSV, LoaderDuckDB:
	default:
		return fmt.Errorf("DATA_LOADER must be %s or %s, got %q", LoaderCSV, LoaderDuckDB, c.Data.Loader)
	}
	if strings.TrimSpace(c.Data.MoviesFile) == "" {
		return fmt.Errorf("MOVIES_FILE must not be empty")
	}
	if c.Data.RatingMax < c.Data.RatingMin {
		return fmt.Errorf("RATING_MAX (%v) must be >= RATING_MIN (%v)", c.Data.RatingMax, c.Data.RatingMin)
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be non-negative, got %d", c.Database.Threads)
	}
	return nil
}

//nolint:gocyclo // validation needs to check many fields
func (c *Config) validateRecommend() error {
	r := &c.Recommend

	if len(r.Strategies) == 0 {
		return fmt.Errorf("RECOMMEND_STRATEGIES must list at least one strategy")
	}
	for _, s := range r.Strategies {
		if s != "content" && s != "collaborative" {
			return fmt.Errorf("RECOMMEND_STRATEGIES: unknown strategy %q (want content or collaborative)", s)
		}
	}
	if r.TopN < 1 {
		return fmt.Errorf("RECOMMEND_TOP_N must be positive, got %d", r.TopN)
	}
	if r.MaxTopN < r.TopN {
		return fmt.Errorf("RECOMMEND_MAX_TOP_N (%d) must be >= RECOMMEND_TOP_N (%d)", r.MaxTopN, r.TopN)
	}

	w := r.Content
	if w.GenreWeight < 0 || w.CastWeight < 0 || w.DirectorWeight < 0 || w.KeywordWeight < 0 {
		return fmt.Errorf("content weights must be non-negative")
	}
	if w.MaxCast < 0 {
		return fmt.Errorf("RECOMMEND_CONTENT_MAX_CAST must be non-negative, got %d", w.MaxCast)
	}

	als := r.Collaborative
	if als.Factors < 1 || als.Factors > 512 {
		return fmt.Errorf("RECOMMEND_ALS_FACTORS must be between 1 and 512, got %d", als.Factors)
	}
	if als.Iterations < 1 {
		return fmt.Errorf("RECOMMEND_ALS_ITERATIONS must be positive, got %d", als.Iterations)
	}
	if als.Lambda <= 0 {
		return fmt.Errorf("RECOMMEND_ALS_LAMBDA must be positive, got %v", als.Lambda)
	}
	if als.MinItemRatings < 1 {
		return fmt.Errorf("RECOMMEND_ALS_MIN_ITEM_RATINGS must be positive, got %d", als.MinItemRatings)
	}
	if als.Workers < 0 {
		return fmt.Errorf("RECOMMEND_ALS_WORKERS must be non-negative, got %d", als.Workers)
	}

	if r.Cache.Enabled {
		if r.Cache.TTL <= 0 {
			return fmt.Errorf("RECOMMEND_CACHE_TTL must be positive when the cache is enabled, got %v", r.Cache.TTL)
		}
		if r.Cache.MaxEntries < 1 {
			return fmt.Errorf("RECOMMEND_CACHE_MAX_ENTRIES must be positive, got %d", r.Cache.MaxEntries)
		}
	}

	if r.RetainVersions < 1 {
		return fmt.Errorf("RECOMMEND_RETAIN_VERSIONS must be positive, got %d", r.RetainVersions)
	}
	if r.ReloadInterval < 0 {
		return fmt.Errorf("RECOMMEND_RELOAD_INTERVAL must be non-negative, got %v", r.ReloadInterval)
	}
	if r.BuildTimeout <= 0 {
		return fmt.Errorf("RECOMMEND_BUILD_TIMEOUT must be positive, got %v", r.BuildTimeout)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	if !c.Server.RateLimitDisabled {
		if c.Server.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", c.Server.RateLimitReqs)
		}
		if c.Server.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.Server.RateLimitWindow)
		}
	}
	return nil
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	validLevels := map[string]bool{
		"trace": true, "debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
