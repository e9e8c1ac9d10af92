// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package recommend

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Strategies lists the enabled strategies. Each needs a registered
	// algorithm before Build.
	Strategies []string `json:"strategies"`

	// Content contains parameters for content similarity.
	Content ContentConfig `json:"content"`

	// Collaborative contains parameters for the latent factor model.
	Collaborative CollaborativeConfig `json:"collaborative"`

	// Build contains model build parameters.
	Build BuildConfig `json:"build"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// Cache contains response caching parameters.
	Cache CacheConfig `json:"cache"`

	// Seed is the random seed for factor initialization.
	// If zero, a fixed default seed is used.
	Seed int64 `json:"seed"`
}

// ContentConfig weights the metadata fields that make up an item's
// term-frequency vector. A token's weight is its count multiplied by the
// weight of the field it came from.
type ContentConfig struct {
	GenreWeight    float64 `json:"genre_weight"`
	CastWeight     float64 `json:"cast_weight"`
	DirectorWeight float64 `json:"director_weight"`
	KeywordWeight  float64 `json:"keyword_weight"`

	// MaxCast limits the cast to the top billed names. 0 keeps all.
	MaxCast int `json:"max_cast"`
}

// CollaborativeConfig contains parameters for alternating least squares.
type CollaborativeConfig struct {
	// Factors is the latent dimension.
	// Default: 32.
	Factors int `json:"factors"`

	// Iterations is the number of alternating sweeps.
	// Default: 15.
	Iterations int `json:"iterations"`

	// Lambda is the regularization strength, scaled per row by its
	// number of observed ratings.
	// Default: 0.05.
	Lambda float64 `json:"lambda"`

	// MinItemRatings is the number of ratings an item needs to be
	// fitted. Items below it cannot seed collaborative queries.
	// Default: 1.
	MinItemRatings int `json:"min_item_ratings"`

	// Workers is the number of goroutines solving rows in parallel.
	// Default: 4.
	Workers int `json:"workers"`
}

// BuildConfig contains model build parameters.
type BuildConfig struct {
	// Timeout bounds a complete build (all strategies).
	// Default: 10m.
	Timeout time.Duration `json:"timeout"`

	// ModelDir enables persisted models when non-empty.
	ModelDir string `json:"model_dir"`

	// RetainVersions is the number of persisted versions kept per model.
	// Default: 3.
	RetainVersions int `json:"retain_versions"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultTopN is used when a request leaves TopN at zero.
	// Default: 10.
	DefaultTopN int `json:"default_top_n"`

	// MaxTopN caps TopN.
	// Default: 100.
	MaxTopN int `json:"max_top_n"`
}

// CacheConfig contains caching parameters.
type CacheConfig struct {
	// Enabled controls whether caching is active.
	// Default: true.
	Enabled bool `json:"enabled"`

	// TTL is the cache entry time-to-live.
	// Default: 5m.
	TTL time.Duration `json:"ttl"`

	// MaxEntries is the maximum number of cached entries.
	// Default: 10000.
	MaxEntries int `json:"max_entries"`
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() *Config {
	return &Config{
		Strategies: []string{string(StrategyContent), string(StrategyCollaborative)},
		Content: ContentConfig{
			GenreWeight:    1.0,
			CastWeight:     1.0,
			DirectorWeight: 1.0,
			KeywordWeight:  1.0,
		},
		Collaborative: CollaborativeConfig{
			Factors:        32,
			Iterations:     15,
			Lambda:         0.05,
			MinItemRatings: 1,
			Workers:        4,
		},
		Build: BuildConfig{
			Timeout:        10 * time.Minute,
			RetainVersions: 3,
		},
		Limits: LimitsConfig{
			DefaultTopN: 10,
			MaxTopN:     100,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
		},
		Seed: 42, // Default seed for determinism
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	if len(c.Strategies) == 0 {
		return fmt.Errorf("strategies must not be empty")
	}
	for _, s := range c.Strategies {
		if !Strategy(s).Valid() {
			return fmt.Errorf("strategies: unknown strategy %q", s)
		}
	}

	if c.Content.GenreWeight < 0 || c.Content.CastWeight < 0 ||
		c.Content.DirectorWeight < 0 || c.Content.KeywordWeight < 0 {
		return fmt.Errorf("content weights must be non-negative")
	}
	if c.Content.GenreWeight+c.Content.CastWeight+c.Content.DirectorWeight+c.Content.KeywordWeight == 0 {
		return fmt.Errorf("content weights must not all be zero")
	}
	if c.Content.MaxCast < 0 {
		return fmt.Errorf("content.max_cast must be non-negative, got %d", c.Content.MaxCast)
	}

	if c.Collaborative.Factors < 1 {
		return fmt.Errorf("collaborative.factors must be positive, got %d", c.Collaborative.Factors)
	}
	if c.Collaborative.Iterations < 1 {
		return fmt.Errorf("collaborative.iterations must be positive, got %d", c.Collaborative.Iterations)
	}
	if c.Collaborative.Lambda <= 0 {
		return fmt.Errorf("collaborative.lambda must be positive, got %f", c.Collaborative.Lambda)
	}
	if c.Collaborative.MinItemRatings < 1 {
		return fmt.Errorf("collaborative.min_item_ratings must be positive, got %d", c.Collaborative.MinItemRatings)
	}

	if c.Build.Timeout <= 0 {
		return fmt.Errorf("build.timeout must be positive, got %v", c.Build.Timeout)
	}
	if c.Build.RetainVersions < 1 {
		return fmt.Errorf("build.retain_versions must be positive, got %d", c.Build.RetainVersions)
	}

	if c.Limits.DefaultTopN < 1 {
		return fmt.Errorf("limits.default_top_n must be positive, got %d", c.Limits.DefaultTopN)
	}
	if c.Limits.MaxTopN < c.Limits.DefaultTopN {
		return fmt.Errorf("limits.max_top_n must be >= limits.default_top_n, got %d < %d", c.Limits.MaxTopN, c.Limits.DefaultTopN)
	}

	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive, got %v", c.Cache.TTL)
		}
		if c.Cache.MaxEntries < 1 {
			return fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
		}
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.Strategies = append([]string(nil), c.Strategies...)
	return &out
}

// MarshalJSON implements custom JSON marshaling for duration fields.
func (c *Config) MarshalJSON() ([]byte, error) {
	type Alias Config
	type buildJSON struct {
		Timeout        string `json:"timeout"`
		ModelDir       string `json:"model_dir"`
		RetainVersions int    `json:"retain_versions"`
	}
	type cacheJSON struct {
		Enabled    bool   `json:"enabled"`
		TTL        string `json:"ttl"`
		MaxEntries int    `json:"max_entries"`
	}
	return json.Marshal(&struct {
		*Alias
		Build buildJSON `json:"build"`
		Cache cacheJSON `json:"cache"`
	}{
		Alias: (*Alias)(c),
		Build: buildJSON{
			Timeout:        c.Build.Timeout.String(),
			ModelDir:       c.Build.ModelDir,
			RetainVersions: c.Build.RetainVersions,
		},
		Cache: cacheJSON{
			Enabled:    c.Cache.Enabled,
			TTL:        c.Cache.TTL.String(),
			MaxEntries: c.Cache.MaxEntries,
		},
	})
}
