// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package config

import "time"

// Config holds all application configuration.
type Config struct {
	Data      DataConfig      `koanf:"data"`
	Database  DatabaseConfig  `koanf:"database"`
	Recommend RecommendConfig `koanf:"recommend"`
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// Loader names accepted by DataConfig.Loader.
const (
	LoaderCSV    = "csv"
	LoaderDuckDB = "duckdb"
)

// DataConfig locates the dataset.
type DataConfig struct {
	// Dir holds the CSV files. Relative file names resolve against it.
	Dir string `koanf:"dir"`

	// Loader is csv or duckdb.
	Loader string `koanf:"loader"`

	MoviesFile  string `koanf:"movies_file"`
	IMDBFile    string `koanf:"imdb_file"`
	RatingsFile string `koanf:"ratings_file"`

	// RatingMin and RatingMax bound accepted rating values (inclusive).
	RatingMin float64 `koanf:"rating_min"`
	RatingMax float64 `koanf:"rating_max"`
}

// DatabaseConfig holds DuckDB settings used by the duckdb loader.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()
}

// RecommendConfig holds recommendation engine configuration.
type RecommendConfig struct {
	// Strategies lists the enabled strategies: content, collaborative.
	Strategies []string `koanf:"strategies"`

	// TopN is the result size when a request does not set one.
	TopN int `koanf:"top_n"`

	// MaxTopN caps requested result sizes.
	MaxTopN int `koanf:"max_top_n"`

	// Seed drives latent factor initialization.
	Seed int64 `koanf:"seed"`

	Content       ContentConfig       `koanf:"content"`
	Collaborative CollaborativeConfig `koanf:"collaborative"`
	Cache         CacheConfig         `koanf:"cache"`

	// ModelDir enables persisted models when non-empty.
	ModelDir string `koanf:"model_dir"`

	// RetainVersions is the number of persisted versions kept per model.
	RetainVersions int `koanf:"retain_versions"`

	// ReloadInterval re-reads the catalog and rebuilds models in serve
	// mode. Zero disables periodic reloads.
	ReloadInterval time.Duration `koanf:"reload_interval"`

	// BuildTimeout bounds a full model build.
	BuildTimeout time.Duration `koanf:"build_timeout"`
}

// ContentConfig weights metadata fields for content similarity.
type ContentConfig struct {
	GenreWeight    float64 `koanf:"genre_weight"`
	CastWeight     float64 `koanf:"cast_weight"`
	DirectorWeight float64 `koanf:"director_weight"`
	KeywordWeight  float64 `koanf:"keyword_weight"`
	MaxCast        int     `koanf:"max_cast"`
}

// CollaborativeConfig holds ALS parameters.
type CollaborativeConfig struct {
	Factors        int     `koanf:"factors"`
	Iterations     int     `koanf:"iterations"`
	Lambda         float64 `koanf:"lambda"`
	MinItemRatings int     `koanf:"min_item_ratings"`
	Workers        int     `koanf:"workers"`
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	TTL        time.Duration `koanf:"ttl"`
	MaxEntries int           `koanf:"max_entries"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}
