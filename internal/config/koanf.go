// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cinerec/config.yaml",
	"/etc/cinerec/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
func defaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Dir:         "data",
			Loader:      LoaderCSV,
			MoviesFile:  "movies.csv",
			IMDBFile:    "imdb_data.csv",
			RatingsFile: "ratings.csv",
			RatingMin:   0.5,
			RatingMax:   5.0,
		},
		Database: DatabaseConfig{
			Path:      ":memory:",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Recommend: RecommendConfig{
			Strategies: []string{"content", "collaborative"},
			TopN:       10,
			MaxTopN:    100,
			Seed:       42,
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
			Cache: CacheConfig{
				Enabled:    true,
				TTL:        5 * time.Minute,
				MaxEntries: 10000,
			},
			RetainVersions: 3,
			BuildTimeout:   10 * time.Minute,
		},
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Default returns the built-in configuration without reading any file or
// environment variable.
func Default() *Config {
	return defaultConfig()
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: path when non-empty (must exist), otherwise the first of
//     CONFIG_PATH and DefaultConfigPaths that exists
//  3. Environment Variables: Override any setting
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional unless given explicitly)
	configPath := path
	if configPath == "" {
		configPath = findConfigFile()
	} else if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configPath, err)
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"recommend.strategies",
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
var envMappings = map[string]string{
	// Data mappings
	"cinerec_data_dir": "data.dir",
	"data_loader":      "data.loader",
	"movies_file":      "data.movies_file",
	"imdb_file":        "data.imdb_file",
	"ratings_file":     "data.ratings_file",
	"rating_min":       "data.rating_min",
	"rating_max":       "data.rating_max",

	// Database mappings
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Recommendation engine mappings
	"recommend_strategies":              "recommend.strategies",
	"recommend_top_n":                   "recommend.top_n",
	"recommend_max_top_n":               "recommend.max_top_n",
	"recommend_seed":                    "recommend.seed",
	"recommend_content_genre_weight":    "recommend.content.genre_weight",
	"recommend_content_cast_weight":     "recommend.content.cast_weight",
	"recommend_content_director_weight": "recommend.content.director_weight",
	"recommend_content_keyword_weight":  "recommend.content.keyword_weight",
	"recommend_content_max_cast":        "recommend.content.max_cast",
	"recommend_als_factors":             "recommend.collaborative.factors",
	"recommend_als_iterations":          "recommend.collaborative.iterations",
	"recommend_als_lambda":              "recommend.collaborative.lambda",
	"recommend_als_min_item_ratings":    "recommend.collaborative.min_item_ratings",
	"recommend_als_workers":             "recommend.collaborative.workers",
	"recommend_cache_enabled":           "recommend.cache.enabled",
	"recommend_cache_ttl":               "recommend.cache.ttl",
	"recommend_cache_max_entries":       "recommend.cache.max_entries",
	"recommend_model_dir":               "recommend.model_dir",
	"recommend_retain_versions":         "recommend.retain_versions",
	"recommend_reload_interval":         "recommend.reload_interval",
	"recommend_build_timeout":           "recommend.build_timeout",

	// Server mappings
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"cors_origins":          "server.cors_origins",
	"rate_limit_requests":   "server.rate_limit_reqs",
	"rate_limit_window":     "server.rate_limit_window",
	"disable_rate_limit":    "server.rate_limit_disabled",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - CINEREC_DATA_DIR -> data.dir
//   - RECOMMEND_ALS_FACTORS -> recommend.collaborative.factors
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	// Unmapped keys return "" and are skipped, so random environment
	// variables never pollute the config.
	return envMappings[strings.ToLower(key)]
}
