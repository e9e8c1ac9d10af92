// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

/*
Package config provides centralized configuration management for Cinerec.

# Configuration Sources

Configuration is layered with koanf, later layers overriding earlier ones:

 1. Defaults: built-in values from defaultConfig
 2. Config File: optional YAML file (CONFIG_PATH, config.yaml, config.yml,
    /etc/cinerec/config.yaml, /etc/cinerec/config.yml)
 3. Environment Variables: an explicit mapping table, so unrelated
    variables never leak into the configuration

Command line flags are applied by the CLI after Load.

# Configuration Structure

  - DataConfig: dataset location and loader selection
  - DatabaseConfig: DuckDB settings for the duckdb loader
  - RecommendConfig: strategies, limits, model parameters, cache, reload
  - ServerConfig: HTTP listener, CORS and rate limiting
  - LoggingConfig: level, format, caller

# Environment Variables

Data:
  - CINEREC_DATA_DIR: directory holding the CSV files (default: ./data)
  - DATA_LOADER: csv or duckdb (default: csv)
  - MOVIES_FILE, IMDB_FILE, RATINGS_FILE: file names inside the data directory
  - RATING_MIN, RATING_MAX: accepted rating range (default: 0.5-5.0)

Database:
  - DUCKDB_PATH: database file (default: :memory:)
  - DUCKDB_MAX_MEMORY: memory cap (default: 1GB)
  - DUCKDB_THREADS: worker threads (default: CPU count)

Recommendation:
  - RECOMMEND_STRATEGIES: comma-separated list (default: content,collaborative)
  - RECOMMEND_TOP_N, RECOMMEND_MAX_TOP_N: result size default and cap
  - RECOMMEND_SEED: factor initialization seed
  - RECOMMEND_ALS_FACTORS, RECOMMEND_ALS_ITERATIONS, RECOMMEND_ALS_LAMBDA,
    RECOMMEND_ALS_MIN_ITEM_RATINGS, RECOMMEND_ALS_WORKERS
  - RECOMMEND_CONTENT_GENRE_WEIGHT, RECOMMEND_CONTENT_CAST_WEIGHT,
    RECOMMEND_CONTENT_DIRECTOR_WEIGHT, RECOMMEND_CONTENT_KEYWORD_WEIGHT,
    RECOMMEND_CONTENT_MAX_CAST
  - RECOMMEND_CACHE_ENABLED, RECOMMEND_CACHE_TTL, RECOMMEND_CACHE_MAX_ENTRIES
  - RECOMMEND_MODEL_DIR: persisted model directory (empty disables)
  - RECOMMEND_RELOAD_INTERVAL: periodic catalog reload in serve mode (0 disables)
  - RECOMMEND_BUILD_TIMEOUT: bound on a full model build

Server:
  - HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
  - CORS_ORIGINS: comma-separated allowed origins
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Example Usage

	cfg, err := config.Load("")
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Println(cfg.Recommend.TopN)
*/
package config
