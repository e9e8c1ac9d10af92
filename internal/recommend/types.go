// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package recommend

import (
	"context"
	"strings"
	"time"

	"github.com/tomtom215/cinerec/internal/catalog"
)

// SeedCount is the number of favourite titles a request must carry.
const SeedCount = 3

// Strategy selects the scoring approach for a request.
type Strategy string

const (
	// StrategyContent scores by metadata similarity (genres, cast,
	// director, keywords).
	StrategyContent Strategy = "content"

	// StrategyCollaborative scores by item similarity in the latent
	// factor space fitted on ratings.
	StrategyCollaborative Strategy = "collaborative"
)

// Strategies lists every supported strategy in a stable order.
func Strategies() []Strategy {
	return []Strategy{StrategyContent, StrategyCollaborative}
}

// String returns the string representation of the strategy.
func (s Strategy) String() string {
	return string(s)
}

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyContent, StrategyCollaborative:
		return true
	default:
		return false
	}
}

// ParseStrategy converts user input into a Strategy. Matching ignores case
// and accepts the short forms "cf" and "collab".
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "content", "content-based", "content_based":
		return StrategyContent, nil
	case "collaborative", "collab", "cf":
		return StrategyCollaborative, nil
	default:
		return "", invalidf("unknown strategy %q", s)
	}
}

// Recommendation is a single ranked result.
type Recommendation struct {
	ItemID int     `json:"item_id"`
	Title  string  `json:"title"`
	Score  float64 `json:"score"`
}

// Seed is a favourite title supplied by the caller. Year is optional and
// disambiguates titles shared by several movies.
type Seed struct {
	Title string `json:"title" validate:"required,max=512"`
	Year  int    `json:"year,omitempty" validate:"omitempty,min=1870,max=2200"`
}

// Request is a recommendation query.
type Request struct {
	// Seeds are the three favourite titles, in priority order.
	Seeds []Seed `json:"seeds" validate:"len=3,dive"`

	// Strategy selects content or collaborative scoring.
	Strategy Strategy `json:"strategy" validate:"required,oneof=content collaborative"`

	// TopN is the number of results. Zero uses the configured default.
	TopN int `json:"top_n" validate:"gte=0"`

	// RequestID is used for log correlation. Generated when empty.
	RequestID string `json:"request_id,omitempty"`
}

// NewRequest builds a request from plain titles.
func NewRequest(titles []string, strategy Strategy, topN int) Request {
	seeds := make([]Seed, len(titles))
	for i, t := range titles {
		seeds[i] = Seed{Title: t}
	}
	return Request{Seeds: seeds, Strategy: strategy, TopN: topN}
}

// ResolvedSeed is a seed title after resolution.
type ResolvedSeed struct {
	ItemID int    `json:"item_id"`
	Title  string `json:"title"`
}

// Response contains the merged recommendations.
type Response struct {
	// Items is ordered by the round-robin merge, best first per seed.
	Items []Recommendation `json:"items"`

	// Seeds echo the resolved favourites in request order.
	Seeds []ResolvedSeed `json:"seeds"`

	// Metadata contains request processing information.
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains information about how recommendations were generated.
type ResponseMetadata struct {
	RequestID    string    `json:"request_id"`
	Strategy     string    `json:"strategy"`
	TopN         int       `json:"top_n"`
	LatencyMS    int64     `json:"latency_ms"`
	CacheHit     bool      `json:"cache_hit"`
	ModelVersion int       `json:"model_version"`
	BuiltAt      time.Time `json:"built_at"`
	Timestamp    time.Time `json:"timestamp"`
}

// Algorithm fits a Model for one strategy. Implementations hold only
// configuration, so a single Algorithm can fit many catalogs.
type Algorithm interface {
	// Name returns the algorithm identifier used for logs and persisted
	// model files.
	Name() string

	// Strategy returns the strategy the fitted model serves.
	Strategy() Strategy

	// Fit builds a model from the catalog. Long fits must honour ctx.
	Fit(ctx context.Context, cat *catalog.Store) (Model, error)
}

// Model is a fitted, read-only scorer. It is safe for concurrent use.
type Model interface {
	// Similar returns up to n items most similar to seed, highest score
	// first with ties broken by item ID ascending. Items in exclude and
	// the seed itself are never returned. Titles are left empty.
	Similar(ctx context.Context, seed int, exclude map[int]struct{}, n int) ([]Recommendation, error)
}

// PersistentAlgorithm is an Algorithm whose fitted models can be saved to
// and restored from a model store.
type PersistentAlgorithm interface {
	Algorithm

	// State returns the gob-encodable state of a model fitted by this
	// algorithm.
	State(m Model) (any, error)

	// NewState returns a pointer to an empty state for decoding.
	NewState() any

	// Restore rebuilds a model from a decoded state.
	Restore(cat *catalog.Store, state any) (Model, error)
}

// BuildStatus represents the current state of engine builds.
type BuildStatus struct {
	IsBuilding          bool      `json:"is_building"`
	ModelVersion        int       `json:"model_version"`
	LastBuiltAt         time.Time `json:"last_built_at,omitempty"`
	LastBuildDurationMS int64     `json:"last_build_duration_ms"`
	LastError           string    `json:"last_error,omitempty"`
	CatalogFingerprint  string    `json:"catalog_fingerprint,omitempty"`
	ItemCount           int       `json:"item_count"`
	RatingCount         int       `json:"rating_count"`
	UserCount           int       `json:"user_count"`
	Strategies          []string  `json:"strategies"`
	RestoredModels      []string  `json:"restored_models,omitempty"`
}

// Metrics contains engine request counters.
type Metrics struct {
	RequestCount int64 `json:"request_count"`
	CacheHits    int64 `json:"cache_hits"`
	CacheMisses  int64 `json:"cache_misses"`
	ErrorCount   int64 `json:"error_count"`
}
