// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

// Package algorithms implements the recommendation strategies.
//
// Each algorithm implements recommend.Algorithm: it holds configuration
// only and Fit returns an immutable recommend.Model, so a refit never
// disturbs queries running against the previous model.
//
// # Algorithms
//
//   - ContentBased: cosine similarity of term-frequency vectors built from
//     genres, cast, director and plot keywords
//   - ALS: explicit-feedback alternating least squares on observed
//     ratings, queried by cosine similarity between item factors
//
// # Ranking
//
// Both models rank candidates the same way: score descending, ties broken
// by item ID ascending, seed and excluded items removed.
package algorithms

import (
	"context"
	"sort"

	"github.com/tomtom215/cinerec/internal/recommend"
)

// BaseAlgorithm provides the identity shared by all algorithms.
type BaseAlgorithm struct {
	name     string
	strategy recommend.Strategy
}

// NewBaseAlgorithm creates a new base algorithm.
func NewBaseAlgorithm(name string, strategy recommend.Strategy) BaseAlgorithm {
	return BaseAlgorithm{name: name, strategy: strategy}
}

// Name returns the algorithm identifier.
func (b *BaseAlgorithm) Name() string {
	return b.name
}

// Strategy returns the strategy served by fitted models.
func (b *BaseAlgorithm) Strategy() recommend.Strategy {
	return b.strategy
}

// rankTop returns up to n recommendations from parallel ids/scores,
// skipping position skip and every excluded ID. ids must be ascending so
// that a stable sort breaks score ties by ID.
func rankTop(ids []int, scores []float64, skip int, exclude map[int]struct{}, n int) []recommend.Recommendation {
	if n <= 0 {
		return []recommend.Recommendation{}
	}

	positions := make([]int, 0, len(ids))
	for pos, id := range ids {
		if pos == skip {
			continue
		}
		if _, excluded := exclude[id]; excluded {
			continue
		}
		positions = append(positions, pos)
	}

	sort.SliceStable(positions, func(a, b int) bool {
		return scores[positions[a]] > scores[positions[b]]
	})

	if len(positions) > n {
		positions = positions[:n]
	}

	out := make([]recommend.Recommendation, len(positions))
	for i, pos := range positions {
		out[i] = recommend.Recommendation{ItemID: ids[pos], Score: scores[pos]}
	}
	return out
}

// ContextCancelled checks if the context has been canceled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
