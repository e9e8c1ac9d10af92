// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package algorithms

import "github.com/tomtom215/cinerec/internal/recommend"

// FromConfig returns the algorithm for every strategy enabled in cfg.
func FromConfig(cfg *recommend.Config) []recommend.Algorithm {
	var algs []recommend.Algorithm
	for _, s := range cfg.Strategies {
		switch recommend.Strategy(s) {
		case recommend.StrategyContent:
			algs = append(algs, NewContentBased(ContentBasedConfig{
				GenreWeight:    cfg.Content.GenreWeight,
				CastWeight:     cfg.Content.CastWeight,
				DirectorWeight: cfg.Content.DirectorWeight,
				KeywordWeight:  cfg.Content.KeywordWeight,
				MaxCast:        cfg.Content.MaxCast,
			}))
		case recommend.StrategyCollaborative:
			algs = append(algs, NewALS(ALSConfig{
				NumFactors:     cfg.Collaborative.Factors,
				NumIterations:  cfg.Collaborative.Iterations,
				Regularization: cfg.Collaborative.Lambda,
				MinItemRatings: cfg.Collaborative.MinItemRatings,
				NumWorkers:     cfg.Collaborative.Workers,
				Seed:           cfg.Seed,
			}))
		}
	}
	return algs
}

// Register adds the algorithms enabled in the engine's config.
func Register(e *recommend.Engine) {
	for _, alg := range FromConfig(e.GetConfig()) {
		e.RegisterAlgorithm(alg)
	}
}
