// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

// Package recommend turns three favourite movie titles into a ranked list
// of recommendations.
//
// # Architecture
//
// A request flows through three stages:
//
//   - Resolver: maps each seed title (optionally with a release year) to
//     exactly one catalog item, or fails with NotFoundError or
//     AmbiguousError
//   - Model: the fitted model of the requested strategy ranks the catalog
//     against each seed separately
//   - Merge: the per-seed lists are interleaved round-robin, first
//     occurrence wins, and truncated to TopN
//
// Models are produced by an Algorithm (see package algorithms) during
// Build. A build fits every enabled strategy and then publishes resolver,
// catalog and models together as one immutable snapshot, so a query never
// mixes state from two builds.
//
// # Errors
//
// NotFoundError, AmbiguousError and InsufficientDataError are domain
// errors and match ErrNotFound, ErrAmbiguous and ErrInsufficientData
// through errors.Is. Malformed requests wrap ErrInvalidRequest. Anything
// else that goes wrong while scoring is an InternalError, which is never
// reported as a domain error.
//
// # Usage
//
//	engine, err := recommend.NewEngine(cfg, logger)
//	engine.RegisterAlgorithm(algorithms.NewContentBased(contentCfg))
//	engine.RegisterAlgorithm(algorithms.NewALS(alsCfg))
//
//	if err := engine.Build(ctx, cat); err != nil {
//	    return err
//	}
//
//	resp, err := engine.Recommend(ctx, recommend.NewRequest(
//	    []string{"Heat (1995)", "Alien (1979)", "Up (2009)"},
//	    recommend.StrategyContent, 10))
//
// # Thread Safety
//
// The engine is safe for concurrent use. Builds are single-writer: a
// second Build while one is running returns ErrBuildInProgress. Queries
// read the current snapshot without locking.
package recommend
