// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

// Package catalog holds the movie catalog and the explicit rating events
// the recommenders are built from.
//
// A Store is validated once by NewStore and never changes afterwards:
// every rating references a known item, item IDs are unique and rating
// values lie on the configured scale. Loaders (see the dataset and
// database packages) are responsible for dropping rows that would fail
// these checks before calling NewStore.
//
// # Titles
//
// Stored titles follow the MovieLens convention of embedding the release
// year, e.g. "Toy Story (1995)". ReleaseYear takes the last four-digit run
// of a title and SplitTitle separates a trailing " (YYYY)" so that titles
// can be matched without the year.
package catalog
