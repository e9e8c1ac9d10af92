// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

// Package dataset loads the movie catalog from the MovieLens/IMDB file layout.
//
// # Files
//
//   - movies.csv: movieId,title,genres (genres pipe-separated)
//   - imdb_data.csv: movieId,title_cast,director,runtime,budget,plot_keywords
//     (cast and keywords pipe-separated)
//   - ratings.csv: userId,movieId,rating,timestamp (unix seconds)
//
// Only movies.csv is required. Columns are located by header name, so
// extra columns and any column order are accepted.
//
// # Cleaning
//
// Rows that cannot be used are dropped and counted per source and reason
// rather than failing the load: unparsable IDs or values, duplicate movie
// IDs, metadata or ratings for movies not in movies.csv, and ratings outside
// the rating scale. The result always satisfies catalog.NewStore.
//
// # Loaders
//
// CSVLoader streams the files with encoding/csv. The database package
// provides a DuckDB loader over the same layout; both produce Records and
// share Assemble.
package dataset
