// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package dataset

import (
	"context"
	"sort"
	"time"

	"github.com/tomtom215/cinerec/internal/catalog"
)

// Source names used in LoadStats and metrics.
const (
	SourceMovies  = "movies"
	SourceIMDB    = "imdb"
	SourceRatings = "ratings"
)

// Skip reasons.
const (
	ReasonMalformed    = "malformed"
	ReasonDuplicate    = "duplicate"
	ReasonUnknownMovie = "unknown_movie"
	ReasonOutOfRange   = "out_of_range"
	ReasonEmptyTitle   = "empty_title"
)

// Loader produces a catalog from some storage of the dataset files.
type Loader interface {
	// Load reads the dataset and builds a catalog.
	Load(ctx context.Context) (*catalog.Store, *LoadStats, error)

	// Name identifies the loader in logs and metrics.
	Name() string
}

// MovieRecord is a raw movies.csv row.
type MovieRecord struct {
	ID     int
	Title  string
	Genres string
}

// IMDBRecord is a raw imdb_data.csv row.
type IMDBRecord struct {
	MovieID  int
	Cast     string
	Director string
	Keywords string
}

// RatingRecord is a raw ratings.csv row.
type RatingRecord struct {
	UserID    int
	MovieID   int
	Rating    float64
	Timestamp int64
}

// Records holds the raw rows of all three files.
type Records struct {
	Movies  []MovieRecord
	IMDB    []IMDBRecord
	Ratings []RatingRecord
}

// SourceStats counts rows read from one file.
type SourceStats struct {
	// Rows is the number of data rows read, excluding the header.
	Rows int64 `json:"rows"`

	// Loaded is the number of rows that made it into the catalog.
	Loaded int64 `json:"loaded"`

	// Skipped counts dropped rows by reason.
	Skipped map[string]int64 `json:"skipped,omitempty"`
}

// Skip counts one dropped row.
func (s *SourceStats) Skip(reason string) {
	if s.Skipped == nil {
		s.Skipped = make(map[string]int64)
	}
	s.Skipped[reason]++
}

// SkippedTotal returns the number of dropped rows.
func (s *SourceStats) SkippedTotal() int64 {
	var n int64
	for _, c := range s.Skipped {
		n += c
	}
	return n
}

// Reasons returns the skip reasons in sorted order.
func (s *SourceStats) Reasons() []string {
	out := make([]string, 0, len(s.Skipped))
	for r := range s.Skipped {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// LoadStats holds statistics about a load.
type LoadStats struct {
	Loader  string      `json:"loader"`
	Movies  SourceStats `json:"movies"`
	IMDB    SourceStats `json:"imdb"`
	Ratings SourceStats `json:"ratings"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// Duration returns the duration of the load.
func (s *LoadStats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// Source returns the stats for a source name, or nil.
func (s *LoadStats) Source(name string) *SourceStats {
	switch name {
	case SourceMovies:
		return &s.Movies
	case SourceIMDB:
		return &s.IMDB
	case SourceRatings:
		return &s.Ratings
	default:
		return nil
	}
}
