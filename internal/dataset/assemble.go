// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package dataset

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tomtom215/cinerec/internal/catalog"
)

// noGenres is the MovieLens placeholder for a movie without genres.
const noGenres = "(no genres listed)"

// Assemble cleans raw records and builds the catalog. Dropped rows are
// counted in stats, whose Rows counters the caller has already filled.
//
//nolint:gocritic // rangeValCopy: records copied in range for clarity
func Assemble(recs *Records, scale catalog.RatingScale, stats *LoadStats) (*catalog.Store, error) {
	items := make([]catalog.Item, 0, len(recs.Movies))
	pos := make(map[int]int, len(recs.Movies))

	for _, m := range recs.Movies {
		title := strings.TrimSpace(m.Title)
		switch {
		case m.ID <= 0:
			stats.Movies.Skip(ReasonMalformed)
			continue
		case title == "":
			stats.Movies.Skip(ReasonEmptyTitle)
			continue
		}
		if _, dup := pos[m.ID]; dup {
			stats.Movies.Skip(ReasonDuplicate)
			continue
		}
		pos[m.ID] = len(items)
		items = append(items, catalog.Item{
			ID:     m.ID,
			Title:  title,
			Genres: splitGenres(m.Genres),
		})
	}
	stats.Movies.Loaded = int64(len(items))

	seenIMDB := make(map[int]struct{}, len(recs.IMDB))
	for _, r := range recs.IMDB {
		p, ok := pos[r.MovieID]
		if !ok {
			stats.IMDB.Skip(ReasonUnknownMovie)
			continue
		}
		if _, dup := seenIMDB[r.MovieID]; dup {
			stats.IMDB.Skip(ReasonDuplicate)
			continue
		}
		seenIMDB[r.MovieID] = struct{}{}
		items[p].Cast = SplitList(r.Cast)
		items[p].Director = cleanValue(r.Director)
		items[p].Keywords = SplitList(r.Keywords)
		stats.IMDB.Loaded++
	}

	ratings := make([]catalog.Rating, 0, len(recs.Ratings))
	for _, r := range recs.Ratings {
		if _, ok := pos[r.MovieID]; !ok {
			stats.Ratings.Skip(ReasonUnknownMovie)
			continue
		}
		if math.IsNaN(r.Rating) || !scale.Contains(r.Rating) {
			stats.Ratings.Skip(ReasonOutOfRange)
			continue
		}
		ratings = append(ratings, catalog.Rating{
			UserID:    r.UserID,
			ItemID:    r.MovieID,
			Value:     r.Rating,
			Timestamp: time.Unix(r.Timestamp, 0).UTC(),
		})
	}
	stats.Ratings.Loaded = int64(len(ratings))

	store, err := catalog.NewStore(items, ratings, scale)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	return store, nil
}

// SplitList splits a pipe-separated field, trimming entries and dropping
// empty ones and missing-value markers.
func SplitList(s string) []string {
	s = cleanValue(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func splitGenres(s string) []string {
	if strings.TrimSpace(s) == noGenres {
		return nil
	}
	return SplitList(s)
}

// cleanValue trims s and maps the pandas missing-value spellings to "".
func cleanValue(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "nan", "null", "none":
		return ""
	}
	return s
}
