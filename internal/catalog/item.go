// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package catalog

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Item is a movie in the catalog. Items are immutable once handed to NewStore.
type Item struct {
	// ID is the unique catalog identifier (MovieLens movieId).
	ID int `json:"id"`

	// Title is the stored title, usually with the release year embedded,
	// e.g. "Heat (1995)".
	Title string `json:"title"`

	// Year is the release year extracted from Title, 0 when absent.
	Year int `json:"year,omitempty"`

	// Genres in source order.
	Genres []string `json:"genres,omitempty"`

	// Cast in billing order.
	Cast []string `json:"cast,omitempty"`

	// Director is empty when unknown.
	Director string `json:"director,omitempty"`

	// Keywords are plot keywords in source order.
	Keywords []string `json:"keywords,omitempty"`
}

// DisplayTitle returns the title without its trailing release year.
func (i *Item) DisplayTitle() string {
	base, _ := SplitTitle(i.Title)
	return base
}

// Rating is a single explicit rating event.
type Rating struct {
	UserID    int       `json:"user_id"`
	ItemID    int       `json:"item_id"`
	Value     float64   `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}

// RatingScale bounds accepted rating values (inclusive).
type RatingScale struct {
	Min float64 `json:"min" koanf:"min"`
	Max float64 `json:"max" koanf:"max"`
}

// DefaultRatingScale is the MovieLens half-star scale.
func DefaultRatingScale() RatingScale {
	return RatingScale{Min: 0.5, Max: 5.0}
}

// Contains reports whether v lies within the scale.
func (s RatingScale) Contains(v float64) bool {
	return v >= s.Min && v <= s.Max
}

// Clamp limits v to the scale.
func (s RatingScale) Clamp(v float64) float64 {
	if v < s.Min {
		return s.Min
	}
	if v > s.Max {
		return s.Max
	}
	return v
}

var (
	yearRun      = regexp.MustCompile(`\d{4}`)
	trailingYear = regexp.MustCompile(`^(.*?)\s*\((\d{4})\)\s*$`)
)

// ReleaseYear returns the last four-digit run found in title, or 0.
// "2001: A Space Odyssey (1968)" yields 1968.
func ReleaseYear(title string) int {
	runs := yearRun.FindAllString(title, -1)
	if len(runs) == 0 {
		return 0
	}
	year, err := strconv.Atoi(runs[len(runs)-1])
	if err != nil {
		return 0
	}
	return year
}

// SplitTitle separates a trailing " (YYYY)" from title. When there is no
// trailing year the trimmed title and 0 are returned.
func SplitTitle(title string) (base string, year int) {
	m := trailingYear.FindStringSubmatch(title)
	if m == nil {
		return strings.TrimSpace(title), 0
	}
	year, err := strconv.Atoi(m[2])
	if err != nil {
		return strings.TrimSpace(title), 0
	}
	return strings.TrimSpace(m[1]), year
}
