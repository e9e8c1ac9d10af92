// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package catalog

import "sort"

// Popularity summarizes how an item was rated.
type Popularity struct {
	Item  Item    `json:"item"`
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`

	// Score is Count * Mean, so heavily rated and well rated items rank
	// above items with a handful of perfect ratings.
	Score float64 `json:"score"`
}

// Popular returns the n most popular rated items, ties broken by ID.
// n <= 0 returns every rated item.
func (s *Store) Popular(n int) []Popularity {
	sums := make(map[int]float64, len(s.itemRatings))
	for _, r := range s.ratings {
		sums[r.ItemID] += r.Value
	}

	out := make([]Popularity, 0, len(sums))
	for id, count := range s.itemRatings {
		item := s.items[s.index[id]]
		mean := sums[id] / float64(count)
		out = append(out, Popularity{
			Item:  item,
			Count: count,
			Mean:  mean,
			Score: float64(count) * mean,
		})
	}

	sort.Slice(out, func(a, b int) bool {
		if out[a].Score != out[b].Score {
			return out[a].Score > out[b].Score
		}
		return out[a].Item.ID < out[b].Item.ID
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
