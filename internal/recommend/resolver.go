// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package recommend

import (
	"strings"

	"github.com/tomtom215/cinerec/internal/catalog"
)

// Resolver maps user supplied titles to catalog IDs.
//
// Matching is case-sensitive and exact. A title is first looked up as a
// stored title ("Heat (1995)"); failing that it is looked up as a display
// title with the trailing year removed ("Heat"), filtered by the year
// embedded in the input or passed explicitly.
type Resolver struct {
	cat       *catalog.Store
	byTitle   map[string][]int
	byDisplay map[string][]int
}

// NewResolver indexes every title in the catalog.
func NewResolver(cat *catalog.Store) *Resolver {
	r := &Resolver{
		cat:       cat,
		byTitle:   make(map[string][]int, cat.Len()),
		byDisplay: make(map[string][]int, cat.Len()),
	}

	// Items are in ID order, so every posting list is sorted.
	for _, item := range cat.Items() {
		title := strings.TrimSpace(item.Title)
		r.byTitle[title] = append(r.byTitle[title], item.ID)

		display, _ := catalog.SplitTitle(item.Title)
		r.byDisplay[display] = append(r.byDisplay[display], item.ID)
	}

	return r
}

// Resolve returns the single catalog ID for title. A non-zero year
// restricts matches to that release year. Fails with *NotFoundError or
// *AmbiguousError.
func (r *Resolver) Resolve(title string, year int) (int, error) {
	title = strings.TrimSpace(title)

	if ids, ok := r.byTitle[title]; ok {
		return r.pick(title, year, r.filterYear(ids, year))
	}

	display, inline := catalog.SplitTitle(title)
	if year == 0 {
		year = inline
	} else if inline != 0 && inline != year {
		return 0, &NotFoundError{Title: title, Year: year}
	}

	return r.pick(title, year, r.filterYear(r.byDisplay[display], year))
}

// ResolveItem is Resolve returning the catalog item.
func (r *Resolver) ResolveItem(title string, year int) (catalog.Item, error) {
	id, err := r.Resolve(title, year)
	if err != nil {
		return catalog.Item{}, err
	}
	item, _ := r.cat.Item(id)
	return item, nil
}

func (r *Resolver) pick(title string, year int, ids []int) (int, error) {
	switch len(ids) {
	case 0:
		return 0, &NotFoundError{Title: title, Year: year}
	case 1:
		return ids[0], nil
	default:
		candidates := make([]Candidate, 0, len(ids))
		for _, id := range ids {
			item, _ := r.cat.Item(id)
			candidates = append(candidates, Candidate{ItemID: id, Title: item.Title, Year: item.Year})
		}
		return 0, &AmbiguousError{Title: title, Candidates: candidates}
	}
}

func (r *Resolver) filterYear(ids []int, year int) []int {
	if year == 0 {
		return ids
	}
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if item, ok := r.cat.Item(id); ok && item.Year == year {
			out = append(out, id)
		}
	}
	return out
}
