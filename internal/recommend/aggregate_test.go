// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package recommend

import (
	"reflect"
	"testing"
)

func recs(ids ...int) []Recommendation {
	out := make([]Recommendation, len(ids))
	for i, id := range ids {
		out[i] = Recommendation{ItemID: id, Score: float64(len(ids) - i)}
	}
	return out
}

func ids(items []Recommendation) []int {
	out := make([]int, len(items))
	for i, r := range items {
		out[i] = r.ItemID
	}
	return out
}

func TestMerge(t *testing.T) {
	const (
		a = iota + 1
		b
		c
		d
		e
		f
		g
		h
	)

	tests := []struct {
		name    string
		perSeed [][]Recommendation
		topN    int
		want    []int
	}{
		{
			name:    "round robin with duplicate",
			perSeed: [][]Recommendation{recs(a, b, c), recs(b, d, e), recs(f, g, h)},
			topN:    5,
			want:    []int{a, b, f, c, d},
		},
		{
			name:    "all lists exhausted before topN",
			perSeed: [][]Recommendation{recs(a), recs(a, b), recs()},
			topN:    10,
			want:    []int{a, b},
		},
		{
			name:    "identical lists",
			perSeed: [][]Recommendation{recs(a, b, c), recs(a, b, c), recs(a, b, c)},
			topN:    3,
			want:    []int{a, b, c},
		},
		{
			name:    "zero topN",
			perSeed: [][]Recommendation{recs(a, b)},
			topN:    0,
			want:    []int{},
		},
		{
			name:    "no lists",
			perSeed: nil,
			topN:    3,
			want:    []int{},
		},
		{
			name:    "uneven lengths",
			perSeed: [][]Recommendation{recs(a), recs(b, c, d), recs(e)},
			topN:    5,
			want:    []int{a, b, e, c, d},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Merge(tt.perSeed, tt.topN))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Merge() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMerge_KeepsFirstOccurrenceScore(t *testing.T) {
	first := []Recommendation{{ItemID: 1, Score: 0.9}}
	second := []Recommendation{{ItemID: 1, Score: 0.1}, {ItemID: 2, Score: 0.05}}

	got := Merge([][]Recommendation{first, second}, 2)
	if len(got) != 2 {
		t.Fatalf("Merge() returned %d items, want 2", len(got))
	}
	if got[0].Score != 0.9 {
		t.Errorf("Merge()[0].Score = %v, want 0.9", got[0].Score)
	}
	if got[1].ItemID != 2 {
		t.Errorf("Merge()[1].ItemID = %d, want 2", got[1].ItemID)
	}
}
