// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package algorithms

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/tomtom215/cinerec/internal/catalog"
	"github.com/tomtom215/cinerec/internal/recommend"
	"github.com/tomtom215/cinerec/internal/recommend/storage"
)

func contentItems() []catalog.Item {
	return []catalog.Item{
		{ID: 1, Title: "Moon (2009)", Genres: []string{"Drama"}, Keywords: []string{"space", "robot"}},
		{ID: 2, Title: "WALL-E (2008)", Genres: []string{"Comedy"}, Keywords: []string{"space", "robot"}},
		{ID: 3, Title: "The Others (2001)", Genres: []string{"Horror"}, Keywords: []string{"ghost"}},
	}
}

func fitContent(t *testing.T, cfg ContentBasedConfig, items []catalog.Item) *ContentModel {
	t.Helper()
	m, err := NewContentBased(cfg).FitItems(context.Background(), items)
	if err != nil {
		t.Fatalf("FitItems() error = %v", err)
	}
	return m
}

func TestNewContentBased(t *testing.T) {
	tests := []struct {
		name string
		cfg  ContentBasedConfig
		want ContentBasedConfig
	}{
		{
			name: "zero weights fall back to term frequency",
			cfg:  ContentBasedConfig{},
			want: ContentBasedConfig{GenreWeight: 1, CastWeight: 1, DirectorWeight: 1, KeywordWeight: 1},
		},
		{
			name: "explicit weights kept",
			cfg:  ContentBasedConfig{GenreWeight: 2, KeywordWeight: 0.5, MaxCast: 3},
			want: ContentBasedConfig{GenreWeight: 2, KeywordWeight: 0.5, MaxCast: 3},
		},
		{
			name: "negative max cast keeps everyone",
			cfg:  ContentBasedConfig{GenreWeight: 1, MaxCast: -2},
			want: ContentBasedConfig{GenreWeight: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb := NewContentBased(tt.cfg)
			if cb.config != tt.want {
				t.Errorf("config = %+v, want %+v", cb.config, tt.want)
			}
			if cb.Name() != "content" || cb.Strategy() != recommend.StrategyContent {
				t.Errorf("identity = %s/%s, want content/content", cb.Name(), cb.Strategy())
			}
		})
	}
}

func TestContentModel_Similar_KeywordOverlap(t *testing.T) {
	m := fitContent(t, ContentBasedConfig{}, contentItems())

	got, err := m.Similar(context.Background(), 1, nil, 10)
	if err != nil {
		t.Fatalf("Similar() error = %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("len(Similar()) = %d, want 2", len(got))
	}
	if got[0].ItemID != 2 || got[1].ItemID != 3 {
		t.Errorf("Similar() order = [%d %d], want [2 3]", got[0].ItemID, got[1].ItemID)
	}
	// 2 shared keywords out of 3 tokens each.
	if want := 2.0 / 3.0; math.Abs(got[0].Score-want) > 1e-12 {
		t.Errorf("Similar()[0].Score = %v, want %v", got[0].Score, want)
	}
	if got[1].Score != 0 {
		t.Errorf("Similar()[1].Score = %v, want 0", got[1].Score)
	}
}

func TestContentModel_Similarity(t *testing.T) {
	items := append(contentItems(), catalog.Item{ID: 4, Title: "Blank (1999)"})
	m := fitContent(t, ContentBasedConfig{}, items)

	tests := []struct {
		name    string
		a, b    int
		want    float64
		wantErr error
	}{
		{name: "self", a: 1, b: 1, want: 1},
		{name: "shared keywords", a: 1, b: 2, want: 2.0 / 3.0},
		{name: "disjoint", a: 1, b: 3, want: 0},
		{name: "target without metadata", a: 1, b: 4, want: 0},
		{name: "unknown target", a: 1, b: 99, want: 0},
		{name: "seed without metadata", a: 4, b: 1, wantErr: recommend.ErrInsufficientData},
		{name: "unknown seed", a: 99, b: 1, wantErr: recommend.ErrInsufficientData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Similarity(tt.a, tt.b)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Similarity() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Similarity() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Similarity(%d, %d) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestContentModel_Tokens(t *testing.T) {
	items := []catalog.Item{
		{ID: 1, Title: "Big (1988)", Genres: []string{"Comedy"}, Cast: []string{"Tom Hanks", "Elizabeth Perkins"}, Director: "Penny Marshall"},
		{ID: 2, Title: "Top Gun (1986)", Genres: []string{"Action"}, Cast: []string{"Tom Cruise"}},
	}

	t.Run("multi-word names stay one token", func(t *testing.T) {
		m := fitContent(t, ContentBasedConfig{}, items)
		want := []string{"comedy", "elizabethperkins", "pennymarshall", "tomhanks"}
		if got := m.Tokens(1); !reflect.DeepEqual(got, want) {
			t.Errorf("Tokens(1) = %v, want %v", got, want)
		}
		if sim, _ := m.Similarity(1, 2); sim != 0 {
			t.Errorf("Similarity(Tom Hanks film, Tom Cruise film) = %v, want 0", sim)
		}
	})

	t.Run("max cast trims billing", func(t *testing.T) {
		m := fitContent(t, ContentBasedConfig{GenreWeight: 1, CastWeight: 1, MaxCast: 1}, items)
		want := []string{"comedy", "tomhanks"}
		if got := m.Tokens(1); !reflect.DeepEqual(got, want) {
			t.Errorf("Tokens(1) = %v, want %v", got, want)
		}
	})
}

func TestContentModel_Similar_Limits(t *testing.T) {
	items := make([]catalog.Item, 0, 6)
	for id := 1; id <= 6; id++ {
		items = append(items, catalog.Item{ID: id, Title: "Film", Genres: []string{"Drama"}})
	}
	m := fitContent(t, ContentBasedConfig{}, items)
	exclude := map[int]struct{}{2: {}, 5: {}}

	tests := []struct {
		name string
		n    int
		want []int
	}{
		{name: "ties break by id", n: 2, want: []int{3, 4}},
		{name: "truncated to eligible items", n: 10, want: []int{3, 4, 6}},
		{name: "zero", n: 0, want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Similar(context.Background(), 1, exclude, tt.n)
			if err != nil {
				t.Fatalf("Similar() error = %v", err)
			}
			ids := make([]int, len(got))
			for i, r := range got {
				ids[i] = r.ItemID
			}
			if !reflect.DeepEqual(ids, tt.want) {
				t.Errorf("Similar() = %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestContentBased_FitItems_Unsorted(t *testing.T) {
	items := contentItems()
	items[0], items[1] = items[1], items[0]

	_, err := NewContentBased(ContentBasedConfig{}).FitItems(context.Background(), items)
	if !errors.Is(err, recommend.ErrInternal) {
		t.Errorf("FitItems() error = %v, want ErrInternal", err)
	}
}

func TestContentBased_StateRestore(t *testing.T) {
	cat, err := catalog.NewStore(contentItems(), nil, catalog.DefaultRatingScale())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	cb := NewContentBased(ContentBasedConfig{})
	model, err := cb.Fit(context.Background(), cat)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	state, err := cb.State(model)
	if err != nil {
		t.Fatalf("State() error = %v", err)
	}
	st, ok := state.(storage.ContentModelState)
	if !ok {
		t.Fatalf("State() type = %T, want storage.ContentModelState", state)
	}

	t.Run("round trip", func(t *testing.T) {
		restored, err := cb.Restore(cat, &st)
		if err != nil {
			t.Fatalf("Restore() error = %v", err)
		}
		want, _ := model.Similar(context.Background(), 1, nil, 5)
		got, _ := restored.Similar(context.Background(), 1, nil, 5)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("restored Similar() = %v, want %v", got, want)
		}
	})

	t.Run("different weights rejected", func(t *testing.T) {
		other := NewContentBased(ContentBasedConfig{GenreWeight: 3})
		if _, err := other.Restore(cat, &st); err == nil {
			t.Error("Restore() error = nil, want weight mismatch")
		}
	})

	t.Run("wrong state type rejected", func(t *testing.T) {
		if _, err := cb.Restore(cat, &storage.ALSModelState{}); err == nil {
			t.Error("Restore() error = nil, want type error")
		}
	})
}

func TestContentBased_Fit_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewContentBased(ContentBasedConfig{}).FitItems(ctx, contentItems())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("FitItems() error = %v, want context.Canceled", err)
	}
}
