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
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/cinerec/internal/catalog"
	"github.com/tomtom215/cinerec/internal/recommend"
	"github.com/tomtom215/cinerec/internal/recommend/storage"
)

// plantedRatings returns the rank-1 matrix r_ui = u_u * v_i for users 1..4
// and items 1..5, minus the held-out cells.
func plantedRatings(heldOut map[[2]int]bool) (train []catalog.Rating, test []catalog.Rating) {
	userFactor := []float64{1, 1.25, 1.5, 2}
	itemFactor := []float64{1, 1.5, 2, 2.25, 2.5}

	ts := time.Unix(0, 0)
	for u, uf := range userFactor {
		for i, vf := range itemFactor {
			r := catalog.Rating{UserID: u + 1, ItemID: i + 1, Value: uf * vf, Timestamp: ts}
			if heldOut[[2]int{u + 1, i + 1}] {
				test = append(test, r)
				continue
			}
			train = append(train, r)
		}
	}
	return train, test
}

func TestALS_PlantedLowRank(t *testing.T) {
	train, test := plantedRatings(map[[2]int]bool{{2, 3}: true, {3, 5}: true})
	if len(test) != 2 {
		t.Fatalf("held out %d ratings, want 2", len(test))
	}

	als := NewALS(ALSConfig{NumFactors: 2, NumIterations: 100, Regularization: 0.01})
	model, err := als.FitRatings(context.Background(), train)
	if err != nil {
		t.Fatalf("FitRatings() error = %v", err)
	}

	var absErr float64
	for _, r := range test {
		pred, err := model.Predict(r.UserID, r.ItemID)
		if err != nil {
			t.Fatalf("Predict(%d, %d) error = %v", r.UserID, r.ItemID, err)
		}
		absErr += math.Abs(pred - r.Value)
	}
	if mae := absErr / float64(len(test)); mae >= 0.5 {
		t.Errorf("held-out MAE = %.3f, want < 0.5", mae)
	}

	if model.NumUsers() != 4 || model.NumItems() != 5 {
		t.Errorf("dims = %dx%d, want 4x5", model.NumUsers(), model.NumItems())
	}
}

func TestALSModel_Similar(t *testing.T) {
	train, _ := plantedRatings(nil)
	model, err := NewALS(ALSConfig{NumFactors: 2, NumIterations: 20}).FitRatings(context.Background(), train)
	if err != nil {
		t.Fatalf("FitRatings() error = %v", err)
	}

	got, err := model.Similar(context.Background(), 1, map[int]struct{}{4: {}}, 10)
	if err != nil {
		t.Fatalf("Similar() error = %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("len(Similar()) = %d, want 3", len(got))
	}
	for i, r := range got {
		if r.ItemID == 1 || r.ItemID == 4 {
			t.Errorf("Similar() returned seed or excluded item %d", r.ItemID)
		}
		if r.Score < -1-1e-9 || r.Score > 1+1e-9 {
			t.Errorf("Similar()[%d].Score = %v, want within [-1, 1]", i, r.Score)
		}
		if i > 0 && r.Score > got[i-1].Score {
			t.Errorf("Similar() not sorted at %d: %v > %v", i, r.Score, got[i-1].Score)
		}
	}

	truncated, err := model.Similar(context.Background(), 1, nil, 2)
	if err != nil {
		t.Fatalf("Similar() error = %v", err)
	}
	if len(truncated) != 2 {
		t.Errorf("len(Similar(n=2)) = %d, want 2", len(truncated))
	}
}

func TestALSModel_InsufficientData(t *testing.T) {
	ratings := []catalog.Rating{
		{UserID: 1, ItemID: 1, Value: 4},
		{UserID: 2, ItemID: 1, Value: 5},
		{UserID: 3, ItemID: 1, Value: 3},
		{UserID: 1, ItemID: 2, Value: 2},
		{UserID: 2, ItemID: 2, Value: 1},
	}

	tests := []struct {
		name       string
		minRatings int
		seed       int
		wantReason string
	}{
		{name: "never rated", minRatings: 1, seed: 9, wantReason: "no ratings"},
		{name: "below minimum", minRatings: 3, seed: 2, wantReason: "fewer than 3 ratings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, err := NewALS(ALSConfig{NumFactors: 2, MinItemRatings: tt.minRatings}).FitRatings(context.Background(), ratings)
			if err != nil {
				t.Fatalf("FitRatings() error = %v", err)
			}

			_, err = model.Similar(context.Background(), tt.seed, nil, 5)
			if !errors.Is(err, recommend.ErrInsufficientData) {
				t.Fatalf("Similar() error = %v, want ErrInsufficientData", err)
			}
			if !strings.Contains(err.Error(), tt.wantReason) {
				t.Errorf("Similar() error = %q, want reason %q", err, tt.wantReason)
			}
		})
	}

	t.Run("no ratings at all", func(t *testing.T) {
		model, err := NewALS(ALSConfig{}).FitRatings(context.Background(), nil)
		if err != nil {
			t.Fatalf("FitRatings() error = %v", err)
		}
		if model.NumItems() != 0 {
			t.Errorf("NumItems() = %d, want 0", model.NumItems())
		}
		if _, err := model.Similar(context.Background(), 1, nil, 5); !errors.Is(err, recommend.ErrInsufficientData) {
			t.Errorf("Similar() error = %v, want ErrInsufficientData", err)
		}
	})
}

func TestALS_Deterministic(t *testing.T) {
	train, _ := plantedRatings(nil)

	fit := func(workers int) *ALSModel {
		m, err := NewALS(ALSConfig{NumFactors: 3, NumIterations: 10, NumWorkers: workers}).FitRatings(context.Background(), train)
		if err != nil {
			t.Fatalf("FitRatings() error = %v", err)
		}
		return m
	}

	a, b := fit(1), fit(4)
	for id := 1; id <= 5; id++ {
		fa, _ := a.ItemFactors(id)
		fb, _ := b.ItemFactors(id)
		if !reflect.DeepEqual(fa, fb) {
			t.Errorf("ItemFactors(%d) differ across worker counts: %v vs %v", id, fa, fb)
		}
	}

	ra, _ := a.Similar(context.Background(), 2, nil, 4)
	rb, _ := b.Similar(context.Background(), 2, nil, 4)
	if !reflect.DeepEqual(ra, rb) {
		t.Errorf("Similar() differs: %v vs %v", ra, rb)
	}
}

func TestDedupeRatings(t *testing.T) {
	ratings := []catalog.Rating{
		{UserID: 2, ItemID: 1, Value: 3, Timestamp: time.Unix(10, 0)},
		{UserID: 1, ItemID: 1, Value: 4, Timestamp: time.Unix(20, 0)},
		{UserID: 1, ItemID: 1, Value: 2, Timestamp: time.Unix(10, 0)},
		{UserID: 1, ItemID: 3, Value: 5, Timestamp: time.Unix(5, 0)},
	}

	got := dedupeRatings(ratings)
	if len(got) != 3 {
		t.Fatalf("len(dedupeRatings()) = %d, want 3", len(got))
	}
	if got[0].UserID != 1 || got[0].ItemID != 1 || got[0].Value != 4 {
		t.Errorf("dedupeRatings()[0] = %+v, want user 1 item 1 value 4", got[0])
	}
	if got[2].UserID != 2 {
		t.Errorf("dedupeRatings()[2].UserID = %d, want 2", got[2].UserID)
	}
}

func TestALS_StateRestore(t *testing.T) {
	train, _ := plantedRatings(nil)
	items := make([]catalog.Item, 5)
	for i := range items {
		items[i] = catalog.Item{ID: i + 1, Title: "Film"}
	}
	cat, err := catalog.NewStore(items, train, catalog.DefaultRatingScale())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	als := NewALS(ALSConfig{NumFactors: 2, NumIterations: 10})
	model, err := als.Fit(context.Background(), cat)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	state, err := als.State(model)
	if err != nil {
		t.Fatalf("State() error = %v", err)
	}
	st := state.(storage.ALSModelState)

	t.Run("round trip", func(t *testing.T) {
		restored, err := als.Restore(cat, &st)
		if err != nil {
			t.Fatalf("Restore() error = %v", err)
		}
		orig := model.(*ALSModel)
		back := restored.(*ALSModel)
		for u := 1; u <= 4; u++ {
			want, _ := orig.Predict(u, 3)
			got, _ := back.Predict(u, 3)
			if got != want {
				t.Errorf("Predict(%d, 3) = %v after restore, want %v", u, got, want)
			}
		}
	})

	t.Run("different configuration rejected", func(t *testing.T) {
		other := NewALS(ALSConfig{NumFactors: 3, NumIterations: 10})
		if _, err := other.Restore(cat, &st); err == nil {
			t.Error("Restore() error = nil, want configuration mismatch")
		}
	})

	t.Run("truncated factors rejected", func(t *testing.T) {
		bad := st
		bad.ItemFactors = bad.ItemFactors[:3]
		if _, err := als.Restore(cat, &bad); err == nil {
			t.Error("Restore() error = nil, want size mismatch")
		}
	})

	t.Run("non-finite factors are internal errors", func(t *testing.T) {
		bad := st
		bad.ItemFactors = append([]float64(nil), st.ItemFactors...)
		bad.ItemFactors[0] = math.NaN()
		_, err := als.Restore(cat, &bad)
		if !errors.Is(err, recommend.ErrInternal) {
			t.Errorf("Restore() error = %v, want ErrInternal", err)
		}
	})
}

func TestALS_Fit_Cancelled(t *testing.T) {
	train, _ := plantedRatings(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewALS(ALSConfig{}).FitRatings(ctx, train); !errors.Is(err, context.Canceled) {
		t.Errorf("FitRatings() error = %v, want context.Canceled", err)
	}
}
