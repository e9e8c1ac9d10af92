// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package algorithms

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/tomtom215/cinerec/internal/catalog"
	"github.com/tomtom215/cinerec/internal/recommend"
)

func TestSplitRatings(t *testing.T) {
	all, _ := plantedRatings(nil)
	single := catalog.Rating{UserID: 9, ItemID: 1, Value: 3, Timestamp: time.Unix(0, 0)}
	all = append(all, single)

	train, test := SplitRatings(all, 0.2, 7)

	if len(train)+len(test) != len(all) {
		t.Fatalf("train+test = %d, want %d", len(train)+len(test), len(all))
	}
	// 4 users with 5 ratings each hold out round(0.2*5) = 1.
	if len(test) != 4 {
		t.Errorf("len(test) = %d, want 4", len(test))
	}

	perUser := make(map[int]int)
	for _, r := range test {
		perUser[r.UserID]++
		if r.UserID == 9 {
			t.Error("user with a single rating was held out")
		}
	}
	for u := 1; u <= 4; u++ {
		if perUser[u] != 1 {
			t.Errorf("user %d held out %d ratings, want 1", u, perUser[u])
		}
	}

	train2, test2 := SplitRatings(all, 0.2, 7)
	if !reflect.DeepEqual(test, test2) || !reflect.DeepEqual(train, train2) {
		t.Error("SplitRatings() is not deterministic for a fixed seed")
	}
}

func TestSplitRatings_KeepsOneInTrain(t *testing.T) {
	ratings := []catalog.Rating{
		{UserID: 1, ItemID: 1, Value: 4},
		{UserID: 1, ItemID: 2, Value: 3},
	}
	train, test := SplitRatings(ratings, 0.99, 1)
	if len(train) != 1 || len(test) != 1 {
		t.Errorf("split = %d/%d, want 1/1", len(train), len(test))
	}
}

func TestEvaluateALS(t *testing.T) {
	all, _ := plantedRatings(nil)
	als := NewALS(ALSConfig{NumFactors: 2, NumIterations: 100, Regularization: 0.01})
	cfg := EvaluationConfig{TestRatio: 0.2, Seed: 3}

	ev, err := EvaluateALS(context.Background(), als, all, catalog.DefaultRatingScale(), cfg)
	if err != nil {
		t.Fatalf("EvaluateALS() error = %v", err)
	}

	if ev.TrainRatings != 16 || ev.TestRatings != 4 {
		t.Errorf("split = %d/%d, want 16/4", ev.TrainRatings, ev.TestRatings)
	}
	if ev.Evaluated+ev.Skipped != ev.TestRatings {
		t.Errorf("evaluated %d + skipped %d != test %d", ev.Evaluated, ev.Skipped, ev.TestRatings)
	}
	if ev.Evaluated == 0 {
		t.Fatal("Evaluated = 0")
	}
	if ev.RMSE < ev.MAE {
		t.Errorf("RMSE %.3f < MAE %.3f", ev.RMSE, ev.MAE)
	}
	if ev.MAE >= 0.75 {
		t.Errorf("MAE = %.3f, want < 0.75 on a rank-1 matrix", ev.MAE)
	}

	again, err := EvaluateALS(context.Background(), als, all, catalog.DefaultRatingScale(), cfg)
	if err != nil {
		t.Fatalf("EvaluateALS() second run error = %v", err)
	}
	if again.MAE != ev.MAE || again.RMSE != ev.RMSE {
		t.Errorf("second run = %.6f/%.6f, want %.6f/%.6f", again.MAE, again.RMSE, ev.MAE, ev.RMSE)
	}
}

func TestEvaluateALS_Errors(t *testing.T) {
	all, _ := plantedRatings(nil)
	als := NewALS(DefaultALSConfig())

	tests := []struct {
		name    string
		ratings []catalog.Rating
		ratio   float64
		wantErr error
	}{
		{"zero ratio", all, 0, recommend.ErrInvalidRequest},
		{"ratio of one", all, 1, recommend.ErrInvalidRequest},
		{"nothing to hold out", []catalog.Rating{{UserID: 1, ItemID: 1, Value: 3}}, 0.2, recommend.ErrInsufficientData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EvaluateALS(context.Background(), als, tt.ratings, catalog.DefaultRatingScale(),
				EvaluationConfig{TestRatio: tt.ratio, Seed: 1})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("EvaluateALS() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
