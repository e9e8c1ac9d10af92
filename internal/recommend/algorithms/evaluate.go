// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package algorithms

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/tomtom215/cinerec/internal/catalog"
	"github.com/tomtom215/cinerec/internal/recommend"
)

// EvaluationConfig controls the hold-out split.
type EvaluationConfig struct {
	// TestRatio is the share of each user's ratings held out, in (0, 1).
	TestRatio float64

	// Seed drives the per-user shuffle.
	Seed int64
}

// Evaluation reports rating-prediction error on held-out ratings.
type Evaluation struct {
	TrainRatings int `json:"train_ratings"`
	TestRatings  int `json:"test_ratings"`

	// Evaluated counts test ratings that could be predicted. Ratings of
	// items or users absent from the training split are skipped.
	Evaluated int `json:"evaluated"`
	Skipped   int `json:"skipped"`

	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`

	FitDuration time.Duration `json:"fit_duration_ns"`
}

// SplitRatings holds out ratings per user: every user with at least two
// ratings contributes max(1, round(ratio*n)) ratings to test, always
// keeping at least one in train. Users are visited in ascending ID order
// so the split depends only on the ratings and seed.
func SplitRatings(ratings []catalog.Rating, ratio float64, seed int64) (train, test []catalog.Rating) {
	byUser := make(map[int][]catalog.Rating)
	for _, r := range ratings {
		byUser[r.UserID] = append(byUser[r.UserID], r)
	}
	users := make([]int, 0, len(byUser))
	for u := range byUser {
		users = append(users, u)
	}
	sort.Ints(users)

	//nolint:gosec // G404: reproducible split, not security sensitive
	rng := rand.New(rand.NewSource(seed))
	for _, u := range users {
		list := byUser[u]
		sort.Slice(list, func(a, b int) bool {
			if list[a].ItemID != list[b].ItemID {
				return list[a].ItemID < list[b].ItemID
			}
			return list[a].Timestamp.Before(list[b].Timestamp)
		})
		if len(list) < 2 {
			train = append(train, list...)
			continue
		}

		size := int(math.Max(1, math.Round(ratio*float64(len(list)))))
		if size >= len(list) {
			size = len(list) - 1
		}
		for k, idx := range rng.Perm(len(list)) {
			if k < size {
				test = append(test, list[idx])
			} else {
				train = append(train, list[idx])
			}
		}
	}
	return train, test
}

// EvaluateALS fits a on a per-user split of ratings and measures how well
// the fitted factors reconstruct the held-out ratings. Predictions are
// clamped to scale.
func EvaluateALS(ctx context.Context, a *ALS, ratings []catalog.Rating, scale catalog.RatingScale, cfg EvaluationConfig) (*Evaluation, error) {
	if cfg.TestRatio <= 0 || cfg.TestRatio >= 1 {
		return nil, fmt.Errorf("%w: test ratio %v outside (0, 1)", recommend.ErrInvalidRequest, cfg.TestRatio)
	}

	train, test := SplitRatings(ratings, cfg.TestRatio, cfg.Seed)
	if len(test) == 0 {
		return nil, fmt.Errorf("%w: no user has two ratings to hold one out", recommend.ErrInsufficientData)
	}

	start := time.Now()
	model, err := a.FitRatings(ctx, train)
	if err != nil {
		return nil, err
	}

	ev := &Evaluation{
		TrainRatings: len(train),
		TestRatings:  len(test),
		FitDuration:  time.Since(start),
	}

	var absSum, sqSum float64
	for i, r := range test {
		if i%4096 == 0 && ContextCancelled(ctx) {
			return nil, ctx.Err()
		}
		pred, err := model.Predict(r.UserID, r.ItemID)
		if err != nil {
			ev.Skipped++
			continue
		}
		pred = math.Max(scale.Min, math.Min(scale.Max, pred))
		diff := r.Value - pred
		absSum += math.Abs(diff)
		sqSum += diff * diff
		ev.Evaluated++
	}

	if ev.Evaluated == 0 {
		return nil, fmt.Errorf("%w: no held-out rating could be predicted", recommend.ErrInsufficientData)
	}
	ev.MAE = absSum / float64(ev.Evaluated)
	ev.RMSE = math.Sqrt(sqSum / float64(ev.Evaluated))
	return ev, nil
}
