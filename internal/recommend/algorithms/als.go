// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package algorithms

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/cinerec/internal/catalog"
	"github.com/tomtom215/cinerec/internal/recommend"
	"github.com/tomtom215/cinerec/internal/recommend/storage"
)

// ALSConfig contains configuration for the ALS algorithm.
type ALSConfig struct {
	// NumFactors is the dimension of the latent factor vectors.
	// Typical range: 10-100.
	NumFactors int

	// NumIterations is the number of ALS iterations to run.
	// Typical range: 10-50.
	NumIterations int

	// Regularization is lambda in the weighted-lambda penalty: each row
	// is penalized by lambda times its number of observed ratings.
	// Typical range: 0.01-0.1.
	Regularization float64

	// MinItemRatings excludes items with fewer ratings from the fit.
	MinItemRatings int

	// NumWorkers is the number of parallel workers for training.
	// If <= 0, defaults to 4.
	NumWorkers int

	// Seed drives factor initialization.
	Seed int64
}

// DefaultALSConfig returns default ALS configuration.
func DefaultALSConfig() ALSConfig {
	return ALSConfig{
		NumFactors:     32,
		NumIterations:  15,
		Regularization: 0.05,
		MinItemRatings: 1,
		NumWorkers:     4,
		Seed:           42,
	}
}

// initScale is the standard deviation of the initial factor entries.
const initScale = 0.1

// ALS implements Alternating Least Squares for explicit ratings.
// Reference: "Large-scale Parallel Collaborative Filtering for the Netflix
// Prize" (Zhou, Wilkinson, Schreiber, Pan, 2008)
//
// Ratings are centered on their global mean mu and factorized as
//
//	r_ui ~ mu + x_u' * y_i
//
// minimizing, over observed ratings only,
//
//	sum_{(u,i) observed} (r_ui - mu - x_u' y_i)^2
//	  + lambda * (sum_u n_u ||x_u||^2 + sum_i n_i ||y_i||^2)
//
// where n_u and n_i count the observed ratings of a user and an item.
// Unobserved entries never enter the loss. Each half step solves one
// small ridge system per row with a Cholesky factorization.
//
// Queries ignore users entirely: a seed's neighbours are the items whose
// factor vectors have the highest cosine similarity to its own.
type ALS struct {
	BaseAlgorithm
	config ALSConfig
}

// NewALS creates a new ALS algorithm with the given configuration.
func NewALS(cfg ALSConfig) *ALS {
	defaults := DefaultALSConfig()
	if cfg.NumFactors <= 0 {
		cfg.NumFactors = defaults.NumFactors
	}
	if cfg.NumIterations <= 0 {
		cfg.NumIterations = defaults.NumIterations
	}
	if cfg.Regularization <= 0 {
		cfg.Regularization = defaults.Regularization
	}
	if cfg.MinItemRatings <= 0 {
		cfg.MinItemRatings = defaults.MinItemRatings
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = defaults.NumWorkers
	}
	if cfg.Seed == 0 {
		cfg.Seed = defaults.Seed
	}

	return &ALS{
		BaseAlgorithm: NewBaseAlgorithm("als", recommend.StrategyCollaborative),
		config:        cfg,
	}
}

// Fit factorizes the catalog's ratings.
func (a *ALS) Fit(ctx context.Context, cat *catalog.Store) (recommend.Model, error) {
	return a.FitRatings(ctx, cat.Ratings())
}

// cell is one observed rating after indexing.
type cell struct {
	row, col int
	value    float64 // centered
}

// FitRatings factorizes ratings. When a user rated an item more than once
// the latest rating wins.
//
//nolint:gocyclo // ML training algorithms are inherently complex
func (a *ALS) FitRatings(ctx context.Context, ratings []catalog.Rating) (*ALSModel, error) {
	if ContextCancelled(ctx) {
		return nil, ctx.Err()
	}

	latest := dedupeRatings(ratings)

	itemCounts := make(map[int]int)
	for _, r := range latest {
		itemCounts[r.ItemID]++
	}

	// Users and items are indexed in ascending ID order.
	userSet := make(map[int]struct{})
	for _, r := range latest {
		if itemCounts[r.ItemID] >= a.config.MinItemRatings {
			userSet[r.UserID] = struct{}{}
		}
	}
	userIDs := sortedKeys(userSet)
	itemIDs := make([]int, 0, len(itemCounts))
	for id, n := range itemCounts {
		if n >= a.config.MinItemRatings {
			itemIDs = append(itemIDs, id)
		}
	}
	sort.Ints(itemIDs)

	k := a.config.NumFactors
	model := &ALSModel{
		userIDs:    userIDs,
		itemIDs:    itemIDs,
		userIndex:  indexOf(userIDs),
		itemIndex:  indexOf(itemIDs),
		numFactors: k,
		config:     a.config,
	}

	if len(userIDs) == 0 || len(itemIDs) == 0 {
		model.x = mat.NewDense(1, k, nil)
		model.y = mat.NewDense(1, k, nil)
		model.itemNorms = []float64{}
		return model, nil
	}

	var sum float64
	var n int
	for _, r := range latest {
		if _, ok := model.itemIndex[r.ItemID]; ok {
			sum += r.Value
			n++
		}
	}
	model.globalMean = sum / float64(n)

	byUser := make([][]cell, len(userIDs))
	byItem := make([][]cell, len(itemIDs))
	for _, r := range latest {
		col, ok := model.itemIndex[r.ItemID]
		if !ok {
			continue
		}
		row := model.userIndex[r.UserID]
		c := cell{row: row, col: col, value: r.Value - model.globalMean}
		byUser[row] = append(byUser[row], c)
		byItem[col] = append(byItem[col], c)
	}

	rng := rand.New(rand.NewSource(a.config.Seed)) //nolint:gosec // math/rand is fine for factor initialization
	model.x = randomFactors(rng, len(userIDs), k)
	model.y = randomFactors(rng, len(itemIDs), k)

	for iter := 0; iter < a.config.NumIterations; iter++ {
		if ContextCancelled(ctx) {
			return nil, ctx.Err()
		}

		// Fix Y, solve every user row.
		if err := a.solveRows(model.x, model.y, byUser, func(c cell) int { return c.col }); err != nil {
			return nil, err
		}

		if ContextCancelled(ctx) {
			return nil, ctx.Err()
		}

		// Fix X, solve every item row.
		if err := a.solveRows(model.y, model.x, byItem, func(c cell) int { return c.row }); err != nil {
			return nil, err
		}
	}

	if err := model.finalize(); err != nil {
		return nil, err
	}
	return model, nil
}

// solveRows updates every row of target while fixed stays constant.
// cells[r] are the observations of row r and partner(c) is the row of
// fixed that observation pairs with. Rows are split across workers; each
// worker writes only its own rows.
func (a *ALS) solveRows(target, fixed *mat.Dense, cells [][]cell, partner func(c cell) int) error {
	rows, k := target.Dims()
	lambda := a.config.Regularization
	workers := a.config.NumWorkers
	chunkSize := (rows + workers - 1) / workers

	var wg sync.WaitGroup
	errs := make([]error, workers)

	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > rows {
			end = rows
		}
		if start >= end {
			break
		}

		wg.Add(1)
		go func(w, rStart, rEnd int) {
			defer wg.Done()

			gram := make([]float64, k*k)
			rhs := mat.NewVecDense(k, nil)
			sol := mat.NewVecDense(k, nil)
			var chol mat.Cholesky

			for r := rStart; r < rEnd; r++ {
				// A = sum v v' + lambda * n * I,  b = sum r v
				for i := range gram {
					gram[i] = 0
				}
				rhs.Zero()
				for _, c := range cells[r] {
					v := fixed.RawRowView(partner(c))
					for i := 0; i < k; i++ {
						vi := v[i]
						for j := i; j < k; j++ {
							gram[i*k+j] += vi * v[j]
						}
						rhs.SetVec(i, rhs.AtVec(i)+c.value*vi)
					}
				}
				reg := lambda * float64(len(cells[r]))
				for i := 0; i < k; i++ {
					gram[i*k+i] += reg
				}

				if !chol.Factorize(mat.NewSymDense(k, gram)) {
					errs[w] = fmt.Errorf("row %d: normal equations not positive definite", r)
					return
				}
				if err := chol.SolveVecTo(sol, rhs); err != nil {
					var cond mat.Condition
					if !errors.As(err, &cond) {
						errs[w] = fmt.Errorf("row %d: %w", r, err)
						return
					}
				}
				target.SetRow(r, sol.RawVector().Data)
			}
		}(w, start, end)
	}

	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return recommend.Internal("als solve", err)
	}
	return nil
}

// State returns the persisted form of a model fitted by a.
func (a *ALS) State(m recommend.Model) (any, error) {
	am, ok := m.(*ALSModel)
	if !ok {
		return nil, fmt.Errorf("als: unexpected model type %T", m)
	}

	st := storage.ALSModelState{
		UserIDs:        am.userIDs,
		ItemIDs:        am.itemIDs,
		NumFactors:     am.numFactors,
		GlobalMean:     am.globalMean,
		Iterations:     a.config.NumIterations,
		Regularization: a.config.Regularization,
		MinItemRatings: a.config.MinItemRatings,
		Seed:           a.config.Seed,
	}
	if len(am.userIDs) > 0 && len(am.itemIDs) > 0 {
		st.UserFactors = append([]float64(nil), am.x.RawMatrix().Data...)
		st.ItemFactors = append([]float64(nil), am.y.RawMatrix().Data...)
	}
	return st, nil
}

// NewState returns an empty state to decode into.
func (a *ALS) NewState() any {
	return &storage.ALSModelState{}
}

// Restore rebuilds a model from state. The state must have been fitted
// with the same configuration.
func (a *ALS) Restore(cat *catalog.Store, state any) (recommend.Model, error) {
	st, ok := state.(*storage.ALSModelState)
	if !ok {
		return nil, fmt.Errorf("als: unexpected state type %T", state)
	}
	if st.NumFactors != a.config.NumFactors || st.Iterations != a.config.NumIterations ||
		st.Regularization != a.config.Regularization || st.MinItemRatings != a.config.MinItemRatings ||
		st.Seed != a.config.Seed {
		return nil, fmt.Errorf("als: stored model was fitted with a different configuration")
	}
	for _, id := range st.ItemIDs {
		if !cat.Has(id) {
			return nil, fmt.Errorf("als: stored item %d not in catalog", id)
		}
	}

	k := st.NumFactors
	model := &ALSModel{
		userIDs:    st.UserIDs,
		itemIDs:    st.ItemIDs,
		userIndex:  indexOf(st.UserIDs),
		itemIndex:  indexOf(st.ItemIDs),
		numFactors: k,
		globalMean: st.GlobalMean,
		config:     a.config,
	}

	if len(st.UserIDs) == 0 || len(st.ItemIDs) == 0 {
		model.x = mat.NewDense(1, k, nil)
		model.y = mat.NewDense(1, k, nil)
		model.itemNorms = []float64{}
		return model, nil
	}

	if len(st.UserFactors) != len(st.UserIDs)*k || len(st.ItemFactors) != len(st.ItemIDs)*k {
		return nil, fmt.Errorf("als: stored factor matrices do not match their ids")
	}
	model.x = mat.NewDense(len(st.UserIDs), k, st.UserFactors)
	model.y = mat.NewDense(len(st.ItemIDs), k, st.ItemFactors)

	if err := model.finalize(); err != nil {
		return nil, err
	}
	return model, nil
}

// ALSModel holds fitted latent factors. It is immutable and safe for
// concurrent use.
type ALSModel struct {
	userIDs   []int
	itemIDs   []int
	userIndex map[int]int
	itemIndex map[int]int

	// x is the user factor matrix (numUsers x numFactors)
	x *mat.Dense

	// y is the item factor matrix (numItems x numFactors)
	y *mat.Dense

	itemNorms  []float64
	globalMean float64
	numFactors int
	config     ALSConfig
}

// finalize rejects non-finite factors and caches item vector norms.
func (m *ALSModel) finalize() error {
	for _, d := range []*mat.Dense{m.x, m.y} {
		for _, v := range d.RawMatrix().Data {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return recommend.Internal("als fit", errors.New("factor matrix contains non-finite values"))
			}
		}
	}
	if math.IsNaN(m.globalMean) || math.IsInf(m.globalMean, 0) {
		return recommend.Internal("als fit", errors.New("non-finite global mean"))
	}

	m.itemNorms = make([]float64, len(m.itemIDs))
	for i := range m.itemIDs {
		m.itemNorms[i] = floats.Norm(m.y.RawRowView(i), 2)
	}
	return nil
}

// NumUsers returns the number of fitted users.
func (m *ALSModel) NumUsers() int {
	return len(m.userIDs)
}

// NumItems returns the number of fitted items.
func (m *ALSModel) NumItems() int {
	return len(m.itemIDs)
}

// GlobalMean returns the mean of the fitted ratings.
func (m *ALSModel) GlobalMean() float64 {
	return m.globalMean
}

// Similar ranks every other fitted item by cosine similarity between item
// factor vectors.
func (m *ALSModel) Similar(ctx context.Context, seed int, exclude map[int]struct{}, n int) ([]recommend.Recommendation, error) {
	p, ok := m.itemIndex[seed]
	if !ok {
		return nil, m.insufficient(seed)
	}
	norm := m.itemNorms[p]
	if norm == 0 {
		return nil, &recommend.InsufficientDataError{
			ItemID:   seed,
			Strategy: recommend.StrategyCollaborative,
			Reason:   "its latent factors are all zero",
		}
	}
	if ContextCancelled(ctx) {
		return nil, ctx.Err()
	}

	seedVec := m.y.RawRowView(p)
	scores := make([]float64, len(m.itemIDs))
	for q := range m.itemIDs {
		if m.itemNorms[q] == 0 {
			continue
		}
		scores[q] = floats.Dot(seedVec, m.y.RawRowView(q)) / (norm * m.itemNorms[q])
	}

	return rankTop(m.itemIDs, scores, p, exclude, n), nil
}

// Predict reconstructs the rating userID would give itemID.
func (m *ALSModel) Predict(userID, itemID int) (float64, error) {
	i, ok := m.itemIndex[itemID]
	if !ok {
		return 0, m.insufficient(itemID)
	}
	u, ok := m.userIndex[userID]
	if !ok {
		return 0, fmt.Errorf("%w: user %d has no fitted ratings", recommend.ErrInsufficientData, userID)
	}
	return m.globalMean + floats.Dot(m.x.RawRowView(u), m.y.RawRowView(i)), nil
}

// ItemFactors returns a copy of an item's latent vector.
func (m *ALSModel) ItemFactors(itemID int) ([]float64, bool) {
	i, ok := m.itemIndex[itemID]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), m.y.RawRowView(i)...), true
}

func (m *ALSModel) insufficient(itemID int) error {
	reason := "it has no ratings"
	if m.config.MinItemRatings > 1 {
		reason = fmt.Sprintf("it has fewer than %d ratings", m.config.MinItemRatings)
	}
	return &recommend.InsufficientDataError{
		ItemID:   itemID,
		Strategy: recommend.StrategyCollaborative,
		Reason:   reason,
	}
}

type ratingKey struct {
	user, item int
}

// dedupeRatings keeps the latest rating per (user, item) and returns them
// ordered by user then item.
func dedupeRatings(ratings []catalog.Rating) []catalog.Rating {
	latest := make(map[ratingKey]catalog.Rating, len(ratings))
	for _, r := range ratings {
		key := ratingKey{r.UserID, r.ItemID}
		if prev, ok := latest[key]; ok && r.Timestamp.Before(prev.Timestamp) {
			continue
		}
		latest[key] = r
	}

	out := make([]catalog.Rating, 0, len(latest))
	for _, r := range latest {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].ItemID < out[j].ItemID
	})
	return out
}

func randomFactors(rng *rand.Rand, rows, k int) *mat.Dense {
	data := make([]float64, rows*k)
	for i := range data {
		data[i] = rng.NormFloat64() * initScale
	}
	return mat.NewDense(rows, k, data)
}

func sortedKeys(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

func indexOf(ids []int) map[int]int {
	index := make(map[int]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}
	return index
}

// Ensure interface compliance.
var (
	_ recommend.PersistentAlgorithm = (*ALS)(nil)
	_ recommend.Model               = (*ALSModel)(nil)
)
