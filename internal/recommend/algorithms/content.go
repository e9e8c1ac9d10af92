// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package algorithms

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/tomtom215/cinerec/internal/catalog"
	"github.com/tomtom215/cinerec/internal/recommend"
	"github.com/tomtom215/cinerec/internal/recommend/storage"
)

// ContentBasedConfig contains configuration for content-based filtering.
// Each weight multiplies the term count of tokens from that field.
type ContentBasedConfig struct {
	GenreWeight    float64
	CastWeight     float64
	DirectorWeight float64
	KeywordWeight  float64

	// MaxCast keeps only the first MaxCast cast members. 0 keeps all.
	MaxCast int
}

// ContentBased recommends items whose metadata resembles the seed's.
//
// Every item becomes a term-frequency vector over one vocabulary built from
// genres, cast, director and plot keywords. Tokens are lower-cased with
// inner whitespace removed, so "Tom Hanks" is the single token "tomhanks"
// and does not match another Tom. Similarity is the cosine of two vectors:
//
//	sim(a, b) = (v_a . v_b) / (|v_a| |v_b|)
//
// A per-term inverted index makes one seed's sweep over the catalog cost
// the total posting length of its terms rather than a full pairwise pass.
type ContentBased struct {
	BaseAlgorithm
	config ContentBasedConfig
}

// NewContentBased creates a new content-based algorithm. All-zero weights
// fall back to plain term frequency.
func NewContentBased(cfg ContentBasedConfig) *ContentBased {
	if cfg.GenreWeight == 0 && cfg.CastWeight == 0 && cfg.DirectorWeight == 0 && cfg.KeywordWeight == 0 {
		cfg.GenreWeight = 1
		cfg.CastWeight = 1
		cfg.DirectorWeight = 1
		cfg.KeywordWeight = 1
	}
	if cfg.MaxCast < 0 {
		cfg.MaxCast = 0
	}

	return &ContentBased{
		BaseAlgorithm: NewBaseAlgorithm("content", recommend.StrategyContent),
		config:        cfg,
	}
}

// Fit builds the vectors and inverted index for every catalog item.
func (c *ContentBased) Fit(ctx context.Context, cat *catalog.Store) (recommend.Model, error) {
	return c.FitItems(ctx, cat.Items())
}

// FitItems builds a ContentModel from items. Items must be sorted by ID.
//
//nolint:gocritic // rangeValCopy: Item copied in range for clarity
func (c *ContentBased) FitItems(ctx context.Context, items []catalog.Item) (*ContentModel, error) {
	vocabIndex := make(map[string]int)
	var vocab []string

	ids := make([]int, len(items))
	vectors := make([]storage.SparseVector, len(items))

	for i, item := range items {
		if i%1024 == 0 && ContextCancelled(ctx) {
			return nil, ctx.Err()
		}
		if i > 0 && item.ID <= ids[i-1] {
			return nil, recommend.Internal("content fit", fmt.Errorf("items not sorted by id at %d", item.ID))
		}
		ids[i] = item.ID

		counts := make(map[int]float64)
		add := func(raw string, weight float64) {
			if weight == 0 {
				return
			}
			tok := normalizeToken(raw)
			if tok == "" {
				return
			}
			t, ok := vocabIndex[tok]
			if !ok {
				t = len(vocab)
				vocabIndex[tok] = t
				vocab = append(vocab, tok)
			}
			counts[t] += weight
		}

		for _, g := range item.Genres {
			add(g, c.config.GenreWeight)
		}
		cast := item.Cast
		if c.config.MaxCast > 0 && len(cast) > c.config.MaxCast {
			cast = cast[:c.config.MaxCast]
		}
		for _, name := range cast {
			add(name, c.config.CastWeight)
		}
		add(item.Director, c.config.DirectorWeight)
		for _, kw := range item.Keywords {
			add(kw, c.config.KeywordWeight)
		}

		vectors[i] = toSparse(counts)
	}

	return newContentModel(ids, vocab, vectors)
}

// State returns the persisted form of a model fitted by c.
func (c *ContentBased) State(m recommend.Model) (any, error) {
	cm, ok := m.(*ContentModel)
	if !ok {
		return nil, fmt.Errorf("content: unexpected model type %T", m)
	}
	return storage.ContentModelState{
		ItemIDs:        cm.ids,
		Vocabulary:     cm.vocab,
		Vectors:        cm.vectors,
		GenreWeight:    c.config.GenreWeight,
		CastWeight:     c.config.CastWeight,
		DirectorWeight: c.config.DirectorWeight,
		KeywordWeight:  c.config.KeywordWeight,
		MaxCast:        c.config.MaxCast,
	}, nil
}

// NewState returns an empty state to decode into.
func (c *ContentBased) NewState() any {
	return &storage.ContentModelState{}
}

// Restore rebuilds a model from state. The state must have been built with
// the same weights and cover exactly the catalog's items.
func (c *ContentBased) Restore(cat *catalog.Store, state any) (recommend.Model, error) {
	st, ok := state.(*storage.ContentModelState)
	if !ok {
		return nil, fmt.Errorf("content: unexpected state type %T", state)
	}
	if st.GenreWeight != c.config.GenreWeight || st.CastWeight != c.config.CastWeight ||
		st.DirectorWeight != c.config.DirectorWeight || st.KeywordWeight != c.config.KeywordWeight ||
		st.MaxCast != c.config.MaxCast {
		return nil, fmt.Errorf("content: stored model was built with different weights")
	}
	if len(st.ItemIDs) != cat.Len() {
		return nil, fmt.Errorf("content: stored model has %d items, catalog has %d", len(st.ItemIDs), cat.Len())
	}
	return newContentModel(st.ItemIDs, st.Vocabulary, st.Vectors)
}

// ContentModel is a fitted content index. It is immutable and safe for
// concurrent use.
type ContentModel struct {
	ids      []int
	pos      map[int]int
	vocab    []string
	vectors  []storage.SparseVector
	norms    []float64
	postings [][]posting
}

type posting struct {
	pos    int
	weight float64
}

func newContentModel(ids []int, vocab []string, vectors []storage.SparseVector) (*ContentModel, error) {
	if len(ids) != len(vectors) {
		return nil, recommend.Internal("content index", fmt.Errorf("%d ids for %d vectors", len(ids), len(vectors)))
	}

	m := &ContentModel{
		ids:      ids,
		pos:      make(map[int]int, len(ids)),
		vocab:    vocab,
		vectors:  vectors,
		norms:    make([]float64, len(ids)),
		postings: make([][]posting, len(vocab)),
	}

	for p, id := range ids {
		m.pos[id] = p
		vec := vectors[p]
		if len(vec.Terms) != len(vec.Weights) {
			return nil, recommend.Internal("content index", fmt.Errorf("item %d: %d terms for %d weights", id, len(vec.Terms), len(vec.Weights)))
		}

		for k, t := range vec.Terms {
			if t < 0 || t >= len(vocab) {
				return nil, recommend.Internal("content index", fmt.Errorf("item %d: term %d outside vocabulary", id, t))
			}
			w := vec.Weights[k]
			if math.IsNaN(w) || math.IsInf(w, 0) {
				return nil, recommend.Internal("content index", fmt.Errorf("item %d: non-finite weight", id))
			}
			m.postings[t] = append(m.postings[t], posting{pos: p, weight: w})
		}
		m.norms[p] = floats.Norm(vec.Weights, 2)
	}

	return m, nil
}

// Len returns the number of indexed items.
func (m *ContentModel) Len() int {
	return len(m.ids)
}

// VocabularySize returns the number of distinct tokens.
func (m *ContentModel) VocabularySize() int {
	return len(m.vocab)
}

// Similar ranks every other item by cosine similarity to seed. Items with
// no shared token score 0 and still fill the list after positive scores.
func (m *ContentModel) Similar(ctx context.Context, seed int, exclude map[int]struct{}, n int) ([]recommend.Recommendation, error) {
	p, err := m.seedPosition(seed)
	if err != nil {
		return nil, err
	}
	if ContextCancelled(ctx) {
		return nil, ctx.Err()
	}

	scores := make([]float64, len(m.ids))
	vec := m.vectors[p]
	for k, t := range vec.Terms {
		w := vec.Weights[k]
		for _, post := range m.postings[t] {
			scores[post.pos] += w * post.weight
		}
	}

	for q := range scores {
		if scores[q] == 0 || m.norms[q] == 0 {
			scores[q] = 0
			continue
		}
		scores[q] = math.Min(1, scores[q]/(m.norms[p]*m.norms[q]))
	}

	return rankTop(m.ids, scores, p, exclude, n), nil
}

// Similarity returns the cosine similarity of two items. An item with
// metadata has similarity 1 with itself.
func (m *ContentModel) Similarity(a, b int) (float64, error) {
	pa, err := m.seedPosition(a)
	if err != nil {
		return 0, err
	}
	pb, ok := m.pos[b]
	if !ok || m.norms[pb] == 0 {
		return 0, nil
	}

	va, vb := m.vectors[pa], m.vectors[pb]
	var dot float64
	for i, j := 0, 0; i < len(va.Terms) && j < len(vb.Terms); {
		switch {
		case va.Terms[i] == vb.Terms[j]:
			dot += va.Weights[i] * vb.Weights[j]
			i++
			j++
		case va.Terms[i] < vb.Terms[j]:
			i++
		default:
			j++
		}
	}

	return math.Min(1, dot/(m.norms[pa]*m.norms[pb])), nil
}

// Tokens returns the vocabulary tokens of an item, for inspection.
func (m *ContentModel) Tokens(id int) []string {
	p, ok := m.pos[id]
	if !ok {
		return nil
	}
	out := make([]string, len(m.vectors[p].Terms))
	for i, t := range m.vectors[p].Terms {
		out[i] = m.vocab[t]
	}
	sort.Strings(out)
	return out
}

func (m *ContentModel) seedPosition(seed int) (int, error) {
	p, ok := m.pos[seed]
	if !ok {
		return 0, &recommend.InsufficientDataError{
			ItemID:   seed,
			Strategy: recommend.StrategyContent,
			Reason:   "not in the content index",
		}
	}
	if m.norms[p] == 0 {
		return 0, &recommend.InsufficientDataError{
			ItemID:   seed,
			Strategy: recommend.StrategyContent,
			Reason:   "no genre, cast, director or keyword metadata",
		}
	}
	return p, nil
}

// normalizeToken lower-cases s and removes all whitespace.
func normalizeToken(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// toSparse converts term counts to a vector with ascending terms.
func toSparse(counts map[int]float64) storage.SparseVector {
	terms := make([]int, 0, len(counts))
	for t := range counts {
		terms = append(terms, t)
	}
	sort.Ints(terms)

	weights := make([]float64, len(terms))
	for i, t := range terms {
		weights[i] = counts[t]
	}
	return storage.SparseVector{Terms: terms, Weights: weights}
}

// Ensure interface compliance.
var (
	_ recommend.PersistentAlgorithm = (*ContentBased)(nil)
	_ recommend.Model               = (*ContentModel)(nil)
)
