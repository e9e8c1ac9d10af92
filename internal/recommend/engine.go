// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinerec/internal/catalog"
	"github.com/tomtom215/cinerec/internal/recommend/storage"
	"github.com/tomtom215/cinerec/internal/validation"
)

// Engine resolves seed titles and produces merged recommendations from the
// fitted model of the requested strategy. It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	// Registered algorithms, one per strategy
	algorithms map[Strategy]Algorithm
	algMu      sync.RWMutex

	// Optional persisted models
	models *storage.Store

	// Called after each strategy's model is ready
	onModelBuilt func(strategy Strategy, d time.Duration, restored bool)

	// Build state. buildMu admits a single builder.
	buildMu      sync.Mutex
	statusMu     sync.RWMutex
	status       BuildStatus
	modelVersion atomic.Int32

	current atomic.Pointer[snapshot]

	requestCount atomic.Int64
	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64
	errorCount   atomic.Int64

	// nil when caching is disabled
	cache *expirable.LRU[string, *Response]
}

// snapshot is everything one query reads. A build replaces it whole.
type snapshot struct {
	catalog  *catalog.Store
	resolver *Resolver
	models   map[Strategy]Model
	version  int
	builtAt  time.Time
}

// NewEngine creates a new recommendation engine. It serves nothing until
// Build succeeds.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		config:     cfg.Clone(),
		logger:     logger.With().Str("component", "recommend").Logger(),
		algorithms: make(map[Strategy]Algorithm),
	}

	if cfg.Cache.Enabled {
		e.cache = expirable.NewLRU[string, *Response](cfg.Cache.MaxEntries, nil, cfg.Cache.TTL)
	}

	return e, nil
}

// RegisterAlgorithm sets the algorithm serving its strategy, replacing any
// earlier registration.
func (e *Engine) RegisterAlgorithm(alg Algorithm) {
	e.algMu.Lock()
	defer e.algMu.Unlock()

	e.algorithms[alg.Strategy()] = alg
	e.logger.Info().
		Str("algorithm", alg.Name()).
		Str("strategy", alg.Strategy().String()).
		Msg("registered algorithm")
}

// SetModelStore enables restoring and saving fitted models.
func (e *Engine) SetModelStore(s *storage.Store) {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()
	e.models = s
}

// SetBuildHook registers fn to be called after each strategy's model is
// fitted or restored during Build.
func (e *Engine) SetBuildHook(fn func(strategy Strategy, d time.Duration, restored bool)) {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()
	e.onModelBuilt = fn
}

// Build fits (or restores) a model for every enabled strategy against cat
// and swaps them in atomically. Queries keep using the previous snapshot
// until the swap. A failure leaves the previous snapshot in place.
// Returns ErrBuildInProgress immediately if another build is running.
func (e *Engine) Build(ctx context.Context, cat *catalog.Store) error {
	if cat == nil {
		return fmt.Errorf("build: nil catalog")
	}
	if !e.buildMu.TryLock() {
		return ErrBuildInProgress
	}
	defer e.buildMu.Unlock()

	start := time.Now()
	e.setBuilding()
	e.logger.Info().
		Int("items", cat.Len()).
		Int("ratings", cat.RatingCount()).
		Str("fingerprint", shortFingerprint(cat.Fingerprint())).
		Msg("starting model build")

	buildCtx, cancel := context.WithTimeout(ctx, e.config.Build.Timeout)
	defer cancel()

	models := make(map[Strategy]Model, len(e.config.Strategies))
	var restored []string

	for _, name := range e.config.Strategies {
		strategy := Strategy(name)
		alg, ok := e.algorithm(strategy)
		if !ok {
			err := fmt.Errorf("no algorithm registered for strategy %q", strategy)
			e.finishBuild(start, cat, nil, err)
			return err
		}

		algStart := time.Now()
		model, fromStore, err := e.buildModel(buildCtx, alg, cat)
		if err != nil {
			err = fmt.Errorf("build %s: %w", strategy, err)
			e.finishBuild(start, cat, nil, err)
			return err
		}
		elapsed := time.Since(algStart)

		models[strategy] = model
		if fromStore {
			restored = append(restored, alg.Name())
		}
		if e.onModelBuilt != nil {
			e.onModelBuilt(strategy, elapsed, fromStore)
		}

		e.logger.Debug().
			Str("algorithm", alg.Name()).
			Bool("restored", fromStore).
			Int64("duration_ms", elapsed.Milliseconds()).
			Msg("model ready")
	}

	snap := &snapshot{
		catalog:  cat,
		resolver: NewResolver(cat),
		models:   models,
		version:  int(e.modelVersion.Add(1)),
		builtAt:  time.Now(),
	}
	e.current.Store(snap)
	e.clearCache()

	e.finishBuild(start, cat, restored, nil)

	e.logger.Info().
		Int("version", snap.version).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Strs("restored", restored).
		Msg("model build complete")

	return nil
}

// buildModel restores a persisted model for cat when one exists and
// otherwise fits a new one, saving it when a model store is set.
func (e *Engine) buildModel(ctx context.Context, alg Algorithm, cat *catalog.Store) (Model, bool, error) {
	pa, persistent := alg.(PersistentAlgorithm)
	persistent = persistent && e.models != nil

	if persistent {
		if m, ok := e.restoreModel(ctx, pa, cat); ok {
			return m, true, nil
		}
	}

	start := time.Now()
	model, err := alg.Fit(ctx, cat)
	if err != nil {
		return nil, false, err
	}

	if persistent {
		if err := e.persistModel(ctx, pa, model, cat, time.Since(start)); err != nil {
			// A model that cannot be saved still serves queries.
			e.logger.Warn().Err(err).Str("algorithm", alg.Name()).Msg("failed to persist model")
		}
	}

	return model, false, nil
}

func (e *Engine) restoreModel(ctx context.Context, pa PersistentAlgorithm, cat *catalog.Store) (Model, bool) {
	state := pa.NewState()
	meta, err := e.models.Load(ctx, pa.Name(), 0, state)
	if err != nil {
		if !errors.Is(err, storage.ErrNoModel) {
			e.logger.Warn().Err(err).Str("algorithm", pa.Name()).Msg("stored model unreadable, refitting")
		}
		return nil, false
	}

	if meta.Fingerprint != cat.Fingerprint() {
		e.logger.Debug().
			Str("algorithm", pa.Name()).
			Int("version", meta.Version).
			Msg("stored model fitted on a different catalog, refitting")
		return nil, false
	}

	model, err := pa.Restore(cat, state)
	if err != nil {
		e.logger.Warn().Err(err).Str("algorithm", pa.Name()).Msg("stored model rejected, refitting")
		return nil, false
	}
	return model, true
}

func (e *Engine) persistModel(ctx context.Context, pa PersistentAlgorithm, model Model, cat *catalog.Store, took time.Duration) error {
	state, err := pa.State(model)
	if err != nil {
		return fmt.Errorf("export state: %w", err)
	}

	version := 1
	if latest, ok := e.models.GetLatestVersion(pa.Name()); ok {
		version = latest + 1
	}

	meta := storage.ModelMetadata{
		Fingerprint:        cat.Fingerprint(),
		TrainedAt:          time.Now(),
		ItemCount:          cat.Len(),
		RatingCount:        cat.RatingCount(),
		UserCount:          cat.UserCount(),
		TrainingDurationMS: took.Milliseconds(),
	}
	if err := e.models.Save(ctx, pa.Name(), version, state, meta); err != nil {
		return err
	}
	return e.models.Prune(ctx, pa.Name(), e.config.Build.RetainVersions)
}

func (e *Engine) algorithm(s Strategy) (Algorithm, bool) {
	e.algMu.RLock()
	defer e.algMu.RUnlock()
	alg, ok := e.algorithms[s]
	return alg, ok
}

func (e *Engine) setBuilding() {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.status.IsBuilding = true
	e.status.LastError = ""
}

func (e *Engine) finishBuild(start time.Time, cat *catalog.Store, restored []string, err error) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	e.status.IsBuilding = false
	e.status.LastBuildDurationMS = time.Since(start).Milliseconds()
	if err != nil {
		e.status.LastError = err.Error()
		e.logger.Error().Err(err).Msg("model build failed")
		return
	}

	e.status.ModelVersion = int(e.modelVersion.Load())
	e.status.LastBuiltAt = time.Now()
	e.status.CatalogFingerprint = cat.Fingerprint()
	e.status.ItemCount = cat.Len()
	e.status.RatingCount = cat.RatingCount()
	e.status.UserCount = cat.UserCount()
	e.status.Strategies = append([]string(nil), e.config.Strategies...)
	e.status.RestoredModels = restored
}

// Recommend resolves the request's three seed titles and merges the
// per-seed neighbour lists of the requested strategy into at most TopN
// recommendations. Failures are NotFoundError, AmbiguousError,
// InsufficientDataError, ErrInvalidRequest, ErrNotReady, context errors or
// InternalError.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	resp, err := e.recommend(ctx, req, start)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}
	return resp, nil
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) recommend(ctx context.Context, req Request, start time.Time) (*Response, error) {
	req, err := e.prepareRequest(req)
	if err != nil {
		return nil, err
	}
	logger := e.createRequestLogger(req)

	if verr := validation.ValidateStruct(&req); verr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, verr)
	}

	snap := e.current.Load()
	if snap == nil {
		return nil, ErrNotReady
	}
	model, ok := snap.models[req.Strategy]
	if !ok {
		return nil, invalidf("strategy %q is not enabled", req.Strategy)
	}

	seeds, err := resolveSeeds(snap.resolver, req.Seeds)
	if err != nil {
		return nil, err
	}

	key := cacheKey(snap.version, req.Strategy, req.TopN, seeds)
	if resp := e.checkCache(key); resp != nil {
		resp.Metadata.RequestID = req.RequestID
		resp.Metadata.CacheHit = true
		resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
		resp.Metadata.Timestamp = time.Now()
		logger.Debug().Msg("cache hit")
		return resp, nil
	}

	exclude := make(map[int]struct{}, len(seeds))
	for _, s := range seeds {
		exclude[s.ItemID] = struct{}{}
	}

	perSeed := make([][]Recommendation, len(seeds))
	for i, s := range seeds {
		list, err := model.Similar(ctx, s.ItemID, exclude, req.TopN)
		if err != nil {
			return nil, classifyModelError(err, s)
		}
		perSeed[i] = list
	}

	items := Merge(perSeed, req.TopN)
	if err := fillAndCheck(snap.catalog, items, exclude, req.TopN); err != nil {
		logger.Error().Err(err).Msg("recommendation output rejected")
		return nil, err
	}

	resp := &Response{
		Items: items,
		Seeds: seeds,
		Metadata: ResponseMetadata{
			RequestID:    req.RequestID,
			Strategy:     req.Strategy.String(),
			TopN:         req.TopN,
			LatencyMS:    time.Since(start).Milliseconds(),
			ModelVersion: snap.version,
			BuiltAt:      snap.builtAt,
			Timestamp:    time.Now(),
		},
	}
	e.storeCache(key, resp)

	logger.Debug().
		Ints("seeds", seedIDs(seeds)).
		Int("returned", len(items)).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

// prepareRequest applies defaults, normalizes the strategy and generates a
// request ID if needed.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) (Request, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}

	if req.Strategy != "" {
		s, err := ParseStrategy(string(req.Strategy))
		if err != nil {
			return req, err
		}
		req.Strategy = s
	}

	if req.TopN == 0 {
		req.TopN = e.config.Limits.DefaultTopN
	}
	if req.TopN > e.config.Limits.MaxTopN {
		req.TopN = e.config.Limits.MaxTopN
	}

	seeds := make([]Seed, len(req.Seeds))
	for i, s := range req.Seeds {
		seeds[i] = Seed{Title: strings.TrimSpace(s.Title), Year: s.Year}
	}
	req.Seeds = seeds

	return req, nil
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) createRequestLogger(req Request) zerolog.Logger {
	return e.logger.With().
		Str("request_id", req.RequestID).
		Str("strategy", req.Strategy.String()).
		Logger()
}

// resolveSeeds maps every seed to a distinct catalog item.
func resolveSeeds(r *Resolver, seeds []Seed) ([]ResolvedSeed, error) {
	out := make([]ResolvedSeed, len(seeds))
	seen := make(map[int]int, len(seeds))

	for i, s := range seeds {
		item, err := r.ResolveItem(s.Title, s.Year)
		if err != nil {
			return nil, err
		}
		if j, dup := seen[item.ID]; dup {
			return nil, invalidf("seeds %d and %d both resolve to %q", j+1, i+1, item.Title)
		}
		seen[item.ID] = i
		out[i] = ResolvedSeed{ItemID: item.ID, Title: item.Title}
	}

	return out, nil
}

// classifyModelError names the seed in insufficient-data errors and turns
// anything unexpected into an InternalError.
func classifyModelError(err error, seed ResolvedSeed) error {
	var insufficient *InsufficientDataError
	if errors.As(err, &insufficient) {
		if insufficient.Title == "" {
			insufficient.Title = seed.Title
		}
		return insufficient
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, ErrInternal) {
		return err
	}
	return Internal(fmt.Sprintf("similar to item %d", seed.ItemID), err)
}

// fillAndCheck sets titles and verifies the merged list: at most topN
// distinct catalog items, none of them a seed, all with finite scores.
func fillAndCheck(cat *catalog.Store, items []Recommendation, seeds map[int]struct{}, topN int) error {
	if len(items) > topN {
		return Internal("merge", fmt.Errorf("%d results exceed top_n %d", len(items), topN))
	}

	seen := make(map[int]struct{}, len(items))
	for i := range items {
		id := items[i].ItemID
		item, ok := cat.Item(id)
		if !ok {
			return Internal("merge", fmt.Errorf("item %d is not in the catalog", id))
		}
		if _, isSeed := seeds[id]; isSeed {
			return Internal("merge", fmt.Errorf("seed item %d returned as a recommendation", id))
		}
		if _, dup := seen[id]; dup {
			return Internal("merge", fmt.Errorf("item %d returned twice", id))
		}
		if math.IsNaN(items[i].Score) || math.IsInf(items[i].Score, 0) {
			return Internal("merge", fmt.Errorf("item %d has a non-finite score", id))
		}
		seen[id] = struct{}{}
		items[i].Title = item.Title
	}

	return nil
}

// Resolve maps a title to a catalog item using the current snapshot.
func (e *Engine) Resolve(title string, year int) (catalog.Item, error) {
	snap := e.current.Load()
	if snap == nil {
		return catalog.Item{}, ErrNotReady
	}
	return snap.resolver.ResolveItem(strings.TrimSpace(title), year)
}

// Catalog returns the catalog of the current snapshot, or nil before the
// first build.
func (e *Engine) Catalog() *catalog.Store {
	snap := e.current.Load()
	if snap == nil {
		return nil
	}
	return snap.catalog
}

// Ready reports whether a snapshot is being served.
func (e *Engine) Ready() bool {
	return e.current.Load() != nil
}

// Strategies returns the strategies served by the current snapshot.
func (e *Engine) Strategies() []Strategy {
	snap := e.current.Load()
	if snap == nil {
		return nil
	}
	out := make([]Strategy, 0, len(snap.models))
	for s := range snap.models {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// GetStatus returns the current build status.
func (e *Engine) GetStatus() BuildStatus {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()

	st := e.status
	st.Strategies = append([]string(nil), e.status.Strategies...)
	st.RestoredModels = append([]string(nil), e.status.RestoredModels...)
	return st
}

// GetMetrics returns the current engine metrics.
func (e *Engine) GetMetrics() Metrics {
	return Metrics{
		RequestCount: e.requestCount.Load(),
		CacheHits:    e.cacheHits.Load(),
		CacheMisses:  e.cacheMisses.Load(),
		ErrorCount:   e.errorCount.Load(),
	}
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Clone()
}

func cacheKey(version int, strategy Strategy, topN int, seeds []ResolvedSeed) string {
	return fmt.Sprintf("v%d:%s:%d:%v", version, strategy, topN, seedIDs(seeds))
}

// checkCache returns a copy of a cached response so callers may modify it.
func (e *Engine) checkCache(key string) *Response {
	if e.cache == nil {
		return nil
	}

	resp, ok := e.cache.Get(key)
	if !ok {
		e.cacheMisses.Add(1)
		return nil
	}

	e.cacheHits.Add(1)
	return copyResponse(resp)
}

func (e *Engine) storeCache(key string, resp *Response) {
	if e.cache == nil {
		return
	}
	e.cache.Add(key, copyResponse(resp))
}

func (e *Engine) clearCache() {
	if e.cache == nil {
		return
	}
	e.cache.Purge()
	e.logger.Debug().Msg("cache cleared")
}

func copyResponse(resp *Response) *Response {
	items := make([]Recommendation, len(resp.Items))
	copy(items, resp.Items)
	seeds := make([]ResolvedSeed, len(resp.Seeds))
	copy(seeds, resp.Seeds)

	return &Response{
		Items:    items,
		Seeds:    seeds,
		Metadata: resp.Metadata, // Metadata is a value type, safe to copy
	}
}

func seedIDs(seeds []ResolvedSeed) []int {
	ids := make([]int, len(seeds))
	for i, s := range seeds {
		ids[i] = s.ItemID
	}
	return ids
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
