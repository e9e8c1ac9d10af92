// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

// Package api serves the recommendation engine over HTTP.
//
// Every JSON response uses the APIResponse envelope:
//
//	{"success": true, "data": {...}, "meta": {"request_id": "...", ...}}
//	{"success": false, "error": {"code": "NOT_FOUND", "message": "..."}, ...}
//
// Engine errors map onto status codes in writeEngineError.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cinerec/internal/catalog"
	"github.com/tomtom215/cinerec/internal/logging"
	"github.com/tomtom215/cinerec/internal/metrics"
	"github.com/tomtom215/cinerec/internal/recommend"
	"github.com/tomtom215/cinerec/internal/validation"
)

const (
	// maxBodyBytes bounds a recommendation request body.
	maxBodyBytes = 64 << 10

	defaultPopularLimit = 20
	maxPopularLimit     = 100
)

// Recommender is the engine surface the handlers use.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	Resolve(title string, year int) (catalog.Item, error)
	Catalog() *catalog.Store
	Ready() bool
	Strategies() []recommend.Strategy
	GetStatus() recommend.BuildStatus
	GetMetrics() recommend.Metrics
}

// Handler holds the HTTP handlers.
type Handler struct {
	engine    Recommender
	version   string
	startTime time.Time
}

// NewHandler creates the handlers for engine.
func NewHandler(engine Recommender, version string) *Handler {
	return &Handler{
		engine:    engine,
		version:   version,
		startTime: time.Now(),
	}
}

// recommendBody is the POST /api/v1/recommendations payload. Titles is a
// shorthand for Seeds without years; exactly one of them may be set.
type recommendBody struct {
	Seeds    []recommend.Seed `json:"seeds"`
	Titles   []string         `json:"titles"`
	Strategy string           `json:"strategy"`
	TopN     int              `json:"top_n"`
}

// Recommend handles POST /api/v1/recommendations.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	start := time.Now()

	var body recommendBody
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			rw.BadRequest("Request body is empty")
			return
		}
		rw.BadRequest("Invalid JSON body: " + err.Error())
		return
	}
	if len(body.Seeds) > 0 && len(body.Titles) > 0 {
		rw.BadRequest("Set either seeds or titles, not both")
		return
	}

	req := recommend.Request{
		Seeds:     body.Seeds,
		Strategy:  recommend.Strategy(body.Strategy),
		TopN:      body.TopN,
		RequestID: logging.RequestIDFromContext(r.Context()),
	}
	if len(body.Titles) > 0 {
		req = recommend.NewRequest(body.Titles, req.Strategy, req.TopN)
		req.RequestID = logging.RequestIDFromContext(r.Context())
	}

	label := ""
	if s, err := recommend.ParseStrategy(body.Strategy); err == nil {
		label = s.String()
		r = r.WithContext(logging.ContextWithStrategy(r.Context(), label))
		rw = NewResponseWriter(w, r)
	}

	resp, err := h.engine.Recommend(r.Context(), req)
	metrics.RecordRecommendation(label, recommend.Kind(err), time.Since(start))
	if err != nil {
		writeEngineError(rw, err)
		return
	}
	metrics.RecordCacheLookup(resp.Metadata.CacheHit)

	rw.Success(resp)
}

type resolveQuery struct {
	Title string `validate:"required,max=512"`
	Year  int    `validate:"omitempty,min=1870,max=2200"`
}

// ResolveTitle handles GET /api/v1/movies/resolve?title=&year=.
func (h *Handler) ResolveTitle(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	q := resolveQuery{Title: strings.TrimSpace(r.URL.Query().Get("title"))}
	if raw := r.URL.Query().Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			rw.BadRequest("year must be an integer")
			return
		}
		q.Year = year
	}
	if verr := validation.ValidateStruct(&q); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	item, err := h.engine.Resolve(q.Title, q.Year)
	if err != nil {
		writeEngineError(rw, err)
		return
	}
	rw.Success(h.movieView(h.engine.Catalog(), item))
}

// Movie handles GET /api/v1/movies/{id}.
func (h *Handler) Movie(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		rw.BadRequest("Movie id must be a positive integer")
		return
	}

	cat := h.engine.Catalog()
	if cat == nil {
		writeEngineError(rw, recommend.ErrNotReady)
		return
	}
	item, ok := cat.Item(id)
	if !ok {
		rw.NotFound("No movie with id " + strconv.Itoa(id))
		return
	}
	rw.Success(h.movieView(cat, item))
}

// Popular handles GET /api/v1/movies/popular?limit=.
func (h *Handler) Popular(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit := defaultPopularLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPopularLimit {
			rw.BadRequest("limit must be between 1 and " + strconv.Itoa(maxPopularLimit))
			return
		}
		limit = n
	}

	cat := h.engine.Catalog()
	if cat == nil {
		writeEngineError(rw, recommend.ErrNotReady)
		return
	}
	rw.Success(cat.Popular(limit))
}

// movieView is a catalog item with its rating count.
type movieView struct {
	catalog.Item
	DisplayTitle string `json:"display_title"`
	RatingCount  int    `json:"rating_count"`
}

//nolint:gocritic // hugeParam: item copied into the view
func (h *Handler) movieView(cat *catalog.Store, item catalog.Item) movieView {
	v := movieView{Item: item, DisplayTitle: item.DisplayTitle()}
	if cat != nil {
		v.RatingCount = cat.ItemRatingCount(item.ID)
	}
	return v
}

// HealthResponse is the GET /api/v1/health payload.
type HealthResponse struct {
	Status     string                `json:"status"`
	Ready      bool                  `json:"ready"`
	Version    string                `json:"version"`
	Uptime     float64               `json:"uptime_seconds"`
	Strategies []string              `json:"strategies"`
	Build      recommend.BuildStatus `json:"build"`
	Engine     recommend.Metrics     `json:"engine"`
}

// Health handles GET /api/v1/health. It always answers 200; Ready reports
// whether recommendations can be served.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ready := h.engine.Ready()
	status := "healthy"
	if !ready {
		status = "starting"
	}

	strategies := h.engine.Strategies()
	names := make([]string, len(strategies))
	for i, s := range strategies {
		names[i] = s.String()
	}

	NewResponseWriter(w, r).Success(HealthResponse{
		Status:     status,
		Ready:      ready,
		Version:    h.version,
		Uptime:     time.Since(h.startTime).Seconds(),
		Strategies: names,
		Build:      h.engine.GetStatus(),
		Engine:     h.engine.GetMetrics(),
	})
}

// Live handles GET /api/v1/health/live.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// Ready handles GET /api/v1/health/ready: 200 once a model snapshot is
// served, 503 before.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.engine.Ready() {
		rw.ServiceUnavailable("Recommendation models are not built yet")
		return
	}
	rw.Success(map[string]string{"status": "ready"})
}
