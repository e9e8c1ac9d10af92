// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinerec/internal/catalog"
	"github.com/tomtom215/cinerec/internal/metrics"
	"github.com/tomtom215/cinerec/internal/recommend"
	"github.com/tomtom215/cinerec/internal/recommend/algorithms"
)

func testCatalog(t *testing.T) *catalog.Store {
	t.Helper()

	items := []catalog.Item{
		{ID: 1, Title: "Heat (1995)", Genres: []string{"Crime", "Thriller"}, Cast: []string{"Al Pacino", "Robert De Niro"}, Director: "Michael Mann", Keywords: []string{"heist"}},
		{ID: 2, Title: "Heat (1986)", Genres: []string{"Action"}, Cast: []string{"Burt Reynolds"}, Director: "Dick Richards"},
		{ID: 3, Title: "Collateral (2004)", Genres: []string{"Crime", "Thriller"}, Cast: []string{"Tom Cruise"}, Director: "Michael Mann", Keywords: []string{"hitman"}},
		{ID: 4, Title: "The Godfather (1972)", Genres: []string{"Crime", "Drama"}, Cast: []string{"Al Pacino", "Marlon Brando"}, Director: "Francis Ford Coppola", Keywords: []string{"mafia"}},
		{ID: 5, Title: "Toy Story (1995)", Genres: []string{"Animation", "Comedy"}, Cast: []string{"Tom Hanks"}, Director: "John Lasseter", Keywords: []string{"toys"}},
		{ID: 6, Title: "Up (2009)", Genres: []string{"Animation", "Adventure"}, Cast: []string{"Ed Asner"}, Director: "Pete Docter", Keywords: []string{"balloon"}},
		{ID: 7, Title: "Ronin (1998)", Genres: []string{"Action", "Crime"}, Cast: []string{"Robert De Niro"}, Director: "John Frankenheimer", Keywords: []string{"heist"}},
	}

	raw := [][3]float64{
		{1, 1, 5}, {1, 3, 4.5}, {1, 4, 5}, {1, 7, 4}, {1, 5, 2},
		{2, 1, 4}, {2, 3, 4}, {2, 7, 4.5}, {2, 5, 3},
		{3, 4, 5}, {3, 1, 4.5}, {3, 5, 1.5}, {3, 2, 3},
		{4, 5, 5}, {4, 2, 2}, {4, 3, 2.5},
	}
	ratings := make([]catalog.Rating, len(raw))
	for i, r := range raw {
		ratings[i] = catalog.Rating{UserID: int(r[0]), ItemID: int(r[1]), Value: r[2], Timestamp: time.Unix(int64(1000+i), 0)}
	}

	s, err := catalog.NewStore(items, ratings, catalog.DefaultRatingScale())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return s
}

func testEngine(t *testing.T, build bool) *recommend.Engine {
	t.Helper()

	cfg := recommend.DefaultConfig()
	cfg.Collaborative.Factors = 4
	cfg.Collaborative.Iterations = 10

	e, err := recommend.NewEngine(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	algorithms.Register(e)

	if build {
		if err := e.Build(context.Background(), testCatalog(t)); err != nil {
			t.Fatalf("Build() error = %v", err)
		}
	}
	return e
}

func testServer(t *testing.T, build bool) http.Handler {
	t.Helper()
	cfg := DefaultMiddlewareConfig()
	cfg.RateLimitDisabled = true
	return NewRouter(NewHandler(testEngine(t, build), "test"), cfg)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, http.NoBody)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

func TestRecommend(t *testing.T) {
	h := testServer(t, true)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "content by titles",
			body:       `{"titles":["Heat (1995)","Collateral","The Godfather"],"strategy":"content","top_n":3}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "collaborative with year",
			body:       `{"seeds":[{"title":"Heat","year":1995},{"title":"Collateral"},{"title":"Ronin"}],"strategy":"cf","top_n":2}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown title",
			body:       `{"titles":["Heat (1995)","Collateral","Nope"],"strategy":"content"}`,
			wantStatus: http.StatusNotFound,
			wantCode:   ErrCodeNotFound,
		},
		{
			name:       "ambiguous title",
			body:       `{"titles":["Heat","Collateral","Ronin"],"strategy":"content"}`,
			wantStatus: http.StatusConflict,
			wantCode:   ErrCodeAmbiguous,
		},
		{
			name:       "unrated seed for collaborative",
			body:       `{"titles":["Heat (1995)","Collateral","Up"],"strategy":"collaborative"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   ErrCodeInsufficientData,
		},
		{
			name:       "two seeds",
			body:       `{"titles":["Heat (1995)","Collateral"],"strategy":"content"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeValidationFailed,
		},
		{
			name:       "unknown strategy",
			body:       `{"titles":["Heat (1995)","Collateral","Ronin"],"strategy":"hybrid"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeBadRequest,
		},
		{
			name:       "malformed json",
			body:       `{"titles":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeBadRequest,
		},
		{
			name:       "unknown field",
			body:       `{"titles":["a","b","c"],"strategy":"content","extra":1}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeBadRequest,
		},
		{
			name:       "seeds and titles",
			body:       `{"titles":["a","b","c"],"seeds":[{"title":"a"}],"strategy":"content"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, h, http.MethodPost, "/api/v1/recommendations", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantCode == "" {
				if !env.Success {
					t.Errorf("Success = false, want true")
				}
				return
			}
			if env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", env.Error, tt.wantCode)
			}
			if env.Error != nil && env.Error.RequestID == "" {
				t.Error("error request_id is empty")
			}
		})
	}
}

func TestRecommend_ResponseBody(t *testing.T) {
	h := testServer(t, true)

	rec, env := do(t, h, http.MethodPost, "/api/v1/recommendations",
		`{"titles":["Heat (1995)","Collateral (2004)","The Godfather (1972)"],"strategy":"content","top_n":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	var resp recommend.Response
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(resp.Items) == 0 || len(resp.Items) > 3 {
		t.Fatalf("len(Items) = %d, want 1..3", len(resp.Items))
	}

	seen := map[int]bool{1: true, 3: true, 4: true}
	for _, it := range resp.Items {
		if seen[it.ItemID] {
			t.Errorf("item %d repeated or is a seed", it.ItemID)
		}
		seen[it.ItemID] = true
		if it.Title == "" {
			t.Errorf("item %d has empty title", it.ItemID)
		}
	}
	if len(resp.Seeds) != 3 || resp.Seeds[0].ItemID != 1 {
		t.Errorf("Seeds = %+v, want Heat (1995) first", resp.Seeds)
	}
	if got := rec.Header().Get("X-Request-ID"); got == "" || got != env.Meta.RequestID {
		t.Errorf("X-Request-ID = %q, meta request_id = %q", got, env.Meta.RequestID)
	}
}

func TestRecommend_AmbiguousDetails(t *testing.T) {
	h := testServer(t, true)

	_, env := do(t, h, http.MethodPost, "/api/v1/recommendations",
		`{"titles":["Heat","Collateral","Ronin"],"strategy":"content"}`)
	if env.Error == nil {
		t.Fatal("error = nil, want AMBIGUOUS_TITLE")
	}

	raw, err := json.Marshal(env.Error.Details)
	if err != nil {
		t.Fatalf("marshal details: %v", err)
	}
	var details struct {
		Candidates []recommend.Candidate `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &details); err != nil {
		t.Fatalf("decode details: %v", err)
	}
	if len(details.Candidates) != 2 {
		t.Fatalf("len(candidates) = %d, want 2", len(details.Candidates))
	}
	if details.Candidates[0].ItemID != 1 || details.Candidates[1].ItemID != 2 {
		t.Errorf("candidates = %+v, want ids 1 and 2", details.Candidates)
	}
}

func TestRecommend_Metrics(t *testing.T) {
	h := testServer(t, true)

	ok := metrics.RecommendRequestsTotal.WithLabelValues("content", recommend.KindOK)
	notFound := metrics.RecommendRequestsTotal.WithLabelValues("content", recommend.KindNotFound)
	okBefore := testutil.ToFloat64(ok)
	notFoundBefore := testutil.ToFloat64(notFound)

	do(t, h, http.MethodPost, "/api/v1/recommendations", `{"titles":["Heat (1995)","Collateral","Ronin"],"strategy":"content"}`)
	do(t, h, http.MethodPost, "/api/v1/recommendations", `{"titles":["Heat (1995)","Collateral","Nope"],"strategy":"content"}`)

	if got := testutil.ToFloat64(ok) - okBefore; got != 1 {
		t.Errorf("ok delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(notFound) - notFoundBefore; got != 1 {
		t.Errorf("not_found delta = %v, want 1", got)
	}

	route := metrics.APIRequestsTotal.WithLabelValues("POST", "/api/v1/recommendations", "200")
	if testutil.ToFloat64(route) < 1 {
		t.Error("api request counter for /api/v1/recommendations not recorded")
	}
}

func TestRecommend_NotReady(t *testing.T) {
	h := testServer(t, false)

	rec, env := do(t, h, http.MethodPost, "/api/v1/recommendations",
		`{"titles":["Heat (1995)","Collateral","Ronin"],"strategy":"content"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if env.Error == nil || env.Error.Code != ErrCodeServiceUnavailable {
		t.Errorf("error = %+v, want SERVICE_UNAVAILABLE", env.Error)
	}
}

func TestResolveTitle(t *testing.T) {
	h := testServer(t, true)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantID     int
	}{
		{"exact stored title", "title=Heat+(1995)", http.StatusOK, 1},
		{"display title with year", "title=Heat&year=1986", http.StatusOK, 2},
		{"unique display title", "title=Collateral", http.StatusOK, 3},
		{"ambiguous", "title=Heat", http.StatusConflict, 0},
		{"unknown", "title=Nope", http.StatusNotFound, 0},
		{"missing title", "", http.StatusBadRequest, 0},
		{"bad year", "title=Heat&year=abc", http.StatusBadRequest, 0},
		{"year out of range", "title=Heat&year=1200", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, h, http.MethodGet, "/api/v1/movies/resolve?"+tt.query, "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantID == 0 {
				return
			}
			var got movieView
			if err := json.Unmarshal(env.Data, &got); err != nil {
				t.Fatalf("decode data: %v", err)
			}
			if got.ID != tt.wantID {
				t.Errorf("ID = %d, want %d", got.ID, tt.wantID)
			}
		})
	}
}

func TestMovie(t *testing.T) {
	h := testServer(t, true)

	tests := []struct {
		name       string
		id         string
		wantStatus int
	}{
		{"found", "1", http.StatusOK},
		{"missing", "99", http.StatusNotFound},
		{"not a number", "heat", http.StatusBadRequest},
		{"negative", "-1", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, h, http.MethodGet, "/api/v1/movies/"+tt.id, "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var got movieView
			if err := json.Unmarshal(env.Data, &got); err != nil {
				t.Fatalf("decode data: %v", err)
			}
			if got.DisplayTitle != "Heat" || got.Year != 1995 || got.RatingCount != 3 {
				t.Errorf("movie = %+v, want Heat/1995 with 3 ratings", got)
			}
		})
	}
}

func TestPopular(t *testing.T) {
	h := testServer(t, true)

	rec, env := do(t, h, http.MethodGet, "/api/v1/movies/popular?limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got []catalog.Popularity
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Score < got[1].Score {
		t.Errorf("popular not sorted by score: %v then %v", got[0].Score, got[1].Score)
	}

	for _, q := range []string{"limit=0", "limit=101", "limit=x"} {
		if rec, _ := do(t, h, http.MethodGet, "/api/v1/movies/popular?"+q, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, rec.Code)
		}
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name      string
		build     bool
		wantReady int
		wantState string
	}{
		{"built", true, http.StatusOK, "healthy"},
		{"not built", false, http.StatusServiceUnavailable, "starting"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := testServer(t, tt.build)

			rec, env := do(t, h, http.MethodGet, "/api/v1/health", "")
			if rec.Code != http.StatusOK {
				t.Fatalf("health status = %d, want 200", rec.Code)
			}
			var got HealthResponse
			if err := json.Unmarshal(env.Data, &got); err != nil {
				t.Fatalf("decode data: %v", err)
			}
			if got.Status != tt.wantState || got.Ready != tt.build {
				t.Errorf("health = %s/%v, want %s/%v", got.Status, got.Ready, tt.wantState, tt.build)
			}

			if rec, _ := do(t, h, http.MethodGet, "/api/v1/health/live", ""); rec.Code != http.StatusOK {
				t.Errorf("live status = %d, want 200", rec.Code)
			}
			if rec, _ := do(t, h, http.MethodGet, "/api/v1/health/ready", ""); rec.Code != tt.wantReady {
				t.Errorf("ready status = %d, want %d", rec.Code, tt.wantReady)
			}
		})
	}
}

func TestRouter_Misc(t *testing.T) {
	h := testServer(t, true)

	t.Run("unknown route", func(t *testing.T) {
		rec, env := do(t, h, http.MethodGet, "/api/v1/nope", "")
		if rec.Code != http.StatusNotFound || env.Error == nil {
			t.Errorf("status = %d, error = %+v, want 404 envelope", rec.Code, env.Error)
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec, _ := do(t, h, http.MethodGet, "/api/v1/recommendations", "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rec.Code)
		}
	})

	t.Run("security headers", func(t *testing.T) {
		rec, _ := do(t, h, http.MethodGet, "/api/v1/health/live", "")
		if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
			t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
		}
	})

	t.Run("request id is echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", http.NoBody)
		req.Header.Set("X-Request-ID", "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
			t.Errorf("X-Request-ID = %q, want abc-123", got)
		}
	})

	t.Run("metrics endpoint", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "cinerec_api_requests_total") {
			t.Error("/metrics does not expose cinerec_api_requests_total")
		}
	})
}

func TestRateLimit(t *testing.T) {
	cfg := DefaultMiddlewareConfig()
	cfg.RateLimitRequests = 2
	cfg.RateLimitWindow = time.Minute
	h := NewRouter(NewHandler(testEngine(t, true), "test"), cfg)

	hits := metrics.APIRateLimitHits.WithLabelValues("/api/v1/movies/popular")
	before := testutil.ToFloat64(hits)

	var last *httptest.ResponseRecorder
	var env envelope
	for range 3 {
		last, env = do(t, h, http.MethodGet, "/api/v1/movies/popular", "")
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", last.Code)
	}
	if env.Error == nil || env.Error.Code != ErrCodeTooManyRequests {
		t.Errorf("error = %+v, want TOO_MANY_REQUESTS", env.Error)
	}
	if got := testutil.ToFloat64(hits) - before; got != 1 {
		t.Errorf("rate limit hits delta = %v, want 1", got)
	}
}
