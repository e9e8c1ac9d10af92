// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the chi router serving h.
//
// Global middleware runs in this order: request ID, real IP, panic
// recovery, metrics, request logging, CORS. The /api/v1 routes add security
// headers and rate limiting; health probes get a more permissive limit.
func NewRouter(h *Handler, cfg *MiddlewareConfig) http.Handler {
	mw := NewMiddleware(cfg)
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(PrometheusMetrics())
	r.Use(RequestLogging())
	r.Use(mw.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())

		r.Route("/health", func(r chi.Router) {
			r.Use(mw.RateLimitHealth())
			r.Get("/", h.Health)
			r.Get("/live", h.Live)
			r.Get("/ready", h.Ready)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit())
			r.Post("/recommendations", h.Recommend)
			r.Get("/movies/resolve", h.ResolveTitle)
			r.Get("/movies/popular", h.Popular)
			r.Get("/movies/{id}", h.Movie)
		})
	})

	return r
}
