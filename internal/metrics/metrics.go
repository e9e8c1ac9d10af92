// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

// Package metrics defines the Prometheus metrics exported at /metrics.
//
// All metrics are registered with the default registry at package init
// through promauto. Callers record through the helper functions so label
// values stay consistent.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation Metrics
	RecommendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinerec_recommend_requests_total",
			Help: "Total number of recommendation requests by strategy and outcome",
		},
		[]string{"strategy", "outcome"},
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinerec_recommend_duration_seconds",
			Help:    "Recommendation latency in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"strategy"},
	)

	RecommendCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinerec_recommend_cache_total",
			Help: "Recommendation response cache lookups by result (hit, miss)",
		},
		[]string{"result"},
	)

	// Model Metrics
	ModelBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinerec_model_build_duration_seconds",
			Help:    "Time to fit or restore a strategy's model in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300, 600},
		},
		[]string{"strategy"},
	)

	ModelRestoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinerec_model_restored_total",
			Help: "Models loaded from the model directory instead of refitted",
		},
		[]string{"strategy"},
	)

	ReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinerec_reloads_total",
			Help: "Catalog reloads by result (success, error, skipped)",
		},
		[]string{"result"},
	)

	// Catalog Metrics
	CatalogItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinerec_catalog_items",
			Help: "Number of movies in the served catalog",
		},
	)

	CatalogRatings = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinerec_catalog_ratings",
			Help: "Number of ratings in the served catalog",
		},
	)

	CatalogRowsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinerec_catalog_rows_skipped_total",
			Help: "Source rows dropped while loading the catalog",
		},
		[]string{"source", "reason"},
	)

	CatalogLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinerec_catalog_load_duration_seconds",
			Help:    "Time to load the catalog from its source",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"loader"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinerec_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinerec_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinerec_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinerec_api_rate_limit_hits_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"route"},
	)
)

// RecordRecommendation records one recommendation request. outcome is a
// recommend.Kind value.
func RecordRecommendation(strategy, outcome string, duration time.Duration) {
	if strategy == "" {
		strategy = "unknown"
	}
	RecommendRequestsTotal.WithLabelValues(strategy, outcome).Inc()
	RecommendDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// RecordCacheLookup records a response cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		RecommendCacheTotal.WithLabelValues("hit").Inc()
		return
	}
	RecommendCacheTotal.WithLabelValues("miss").Inc()
}

// RecordModelBuild records how long a strategy's model took to become ready.
func RecordModelBuild(strategy string, duration time.Duration, restored bool) {
	ModelBuildDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	if restored {
		ModelRestoredTotal.WithLabelValues(strategy).Inc()
	}
}

// RecordReload records the result of a periodic catalog reload.
func RecordReload(result string) {
	ReloadsTotal.WithLabelValues(result).Inc()
}

// SetCatalogSize updates the catalog gauges.
func SetCatalogSize(items, ratings int) {
	CatalogItems.Set(float64(items))
	CatalogRatings.Set(float64(ratings))
}

// RecordSkippedRows adds n dropped rows for source.
func RecordSkippedRows(source, reason string, n int) {
	if n <= 0 {
		return
	}
	CatalogRowsSkipped.WithLabelValues(source, reason).Add(float64(n))
}

// RecordCatalogLoad records the catalog load duration for a loader.
func RecordCatalogLoad(loader string, duration time.Duration) {
	CatalogLoadDuration.WithLabelValues(loader).Observe(duration.Seconds())
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
