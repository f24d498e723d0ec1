// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache tier labels.
const (
	TierLocal  = "local"
	TierShared = "shared"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Rate Limiter Metrics
	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"limiter"},
	)

	RateLimitTrackedClients = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rate_limit_tracked_clients",
			Help: "Client records currently held by a fixed-window limiter",
		},
		[]string{"limiter"},
	)

	// Cache Hierarchy Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"tier"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"tier"},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_errors_total",
			Help: "Total number of cache backend failures",
		},
		[]string{"tier", "operation"}, // operation: "get", "set"
	)

	CacheSingleFlightShared = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_singleflight_shared_total",
			Help: "Loads served by joining an in-flight aggregation",
		},
	)

	// Source Adapter Metrics
	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "source_fetch_duration_seconds",
			Help:    "Duration of a full adapter fetch in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"source"},
	)

	SourceFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_fetch_errors_total",
			Help: "Total number of failed adapter fetches",
		},
		[]string{"source", "reason"}, // reason: "http", "decode", "timeout", "circuit_open", "panic"
	)

	SourceEvents = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "source_events",
			Help: "Events contributed by each adapter in the last aggregation",
		},
		[]string{"source"},
	)

	SourceEventsDiscarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_events_discarded_total",
			Help: "Upstream records dropped during normalization",
		},
		[]string{"source", "reason"}, // reason: "no_coordinates", "no_title", "excluded", "ended", "out_of_bounds"
	)

	// Aggregation Metrics
	AggregationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aggregation_duration_seconds",
			Help:    "Duration of full aggregation cycles in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
	)

	AggregationEvents = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aggregation_events",
			Help: "Events in the most recent aggregation payload",
		},
	)

	AggregationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aggregation_failures_total",
			Help: "Aggregation cycles that produced no usable events",
		},
	)

	DedupeMerged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dedupe_merged_total",
			Help: "Events merged away as duplicates of another source's record",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit counts one rejected request for the named limiter.
func RecordRateLimitHit(limiter string) {
	APIRateLimitHits.WithLabelValues(limiter).Inc()
}

// RecordCacheLookup records a hit or miss on the given tier.
func RecordCacheLookup(tier string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(tier).Inc()
		return
	}
	CacheMisses.WithLabelValues(tier).Inc()
}

// RecordCacheError counts a backend failure on the given tier.
func RecordCacheError(tier, operation string) {
	CacheErrors.WithLabelValues(tier, operation).Inc()
}

// RecordSourceFetch records one adapter fetch. reason is empty on success.
func RecordSourceFetch(source string, duration time.Duration, events int, reason string) {
	SourceFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
	SourceEvents.WithLabelValues(source).Set(float64(events))
	if reason != "" {
		SourceFetchErrors.WithLabelValues(source, reason).Inc()
	}
}

// RecordDiscarded counts upstream records dropped during normalization.
func RecordDiscarded(source, reason string, n int) {
	if n <= 0 {
		return
	}
	SourceEventsDiscarded.WithLabelValues(source, reason).Add(float64(n))
}

// RecordAggregation records a completed aggregation cycle.
func RecordAggregation(duration time.Duration, events, merged int) {
	AggregationDuration.Observe(duration.Seconds())
	AggregationEvents.Set(float64(events))
	DedupeMerged.Add(float64(merged))
	if events == 0 {
		AggregationFailures.Inc()
	}
}
