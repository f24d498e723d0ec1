// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

/*
Package metrics provides Prometheus metrics for Happening.

The package covers:
  - HTTP request latency, throughput and rate-limit rejections
  - Cache hierarchy hits, misses and backend failures per tier
  - Source adapter fetch latency, failures and discarded records
  - Aggregation duration, payload size and dedupe merges
  - Circuit breaker state per upstream

Collectors are registered with the default registry through promauto and
exposed at /metrics:

	curl http://localhost:8080/metrics

Record* helpers keep label handling in one place; call them instead of
touching the collectors directly.
*/
package metrics
