// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

/*
Package middleware provides HTTP middleware shared by every route.

Key Components:

  - RequestID: X-Request-ID propagation into the logging context
  - AccessLog: per-request debug log line, warn on slow requests
  - PrometheusMetrics: request count, latency and in-flight gauge labelled
    by chi route pattern
  - Compression: pooled gzip writers for clients that accept gzip

All middleware take and return http.HandlerFunc. The api package adapts
them to chi's func(http.Handler) http.Handler shape.

Route labels come from chi's route context after the handler returns, so
metric cardinality is bounded by the route table. Requests that match no
route are labelled "unmatched".

See Also:

  - internal/api: router and handlers
  - internal/metrics: collector definitions
  - internal/logging: request-scoped loggers
*/
package middleware
