// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

/*
Package api provides the HTTP boundary of Happening.

Routes:

  - GET /api/v1/events: the ranked event list near a point
  - GET /api/v1/sources: adapter status
  - GET /api/v1/health, /api/v1/health/live, /api/v1/health/ready
  - GET /metrics: Prometheus exposition

Request Flow for /api/v1/events:

	rate limit (fixed window, keyed by real client IP)
	  -> parse and validate query parameters
	  -> cache hierarchy: local slot, shared store, full aggregation
	  -> query stage: filter, optional rescoring, limit
	  -> 200 { updatedAt, count, data }

Every non-2xx response body is {"error": "..."} carrying a safe message.
Upstream bodies, stack traces and credentials never reach clients.

The router is built on chi (github.com/go-chi/chi/v5). Global middleware
adds request IDs, real client IPs, panic recovery, access logs, Prometheus
metrics, CORS, security headers and gzip.
*/
package api
