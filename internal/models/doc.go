// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

/*
Package models defines the data structures shared across Happening.

Key Components:

  - NormalizedEvent: the unified event record produced by every source adapter
  - CachePayload: one aggregation cycle's result, stored in both cache tiers
  - Bounds: WGS84 bounding box used by adapters and the query stage
  - ErrorResponse: body of every non-2xx API response
  - SourceStatus: adapter health summary for the sources endpoint

Categories and sources are closed enumerations; use IsValid before trusting
values that arrive from outside the process.
*/
package models
