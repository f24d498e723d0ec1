// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

/*
Package sources contains one adapter per upstream event API.

Every adapter satisfies Source. Fetch never fails: upstream transport errors,
non-2xx responses, oversized or malformed bodies and timeouts are logged,
counted in metrics and turned into an empty list, so one broken upstream can
only shrink the aggregate, never fail it.

Adapters:

  - LinkedEvents: City of Helsinki event API, follows meta.next links
  - MyHelsinki: MyHelsinki open API, offset/limit paging
  - Ticketmaster: Discovery API v2, page/size paging, requires an API key

Resilience:

Each adapter owns a client that wraps its HTTP calls in a gobreaker circuit
breaker (open after 60% failures over at least 10 calls, probe again after
2 minutes) and paces page requests with an x/time/rate limiter. While the
breaker is open, Fetch returns immediately with an empty list.

Normalization:

Adapters only map upstream JSON into normalize.Candidate values. Filtering
(missing title or coordinates, online-only or restricted audiences, ended,
outside the bounding box) and classification run in the shared
normalize.Normalizer so every upstream is held to the same rules.

Registry builds the enabled adapters from configuration in a fixed order:
LinkedEvents, MyHelsinki, Ticketmaster. That order is the adapter invocation
order used by the aggregator when merging and deduplicating.
*/
package sources
