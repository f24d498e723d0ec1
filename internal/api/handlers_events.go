// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/happening/internal/aggregator"
	"github.com/tomtom215/happening/internal/logging"
	"github.com/tomtom215/happening/internal/models"
)

// Response headers for the events endpoint.
const (
	HeaderCache        = "X-Cache"
	EventsCacheControl = "public, s-maxage=60, stale-while-revalidate=120"
)

// Events handles GET /api/v1/events.
//
// The cached payload is shared by every caller; filtering, rescoring and
// truncation happen on copies for each request.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	req, verr := parseEventsRequest(r.URL.Query(), h.region.Center())
	if verr != nil {
		respondValidationError(w, verr)
		return
	}

	payload, tier, err := h.cache.Get(r.Context(), h.cacheKey, h.loader)
	if err != nil {
		if errors.Is(err, aggregator.ErrNoEvents) {
			logging.Ctx(r.Context()).Warn().Msg("Aggregation produced no events")
		} else {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Aggregation failed")
		}
		respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	events := h.query.Apply(payload, req.Filter(), h.now())

	w.Header().Set("Cache-Control", EventsCacheControl)
	w.Header().Set(HeaderCache, string(tier))
	respondCacheable(w, r, models.NewCachePayload(payload.UpdatedAt, events))
}
