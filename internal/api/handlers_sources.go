// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package api

import (
	"net/http"

	"github.com/tomtom215/happening/internal/models"
)

// SourcesResponse is the body of GET /api/v1/sources.
type SourcesResponse struct {
	Count int                   `json:"count"`
	Data  []models.SourceStatus `json:"data"`
}

// Sources handles GET /api/v1/sources. Credentials are reported only as
// present or absent.
func (h *Handler) Sources(w http.ResponseWriter, _ *http.Request) {
	status := h.registry.Status()
	w.Header().Set("Cache-Control", "no-store")
	respondJSON(w, http.StatusOK, SourcesResponse{Count: len(status), Data: status})
}
