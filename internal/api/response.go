// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package api

import (
	"hash/fnv"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/happening/internal/logging"
	"github.com/tomtom215/happening/internal/models"
	"github.com/tomtom215/happening/internal/validation"
)

// Generic messages for server-side failures. Details stay in the logs.
const (
	msgInternalError    = "Internal server error"
	msgNotFound         = "Not found"
	msgMethodNotAllowed = "Method not allowed"
)

// respondJSON writes v with the given status. Encoding happens before the
// header is written so a marshal failure can still become a clean 500.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		writeBody(w, http.StatusInternalServerError, []byte(`{"error":"`+msgInternalError+`"}`))
		return
	}
	writeBody(w, status, data)
}

// respondCacheable writes v with an ETag and answers a matching
// If-None-Match with 304.
func respondCacheable(w http.ResponseWriter, r *http.Request, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to marshal JSON response")
		respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	etag := generateETag(data)
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeBody(w, http.StatusOK, data)
}

func writeBody(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Debug().Err(err).Msg("Failed to write JSON response")
	}
}

// generateETag returns a weak validator derived from the body (FNV-1a).
func generateETag(data []byte) string {
	h := fnv.New64a()
	_, _ = h.Write(data)
	return `W/"` + strconv.FormatUint(h.Sum64(), 16) + `"`
}

// respondError writes the {"error": message} body.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, models.ErrorResponse{Error: message})
}

// respondValidationError writes a 400 naming the offending parameters.
func respondValidationError(w http.ResponseWriter, ve *validation.RequestValidationError) {
	respondJSON(w, http.StatusBadRequest, ve.ToErrorResponse())
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	respondError(w, http.StatusNotFound, msgNotFound)
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
}
