// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

// Package validation checks every externally supplied parameter before it
// reaches the cache or the source adapters.
//
// It wraps a singleton go-playground/validator instance (struct info is
// cached after first use) and adds:
//   - custom tags: identifier, category, source, action, nonul
//   - query parameter parsers that report failures as *RequestValidationError
//   - SanitizeString for NUL stripping and rune-length caps
//
// Field names in messages come from the `query` struct tag so callers see
// the parameter they sent:
//
//	type EventsRequest struct {
//	    Lat      float64 `query:"lat" validate:"latitude"`
//	    RadiusKm float64 `query:"radiusKm" validate:"min=1,max=50"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    respondJSON(w, http.StatusBadRequest, verr.ToErrorResponse())
//	    return
//	}
//
// Messages never echo the rejected value.
package validation
