// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package validation

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/happening/internal/models"
)

// Upper bounds shared by request structs.
const (
	MaxQueryLength = 100
	MaxParamLength = 256
)

// SanitizeString removes NUL bytes, trims surrounding whitespace and caps
// the result at maxRunes runes.
func SanitizeString(s string, maxRunes int) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\x00", ""))
	if maxRunes <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) > maxRunes {
		return strings.TrimSpace(string(runes[:maxRunes]))
	}
	return s
}

// QueryParam returns the sanitized value of name, capped at MaxParamLength.
func QueryParam(q url.Values, name string) string {
	return SanitizeString(q.Get(name), MaxParamLength)
}

// ParseFloatParam parses an optional float parameter. The bool result
// reports whether the caller supplied it.
func ParseFloatParam(q url.Values, name string, def float64) (float64, bool, *RequestValidationError) {
	raw := QueryParam(q, name)
	if raw == "" {
		return def, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return def, true, NewFieldError(name, "number", name+" must be a number")
	}
	return v, true, nil
}

// ParseIntParam parses an optional integer parameter.
func ParseIntParam(q url.Values, name string, def int) (int, *RequestValidationError) {
	raw := QueryParam(q, name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def, NewFieldError(name, "integer", name+" must be an integer")
	}
	return v, nil
}

// ParseBoolParam parses an optional boolean flag. Accepted spellings:
// true/false, 1/0, yes/no, on/off.
func ParseBoolParam(q url.Values, name string) (bool, *RequestValidationError) {
	switch strings.ToLower(QueryParam(q, name)) {
	case "":
		return false, nil
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return false, NewFieldError(name, "boolean", name+" must be true or false")
	}
}

// ParseBBox parses the legacy "minLng,minLat,maxLng,maxLat" parameter.
// An empty value yields nil.
func ParseBBox(raw string) (*models.Bounds, *RequestValidationError) {
	raw = SanitizeString(raw, MaxParamLength)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return nil, NewFieldError("bbox", "bbox", "bbox must be minLng,minLat,maxLng,maxLat")
	}

	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, NewFieldError("bbox", "bbox", "bbox must contain four numbers")
		}
		vals[i] = v
	}

	b := &models.Bounds{MinLng: vals[0], MinLat: vals[1], MaxLng: vals[2], MaxLat: vals[3]}
	if !b.Valid() {
		return nil, NewFieldError("bbox", "bbox", "bbox corners must be ordered and within coordinate ranges")
	}
	return b, nil
}
