// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package models

import (
	"math"
	"time"
)

// CachePayload is the result of one aggregation cycle. It is immutable once
// written to a cache tier; readers that need a different list copy Data.
type CachePayload struct {
	UpdatedAt time.Time         `json:"updatedAt"`
	Count     int               `json:"count"`
	Data      []NormalizedEvent `json:"data"`
}

// NewCachePayload wraps events with the given update time.
func NewCachePayload(updatedAt time.Time, events []NormalizedEvent) *CachePayload {
	if events == nil {
		events = []NormalizedEvent{}
	}
	return &CachePayload{
		UpdatedAt: updatedAt.UTC(),
		Count:     len(events),
		Data:      events,
	}
}

// Events returns a copy of the payload's events.
func (p *CachePayload) Events() []NormalizedEvent {
	if p == nil {
		return nil
	}
	out := make([]NormalizedEvent, len(p.Data))
	copy(out, p.Data)
	return out
}

// Bounds is a WGS84 bounding box.
type Bounds struct {
	MinLat float64 `json:"minLat"`
	MinLng float64 `json:"minLng"`
	MaxLat float64 `json:"maxLat"`
	MaxLng float64 `json:"maxLng"`
}

// Contains reports whether the coordinate lies inside the box, edges included.
func (b *Bounds) Contains(lat, lng float64) bool {
	if b == nil {
		return true
	}
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// Valid reports whether the box has ordered, in-range corners.
func (b *Bounds) Valid() bool {
	for _, v := range []float64{b.MinLat, b.MinLng, b.MaxLat, b.MaxLng} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.MinLat >= -90 && b.MaxLat <= 90 &&
		b.MinLng >= -180 && b.MaxLng <= 180 &&
		b.MinLat <= b.MaxLat && b.MinLng <= b.MaxLng
}

// ErrorResponse is the body of every non-2xx response. Error carries a safe,
// human-readable message only.
type ErrorResponse struct {
	Error      string `json:"error"`
	RetryAfter string `json:"retryAfter,omitempty"`
}

// SourceStatus describes one adapter for the sources endpoint.
type SourceStatus struct {
	Name          Source `json:"name"`
	Enabled       bool   `json:"enabled"`
	HasCredential bool   `json:"hasCredential"`
	CircuitState  string `json:"circuitState"`
}
