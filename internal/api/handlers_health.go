// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/happening/internal/cache"
	"github.com/tomtom215/happening/internal/logging"
)

// healthPingTimeout bounds the tier 2 reachability check.
const healthPingTimeout = 2 * time.Second

// HealthStatus is the body of GET /api/v1/health.
type HealthStatus struct {
	Status         string    `json:"status"` // healthy, degraded
	Region         string    `json:"region"`
	SourcesEnabled int       `json:"sourcesEnabled"`
	CacheBackend   string    `json:"cacheBackend"`
	SharedCacheOK  bool      `json:"sharedCacheOk"`
	Uptime         float64   `json:"uptime"`
	Timestamp      time.Time `json:"timestamp"`
}

// ReadyStatus is the body of GET /api/v1/health/ready.
type ReadyStatus struct {
	Ready          bool `json:"ready"`
	SourcesEnabled int  `json:"sourcesEnabled"`
	SharedCacheOK  bool `json:"sharedCacheOk"`
}

// Health handles GET /api/v1/health. It always answers 200; status is
// "degraded" when readiness fails.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	enabled := h.registry.Enabled()
	sharedOK := h.sharedCacheOK(r.Context())

	status := "healthy"
	if enabled == 0 || !sharedOK {
		status = "degraded"
	}

	w.Header().Set("Cache-Control", "no-store")
	respondJSON(w, http.StatusOK, HealthStatus{
		Status:         status,
		Region:         h.region.Name,
		SourcesEnabled: enabled,
		CacheBackend:   h.backend,
		SharedCacheOK:  sharedOK,
		Uptime:         h.now().Sub(h.startTime).Seconds(),
		Timestamp:      h.now().UTC(),
	})
}

// HealthLive handles GET /api/v1/health/live. It answers 200 while the
// process can serve HTTP at all.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": h.now().Sub(h.startTime).Seconds(),
	})
}

// HealthReady handles GET /api/v1/health/ready. The service is ready when
// at least one adapter is enabled and tier 2 is reachable (always true for
// the memory backend). Not ready answers 503.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	enabled := h.registry.Enabled()
	sharedOK := h.sharedCacheOK(r.Context())
	ready := enabled > 0 && sharedOK

	statusCode := http.StatusOK
	if !ready {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Cache-Control", "no-store")
	respondJSON(w, statusCode, ReadyStatus{
		Ready:          ready,
		SourcesEnabled: enabled,
		SharedCacheOK:  sharedOK,
	})
}

func (h *Handler) sharedCacheOK(ctx context.Context) bool {
	if h.backend == cache.BackendMemory {
		return true
	}

	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()

	if err := h.cache.Ping(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("backend", h.backend).Msg("Shared cache unreachable")
		return false
	}
	return true
}
