// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package middleware

import (
	"net/http"
	"time"

	"github.com/tomtom215/happening/internal/logging"
)

// DefaultSlowRequestThreshold is the latency above which AccessLog warns.
// A cold aggregation may legitimately take several seconds.
const DefaultSlowRequestThreshold = 5 * time.Second

// AccessLog returns middleware that logs every completed request at debug
// level and requests slower than threshold at warn level. A non-positive
// threshold uses DefaultSlowRequestThreshold.
func AccessLog(threshold time.Duration) func(http.HandlerFunc) http.HandlerFunc {
	if threshold <= 0 {
		threshold = DefaultSlowRequestThreshold
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapper := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next(wrapper, r)

			duration := time.Since(start)
			logger := logging.Ctx(r.Context())
			event := logger.Debug()
			if duration > threshold {
				event = logger.Warn()
			}
			event.
				Str("method", r.Method).
				Str("route", RoutePattern(r)).
				Int("status", wrapper.statusCode).
				Dur("duration", duration).
				Msg("Request completed")
		}
	}
}
