// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"

	"github.com/tomtom215/happening/internal/logging"
	"github.com/tomtom215/happening/internal/metrics"
	"github.com/tomtom215/happening/internal/models"
)

// Rate limit response headers.
const (
	HeaderLimit     = "X-RateLimit-Limit"
	HeaderRemaining = "X-RateLimit-Remaining"
	HeaderReset     = "X-RateLimit-Reset"
)

// Middleware enforces l on every request. Clients are keyed by their real IP
// (True-Client-IP, X-Real-IP, X-Forwarded-For, then the connection address).
// The X-RateLimit-* headers are set before the handler runs so they appear
// on every response, successful or not.
func Middleware(l *FixedWindow) func(http.Handler) http.Handler {
	return MiddlewareWithKey(l, httprate.KeyByRealIP)
}

// MiddlewareWithKey is Middleware with a custom client key function.
func MiddlewareWithKey(l *FixedWindow, keyFunc httprate.KeyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, err := keyFunc(r)
			if err != nil || key == "" {
				key = r.RemoteAddr
			}

			res := l.Allow(key)
			SetHeaders(w, res)

			if !res.Allowed {
				metrics.RecordRateLimitHit(l.cfg.Name)
				logging.Ctx(r.Context()).Debug().
					Str("limiter", l.cfg.Name).
					Str("client", logging.SanitizeValue(key, 64)).
					Msg("Rate limit exceeded")
				writeTooManyRequests(w, res)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SetHeaders writes the X-RateLimit-* headers for res.
func SetHeaders(w http.ResponseWriter, res Result) {
	h := w.Header()
	h.Set(HeaderLimit, strconv.Itoa(res.Limit))
	h.Set(HeaderRemaining, strconv.Itoa(res.Remaining))
	h.Set(HeaderReset, strconv.FormatInt(res.ResetTime.Unix(), 10))
}

func writeTooManyRequests(w http.ResponseWriter, res Result) {
	retryAfter := time.Until(res.ResetTime)
	if retryAfter < time.Second {
		retryAfter = time.Second
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Round(time.Second).Seconds())))
	w.WriteHeader(http.StatusTooManyRequests)

	body := models.ErrorResponse{
		Error:      "Too many requests",
		RetryAfter: res.ResetTime.UTC().Format(time.RFC3339),
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error().Err(err).Msg("Failed to encode rate limit response")
	}
}
