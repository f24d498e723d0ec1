// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package middleware

import (
	"context"
	"net/http"

	"github.com/tomtom215/happening/internal/logging"
	"github.com/tomtom215/happening/internal/validation"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength caps IDs accepted from upstream proxies.
const maxRequestIDLength = 64

// RequestID middleware assigns each request an ID, echoes it in the
// response header and stores it in the logging context.
//
// An incoming X-Request-ID is kept when it is a short identifier
// (letters, digits, '-' and '_'); anything else is replaced so clients
// cannot inject arbitrary text into logs.
func RequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = logging.GenerateRequestID()
		}

		w.Header().Set(RequestIDHeader, requestID)

		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		next(w, r.WithContext(ctx))
	}
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	return logging.RequestIDFromContext(ctx)
}

func validRequestID(id string) bool {
	return id != "" && len(id) <= maxRequestIDLength && validation.IsIdentifier(id)
}
