// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package sources

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/happening/internal/models"
)

// Source is one upstream event API.
type Source interface {
	Name() models.Source

	// Fetch returns the upstream's normalized events inside bounds (nil
	// means no spatial filter). It never returns nil and never fails.
	Fetch(ctx context.Context, bounds *models.Bounds) []models.NormalizedEvent
}

// StatusReporter is implemented by adapters that expose their health.
type StatusReporter interface {
	Status() models.SourceStatus
}

// Failure reasons, used as the reason label of source_fetch_errors_total.
const (
	ReasonTransport   = "transport"
	ReasonTimeout     = "timeout"
	ReasonStatus      = "http_status"
	ReasonDecode      = "decode"
	ReasonTooLarge    = "too_large"
	ReasonCircuitOpen = "circuit_open"
	ReasonPanic       = "panic"
)

// UpstreamError describes a failed upstream call. URL is always sanitized.
type UpstreamError struct {
	Source models.Source
	URL    string
	Status int
	Reason string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s %d (%s): %v", e.Source, e.Reason, e.Status, e.URL, e.Err)
	}
	return fmt.Sprintf("%s: %s (%s): %v", e.Source, e.Reason, e.URL, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ReasonOf returns the metrics reason for err.
func ReasonOf(err error) string {
	var upstream *UpstreamError
	if errors.As(err, &upstream) && upstream.Reason != "" {
		return upstream.Reason
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ReasonTimeout
	}
	return ReasonTransport
}
