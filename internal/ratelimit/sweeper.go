// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/happening/internal/logging"
	"github.com/tomtom215/happening/internal/metrics"
)

// Sweeper periodically removes stale records from a set of limiters.
// It implements suture.Service.
type Sweeper struct {
	limiters []*FixedWindow
	interval time.Duration
}

// NewSweeper creates a sweeper running every interval (default 1 minute).
func NewSweeper(interval time.Duration, limiters ...*FixedWindow) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{limiters: limiters, interval: interval}
}

// Serve runs until ctx is cancelled.
func (s *Sweeper) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.SweepOnce()
		}
	}
}

// SweepOnce sweeps every limiter immediately.
func (s *Sweeper) SweepOnce() {
	for _, l := range s.limiters {
		removed := l.Sweep()
		tracked := l.Len()
		metrics.RateLimitTrackedClients.WithLabelValues(l.cfg.Name).Set(float64(tracked))
		if removed > 0 {
			logging.Debug().
				Str("limiter", l.cfg.Name).
				Int("removed", removed).
				Int("tracked", tracked).
				Msg("Swept rate limit records")
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (s *Sweeper) String() string {
	return fmt.Sprintf("ratelimit-sweeper(%d)", len(s.limiters))
}
