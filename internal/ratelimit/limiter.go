// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

// Package ratelimit implements the per-client fixed-window request counter
// that guards the public API.
//
// One FixedWindow instance exists per distinct {MaxRequests, Window}
// configuration, so different endpoints can carry different limits.
// Records live only inside the limiter; a periodic Sweep drops records
// whose window is long over.
package ratelimit

import (
	"sync"
	"time"
)

// DefaultMaxClients caps tracked clients when Config.MaxClients is zero.
const DefaultMaxClients = 100_000

// Config describes one limiter.
type Config struct {
	// Name labels metrics and logs.
	Name string

	// MaxRequests is the number of requests allowed per window.
	MaxRequests int

	// Window is the fixed window length.
	Window time.Duration

	// MaxClients bounds memory; the client with the oldest window is evicted
	// when a new client arrives at the cap.
	MaxClients int
}

// Result is the outcome of one Allow call.
type Result struct {
	Allowed   bool
	Remaining int
	ResetTime time.Time
	Limit     int
}

// record is the per-client counter. It never leaves this package.
type record struct {
	count       int
	windowStart time.Time
}

// FixedWindow is a concurrency-safe fixed-window counter keyed by client.
type FixedWindow struct {
	mu      sync.Mutex
	cfg     Config
	records map[string]*record
	now     func() time.Time
}

// New creates a limiter. Non-positive values fall back to 60 requests per
// minute.
func New(cfg Config) *FixedWindow {
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 60
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.MaxClients <= 0 {
		cfg.MaxClients = DefaultMaxClients
	}
	if cfg.Name == "" {
		cfg.Name = "default"
	}
	return &FixedWindow{
		cfg:     cfg,
		records: make(map[string]*record),
		now:     time.Now,
	}
}

// Config returns the limiter configuration.
func (l *FixedWindow) Config() Config {
	return l.cfg
}

// Allow counts one request for key and reports whether it is within the limit.
func (l *FixedWindow) Allow(key string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	rec, ok := l.records[key]
	if !ok {
		if len(l.records) >= l.cfg.MaxClients {
			l.evictOldest()
		}
		rec = &record{windowStart: now}
		l.records[key] = rec
	}

	if now.Sub(rec.windowStart) >= l.cfg.Window {
		rec.count = 0
		rec.windowStart = now
	}
	rec.count++

	remaining := l.cfg.MaxRequests - rec.count
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:   rec.count <= l.cfg.MaxRequests,
		Remaining: remaining,
		ResetTime: rec.windowStart.Add(l.cfg.Window),
		Limit:     l.cfg.MaxRequests,
	}
}

// Sweep removes records whose window ended more than one window ago and
// returns how many were removed.
func (l *FixedWindow) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-2 * l.cfg.Window)
	removed := 0
	for key, rec := range l.records {
		if rec.windowStart.Before(cutoff) {
			delete(l.records, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked clients.
func (l *FixedWindow) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// evictOldest must be called with mu held.
func (l *FixedWindow) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, rec := range l.records {
		if oldestKey == "" || rec.windowStart.Before(oldest) {
			oldestKey = key
			oldest = rec.windowStart
		}
	}
	if oldestKey != "" {
		delete(l.records, oldestKey)
	}
}
