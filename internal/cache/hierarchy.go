// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/happening/internal/logging"
	"github.com/tomtom215/happening/internal/metrics"
	"github.com/tomtom215/happening/internal/models"
)

// Tier names which layer served a Hierarchy.Get call. The value is sent to
// clients in the X-Cache header.
type Tier string

const (
	TierLocal  Tier = metrics.TierLocal
	TierShared Tier = metrics.TierShared
	TierOrigin Tier = "origin"
)

// Loader produces a fresh payload on a full miss.
type Loader func(ctx context.Context) (*models.CachePayload, error)

// HierarchyConfig configures the two-tier lookup.
type HierarchyConfig struct {
	LocalTTL  time.Duration
	SharedTTL time.Duration

	// SingleFlight collapses concurrent origin loads for the same key.
	SingleFlight bool

	// WriteTimeout bounds each background tier 2 write.
	WriteTimeout time.Duration
}

// DefaultHierarchyConfig returns 90s/300s TTLs with single-flight enabled.
func DefaultHierarchyConfig() HierarchyConfig {
	return HierarchyConfig{
		LocalTTL:     DefaultLocalTTL,
		SharedTTL:    DefaultSharedTTL,
		SingleFlight: true,
		WriteTimeout: 5 * time.Second,
	}
}

// Hierarchy reads through tier 1, tier 2, and the loader in that order.
type Hierarchy struct {
	local  *LocalSlot
	shared SharedStore
	cfg    HierarchyConfig

	group   singleflight.Group
	pending sync.WaitGroup
}

// NewHierarchy creates a hierarchy over shared. A nil shared store disables
// tier 2.
func NewHierarchy(shared SharedStore, cfg HierarchyConfig) *Hierarchy {
	if cfg.SharedTTL <= 0 {
		cfg.SharedTTL = DefaultSharedTTL
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &Hierarchy{
		local:  NewLocalSlot(cfg.LocalTTL),
		shared: shared,
		cfg:    cfg,
	}
}

// Local exposes tier 1.
func (h *Hierarchy) Local() *LocalSlot {
	return h.local
}

// Shared exposes tier 2, which may be nil.
func (h *Hierarchy) Shared() SharedStore {
	return h.shared
}

// Get returns the payload for key and the tier that served it.
//
// Only loader errors are returned. Tier 2 errors are logged, counted, and
// treated as a miss. The returned payload is shared with other callers and
// must not be modified.
func (h *Hierarchy) Get(ctx context.Context, key string, load Loader) (*models.CachePayload, Tier, error) {
	if payload, ok := h.local.Get(key); ok {
		metrics.RecordCacheLookup(metrics.TierLocal, true)
		return payload, TierLocal, nil
	}
	metrics.RecordCacheLookup(metrics.TierLocal, false)

	if payload, ok := h.readShared(ctx, key); ok {
		h.local.Set(key, payload)
		return payload, TierShared, nil
	}

	if !h.cfg.SingleFlight {
		payload, err := h.loadAndStore(ctx, key, load)
		if err != nil {
			return nil, "", err
		}
		return payload, TierOrigin, nil
	}

	// The shared load must outlive any one caller's cancellation.
	loadCtx := context.WithoutCancel(ctx)
	v, err, shared := h.group.Do(key, func() (interface{}, error) {
		return h.loadAndStore(loadCtx, key, load)
	})
	if shared {
		metrics.CacheSingleFlightShared.Inc()
	}
	if err != nil {
		return nil, "", err
	}
	return v.(*models.CachePayload), TierOrigin, nil
}

// Wait blocks until all background tier 2 writes have finished.
func (h *Hierarchy) Wait() {
	h.pending.Wait()
}

// Invalidate clears tier 1. Tier 2 entries expire on their own TTL.
func (h *Hierarchy) Invalidate() {
	h.local.Clear()
}

// Ping reports tier 2 reachability. A hierarchy without tier 2 is always healthy.
func (h *Hierarchy) Ping(ctx context.Context) error {
	if h.shared == nil {
		return nil
	}
	return h.shared.Ping(ctx)
}

func (h *Hierarchy) readShared(ctx context.Context, key string) (*models.CachePayload, bool) {
	if h.shared == nil {
		return nil, false
	}

	payload, err := h.shared.Get(ctx, key)
	switch {
	case err == nil:
		metrics.RecordCacheLookup(metrics.TierShared, true)
		return payload, true
	case errors.Is(err, ErrMiss):
		metrics.RecordCacheLookup(metrics.TierShared, false)
	default:
		metrics.RecordCacheLookup(metrics.TierShared, false)
		metrics.RecordCacheError(metrics.TierShared, "get")
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("backend", h.shared.Name()).
			Str("key", key).
			Msg("Shared cache read failed, treating as miss")
	}
	return nil, false
}

func (h *Hierarchy) loadAndStore(ctx context.Context, key string, load Loader) (*models.CachePayload, error) {
	payload, err := load(ctx)
	if err != nil {
		return nil, err
	}

	h.local.Set(key, payload)

	if h.shared != nil {
		h.pending.Add(1)
		go h.writeShared(key, payload)
	}
	return payload, nil
}

func (h *Hierarchy) writeShared(key string, payload *models.CachePayload) {
	defer h.pending.Done()

	ctx, cancel := context.WithTimeout(context.Background(), h.cfg.WriteTimeout)
	defer cancel()

	if err := h.shared.Set(ctx, key, payload, h.cfg.SharedTTL); err != nil {
		metrics.RecordCacheError(metrics.TierShared, "set")
		logging.Warn().
			Err(err).
			Str("backend", h.shared.Name()).
			Str("key", key).
			Msg("Shared cache write failed")
	}
}
