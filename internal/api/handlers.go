// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package api

import (
	"time"

	"github.com/tomtom215/happening/internal/cache"
	"github.com/tomtom215/happening/internal/config"
	"github.com/tomtom215/happening/internal/query"
	"github.com/tomtom215/happening/internal/sources"
)

// HandlerDeps are the collaborators of Handler. Cache, Loader, Query and
// Registry are required.
type HandlerDeps struct {
	Cache    *cache.Hierarchy
	Loader   cache.Loader
	Query    *query.Stage
	Registry *sources.Registry
	Region   config.RegionConfig

	// CacheKey identifies the region's aggregation in both cache tiers.
	CacheKey string

	// CacheBackend names the tier 2 backend for health reporting.
	CacheBackend string

	Now func() time.Time
}

// Handler serves the API endpoints. It holds no per-request state and is
// safe for concurrent use.
type Handler struct {
	cache     *cache.Hierarchy
	loader    cache.Loader
	query     *query.Stage
	registry  *sources.Registry
	region    config.RegionConfig
	cacheKey  string
	backend   string
	now       func() time.Time
	startTime time.Time
}

// NewHandler creates a Handler.
func NewHandler(deps HandlerDeps) *Handler {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.CacheKey == "" {
		deps.CacheKey = cache.GenerateKey("events:v1", deps.Region.Name)
	}
	if deps.CacheBackend == "" {
		deps.CacheBackend = cache.BackendMemory
	}
	return &Handler{
		cache:     deps.Cache,
		loader:    deps.Loader,
		query:     deps.Query,
		registry:  deps.Registry,
		region:    deps.Region,
		cacheKey:  deps.CacheKey,
		backend:   deps.CacheBackend,
		now:       deps.Now,
		startTime: deps.Now(),
	}
}
