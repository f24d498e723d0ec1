// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/happening/internal/aggregator"
	"github.com/tomtom215/happening/internal/cache"
	"github.com/tomtom215/happening/internal/config"
	"github.com/tomtom215/happening/internal/models"
	"github.com/tomtom215/happening/internal/query"
	"github.com/tomtom215/happening/internal/ratelimit"
	"github.com/tomtom215/happening/internal/scoring"
	"github.com/tomtom215/happening/internal/sources"
)

var testNow = time.Date(2026, 6, 12, 18, 0, 0, 0, time.UTC)

var testRegion = config.RegionConfig{
	Name:      "helsinki",
	Latitude:  60.1699,
	Longitude: 24.9384,
	RadiusKm:  30,
	Timezone:  "Europe/Helsinki",
}

// countingSource returns a fixed event list and counts Fetch calls.
type countingSource struct {
	name   models.Source
	events []models.NormalizedEvent
	calls  atomic.Int32
}

func (s *countingSource) Name() models.Source { return s.name }

func (s *countingSource) Fetch(context.Context, *models.Bounds) []models.NormalizedEvent {
	s.calls.Add(1)
	out := make([]models.NormalizedEvent, len(s.events))
	copy(out, s.events)
	return out
}

// failingStore is a tier 2 backend that is never reachable.
type failingStore struct{}

var errUnreachable = errors.New("connection refused")

func (failingStore) Get(context.Context, string) (*models.CachePayload, error) {
	return nil, errUnreachable
}

func (failingStore) Set(context.Context, string, *models.CachePayload, time.Duration) error {
	return errUnreachable
}

func (failingStore) Ping(context.Context) error { return errUnreachable }
func (failingStore) Name() string { return cache.BackendNATS }
func (failingStore) Close() error { return nil }

func at(d time.Duration) *time.Time {
	t := testNow.Add(d)
	return &t
}

// Fixture events: two near the region center, one about 11 km north-west.
func fixtureSources() []*countingSource {
	return []*countingSource{
		{
			name: models.SourceLinkedEvents,
			events: []models.NormalizedEvent{
				{
					ID:        "linkedevents:jazz",
					Source:    models.SourceLinkedEvents,
					Title:     "Jazz at Kaisa",
					StartTime: testNow.Add(-30 * time.Minute),
					EndTime:   at(2 * time.Hour),
					Lat:       60.1699,
					Lng:       24.9384,
					VenueName: "Kaisa House",
					Category:  models.CategoryMusic,
					PriceType: models.PriceFree,
				},
				{
					ID:        "linkedevents:market",
					Source:    models.SourceLinkedEvents,
					Title:     "Evening Market",
					StartTime: testNow.Add(3 * time.Hour),
					Lat:       60.1710,
					Lng:       24.9400,
					VenueName: "Market Square",
					Category:  models.CategoryFood,
					PriceType: models.PricePaid,
				},
			},
		},
		{
			name: models.SourceTicketmaster,
			events: []models.NormalizedEvent{
				{
					ID:        "ticketmaster:stadium",
					Source:    models.SourceTicketmaster,
					Title:     "Stadium Concert",
					StartTime: testNow.Add(24 * time.Hour),
					Lat:       60.2500,
					Lng:       24.8000,
					VenueName: "Olympic Stadium",
					Category:  models.CategorySports,
					PriceType: models.PricePaid,
				},
			},
		},
	}
}

type testEnv struct {
	router    http.Handler
	hierarchy *cache.Hierarchy
	sources   []*countingSource
}

type envOptions struct {
	sources      []*countingSource
	shared       cache.SharedStore
	backend      string
	limit        int
	healthLimit  int
	corsOrigins  []string
	noRateLimits bool
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	if opts.sources == nil {
		opts.sources = fixtureSources()
	}
	if opts.shared == nil {
		store := cache.NewMemoryStore(time.Minute)
		t.Cleanup(func() { _ = store.Close() })
		opts.shared = store
	}
	if opts.limit == 0 {
		opts.limit = 100
	}

	srcs := make([]sources.Source, len(opts.sources))
	for i, s := range opts.sources {
		srcs[i] = s
	}
	registry := sources.NewRegistry(srcs...)

	clock := func() time.Time { return testNow }
	scorer := scoring.New(scoring.DefaultWeights())
	center := testRegion.Center()
	agg := aggregator.New(registry.Sources(), scorer, aggregator.Options{
		Center:        &center,
		Bounds:        testRegion.Bounds(),
		SourceTimeout: time.Second,
		Now:           clock,
	})

	hierarchy := cache.NewHierarchy(opts.shared, cache.DefaultHierarchyConfig())
	t.Cleanup(hierarchy.Wait)

	handler := NewHandler(HandlerDeps{
		Cache:        hierarchy,
		Loader:       agg.Aggregate,
		Query:        query.New(scorer),
		Registry:     registry,
		Region:       testRegion,
		CacheBackend: opts.backend,
		Now:          clock,
	})

	limiter := ratelimit.New(ratelimit.Config{
		Name:        "events",
		MaxRequests: opts.limit,
		Window:      time.Minute,
	})

	mwCfg := DefaultChiMiddlewareConfig()
	mwCfg.CORSAllowedOrigins = opts.corsOrigins
	mwCfg.RateLimitDisabled = opts.noRateLimits
	if opts.healthLimit > 0 {
		mwCfg.HealthRequests = opts.healthLimit
	}

	return &testEnv{
		router:    NewRouter(handler, limiter, mwCfg).SetupChi(),
		hierarchy: hierarchy,
		sources:   opts.sources,
	}
}

func (e *testEnv) get(t *testing.T, target string, header ...string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = "192.0.2.10:51234"
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) totalCalls() int32 {
	var n int32
	for _, s := range e.sources {
		n += s.calls.Load()
	}
	return n
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}

func eventIDs(events []models.NormalizedEvent) []string {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return ids
}
