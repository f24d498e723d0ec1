// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package sources

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/happening/internal/config"
	"github.com/tomtom215/happening/internal/models"
	"github.com/tomtom215/happening/internal/normalize"
)

var testNow = time.Date(2026, 6, 12, 18, 0, 0, 0, time.UTC)

func testNormalizer() *normalize.Normalizer {
	n := normalize.New(nil, time.UTC)
	n.Now = func() time.Time { return testNow }
	return n
}

func testSourceConfig(baseURL string) config.SourceConfig {
	return config.SourceConfig{
		Enabled:   true,
		BaseURL:   baseURL,
		PageSize:  2,
		MaxPages:  5,
		Timeout:   2 * time.Second,
		LookAhead: 7 * 24 * time.Hour,
	}
}

func testRegion() config.RegionConfig {
	return config.RegionConfig{
		Name:      "helsinki",
		Latitude:  60.1699,
		Longitude: 24.9384,
		RadiusKm:  30,
		Timezone:  "UTC",
	}
}

// countingServer serves handler and records every request's query.
type countingServer struct {
	*httptest.Server
	hits atomic.Int32

	mu      sync.Mutex
	queries []url.Values
}

// Queries returns the recorded query strings in arrival order.
func (cs *countingServer) Queries() []url.Values {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return append([]url.Values(nil), cs.queries...)
}

func newCountingServer(t *testing.T, handler http.HandlerFunc) *countingServer {
	t.Helper()
	cs := &countingServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.hits.Add(1)
		cs.mu.Lock()
		cs.queries = append(cs.queries, r.URL.Query())
		cs.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(cs.Close)
	return cs
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func findEvent(events []models.NormalizedEvent, id string) *models.NormalizedEvent {
	for i := range events {
		if events[i].ID == id {
			return &events[i]
		}
	}
	return nil
}
