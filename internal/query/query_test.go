// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package query

import (
	"testing"
	"time"

	"github.com/tomtom215/happening/internal/models"
	"github.com/tomtom215/happening/internal/scoring"
)

var (
	testNow    = time.Date(2026, 6, 12, 18, 0, 0, 0, time.UTC)
	helsinki   = scoring.Point{Lat: 60.1699, Lng: 24.9384}
	espooPoint = scoring.Point{Lat: 60.2055, Lng: 24.6559}
)

func testPayload() *models.CachePayload {
	liveEnd := testNow.Add(time.Hour)
	ended := testNow.Add(-time.Minute)
	events := []models.NormalizedEvent{
		{
			ID: "linkedevents:1", Source: models.SourceLinkedEvents, Title: "Harbour Jazz",
			Description: "Quartet by the sea", VenueName: "Kauppatori",
			StartTime: testNow.Add(-time.Hour), EndTime: &liveEnd,
			Lat: 60.1675, Lng: 24.9525, Category: models.CategoryMusic, PriceType: models.PriceFree, Score: 1600,
		},
		{
			ID: "myhelsinki:2", Source: models.SourceMyHelsinki, Title: "Street food Friday",
			VenueName: "Teurastamo", StartTime: testNow.Add(2 * time.Hour),
			Lat: 60.1880, Lng: 24.9760, Category: models.CategoryFood, PriceType: models.PricePaid, Score: 1250,
		},
		{
			ID: "ticketmaster:3", Source: models.SourceTicketmaster, Title: "Espoo derby",
			VenueName: "Tapiolan urheilupuisto", StartTime: testNow.Add(5 * time.Hour),
			Lat: espooPoint.Lat, Lng: espooPoint.Lng, Category: models.CategorySports, PriceType: models.PricePaid, Score: 1000,
		},
		{
			ID: "linkedevents:4", Source: models.SourceLinkedEvents, Title: "Morning yoga",
			VenueName: "Kaivopuisto", StartTime: testNow.Add(-3 * time.Hour), EndTime: &ended,
			Lat: 60.1560, Lng: 24.9570, Category: models.CategorySports, PriceType: models.PriceFree, Score: 900,
		},
	}
	return models.NewCachePayload(testNow, events)
}

func ids(events []models.NormalizedEvent) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestApply(t *testing.T) {
	stage := New(nil)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no filter drops ended", Filter{}, []string{"linkedevents:1", "myhelsinki:2", "ticketmaster:3"}},
		{"text matches description", Filter{Query: "QUARTET"}, []string{"linkedevents:1"}},
		{"text matches venue", Filter{Query: "teurastamo"}, []string{"myhelsinki:2"}},
		{"category", Filter{Category: models.CategorySports}, []string{"ticketmaster:3"}},
		{"source", Filter{Source: models.SourceMyHelsinki}, []string{"myhelsinki:2"}},
		{"free only", Filter{FreeOnly: true}, []string{"linkedevents:1"}},
		{"live only", Filter{LiveOnly: true}, []string{"linkedevents:1"}},
		{"radius", Filter{Center: helsinki, RadiusKm: 5}, []string{"linkedevents:1", "myhelsinki:2"}},
		{"bbox wins over radius", Filter{
			Center: helsinki, RadiusKm: 5,
			BBox: &models.Bounds{MinLat: 60.1, MinLng: 24.6, MaxLat: 60.3, MaxLng: 24.7},
		}, []string{"ticketmaster:3"}},
		{"limit", Filter{Limit: 2}, []string{"linkedevents:1", "myhelsinki:2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(stage.Apply(testPayload(), tt.filter, testNow))
			if !equalIDs(got, tt.want) {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyRescoreForViewer(t *testing.T) {
	stage := New(scoring.New(scoring.DefaultWeights()))

	got := stage.Apply(testPayload(), Filter{Center: espooPoint, Rescore: true}, testNow)
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}

	// The Espoo derby is 0km from the viewer and overtakes the food event
	// that is ~17km away.
	order := ids(got)
	if !equalIDs(order, []string{"linkedevents:1", "ticketmaster:3", "myhelsinki:2"}) {
		t.Errorf("rescored order = %v", order)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Score < got[i].Score {
			t.Errorf("scores not descending: %v", got)
		}
	}
}

func TestApplyDoesNotMutatePayload(t *testing.T) {
	payload := testPayload()
	before := payload.Data[1].Score

	out := New(nil).Apply(payload, Filter{Center: espooPoint, Rescore: true, Limit: 1}, testNow)
	out[0].Title = "changed"

	if payload.Data[1].Score != before {
		t.Error("rescore must not change cached scores")
	}
	if payload.Data[0].Title == "changed" {
		t.Error("output must not alias the payload")
	}
}

func TestApplyEmpty(t *testing.T) {
	if got := New(nil).Apply(nil, Filter{}, testNow); got == nil || len(got) != 0 {
		t.Errorf("Apply(nil) = %#v, want empty slice", got)
	}
}
