// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package normalize

import (
	"math"
	"testing"
	"time"

	"github.com/tomtom215/happening/internal/models"
)

var fixedNow = time.Date(2026, 6, 12, 18, 0, 0, 0, time.UTC)

func newTestNormalizer() *Normalizer {
	n := New(nil, nil)
	n.Now = func() time.Time { return fixedNow }
	return n
}

func candidate(mutate func(*models.NormalizedEvent)) *Candidate {
	e := models.NormalizedEvent{
		ID:        "linkedevents:1",
		Source:    models.SourceLinkedEvents,
		Title:     "Jazz at the harbour",
		StartTime: fixedNow.Add(time.Hour),
		Lat:       60.1675,
		Lng:       24.9525,
		VenueName: "Kauppatori",
	}
	if mutate != nil {
		mutate(&e)
	}
	return &Candidate{Event: e}
}

func TestAccept(t *testing.T) {
	n := newTestNormalizer()
	past := fixedNow.Add(-time.Minute)
	future := fixedNow.Add(3 * time.Hour)
	lastDay := ParseEndTime(fixedNow.Format("2006-01-02"), nil)
	farBounds := &models.Bounds{MinLat: 61, MinLng: 23, MaxLat: 62, MaxLng: 24}

	tests := []struct {
		name       string
		c          *Candidate
		bounds     *models.Bounds
		wantOK     bool
		wantReason string
	}{
		{"valid", candidate(nil), nil, true, ""},
		{"valid with end", candidate(func(e *models.NormalizedEvent) { e.EndTime = &future }), nil, true, ""},
		{"no title", candidate(func(e *models.NormalizedEvent) { e.Title = "" }), nil, false, ReasonNoTitle},
		{"null island", candidate(func(e *models.NormalizedEvent) { e.Lat, e.Lng = 0, 0 }), nil, false, ReasonNoCoordinates},
		{"nan", candidate(func(e *models.NormalizedEvent) { e.Lat = math.NaN() }), nil, false, ReasonNoCoordinates},
		{"online", candidate(func(e *models.NormalizedEvent) { e.Description = "Streamed via Zoom" }), nil, false, ReasonExcluded},
		{"no start", candidate(func(e *models.NormalizedEvent) { e.StartTime = time.Time{} }), nil, false, ReasonNoStartTime},
		{"cancelled", &Candidate{Event: candidate(nil).Event, Cancelled: true}, nil, false, ReasonCancelled},
		{"upstream virtual", &Candidate{Event: candidate(nil).Event, Virtual: true}, nil, false, ReasonExcluded},
		{"ended", candidate(func(e *models.NormalizedEvent) { e.EndTime = &past }), nil, false, ReasonEnded},
		{"date-only end on its last day", candidate(func(e *models.NormalizedEvent) {
			e.StartTime = fixedNow.Add(-48 * time.Hour)
			e.EndTime = lastDay
		}), nil, true, ""},
		{"out of bounds", candidate(nil), farBounds, false, ReasonOutOfBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, reason, ok := n.Accept(tt.c, tt.bounds)
			if ok != tt.wantOK || reason != tt.wantReason {
				t.Errorf("Accept = (%q, %v), want (%q, %v)", reason, ok, tt.wantReason, tt.wantOK)
			}
		})
	}
}

func TestAcceptClassifies(t *testing.T) {
	n := newTestNormalizer()
	free := true

	c := candidate(func(e *models.NormalizedEvent) { e.Title = "Harbour evening" })
	c.Tags = []string{"konsertit"}
	c.IsFree = &free

	e, _, ok := n.Accept(c, nil)
	if !ok {
		t.Fatal("expected candidate to be accepted")
	}
	if e.Category != models.CategoryMusic {
		t.Errorf("Category = %q, want music from tags", e.Category)
	}
	if e.PriceType != models.PriceFree {
		t.Errorf("PriceType = %q, want free", e.PriceType)
	}
}

func TestUsableCoordinates(t *testing.T) {
	tests := []struct {
		lat, lng float64
		want     bool
	}{
		{60.17, 24.94, true},
		{0, 0, false},
		{91, 24, false},
		{60, -181, false},
		{math.Inf(1), 24, false},
	}
	for _, tt := range tests {
		if got := UsableCoordinates(tt.lat, tt.lng); got != tt.want {
			t.Errorf("UsableCoordinates(%v, %v) = %v, want %v", tt.lat, tt.lng, got, tt.want)
		}
	}
}
