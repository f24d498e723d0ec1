// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package aggregator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/happening/internal/metrics"
	"github.com/tomtom215/happening/internal/models"
	"github.com/tomtom215/happening/internal/scoring"
	"github.com/tomtom215/happening/internal/sources"
)

var (
	testNow    = time.Date(2026, 6, 12, 18, 0, 0, 0, time.UTC)
	testCenter = scoring.Point{Lat: 60.1699, Lng: 24.9384}
)

type funcSource struct {
	name  models.Source
	fetch func(ctx context.Context, bounds *models.Bounds) []models.NormalizedEvent
}

func (s funcSource) Name() models.Source { return s.name }

func (s funcSource) Fetch(ctx context.Context, bounds *models.Bounds) []models.NormalizedEvent {
	return s.fetch(ctx, bounds)
}

func staticSource(name models.Source, events ...models.NormalizedEvent) funcSource {
	return funcSource{name: name, fetch: func(context.Context, *models.Bounds) []models.NormalizedEvent {
		return events
	}}
}

func event(source models.Source, id, title string, start time.Time, lat, lng float64) models.NormalizedEvent {
	return models.NormalizedEvent{
		ID:        models.EventID(source, id),
		Source:    source,
		Title:     title,
		StartTime: start,
		Lat:       lat,
		Lng:       lng,
		VenueName: "Kauppatori",
		Category:  models.CategoryOther,
		PriceType: models.PricePaid,
	}
}

func newTestAggregator(srcs ...sources.Source) *Aggregator {
	center := testCenter
	return New(srcs, scoring.New(scoring.DefaultWeights()), Options{
		Center:        &center,
		SourceTimeout: time.Second,
		Now:           func() time.Time { return testNow },
	})
}

func TestAggregateMergesDuplicatesAtRank(t *testing.T) {
	soon := testNow.Add(time.Hour)

	live := event(models.SourceLinkedEvents, "live", "Harbour market", testNow.Add(-time.Hour), 60.1680, 24.9520)
	end := testNow.Add(time.Hour)
	live.EndTime = &end
	live.VenueName = "Market square"

	plain := event(models.SourceLinkedEvents, "jazz", "Jazz Night", soon, 60.1675, 24.9525)

	rich := event(models.SourceMyHelsinki, "jazz", "jazz night!", soon.Add(15*time.Minute), 60.1675, 24.9525)
	rich.URL = "https://example.com/jazz"
	rich.ImageURL = "https://img.example.com/jazz.jpg"
	rich.Description = "Live jazz"

	far := event(models.SourceMyHelsinki, "far", "Lakeside concert", soon, 60.35, 24.95)
	far.VenueName = "Tuusulanjärvi"

	agg := newTestAggregator(
		staticSource(models.SourceLinkedEvents, plain, live),
		staticSource(models.SourceMyHelsinki, rich, far),
	)

	mergedBefore := testutil.ToFloat64(metrics.DedupeMerged)

	payload, err := agg.Aggregate(context.Background())
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	if payload.Count != 3 || len(payload.Data) != 3 {
		t.Fatalf("expected 3 events after merge, got %d", payload.Count)
	}
	if !payload.UpdatedAt.Equal(testNow) {
		t.Errorf("UpdatedAt = %v, want %v", payload.UpdatedAt, testNow)
	}

	wantOrder := []string{"linkedevents:live", "myhelsinki:jazz", "myhelsinki:far"}
	for i, id := range wantOrder {
		if payload.Data[i].ID != id {
			t.Errorf("rank %d = %s, want %s", i, payload.Data[i].ID, id)
		}
	}

	if !payload.Data[0].IsLiveNow {
		t.Error("first event should be live")
	}
	if payload.Data[1].ImageURL == "" || payload.Data[1].URL == "" {
		t.Error("merged event should keep the more complete record")
	}
	for i := 1; i < len(payload.Data); i++ {
		if payload.Data[i-1].Score < payload.Data[i].Score {
			t.Errorf("scores not descending at %d: %v < %v", i, payload.Data[i-1].Score, payload.Data[i].Score)
		}
	}

	if delta := testutil.ToFloat64(metrics.DedupeMerged) - mergedBefore; delta != 1 {
		t.Errorf("dedupe merged delta = %v, want 1", delta)
	}
}

func TestAggregateMergeOrderFollowsInvocationOrder(t *testing.T) {
	start := testNow.Add(3 * time.Hour)
	first := event(models.SourceLinkedEvents, "a", "Poetry evening", start, 60.17, 24.94)
	second := event(models.SourceMyHelsinki, "b", "Poetry Evening", start, 60.17, 24.94)

	slowFirst := funcSource{name: models.SourceLinkedEvents, fetch: func(ctx context.Context, _ *models.Bounds) []models.NormalizedEvent {
		time.Sleep(50 * time.Millisecond)
		return []models.NormalizedEvent{first}
	}}

	payload, err := newTestAggregator(slowFirst, staticSource(models.SourceMyHelsinki, second)).Aggregate(context.Background())
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if payload.Count != 1 || payload.Data[0].ID != "linkedevents:a" {
		t.Errorf("equal-quality duplicate should keep the first adapter's record, got %+v", payload.Data)
	}
}

func TestAggregateRecoversAdapterPanic(t *testing.T) {
	panicky := funcSource{name: models.SourceTicketmaster, fetch: func(context.Context, *models.Bounds) []models.NormalizedEvent {
		panic("decoder exploded")
	}}
	ok := staticSource(models.SourceLinkedEvents, event(models.SourceLinkedEvents, "1", "Choir concert", testNow.Add(time.Hour), 60.17, 24.94))

	counter := metrics.SourceFetchErrors.WithLabelValues("ticketmaster", sources.ReasonPanic)
	before := testutil.ToFloat64(counter)

	payload, err := newTestAggregator(panicky, ok).Aggregate(context.Background())
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if payload.Count != 1 {
		t.Errorf("expected the healthy adapter's event, got %d", payload.Count)
	}
	if delta := testutil.ToFloat64(counter) - before; delta != 1 {
		t.Errorf("panic counter delta = %v, want 1", delta)
	}
}

func TestAggregateSourceTimeout(t *testing.T) {
	blocking := funcSource{name: models.SourceMyHelsinki, fetch: func(ctx context.Context, _ *models.Bounds) []models.NormalizedEvent {
		<-ctx.Done()
		return nil
	}}
	ok := staticSource(models.SourceLinkedEvents, event(models.SourceLinkedEvents, "1", "Dance show", testNow.Add(time.Hour), 60.17, 24.94))

	agg := newTestAggregator(blocking, ok)
	agg.opts.SourceTimeout = 50 * time.Millisecond

	start := time.Now()
	payload, err := agg.Aggregate(context.Background())
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("aggregation took %v, source timeout not applied", elapsed)
	}
	if payload.Count != 1 {
		t.Errorf("Count = %d, want 1", payload.Count)
	}
}

func TestAggregatePassesBounds(t *testing.T) {
	bounds := &models.Bounds{MinLat: 60, MinLng: 24, MaxLat: 61, MaxLng: 25}
	var got *models.Bounds
	src := funcSource{name: models.SourceLinkedEvents, fetch: func(_ context.Context, b *models.Bounds) []models.NormalizedEvent {
		got = b
		return []models.NormalizedEvent{event(models.SourceLinkedEvents, "1", "Art walk", testNow.Add(time.Hour), 60.17, 24.94)}
	}}

	agg := New([]sources.Source{src}, nil, Options{Bounds: bounds, Now: func() time.Time { return testNow }})
	if _, err := agg.Aggregate(context.Background()); err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if got != bounds {
		t.Errorf("adapter received bounds %v, want %v", got, bounds)
	}
}

func TestAggregateNoEvents(t *testing.T) {
	failuresBefore := testutil.ToFloat64(metrics.AggregationFailures)

	_, err := newTestAggregator(
		staticSource(models.SourceLinkedEvents),
		staticSource(models.SourceMyHelsinki),
	).Aggregate(context.Background())

	if !errors.Is(err, ErrNoEvents) {
		t.Fatalf("Aggregate() error = %v, want ErrNoEvents", err)
	}
	if delta := testutil.ToFloat64(metrics.AggregationFailures) - failuresBefore; delta != 1 {
		t.Errorf("aggregation failures delta = %v, want 1", delta)
	}
}
