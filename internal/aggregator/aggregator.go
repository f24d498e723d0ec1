// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

// Package aggregator fans out to every source adapter, merges their results
// in adapter invocation order, deduplicates and ranks them into one
// CachePayload.
package aggregator

import (
	"context"
	"errors"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/tomtom215/happening/internal/dedupe"
	"github.com/tomtom215/happening/internal/logging"
	"github.com/tomtom215/happening/internal/metrics"
	"github.com/tomtom215/happening/internal/models"
	"github.com/tomtom215/happening/internal/scoring"
	"github.com/tomtom215/happening/internal/sources"
)

// ErrNoEvents is returned when every adapter came back empty.
var ErrNoEvents = errors.New("aggregator: no events from any source")

// DefaultSourceTimeout bounds one adapter's fetch.
const DefaultSourceTimeout = 10 * time.Second

// Options configures an Aggregator.
type Options struct {
	// Center is the viewer location used for the stored ranking.
	Center *scoring.Point

	// Bounds is passed to every adapter; nil disables spatial filtering.
	Bounds *models.Bounds

	// SourceTimeout caps each adapter independently of its own HTTP timeout.
	SourceTimeout time.Duration

	Now func() time.Time
}

// Aggregator runs one aggregation cycle per call. It holds no state between
// cycles and is safe for concurrent use.
type Aggregator struct {
	sources []sources.Source
	scorer  *scoring.Scorer
	opts    Options
}

// New creates an Aggregator over srcs, invoked in the given order.
func New(srcs []sources.Source, scorer *scoring.Scorer, opts Options) *Aggregator {
	if opts.SourceTimeout <= 0 {
		opts.SourceTimeout = DefaultSourceTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if scorer == nil {
		scorer = scoring.New(scoring.DefaultWeights())
	}
	return &Aggregator{sources: srcs, scorer: scorer, opts: opts}
}

// Aggregate fetches every adapter concurrently and returns the merged,
// deduplicated, ranked payload. It matches cache.Loader.
func (a *Aggregator) Aggregate(ctx context.Context) (*models.CachePayload, error) {
	start := time.Now()
	logger := logging.Ctx(ctx).With().Str("component", "aggregator").Logger()

	results := a.fanOut(ctx)

	total := 0
	for _, r := range results {
		total += len(r)
	}
	merged := make([]models.NormalizedEvent, 0, total)
	for _, r := range results {
		merged = append(merged, r...)
	}

	deduped, mergedCount := dedupe.Deduplicate(merged)
	now := a.opts.Now()
	ranked := a.scorer.Rank(deduped, a.opts.Center, now)

	metrics.RecordAggregation(time.Since(start), len(ranked), mergedCount)

	if len(ranked) == 0 {
		logger.Warn().Int("sources", len(a.sources)).Dur("duration", time.Since(start)).Msg("Aggregation produced no events")
		return nil, ErrNoEvents
	}

	logger.Info().
		Int("sources", len(a.sources)).
		Int("fetched", total).
		Int("merged", mergedCount).
		Int("events", len(ranked)).
		Dur("duration", time.Since(start)).
		Msg("Aggregation complete")

	return models.NewCachePayload(now, ranked), nil
}

// fanOut runs every adapter in its own goroutine. Slot i holds adapter i's
// result so merge order does not depend on completion order.
func (a *Aggregator) fanOut(ctx context.Context) [][]models.NormalizedEvent {
	results := make([][]models.NormalizedEvent, len(a.sources))

	var wg conc.WaitGroup
	for i, src := range a.sources {
		wg.Go(func() {
			results[i] = a.fetchOne(ctx, src)
		})
	}
	wg.Wait()

	return results
}

// fetchOne isolates a single adapter: its own timeout, and a panic becomes
// an empty result instead of taking the cycle down.
func (a *Aggregator) fetchOne(ctx context.Context, src sources.Source) (events []models.NormalizedEvent) {
	ctx, cancel := context.WithTimeout(ctx, a.opts.SourceTimeout)
	defer cancel()

	start := time.Now()
	var catcher panics.Catcher
	catcher.Try(func() {
		events = src.Fetch(ctx, a.opts.Bounds)
	})

	if recovered := catcher.Recovered(); recovered != nil {
		metrics.RecordSourceFetch(string(src.Name()), time.Since(start), 0, sources.ReasonPanic)
		logging.Error().
			Str("source", string(src.Name())).
			Str("panic", recovered.String()).
			Msg("Source adapter panicked")
		return []models.NormalizedEvent{}
	}
	if events == nil {
		return []models.NormalizedEvent{}
	}
	return events
}
