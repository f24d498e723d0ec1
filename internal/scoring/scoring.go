// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

// Package scoring computes liveness and the relevance score used to rank
// aggregated events.
package scoring

import (
	"sort"
	"time"

	"github.com/tomtom215/happening/internal/models"
)

// Weights configures the score. All addends are in score points.
type Weights struct {
	Base                 float64       `koanf:"base"`
	DistancePenaltyPerKm float64       `koanf:"distance_penalty_per_km"`
	LiveBonus            float64       `koanf:"live_bonus"`
	Within2hBonus        float64       `koanf:"within_2h_bonus"`
	Within6hBonus        float64       `koanf:"within_6h_bonus"`
	Within24hBonus       float64       `koanf:"within_24h_bonus"`
	FreeBonus            float64       `koanf:"free_bonus"`
	ImageBonus           float64       `koanf:"image_bonus"`
	URLBonus             float64       `koanf:"url_bonus"`
	DefaultDuration      time.Duration `koanf:"default_duration"`
	LiveSpanCeiling      time.Duration `koanf:"live_span_ceiling"`
}

// DefaultWeights returns the production scoring weights.
func DefaultWeights() Weights {
	return Weights{
		Base:                 1000,
		DistancePenaltyPerKm: 10,
		LiveBonus:            500,
		Within2hBonus:        300,
		Within6hBonus:        150,
		Within24hBonus:       50,
		FreeBonus:            100,
		ImageBonus:           20,
		URLBonus:             10,
		DefaultDuration:      6 * time.Hour,
		LiveSpanCeiling:      12 * time.Hour,
	}
}

// Scorer applies a fixed set of weights.
type Scorer struct {
	w Weights
}

// New creates a Scorer. Zero durations fall back to the defaults.
func New(w Weights) *Scorer {
	def := DefaultWeights()
	if w.DefaultDuration <= 0 {
		w.DefaultDuration = def.DefaultDuration
	}
	if w.LiveSpanCeiling <= 0 {
		w.LiveSpanCeiling = def.LiveSpanCeiling
	}
	return &Scorer{w: w}
}

// Weights returns the scorer's configuration.
func (s *Scorer) Weights() Weights {
	return s.w
}

// EffectiveEnd returns the declared end, or start plus the default duration.
func (s *Scorer) EffectiveEnd(e *models.NormalizedEvent) time.Time {
	if e.HasEndTime() {
		return *e.EndTime
	}
	return e.StartTime.Add(s.w.DefaultDuration)
}

// IsLiveNow reports whether now falls inside the event's window. Spans
// longer than the live-span ceiling (all-day venue listings, exhibitions)
// are never live.
func (s *Scorer) IsLiveNow(e *models.NormalizedEvent, now time.Time) bool {
	end := s.EffectiveEnd(e)
	if end.Sub(e.StartTime) > s.w.LiveSpanCeiling {
		return false
	}
	return !now.Before(e.StartTime) && !now.After(end)
}

// Score computes the relevance of e for a viewer at now. viewer may be nil
// when the location is unknown. The result is never negative.
func (s *Scorer) Score(e *models.NormalizedEvent, viewer *Point, now time.Time) float64 {
	score := s.w.Base

	if viewer != nil {
		score -= s.w.DistancePenaltyPerKm * Haversine(*viewer, Point{Lat: e.Lat, Lng: e.Lng})
	}
	if s.IsLiveNow(e, now) {
		score += s.w.LiveBonus
	}
	score += s.imminence(e.StartTime.Sub(now))
	if e.PriceType == models.PriceFree {
		score += s.w.FreeBonus
	}
	if e.ImageURL != "" {
		score += s.w.ImageBonus
	}
	if e.URL != "" {
		score += s.w.URLBonus
	}

	if score < 0 {
		return 0
	}
	return score
}

func (s *Scorer) imminence(untilStart time.Duration) float64 {
	switch {
	case untilStart < 0:
		return 0
	case untilStart <= 2*time.Hour:
		return s.w.Within2hBonus
	case untilStart <= 6*time.Hour:
		return s.w.Within6hBonus
	case untilStart <= 24*time.Hour:
		return s.w.Within24hBonus
	default:
		return 0
	}
}

// Rank returns a copy of events with IsLiveNow and Score set, stably sorted
// by score descending so ties keep their input order.
func (s *Scorer) Rank(events []models.NormalizedEvent, viewer *Point, now time.Time) []models.NormalizedEvent {
	ranked := make([]models.NormalizedEvent, len(events))
	copy(ranked, events)

	for i := range ranked {
		ranked[i].IsLiveNow = s.IsLiveNow(&ranked[i], now)
		ranked[i].Score = s.Score(&ranked[i], viewer, now)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
