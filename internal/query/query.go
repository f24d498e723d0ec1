// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

// Package query filters, optionally re-ranks and truncates a cached
// payload for one request. It runs on every request and never mutates the
// payload it is given.
package query

import (
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/tomtom215/happening/internal/models"
	"github.com/tomtom215/happening/internal/scoring"
)

// Filter is the per-request view over a payload. Zero values disable a
// criterion.
type Filter struct {
	Query    string
	Category models.Category
	Source   models.Source
	FreeOnly bool
	LiveOnly bool

	// BBox takes precedence over Center/RadiusKm.
	BBox     *models.Bounds
	Center   scoring.Point
	RadiusKm float64

	// Rescore recomputes scores for a viewer at Center and re-sorts.
	Rescore bool

	Limit int
}

// Stage applies filters using the service's scorer.
type Stage struct {
	scorer *scoring.Scorer
}

// New creates a Stage.
func New(scorer *scoring.Scorer) *Stage {
	if scorer == nil {
		scorer = scoring.New(scoring.DefaultWeights())
	}
	return &Stage{scorer: scorer}
}

// Apply returns the events of payload matching f, as copies.
func (s *Stage) Apply(payload *models.CachePayload, f Filter, now time.Time) []models.NormalizedEvent {
	if payload == nil || len(payload.Data) == 0 {
		return []models.NormalizedEvent{}
	}

	needle := strings.ToLower(strings.TrimSpace(f.Query))

	matched := lo.Filter(payload.Data, func(e models.NormalizedEvent, _ int) bool {
		if e.HasEndTime() && e.EndTime.Before(now) {
			return false
		}
		if f.Category != "" && e.Category != f.Category {
			return false
		}
		if f.Source != "" && e.Source != f.Source {
			return false
		}
		if f.FreeOnly && e.PriceType != models.PriceFree {
			return false
		}
		if f.LiveOnly && !s.scorer.IsLiveNow(&e, now) {
			return false
		}
		if needle != "" && !matchesText(&e, needle) {
			return false
		}
		return s.inArea(&e, &f)
	})

	if f.Rescore {
		viewer := f.Center
		matched = s.scorer.Rank(matched, &viewer, now)
	} else {
		matched = lo.Map(matched, func(e models.NormalizedEvent, _ int) models.NormalizedEvent {
			e.IsLiveNow = s.scorer.IsLiveNow(&e, now)
			return e
		})
	}

	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched
}

func (s *Stage) inArea(e *models.NormalizedEvent, f *Filter) bool {
	if f.BBox != nil {
		return f.BBox.Contains(e.Lat, e.Lng)
	}
	if f.RadiusKm > 0 {
		return scoring.Haversine(f.Center, scoring.Point{Lat: e.Lat, Lng: e.Lng}) <= f.RadiusKm
	}
	return true
}

func matchesText(e *models.NormalizedEvent, needle string) bool {
	for _, field := range []string{e.Title, e.Description, e.VenueName} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
