// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package normalize

import (
	"math"
	"time"

	"github.com/tomtom215/happening/internal/models"
)

// Reasons reported by Accept for dropped records.
const (
	ReasonNoTitle       = "no_title"
	ReasonNoStartTime   = "no_start_time"
	ReasonCancelled     = "cancelled"
	ReasonNoCoordinates = "no_coordinates"
	ReasonExcluded      = "excluded"
	ReasonEnded         = "ended"
	ReasonOutOfBounds   = "out_of_bounds"
)

// DescriptionMaxRunes caps descriptions kept on normalized events.
const DescriptionMaxRunes = 500

// Normalizer bundles the shared ruleset, screen and language preferences.
// It is safe for concurrent use.
type Normalizer struct {
	Rules     *Ruleset
	Screen    *Screen
	Languages []string
	Location  *time.Location
	Now       func() time.Time
}

// New returns a Normalizer using the built-in rules.
func New(languages []string, loc *time.Location) *Normalizer {
	if len(languages) == 0 {
		languages = DefaultLanguages
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{
		Rules:     DefaultRuleset(),
		Screen:    DefaultScreen(),
		Languages: languages,
		Location:  loc,
		Now:       time.Now,
	}
}

// Candidate is an adapter's mapped record plus the classification hints the
// upstream supplied.
type Candidate struct {
	Event  models.NormalizedEvent
	Tags   []string
	IsFree *bool

	// Virtual is set when the upstream itself marks the event as online.
	Virtual bool

	Cancelled bool
}

// Accept applies the adapter boundary filters to c and, when it passes,
// returns the event with Category and PriceType filled. The string result is
// the drop reason.
func (n *Normalizer) Accept(c *Candidate, bounds *models.Bounds) (models.NormalizedEvent, string, bool) {
	e := c.Event

	if e.Title == "" {
		return e, ReasonNoTitle, false
	}
	if e.StartTime.IsZero() {
		return e, ReasonNoStartTime, false
	}
	if c.Cancelled {
		return e, ReasonCancelled, false
	}
	if !UsableCoordinates(e.Lat, e.Lng) {
		return e, ReasonNoCoordinates, false
	}
	if c.Virtual {
		return e, ReasonExcluded, false
	}
	if excluded, _ := n.Screen.Excluded(e.Title, e.Description, e.VenueName); excluded {
		return e, ReasonExcluded, false
	}
	if e.HasEndTime() && e.EndTime.Before(n.Now()) {
		return e, ReasonEnded, false
	}
	if !bounds.Contains(e.Lat, e.Lng) {
		return e, ReasonOutOfBounds, false
	}

	texts := make([]string, 0, len(c.Tags)+2)
	texts = append(texts, c.Tags...)
	texts = append(texts, e.Title, e.Description)

	e.Category = n.Rules.Classify(texts...)
	e.PriceType = InferPriceType(c.IsFree, texts...)
	return e, "", true
}

// UsableCoordinates rejects missing, out-of-range and null-island points.
func UsableCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	if lat == 0 && lng == 0 {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
