// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

// Package dedupe merges the same real-world event reported by several
// sources into one record.
//
// The key is deliberately conservative: normalized title, lowercased venue
// and start hour. Spelling or venue-name variants beyond that normalization
// do not merge; two near-duplicates shown side by side is preferred over
// merging two distinct events.
package dedupe

import (
	"strings"
	"time"
	"unicode"

	"github.com/tomtom215/happening/internal/models"
)

// Completeness weights used by Quality.
const (
	WeightURL         = 10
	WeightImage       = 20
	WeightDescription = 5
	WeightEndTime     = 5
)

// Key returns the fuzzy identity of an event:
// normalized title, lowercased venue and the start time truncated to the hour.
func Key(e *models.NormalizedEvent) string {
	hour := e.StartTime.UTC().Truncate(time.Hour).Format(time.RFC3339)
	venue := strings.ToLower(strings.TrimSpace(e.VenueName))
	return NormalizeTitle(e.Title) + "_" + venue + "_" + hour
}

// NormalizeTitle lowercases, trims and removes punctuation.
func NormalizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// Quality scores how complete a record is; higher wins a merge.
func Quality(e *models.NormalizedEvent) int {
	q := 0
	if e.URL != "" {
		q += WeightURL
	}
	if e.ImageURL != "" {
		q += WeightImage
	}
	if e.Description != "" {
		q += WeightDescription
	}
	if e.HasEndTime() {
		q += WeightEndTime
	}
	return q
}

// Deduplicate merges events that share a Key, keeping the one with the
// higher Quality. Ties keep the first seen. Output order follows the first
// appearance of each key, so the result is deterministic for a given input
// order. The second return value is the number of events merged away.
//
// Deduplicate is idempotent: its output contains no two events with the
// same key.
func Deduplicate(events []models.NormalizedEvent) ([]models.NormalizedEvent, int) {
	if len(events) == 0 {
		return []models.NormalizedEvent{}, 0
	}

	index := make(map[string]int, len(events))
	out := make([]models.NormalizedEvent, 0, len(events))

	for i := range events {
		key := Key(&events[i])
		pos, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, events[i])
			continue
		}
		if Quality(&events[i]) > Quality(&out[pos]) {
			out[pos] = events[i]
		}
	}
	return out, len(events) - len(out)
}
