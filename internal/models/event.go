// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package models

import (
	"time"
)

// Source identifies the upstream adapter an event came from.
type Source string

const (
	SourceLinkedEvents Source = "linkedevents"
	SourceMyHelsinki   Source = "myhelsinki"
	SourceTicketmaster Source = "ticketmaster"
)

// AllSources lists every known adapter in invocation order.
var AllSources = []Source{SourceLinkedEvents, SourceMyHelsinki, SourceTicketmaster}

// IsValid reports whether s is a known adapter name.
func (s Source) IsValid() bool {
	for _, known := range AllSources {
		if s == known {
			return true
		}
	}
	return false
}

// Category is the closed set of event categories served to clients.
type Category string

const (
	CategoryMusic     Category = "music"
	CategoryFood      Category = "food"
	CategorySports    Category = "sports"
	CategoryFamily    Category = "family"
	CategoryArts      Category = "arts"
	CategoryTech      Category = "tech"
	CategoryNightlife Category = "nightlife"
	CategoryOther     Category = "other"
)

// AllCategories lists every valid category.
var AllCategories = []Category{
	CategoryMusic,
	CategoryFood,
	CategorySports,
	CategoryFamily,
	CategoryArts,
	CategoryTech,
	CategoryNightlife,
	CategoryOther,
}

// IsValid reports whether c belongs to the closed category set.
func (c Category) IsValid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// PriceType is the coarse price classification of an event.
type PriceType string

const (
	PriceFree PriceType = "free"
	PricePaid PriceType = "paid"
)

// NormalizedEvent is the unified record every source adapter produces.
//
// ID is prefixed with the source name so records from different adapters
// never collide, and is stable for a given upstream record across
// aggregation cycles. Lat and Lng are always set; adapters drop events
// without coordinates. IsLiveNow and Score are derived during aggregation
// and are never persisted on their own.
type NormalizedEvent struct {
	ID          string     `json:"id"`
	Source      Source     `json:"source"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	StartTime   time.Time  `json:"startTime"`
	EndTime     *time.Time `json:"endTime,omitempty"`
	Lat         float64    `json:"lat"`
	Lng         float64    `json:"lng"`
	VenueName   string     `json:"venueName,omitempty"`
	City        string     `json:"city,omitempty"`
	Category    Category   `json:"category"`
	PriceType   PriceType  `json:"priceType"`
	URL         string     `json:"url,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	IsLiveNow   bool       `json:"isLiveNow"`
	Score       float64    `json:"score"`
}

// EventID builds the source-prefixed identifier for an upstream record.
func EventID(source Source, upstreamID string) string {
	return string(source) + ":" + upstreamID
}

// HasEndTime reports whether the upstream declared an end time.
func (e *NormalizedEvent) HasEndTime() bool {
	return e.EndTime != nil && !e.EndTime.IsZero()
}
