// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package api

import (
	"net/url"

	"github.com/tomtom215/happening/internal/models"
	"github.com/tomtom215/happening/internal/query"
	"github.com/tomtom215/happening/internal/scoring"
	"github.com/tomtom215/happening/internal/validation"
)

// Defaults for /api/v1/events.
const (
	DefaultRadiusKm = 5.0
	DefaultLimit    = 200
)

// EventsRequest holds the parsed query parameters of GET /api/v1/events.
type EventsRequest struct {
	Lat      float64 `query:"lat" validate:"latitude"`
	Lng      float64 `query:"lng" validate:"longitude"`
	RadiusKm float64 `query:"radiusKm" validate:"min=1,max=50"`
	Limit    int     `query:"limit" validate:"min=1,max=1000"`
	Query    string  `query:"q" validate:"max=100,nonul"`
	Category string  `query:"category" validate:"omitempty,category"`
	Source   string  `query:"source" validate:"omitempty,source"`
	FreeOnly bool    `query:"freeOnly"`
	LiveOnly bool    `query:"liveOnly"`

	// BBox is checked by validation.ParseBBox before struct validation.
	BBox *models.Bounds `query:"bbox" validate:"-"`

	// HasLocation is true when the caller sent lat or lng.
	HasLocation bool `query:"-" validate:"-"`
}

// parseEventsRequest reads q into an EventsRequest. Missing lat/lng fall
// back to center. Parse failures are reported before range checks so the
// first error names the parameter that could not be read.
func parseEventsRequest(q url.Values, center scoring.Point) (*EventsRequest, *validation.RequestValidationError) {
	req := &EventsRequest{}

	var latSet, lngSet bool
	var verr *validation.RequestValidationError

	if req.Lat, latSet, verr = validation.ParseFloatParam(q, "lat", center.Lat); verr != nil {
		return nil, verr
	}
	if req.Lng, lngSet, verr = validation.ParseFloatParam(q, "lng", center.Lng); verr != nil {
		return nil, verr
	}
	req.HasLocation = latSet || lngSet

	if req.RadiusKm, _, verr = validation.ParseFloatParam(q, "radiusKm", DefaultRadiusKm); verr != nil {
		return nil, verr
	}
	if req.Limit, verr = validation.ParseIntParam(q, "limit", DefaultLimit); verr != nil {
		return nil, verr
	}
	if req.FreeOnly, verr = validation.ParseBoolParam(q, "freeOnly"); verr != nil {
		return nil, verr
	}
	if req.LiveOnly, verr = validation.ParseBoolParam(q, "liveOnly"); verr != nil {
		return nil, verr
	}
	if req.BBox, verr = validation.ParseBBox(q.Get("bbox")); verr != nil {
		return nil, verr
	}

	// q is capped at MaxParamLength by QueryParam; the struct tag enforces
	// the tighter public limit.
	req.Query = validation.QueryParam(q, "q")
	req.Category = validation.QueryParam(q, "category")
	req.Source = validation.QueryParam(q, "source")

	if verr = validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	return req, nil
}

// Filter converts the request into a query stage filter.
func (req *EventsRequest) Filter() query.Filter {
	return query.Filter{
		Query:    req.Query,
		Category: models.Category(req.Category),
		Source:   models.Source(req.Source),
		FreeOnly: req.FreeOnly,
		LiveOnly: req.LiveOnly,
		BBox:     req.BBox,
		Center:   scoring.Point{Lat: req.Lat, Lng: req.Lng},
		RadiusKm: req.RadiusKm,
		Rescore:  req.HasLocation,
		Limit:    req.Limit,
	}
}
