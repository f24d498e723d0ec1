// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package sources

import (
	"context"
	"math"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/happening/internal/config"
	"github.com/tomtom215/happening/internal/logging"
	"github.com/tomtom215/happening/internal/models"
	"github.com/tomtom215/happening/internal/normalize"
	"github.com/tomtom215/happening/internal/scoring"
)

// ticketmasterMaxDepth is the Discovery API's page*size ceiling.
const ticketmasterMaxDepth = 1000

// ticketmasterLookBehind widens the start filter so events already in
// progress are still returned.
const ticketmasterLookBehind = 12 * time.Hour

// ticketmasterTimeLayout is the only timestamp layout the Discovery API accepts.
const ticketmasterTimeLayout = "2006-01-02T15:04:05Z"

type ticketmasterPage struct {
	Embedded struct {
		Events []ticketmasterEvent `json:"events"`
	} `json:"_embedded"`
	Page struct {
		Size       int `json:"size"`
		TotalPages int `json:"totalPages"`
		Number     int `json:"number"`
	} `json:"page"`
}

type ticketmasterEvent struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	URL    string `json:"url"`
	Info   string `json:"info"`
	Images []struct {
		URL   string `json:"url"`
		Ratio string `json:"ratio"`
		Width int    `json:"width"`
	} `json:"images"`
	Dates struct {
		Start struct {
			DateTime  string `json:"dateTime"`
			LocalDate string `json:"localDate"`
		} `json:"start"`
		End struct {
			DateTime string `json:"dateTime"`
		} `json:"end"`
		Status struct {
			Code string `json:"code"`
		} `json:"status"`
	} `json:"dates"`
	Classifications []struct {
		Segment struct {
			Name string `json:"name"`
		} `json:"segment"`
		Genre struct {
			Name string `json:"name"`
		} `json:"genre"`
	} `json:"classifications"`
	PriceRanges []struct {
		Min float64 `json:"min"`
		Max float64 `json:"max"`
	} `json:"priceRanges"`
	Embedded struct {
		Venues []struct {
			Name string `json:"name"`
			City struct {
				Name string `json:"name"`
			} `json:"city"`
			Location struct {
				Latitude  string `json:"latitude"`
				Longitude string `json:"longitude"`
			} `json:"location"`
		} `json:"venues"`
	} `json:"_embedded"`
}

// Ticketmaster reads the Ticketmaster Discovery API. Without an API key it
// is a no-op.
type Ticketmaster struct {
	*client
	cfg    config.SourceConfig
	region config.RegionConfig
	norm   *normalize.Normalizer

	missingKeyOnce sync.Once
}

// NewTicketmaster creates the Ticketmaster adapter. region supplies the
// search center when Fetch is called without bounds.
func NewTicketmaster(cfg config.SourceConfig, region config.RegionConfig, norm *normalize.Normalizer, breaker BreakerSettings) *Ticketmaster {
	return &Ticketmaster{
		client: newClient(models.SourceTicketmaster, cfg.Timeout, cfg.RequestsPerSecond, breaker),
		cfg:    cfg,
		region: region,
		norm:   norm,
	}
}

// Name implements Source.
func (s *Ticketmaster) Name() models.Source {
	return models.SourceTicketmaster
}

// Status implements StatusReporter.
func (s *Ticketmaster) Status() models.SourceStatus {
	return models.SourceStatus{
		Name:          s.Name(),
		Enabled:       true,
		HasCredential: s.cfg.APIKey != "",
		CircuitState:  s.circuitState(),
	}
}

// Fetch implements Source.
func (s *Ticketmaster) Fetch(ctx context.Context, bounds *models.Bounds) []models.NormalizedEvent {
	if s.cfg.APIKey == "" {
		s.missingKeyOnce.Do(func() {
			logging.Warn().Str("source", string(s.Name())).Msg("TICKETMASTER_API_KEY not set, source disabled")
		})
		return []models.NormalizedEvent{}
	}
	return s.run(ctx, s.cfg.Timeout, s.norm, bounds, func(ctx context.Context) ([]normalize.Candidate, error) {
		return s.fetchAll(ctx, bounds)
	})
}

// searchArea returns the center and radius covering bounds, or the region.
func (s *Ticketmaster) searchArea(bounds *models.Bounds) (scoring.Point, float64) {
	if bounds == nil {
		return s.region.Center(), s.region.RadiusKm
	}
	center := scoring.Point{
		Lat: (bounds.MinLat + bounds.MaxLat) / 2,
		Lng: (bounds.MinLng + bounds.MaxLng) / 2,
	}
	corner := scoring.Point{Lat: bounds.MaxLat, Lng: bounds.MaxLng}
	return center, math.Ceil(scoring.Haversine(center, corner))
}

func (s *Ticketmaster) pageURL(bounds *models.Bounds, page int) string {
	center, radius := s.searchArea(bounds)
	now := s.norm.Now().UTC()

	q := url.Values{}
	q.Set("apikey", s.cfg.APIKey)
	q.Set("latlong", formatCoord(center.Lat)+","+formatCoord(center.Lng))
	q.Set("radius", strconv.Itoa(int(math.Max(1, radius))))
	q.Set("unit", "km")
	q.Set("startDateTime", now.Add(-ticketmasterLookBehind).Format(ticketmasterTimeLayout))
	q.Set("endDateTime", now.Add(s.cfg.LookAhead).Format(ticketmasterTimeLayout))
	q.Set("sort", "date,asc")
	q.Set("size", strconv.Itoa(s.cfg.PageSize))
	q.Set("page", strconv.Itoa(page))
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/events.json?" + q.Encode()
}

func (s *Ticketmaster) fetchAll(ctx context.Context, bounds *models.Bounds) ([]normalize.Candidate, error) {
	var candidates []normalize.Candidate

	for page := 0; page < s.cfg.MaxPages; page++ {
		if (page+1)*s.cfg.PageSize > ticketmasterMaxDepth {
			break
		}

		var resp ticketmasterPage
		if err := s.getJSON(ctx, s.pageURL(bounds, page), &resp); err != nil {
			return nil, err
		}
		for i := range resp.Embedded.Events {
			candidates = append(candidates, s.candidate(&resp.Embedded.Events[i]))
		}
		if resp.Page.Number+1 >= resp.Page.TotalPages {
			break
		}
	}
	return candidates, nil
}

func (s *Ticketmaster) candidate(raw *ticketmasterEvent) normalize.Candidate {
	event := models.NormalizedEvent{
		ID:          models.EventID(models.SourceTicketmaster, raw.ID),
		Source:      models.SourceTicketmaster,
		Title:       normalize.CleanText(raw.Name, titleMaxRunes),
		Description: normalize.CleanText(raw.Info, normalize.DescriptionMaxRunes),
		EndTime:     normalize.ParseEndTime(raw.Dates.End.DateTime, s.norm.Location),
		URL:         raw.URL,
		ImageURL:    ticketmasterImage(raw),
	}
	start := normalize.FirstNonEmpty(raw.Dates.Start.DateTime, raw.Dates.Start.LocalDate)
	if t, err := normalize.ParseTime(start, s.norm.Location); err == nil {
		event.StartTime = t
	}

	if len(raw.Embedded.Venues) > 0 {
		venue := raw.Embedded.Venues[0]
		event.VenueName = strings.TrimSpace(venue.Name)
		event.City = strings.TrimSpace(venue.City.Name)
		lat, latErr := strconv.ParseFloat(venue.Location.Latitude, 64)
		lng, lngErr := strconv.ParseFloat(venue.Location.Longitude, 64)
		if latErr == nil && lngErr == nil {
			event.Lat, event.Lng = lat, lng
		}
	}

	var tags []string
	for _, c := range raw.Classifications {
		for _, name := range []string{c.Segment.Name, c.Genre.Name} {
			if name != "" && name != "Undefined" {
				tags = append(tags, name)
			}
		}
	}

	return normalize.Candidate{
		Event:     event,
		Tags:      tags,
		IsFree:    ticketmasterIsFree(raw),
		Cancelled: raw.Dates.Status.Code == "cancelled",
	}
}

// ticketmasterIsFree reads price ranges: all zero is free, any positive
// maximum is paid, none listed is unknown.
func ticketmasterIsFree(raw *ticketmasterEvent) *bool {
	if len(raw.PriceRanges) == 0 {
		return nil
	}
	free := true
	for _, pr := range raw.PriceRanges {
		if pr.Max > 0 || pr.Min > 0 {
			free = false
			break
		}
	}
	return &free
}

// ticketmasterImage prefers the widest 16:9 image, falling back to the first.
func ticketmasterImage(raw *ticketmasterEvent) string {
	best, bestWidth := "", -1
	for _, img := range raw.Images {
		if img.Ratio == "16_9" && img.Width > bestWidth {
			best, bestWidth = img.URL, img.Width
		}
	}
	if best == "" && len(raw.Images) > 0 {
		best = raw.Images[0].URL
	}
	return best
}
