// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package sources

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/happening/internal/config"
	"github.com/tomtom215/happening/internal/logging"
	"github.com/tomtom215/happening/internal/models"
	"github.com/tomtom215/happening/internal/normalize"
)

// titleMaxRunes caps event titles from every upstream.
const titleMaxRunes = 200

// multilingual is a language-code keyed text field.
type multilingual map[string]string

type linkedEventsPage struct {
	Meta struct {
		Count int    `json:"count"`
		Next  string `json:"next"`
	} `json:"meta"`
	Data []linkedEvent `json:"data"`
}

type linkedEvent struct {
	ID               string       `json:"id"`
	Name             multilingual `json:"name"`
	ShortDescription multilingual `json:"short_description"`
	Description      multilingual `json:"description"`
	StartTime        string       `json:"start_time"`
	EndTime          string       `json:"end_time"`
	InfoURL          multilingual `json:"info_url"`
	EventStatus      string       `json:"event_status"`
	IsVirtual        bool         `json:"is_virtualevent"`
	Location         *struct {
		ID       string       `json:"id"`
		Name     multilingual `json:"name"`
		Locality multilingual `json:"address_locality"`
		Position *struct {
			Coordinates []float64 `json:"coordinates"` // [lng, lat]
		} `json:"position"`
	} `json:"location"`
	Offers []struct {
		IsFree *bool `json:"is_free"`
	} `json:"offers"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
	Keywords []struct {
		Name multilingual `json:"name"`
	} `json:"keywords"`
}

// LinkedEvents reads the City of Helsinki Linked Events API.
type LinkedEvents struct {
	*client
	cfg  config.SourceConfig
	norm *normalize.Normalizer
}

// NewLinkedEvents creates the Linked Events adapter.
func NewLinkedEvents(cfg config.SourceConfig, norm *normalize.Normalizer, breaker BreakerSettings) *LinkedEvents {
	return &LinkedEvents{
		client: newClient(models.SourceLinkedEvents, cfg.Timeout, cfg.RequestsPerSecond, breaker),
		cfg:    cfg,
		norm:   norm,
	}
}

// Name implements Source.
func (s *LinkedEvents) Name() models.Source {
	return models.SourceLinkedEvents
}

// Status implements StatusReporter.
func (s *LinkedEvents) Status() models.SourceStatus {
	return models.SourceStatus{
		Name:          s.Name(),
		Enabled:       true,
		HasCredential: true,
		CircuitState:  s.circuitState(),
	}
}

// Fetch implements Source.
func (s *LinkedEvents) Fetch(ctx context.Context, bounds *models.Bounds) []models.NormalizedEvent {
	return s.run(ctx, s.cfg.Timeout, s.norm, bounds, func(ctx context.Context) ([]normalize.Candidate, error) {
		return s.fetchAll(ctx, bounds)
	})
}

func (s *LinkedEvents) firstPageURL(bounds *models.Bounds) string {
	now := s.norm.Now()

	q := url.Values{}
	q.Set("start", "now")
	q.Set("end", now.Add(s.cfg.LookAhead).UTC().Format("2006-01-02"))
	q.Set("page_size", strconv.Itoa(s.cfg.PageSize))
	q.Set("include", "location,keywords")
	q.Set("sort", "start_time")
	if bounds != nil {
		q.Set("bbox", strings.Join([]string{
			formatCoord(bounds.MinLng), formatCoord(bounds.MinLat),
			formatCoord(bounds.MaxLng), formatCoord(bounds.MaxLat),
		}, ","))
	}
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/event/?" + q.Encode()
}

func (s *LinkedEvents) fetchAll(ctx context.Context, bounds *models.Bounds) ([]normalize.Candidate, error) {
	var candidates []normalize.Candidate

	next := s.firstPageURL(bounds)
	for page := 0; page < s.cfg.MaxPages && next != ""; page++ {
		var resp linkedEventsPage
		if err := s.getJSON(ctx, next, &resp); err != nil {
			return nil, err
		}
		for i := range resp.Data {
			candidates = append(candidates, s.candidate(&resp.Data[i]))
		}
		next = s.nextPage(resp.Meta.Next)
	}
	return candidates, nil
}

// nextPage accepts a meta.next link only when it stays on the configured host.
func (s *LinkedEvents) nextPage(next string) string {
	if next == "" {
		return ""
	}
	base, err := url.Parse(s.cfg.BaseURL)
	if err != nil {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.Host != base.Host {
		logging.Warn().Str("source", string(s.Name())).Str("next", logging.SanitizeURL(next)).Msg("Ignoring off-host pagination link")
		return ""
	}
	return next
}

func (s *LinkedEvents) candidate(raw *linkedEvent) normalize.Candidate {
	langs := s.norm.Languages

	event := models.NormalizedEvent{
		ID:     models.EventID(models.SourceLinkedEvents, raw.ID),
		Source: models.SourceLinkedEvents,
		Title:  normalize.CleanText(normalize.PickLanguage(raw.Name, langs), titleMaxRunes),
		Description: normalize.CleanText(normalize.FirstNonEmpty(
			normalize.PickLanguage(raw.ShortDescription, langs),
			normalize.PickLanguage(raw.Description, langs),
		), normalize.DescriptionMaxRunes),
		EndTime: normalize.ParseEndTime(raw.EndTime, s.norm.Location),
		URL:     normalize.PickLanguage(raw.InfoURL, langs),
	}
	if start, err := normalize.ParseTime(raw.StartTime, s.norm.Location); err == nil {
		event.StartTime = start
	}
	if len(raw.Images) > 0 {
		event.ImageURL = raw.Images[0].URL
	}

	virtual := raw.IsVirtual
	if loc := raw.Location; loc != nil {
		event.VenueName = normalize.PickLanguage(loc.Name, langs)
		event.City = normalize.PickLanguage(loc.Locality, langs)
		if loc.Position != nil && len(loc.Position.Coordinates) >= 2 {
			event.Lng = loc.Position.Coordinates[0]
			event.Lat = loc.Position.Coordinates[1]
		}
		if strings.HasSuffix(loc.ID, ":internet") {
			virtual = true
		}
	}

	tags := make([]string, 0, len(raw.Keywords))
	for _, kw := range raw.Keywords {
		if name := normalize.PickLanguage(kw.Name, langs); name != "" {
			tags = append(tags, name)
		}
	}

	return normalize.Candidate{
		Event:     event,
		Tags:      tags,
		IsFree:    linkedEventsIsFree(raw),
		Virtual:   virtual,
		Cancelled: raw.EventStatus == "EventCancelled",
	}
}

// linkedEventsIsFree is true if any offer is free, false if all offers are
// paid and nil when the event lists no offers.
func linkedEventsIsFree(raw *linkedEvent) *bool {
	var result *bool
	for _, offer := range raw.Offers {
		if offer.IsFree == nil {
			continue
		}
		v := *offer.IsFree
		if v {
			return &v
		}
		result = &v
	}
	return result
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
