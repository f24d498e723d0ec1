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
	"github.com/tomtom215/happening/internal/models"
	"github.com/tomtom215/happening/internal/normalize"
)

type myHelsinkiPage struct {
	Data []myHelsinkiEvent `json:"data"`
}

type myHelsinkiEvent struct {
	ID       string       `json:"id"`
	Name     multilingual `json:"name"`
	InfoURL  string       `json:"info_url"`
	Location struct {
		Lat     *float64 `json:"lat"`
		Lon     *float64 `json:"lon"`
		Address struct {
			StreetAddress string `json:"street_address"`
			Locality      string `json:"locality"`
		} `json:"address"`
	} `json:"location"`
	Description struct {
		Intro  string `json:"intro"`
		Body   string `json:"body"`
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"description"`
	Tags []struct {
		Name string `json:"name"`
	} `json:"tags"`
	EventDates struct {
		StartingDay string `json:"starting_day"`
		EndingDay   string `json:"ending_day"`
	} `json:"event_dates"`
}

// MyHelsinki reads the MyHelsinki open API.
type MyHelsinki struct {
	*client
	cfg  config.SourceConfig
	norm *normalize.Normalizer
}

// NewMyHelsinki creates the MyHelsinki adapter.
func NewMyHelsinki(cfg config.SourceConfig, norm *normalize.Normalizer, breaker BreakerSettings) *MyHelsinki {
	return &MyHelsinki{
		client: newClient(models.SourceMyHelsinki, cfg.Timeout, cfg.RequestsPerSecond, breaker),
		cfg:    cfg,
		norm:   norm,
	}
}

// Name implements Source.
func (s *MyHelsinki) Name() models.Source {
	return models.SourceMyHelsinki
}

// Status implements StatusReporter.
func (s *MyHelsinki) Status() models.SourceStatus {
	return models.SourceStatus{
		Name:          s.Name(),
		Enabled:       true,
		HasCredential: true,
		CircuitState:  s.circuitState(),
	}
}

// Fetch implements Source.
func (s *MyHelsinki) Fetch(ctx context.Context, bounds *models.Bounds) []models.NormalizedEvent {
	return s.run(ctx, s.cfg.Timeout, s.norm, bounds, s.fetchAll)
}

func (s *MyHelsinki) pageURL(offset int) string {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(s.cfg.PageSize))
	q.Set("start", strconv.Itoa(offset))
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/events/?" + q.Encode()
}

// fetchAll pages by offset until a short page or MaxPages. The API has no
// spatial or date filter, so bounds and end time are applied by the normalizer.
func (s *MyHelsinki) fetchAll(ctx context.Context) ([]normalize.Candidate, error) {
	var candidates []normalize.Candidate

	for page := 0; page < s.cfg.MaxPages; page++ {
		var resp myHelsinkiPage
		if err := s.getJSON(ctx, s.pageURL(page*s.cfg.PageSize), &resp); err != nil {
			return nil, err
		}
		for i := range resp.Data {
			candidates = append(candidates, s.candidate(&resp.Data[i]))
		}
		if len(resp.Data) < s.cfg.PageSize {
			break
		}
	}
	return candidates, nil
}

func (s *MyHelsinki) candidate(raw *myHelsinkiEvent) normalize.Candidate {
	event := models.NormalizedEvent{
		ID:     models.EventID(models.SourceMyHelsinki, raw.ID),
		Source: models.SourceMyHelsinki,
		Title:  normalize.CleanText(normalize.PickLanguage(raw.Name, s.norm.Languages), titleMaxRunes),
		Description: normalize.CleanText(
			normalize.FirstNonEmpty(raw.Description.Intro, raw.Description.Body),
			normalize.DescriptionMaxRunes,
		),
		EndTime:   normalize.ParseEndTime(raw.EventDates.EndingDay, s.norm.Location),
		VenueName: strings.TrimSpace(raw.Location.Address.StreetAddress),
		City:      strings.TrimSpace(raw.Location.Address.Locality),
		URL:       strings.TrimSpace(raw.InfoURL),
	}
	if start, err := normalize.ParseTime(raw.EventDates.StartingDay, s.norm.Location); err == nil {
		event.StartTime = start
	}
	if raw.Location.Lat != nil && raw.Location.Lon != nil {
		event.Lat = *raw.Location.Lat
		event.Lng = *raw.Location.Lon
	}
	if len(raw.Description.Images) > 0 {
		event.ImageURL = raw.Description.Images[0].URL
	}

	tags := make([]string, 0, len(raw.Tags))
	for _, tag := range raw.Tags {
		if tag.Name != "" {
			tags = append(tags, tag.Name)
		}
	}

	return normalize.Candidate{Event: event, Tags: tags}
}
