// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package sources

import (
	"github.com/tomtom215/happening/internal/config"
	"github.com/tomtom215/happening/internal/logging"
	"github.com/tomtom215/happening/internal/models"
	"github.com/tomtom215/happening/internal/normalize"
)

// Registry holds the configured adapters in invocation order.
type Registry struct {
	entries []registryEntry
}

type registryEntry struct {
	name          models.Source
	source        Source // nil when disabled
	hasCredential bool
}

// NewRegistry wraps already-built adapters, all treated as enabled.
func NewRegistry(sources ...Source) *Registry {
	r := &Registry{entries: make([]registryEntry, 0, len(sources))}
	for _, src := range sources {
		r.entries = append(r.entries, registryEntry{name: src.Name(), source: src, hasCredential: true})
	}
	return r
}

// NewFromConfig builds every adapter in the fixed order LinkedEvents,
// MyHelsinki, Ticketmaster. Disabled adapters are kept for Status only.
func NewFromConfig(cfg *config.SourcesConfig, region config.RegionConfig, norm *normalize.Normalizer) *Registry {
	breaker := DefaultBreakerSettings()
	r := &Registry{}

	add := func(name models.Source, enabled, hasCredential bool, build func() Source) {
		entry := registryEntry{name: name, hasCredential: hasCredential}
		if enabled {
			entry.source = build()
		}
		r.entries = append(r.entries, entry)
		logging.Info().Str("source", string(name)).Bool("enabled", enabled).Bool("credential", hasCredential).Msg("Source configured")
	}

	add(models.SourceLinkedEvents, cfg.LinkedEvents.Enabled, true, func() Source {
		return NewLinkedEvents(cfg.LinkedEvents, norm, breaker)
	})
	add(models.SourceMyHelsinki, cfg.MyHelsinki.Enabled, true, func() Source {
		return NewMyHelsinki(cfg.MyHelsinki, norm, breaker)
	})
	add(models.SourceTicketmaster, cfg.Ticketmaster.Enabled, cfg.Ticketmaster.APIKey != "", func() Source {
		return NewTicketmaster(cfg.Ticketmaster, region, norm, breaker)
	})

	return r
}

// Sources returns the enabled adapters in invocation order.
func (r *Registry) Sources() []Source {
	out := make([]Source, 0, len(r.entries))
	for _, e := range r.entries {
		if e.source != nil {
			out = append(out, e.source)
		}
	}
	return out
}

// Enabled returns the number of enabled adapters.
func (r *Registry) Enabled() int {
	n := 0
	for _, e := range r.entries {
		if e.source != nil {
			n++
		}
	}
	return n
}

// Status describes every known adapter, disabled ones included.
func (r *Registry) Status() []models.SourceStatus {
	out := make([]models.SourceStatus, 0, len(r.entries))
	for _, e := range r.entries {
		if e.source == nil {
			out = append(out, models.SourceStatus{
				Name:          e.name,
				HasCredential: e.hasCredential,
				CircuitState:  "disabled",
			})
			continue
		}
		if reporter, ok := e.source.(StatusReporter); ok {
			out = append(out, reporter.Status())
			continue
		}
		out = append(out, models.SourceStatus{
			Name:          e.name,
			Enabled:       true,
			HasCredential: e.hasCredential,
			CircuitState:  "unknown",
		})
	}
	return out
}
