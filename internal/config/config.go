// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package config

import (
	"math"
	"time"

	"github.com/tomtom215/happening/internal/models"
	"github.com/tomtom215/happening/internal/scoring"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Region     RegionConfig     `koanf:"region"`
	Sources    SourcesConfig    `koanf:"sources"`
	Cache      CacheConfig      `koanf:"cache"`
	RateLimit  RateLimitConfig  `koanf:"rate_limit"`
	Scoring    scoring.Weights  `koanf:"scoring"`
	Security   SecurityConfig   `koanf:"security"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// LoggingConfig holds logging configuration.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// RegionConfig describes the area events are aggregated for. The center is
// also the default viewer location and the scoring origin for cached payloads.
type RegionConfig struct {
	Name      string  `koanf:"name"`
	Latitude  float64 `koanf:"latitude"`
	Longitude float64 `koanf:"longitude"`

	// RadiusKm is the half-width of the square box adapters are asked for.
	RadiusKm float64 `koanf:"radius_km"`

	// Timezone is used for upstream timestamps that carry no offset.
	Timezone string `koanf:"timezone"`
}

// Center returns the region center.
func (r RegionConfig) Center() scoring.Point {
	return scoring.Point{Lat: r.Latitude, Lng: r.Longitude}
}

// Bounds returns the square bounding box of RadiusKm around the center.
func (r RegionConfig) Bounds() *models.Bounds {
	const kmPerDegreeLat = 111.32
	dLat := r.RadiusKm / kmPerDegreeLat
	dLng := r.RadiusKm / (kmPerDegreeLat * math.Cos(r.Latitude*math.Pi/180))
	return &models.Bounds{
		MinLat: math.Max(-90, r.Latitude-dLat),
		MaxLat: math.Min(90, r.Latitude+dLat),
		MinLng: math.Max(-180, r.Longitude-dLng),
		MaxLng: math.Min(180, r.Longitude+dLng),
	}
}

// Location loads the configured timezone, falling back to UTC.
func (r RegionConfig) Location() *time.Location {
	if r.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SourcesConfig holds per-adapter settings.
type SourcesConfig struct {
	// Languages is the preference order for multilingual upstream fields.
	Languages []string `koanf:"languages"`

	LinkedEvents SourceConfig `koanf:"linkedevents"`
	MyHelsinki   SourceConfig `koanf:"myhelsinki"`
	Ticketmaster SourceConfig `koanf:"ticketmaster"`
}

// SourceConfig configures one upstream adapter.
type SourceConfig struct {
	Enabled bool   `koanf:"enabled"`
	BaseURL string `koanf:"base_url"`

	// APIKey is required by credential-gated adapters. Never logged.
	APIKey string `koanf:"api_key"`

	PageSize int `koanf:"page_size"`
	MaxPages int `koanf:"max_pages"`

	// Timeout bounds one whole Fetch, all pages included.
	Timeout time.Duration `koanf:"timeout"`

	// RequestsPerSecond paces page requests to the upstream.
	RequestsPerSecond float64 `koanf:"requests_per_second"`

	// LookAhead is how far into the future events are requested.
	LookAhead time.Duration `koanf:"look_ahead"`
}

// CacheConfig holds the two-tier cache settings.
type CacheConfig struct {
	// Backend selects tier 2: memory, badger or nats.
	Backend string `koanf:"backend"`

	LocalTTL     time.Duration `koanf:"local_ttl"`
	SharedTTL    time.Duration `koanf:"shared_ttl"`
	SingleFlight bool          `koanf:"single_flight"`
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// KeyPrefix namespaces aggregation keys; bump it when the payload shape changes.
	KeyPrefix string `koanf:"key_prefix"`

	NATS   NATSCacheConfig   `koanf:"nats"`
	Badger BadgerCacheConfig `koanf:"badger"`
}

// NATSCacheConfig configures the JetStream KeyValue backend.
type NATSCacheConfig struct {
	URL           string `koanf:"url"`
	Bucket        string `koanf:"bucket"`
	Embedded      bool   `koanf:"embedded"`
	StoreDir      string `koanf:"store_dir"`
	MaxMemory     int64  `koanf:"max_memory"`
	MaxStore      int64  `koanf:"max_store"`
	MemoryStorage bool   `koanf:"memory_storage"`
	Replicas      int    `koanf:"replicas"`
}

// BadgerCacheConfig configures the embedded BadgerDB backend.
type BadgerCacheConfig struct {
	Path       string        `koanf:"path"`
	InMemory   bool          `koanf:"in_memory"`
	GCInterval time.Duration `koanf:"gc_interval"`
}

// RateLimitConfig holds fixed-window limiter settings.
type RateLimitConfig struct {
	Disabled      bool          `koanf:"disabled"`
	Requests      int           `koanf:"requests"`
	Window        time.Duration `koanf:"window"`
	MaxClients    int           `koanf:"max_clients"`
	SweepInterval time.Duration `koanf:"sweep_interval"`

	// HealthRequests per minute per IP for the health endpoints.
	HealthRequests int `koanf:"health_requests"`
}

// SecurityConfig holds browser-facing security settings.
type SecurityConfig struct {
	CORSOrigins []string `koanf:"cors_origins"`
}

// SupervisorConfig maps to the suture failure policy.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// IsProduction reports whether ENVIRONMENT=production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load loads configuration from defaults, the optional config file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
