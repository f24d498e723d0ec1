// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/happening/internal/scoring"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/happening/config.yaml",
	"/etc/happening/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    60 * time.Second, // A cold aggregation can take most of a minute
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Region: RegionConfig{
			Name:      "helsinki",
			Latitude:  60.1699,
			Longitude: 24.9384,
			RadiusKm:  30,
			Timezone:  "Europe/Helsinki",
		},
		Sources: SourcesConfig{
			Languages: []string{"en", "fi", "sv"},
			LinkedEvents: SourceConfig{
				Enabled:           true,
				BaseURL:           "https://api.hel.fi/linkedevents/v1",
				PageSize:          100,
				MaxPages:          5,
				Timeout:           10 * time.Second,
				RequestsPerSecond: 5,
				LookAhead:         7 * 24 * time.Hour,
			},
			MyHelsinki: SourceConfig{
				Enabled:           true,
				BaseURL:           "https://open-api.myhelsinki.fi/v2",
				PageSize:          200,
				MaxPages:          3,
				Timeout:           10 * time.Second,
				RequestsPerSecond: 5,
				LookAhead:         7 * 24 * time.Hour,
			},
			Ticketmaster: SourceConfig{
				Enabled:           true, // No-ops until TICKETMASTER_API_KEY is set
				BaseURL:           "https://app.ticketmaster.com/discovery/v2",
				PageSize:          100,
				MaxPages:          3,
				Timeout:           10 * time.Second,
				RequestsPerSecond: 4, // Discovery API allows 5 rps per key
				LookAhead:         7 * 24 * time.Hour,
			},
		},
		Cache: CacheConfig{
			Backend:      "memory",
			LocalTTL:     90 * time.Second,
			SharedTTL:    300 * time.Second,
			SingleFlight: true,
			WriteTimeout: 5 * time.Second,
			KeyPrefix:    "events:v1",
			NATS: NATSCacheConfig{
				URL:       "nats://127.0.0.1:4222",
				Bucket:    "happening-events",
				Embedded:  false,
				StoreDir:  "/data/nats",
				MaxMemory: 256 << 20, // 256MB
				MaxStore:  1 << 30,   // 1GB
				Replicas:  1,
			},
			Badger: BadgerCacheConfig{
				Path:       "/data/cache",
				InMemory:   false,
				GCInterval: 5 * time.Minute,
			},
		},
		RateLimit: RateLimitConfig{
			Disabled:       false,
			Requests:       60,
			Window:         60 * time.Second,
			MaxClients:     100000,
			SweepInterval:  time.Minute,
			HealthRequests: 60,
		},
		Scoring: scoring.DefaultWeights(),
		Security: SecurityConfig{
			CORSOrigins: []string{"*"},
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5.0,
			FailureDecay:     30.0,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any mapped setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
	"sources.languages",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Region
	"region_name":      "region.name",
	"region_latitude":  "region.latitude",
	"region_longitude": "region.longitude",
	"region_radius_km": "region.radius_km",
	"region_timezone":  "region.timezone",

	// Sources
	"source_languages":        "sources.languages",
	"linkedevents_enabled":    "sources.linkedevents.enabled",
	"linkedevents_url":        "sources.linkedevents.base_url",
	"linkedevents_page_size":  "sources.linkedevents.page_size",
	"linkedevents_max_pages":  "sources.linkedevents.max_pages",
	"linkedevents_timeout":    "sources.linkedevents.timeout",
	"linkedevents_rps":        "sources.linkedevents.requests_per_second",
	"linkedevents_look_ahead": "sources.linkedevents.look_ahead",
	"myhelsinki_enabled":      "sources.myhelsinki.enabled",
	"myhelsinki_url":          "sources.myhelsinki.base_url",
	"myhelsinki_page_size":    "sources.myhelsinki.page_size",
	"myhelsinki_max_pages":    "sources.myhelsinki.max_pages",
	"myhelsinki_timeout":      "sources.myhelsinki.timeout",
	"myhelsinki_rps":          "sources.myhelsinki.requests_per_second",
	"myhelsinki_look_ahead":   "sources.myhelsinki.look_ahead",
	"ticketmaster_enabled":    "sources.ticketmaster.enabled",
	"ticketmaster_url":        "sources.ticketmaster.base_url",
	"ticketmaster_api_key":    "sources.ticketmaster.api_key",
	"ticketmaster_page_size":  "sources.ticketmaster.page_size",
	"ticketmaster_max_pages":  "sources.ticketmaster.max_pages",
	"ticketmaster_timeout":    "sources.ticketmaster.timeout",
	"ticketmaster_rps":        "sources.ticketmaster.requests_per_second",
	"ticketmaster_look_ahead": "sources.ticketmaster.look_ahead",

	// Cache
	"cache_backend":       "cache.backend",
	"cache_local_ttl":     "cache.local_ttl",
	"cache_shared_ttl":    "cache.shared_ttl",
	"cache_single_flight": "cache.single_flight",
	"cache_write_timeout": "cache.write_timeout",
	"cache_key_prefix":    "cache.key_prefix",
	"nats_url":            "cache.nats.url",
	"nats_bucket":         "cache.nats.bucket",
	"nats_embedded":       "cache.nats.embedded",
	"nats_store_dir":      "cache.nats.store_dir",
	"nats_max_memory":     "cache.nats.max_memory",
	"nats_max_store":      "cache.nats.max_store",
	"nats_memory_storage": "cache.nats.memory_storage",
	"nats_replicas":       "cache.nats.replicas",
	"badger_path":         "cache.badger.path",
	"badger_in_memory":    "cache.badger.in_memory",
	"badger_gc_interval":  "cache.badger.gc_interval",

	// Rate limiting
	"disable_rate_limit":     "rate_limit.disabled",
	"rate_limit_requests":    "rate_limit.requests",
	"rate_limit_window":      "rate_limit.window",
	"rate_limit_max_clients": "rate_limit.max_clients",
	"rate_limit_sweep":       "rate_limit.sweep_interval",
	"rate_limit_health":      "rate_limit.health_requests",

	// Scoring
	"score_base":              "scoring.base",
	"score_distance_penalty":  "scoring.distance_penalty_per_km",
	"score_live_bonus":        "scoring.live_bonus",
	"score_free_bonus":        "scoring.free_bonus",
	"score_default_duration":  "scoring.default_duration",
	"score_live_span_ceiling": "scoring.live_span_ceiling",

	// Security
	"cors_origins": "security.cors_origins",

	// Supervisor
	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_decay":     "supervisor.failure_decay",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - CACHE_BACKEND -> cache.backend
//   - TICKETMASTER_API_KEY -> sources.ticketmaster.api_key
//
// Unmapped keys return the empty string so unrelated environment variables
// never reach the config.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
