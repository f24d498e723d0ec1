// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateRegion(); err != nil {
		return err
	}

	if err := c.validateSources(); err != nil {
		return err
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	if err := c.validateRateLimits(); err != nil {
		return err
	}

	if err := c.validateScoring(); err != nil {
		return err
	}

	if err := c.validateCORS(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("HTTP_READ_TIMEOUT and HTTP_WRITE_TIMEOUT must be positive")
	}
	return nil
}

// validateRegion validates the aggregation region
func (c *Config) validateRegion() error {
	r := c.Region
	if r.Name == "" {
		return fmt.Errorf("REGION_NAME is required")
	}
	if r.Latitude < -90 || r.Latitude > 90 {
		return fmt.Errorf("REGION_LATITUDE must be between -90 and 90")
	}
	if r.Longitude < -180 || r.Longitude > 180 {
		return fmt.Errorf("REGION_LONGITUDE must be between -180 and 180")
	}
	if r.RadiusKm <= 0 || r.RadiusKm > 500 {
		return fmt.Errorf("REGION_RADIUS_KM must be between 0 and 500")
	}
	if r.Timezone != "" {
		if _, err := time.LoadLocation(r.Timezone); err != nil {
			return fmt.Errorf("REGION_TIMEZONE %q is not a known timezone: %w", r.Timezone, err)
		}
	}
	return nil
}

// validateSources validates every enabled adapter
func (c *Config) validateSources() error {
	sources := []struct {
		env string
		cfg SourceConfig
	}{
		{"LINKEDEVENTS", c.Sources.LinkedEvents},
		{"MYHELSINKI", c.Sources.MyHelsinki},
		{"TICKETMASTER", c.Sources.Ticketmaster},
	}

	enabled := 0
	for _, s := range sources {
		if !s.cfg.Enabled {
			continue
		}
		enabled++
		if err := validateSource(s.env, s.cfg); err != nil {
			return err
		}
	}

	if enabled == 0 {
		return fmt.Errorf("at least one source must be enabled (LINKEDEVENTS_ENABLED, MYHELSINKI_ENABLED, TICKETMASTER_ENABLED)")
	}
	return nil
}

func validateSource(env string, s SourceConfig) error {
	if s.BaseURL == "" {
		return fmt.Errorf("%s_URL is required when %s_ENABLED=true", env, env)
	}
	if err := validateHTTPURL(s.BaseURL, env+"_URL"); err != nil {
		return err
	}
	if s.PageSize < 1 || s.PageSize > 1000 {
		return fmt.Errorf("%s_PAGE_SIZE must be between 1 and 1000", env)
	}
	if s.MaxPages < 1 || s.MaxPages > 50 {
		return fmt.Errorf("%s_MAX_PAGES must be between 1 and 50", env)
	}
	if s.Timeout <= 0 || s.Timeout > 2*time.Minute {
		return fmt.Errorf("%s_TIMEOUT must be between 0 and 2m", env)
	}
	if s.RequestsPerSecond < 0 {
		return fmt.Errorf("%s_RPS must not be negative", env)
	}
	if s.LookAhead <= 0 {
		return fmt.Errorf("%s_LOOK_AHEAD must be positive", env)
	}
	return nil
}

// validCacheBackends defines the allowed tier 2 backends
var validCacheBackends = map[string]bool{
	"memory": true,
	"badger": true,
	"nats":   true,
}

// validateCache validates cache configuration
func (c *Config) validateCache() error {
	if !validCacheBackends[c.Cache.Backend] {
		return fmt.Errorf("CACHE_BACKEND must be one of: memory, badger, nats")
	}
	if c.Cache.LocalTTL <= 0 || c.Cache.SharedTTL <= 0 {
		return fmt.Errorf("CACHE_LOCAL_TTL and CACHE_SHARED_TTL must be positive")
	}
	if c.Cache.LocalTTL > c.Cache.SharedTTL {
		return fmt.Errorf("CACHE_LOCAL_TTL (%v) must not exceed CACHE_SHARED_TTL (%v)", c.Cache.LocalTTL, c.Cache.SharedTTL)
	}
	if c.Cache.KeyPrefix == "" {
		return fmt.Errorf("CACHE_KEY_PREFIX is required")
	}

	switch c.Cache.Backend {
	case "nats":
		return c.validateNATSCache()
	case "badger":
		if !c.Cache.Badger.InMemory && c.Cache.Badger.Path == "" {
			return fmt.Errorf("BADGER_PATH is required when CACHE_BACKEND=badger")
		}
	}
	return nil
}

func (c *Config) validateNATSCache() error {
	n := c.Cache.NATS
	if n.Bucket == "" {
		return fmt.Errorf("NATS_BUCKET is required when CACHE_BACKEND=nats")
	}
	if n.Embedded {
		if n.StoreDir == "" {
			return fmt.Errorf("NATS_STORE_DIR is required when NATS_EMBEDDED=true")
		}
		return nil
	}
	if n.URL == "" {
		return fmt.Errorf("NATS_URL is required when CACHE_BACKEND=nats")
	}
	if err := validateNATSURL(n.URL); err != nil {
		return fmt.Errorf("NATS_URL is invalid: %w", err)
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

// validateRateLimits validates rate limiting configuration bounds.
func (c *Config) validateRateLimits() error {
	if c.RateLimit.Disabled {
		return nil
	}

	if c.RateLimit.Requests < minRateLimitRequests || c.RateLimit.Requests > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.RateLimit.Window < minRateLimitWindow || c.RateLimit.Window > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	if c.RateLimit.HealthRequests < 1 {
		return fmt.Errorf("RATE_LIMIT_HEALTH must be at least 1")
	}
	return nil
}

// validateScoring rejects weights that would break ranking invariants
func (c *Config) validateScoring() error {
	if c.Scoring.DistancePenaltyPerKm < 0 {
		return fmt.Errorf("SCORE_DISTANCE_PENALTY must not be negative")
	}
	if c.Scoring.DefaultDuration <= 0 {
		return fmt.Errorf("SCORE_DEFAULT_DURATION must be positive")
	}
	if c.Scoring.LiveSpanCeiling < c.Scoring.DefaultDuration {
		return fmt.Errorf("SCORE_LIVE_SPAN_CEILING must be at least SCORE_DEFAULT_DURATION")
	}
	return nil
}

// validateCORS rejects wildcard CORS in production
func (c *Config) validateCORS() error {
	if c.IsProduction() && c.hasWildcardCORS() {
		return fmt.Errorf("CORS_ORIGINS=* (wildcard) is not allowed in production. " +
			"Set specific origins: CORS_ORIGINS=https://yourdomain.com,https://app.yourdomain.com")
	}
	return nil
}

// hasWildcardCORS checks if CORS is configured with wildcard origins
func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	format := strings.ToLower(c.Logging.Format)
	if format != "json" && format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console")
	}
	return nil
}
