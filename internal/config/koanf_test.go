// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolateEnv points CONFIG_PATH and the working directory at an empty temp
// dir so no stray config file or variable leaks into the test.
func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(ConfigPathEnvVar, "")
	for key := range envMappings {
		name := strings.ToUpper(key)
		if _, ok := os.LookupEnv(name); ok {
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}
	return dir
}

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Region.Latitude != 60.1699 || cfg.Region.Longitude != 24.9384 {
		t.Errorf("Region center = %v,%v, want 60.1699,24.9384", cfg.Region.Latitude, cfg.Region.Longitude)
	}

	// Cache tiers
	if cfg.Cache.LocalTTL != 90*time.Second {
		t.Errorf("Cache.LocalTTL = %v, want 90s", cfg.Cache.LocalTTL)
	}
	if cfg.Cache.SharedTTL != 300*time.Second {
		t.Errorf("Cache.SharedTTL = %v, want 300s", cfg.Cache.SharedTTL)
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("Cache.Backend = %q, want memory", cfg.Cache.Backend)
	}
	if !cfg.Cache.SingleFlight {
		t.Error("Cache.SingleFlight should be true by default")
	}

	// Rate limiting
	if cfg.RateLimit.Requests != 60 || cfg.RateLimit.Window != time.Minute {
		t.Errorf("RateLimit = %d/%v, want 60/1m", cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	// Sources
	if cfg.Sources.Ticketmaster.APIKey != "" {
		t.Error("Ticketmaster.APIKey should be empty by default")
	}
	if cfg.Sources.LinkedEvents.Timeout != 10*time.Second {
		t.Errorf("LinkedEvents.Timeout = %v, want 10s", cfg.Sources.LinkedEvents.Timeout)
	}

	// Scoring
	if cfg.Scoring.DefaultDuration != 6*time.Hour {
		t.Errorf("Scoring.DefaultDuration = %v, want 6h", cfg.Scoring.DefaultDuration)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

// TestEnvTransformFunc tests the environment variable to config path transformation
func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"HTTP_PORT", "server.port"},
		{"LOG_LEVEL", "logging.level"},
		{"CACHE_BACKEND", "cache.backend"},
		{"NATS_URL", "cache.nats.url"},
		{"TICKETMASTER_API_KEY", "sources.ticketmaster.api_key"},
		{"RATE_LIMIT_REQUESTS", "rate_limit.requests"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if result := envTransformFunc(tt.input); result != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

// TestFindConfigFile verifies config file discovery
func TestFindConfigFile(t *testing.T) {
	dir := isolateEnv(t)

	t.Run("no config file exists", func(t *testing.T) {
		if result := findConfigFile(); result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})

	t.Run("config.yaml exists", func(t *testing.T) {
		configPath := filepath.Join(dir, "config.yaml")
		if err := os.WriteFile(configPath, []byte("test: true"), 0o644); err != nil {
			t.Fatalf("Failed to create config file: %v", err)
		}
		defer os.Remove(configPath)

		if result := findConfigFile(); result != "config.yaml" {
			t.Errorf("findConfigFile() = %q, want config.yaml", result)
		}
	})

	t.Run("CONFIG_PATH env var takes precedence", func(t *testing.T) {
		customPath := filepath.Join(dir, "custom.yaml")
		if err := os.WriteFile(customPath, []byte("test: true"), 0o644); err != nil {
			t.Fatalf("Failed to create custom config file: %v", err)
		}
		t.Setenv(ConfigPathEnvVar, customPath)

		if result := findConfigFile(); result != customPath {
			t.Errorf("findConfigFile() = %q, want %q", result, customPath)
		}
	})

	t.Run("CONFIG_PATH env var with non-existent file", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "/non/existent/config.yaml")
		if result := findConfigFile(); result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})
}

// TestLoadWithKoanfEnvVars tests loading configuration from environment variables
func TestLoadWithKoanfEnvVars(t *testing.T) {
	isolateEnv(t)

	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CACHE_LOCAL_TTL", "30s")
	t.Setenv("TICKETMASTER_API_KEY", "tm_key_12345")
	t.Setenv("SOURCE_LANGUAGES", "fi, en")
	t.Setenv("CORS_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Cache.LocalTTL != 30*time.Second {
		t.Errorf("Cache.LocalTTL = %v, want 30s", cfg.Cache.LocalTTL)
	}
	if cfg.Sources.Ticketmaster.APIKey != "tm_key_12345" {
		t.Errorf("Ticketmaster.APIKey = %q, want tm_key_12345", cfg.Sources.Ticketmaster.APIKey)
	}
	if got := strings.Join(cfg.Sources.Languages, ","); got != "fi,en" {
		t.Errorf("Sources.Languages = %q, want fi,en", got)
	}
	if len(cfg.Security.CORSOrigins) != 2 {
		t.Errorf("Security.CORSOrigins = %v, want 2 entries", cfg.Security.CORSOrigins)
	}

	// Defaults still applied for unset values
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0 (default)", cfg.Server.Host)
	}
	if cfg.Cache.SharedTTL != 300*time.Second {
		t.Errorf("Cache.SharedTTL = %v, want 300s (default)", cfg.Cache.SharedTTL)
	}
}

// TestLoadWithKoanfEnvOverridesFile tests that env vars override the config file
func TestLoadWithKoanfEnvOverridesFile(t *testing.T) {
	dir := isolateEnv(t)

	configContent := `
server:
  port: 8888
  host: "127.0.0.1"

region:
  name: "tampere"
  latitude: 61.4978
  longitude: 23.7610
  radius_km: 20

cache:
  backend: "badger"
  badger:
    in_memory: true

logging:
  level: "warn"
`
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, configPath)
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 8888 {
		t.Errorf("Server.Port = %d, want 8888 (from file)", cfg.Server.Port)
	}
	if cfg.Region.Name != "tampere" || cfg.Region.RadiusKm != 20 {
		t.Errorf("Region = %+v, want tampere/20km (from file)", cfg.Region)
	}
	if cfg.Cache.Backend != "badger" || !cfg.Cache.Badger.InMemory {
		t.Errorf("Cache = %q in_memory=%v, want badger in-memory", cfg.Cache.Backend, cfg.Cache.Badger.InMemory)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want error (env override)", cfg.Logging.Level)
	}
	// Untouched nested default
	if cfg.Region.Timezone != "Europe/Helsinki" {
		t.Errorf("Region.Timezone = %q, want Europe/Helsinki (default)", cfg.Region.Timezone)
	}
}

// TestLoadWithKoanfValidation tests that validation runs after loading
func TestLoadWithKoanfValidation(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		errMsg  string
	}{
		{
			name:    "invalid port",
			envVars: map[string]string{"HTTP_PORT": "70000"},
			errMsg:  "HTTP_PORT",
		},
		{
			name:    "unknown cache backend",
			envVars: map[string]string{"CACHE_BACKEND": "redis"},
			errMsg:  "CACHE_BACKEND",
		},
		{
			name:    "nats backend with bad url",
			envVars: map[string]string{"CACHE_BACKEND": "nats", "NATS_URL": "http://localhost:4222"},
			errMsg:  "NATS_URL",
		},
		{
			name: "all sources disabled",
			envVars: map[string]string{
				"LINKEDEVENTS_ENABLED": "false",
				"MYHELSINKI_ENABLED":   "false",
				"TICKETMASTER_ENABLED": "false",
			},
			errMsg: "at least one source",
		},
		{
			name:    "wildcard cors in production",
			envVars: map[string]string{"ENVIRONMENT": "production"},
			errMsg:  "CORS_ORIGINS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			_, err := LoadWithKoanf()
			if err == nil {
				t.Fatal("LoadWithKoanf() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %q, want it to mention %q", err.Error(), tt.errMsg)
			}
		})
	}
}
