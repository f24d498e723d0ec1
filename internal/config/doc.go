// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

/*
Package config loads and validates Happening's configuration.

Configuration is layered with Koanf v2, later layers overriding earlier ones:

 1. Defaults: defaultConfig()
 2. Config file: optional YAML file ($CONFIG_PATH, ./config.yaml,
    /etc/happening/config.yaml)
 3. Environment variables: an explicit mapping table (HTTP_PORT,
    CACHE_BACKEND, TICKETMASTER_API_KEY, ...). Unmapped variables are ignored.

Comma-separated environment values are split for slice fields such as
CORS_ORIGINS and SOURCE_LANGUAGES.

# Sections

  - server: listen address and HTTP timeouts
  - logging: zerolog level and format
  - region: aggregation center, radius, timezone
  - sources: per-adapter enable flag, base URL, paging, timeout, pacing, credential
  - cache: tier TTLs, shared backend (memory, badger, nats), single-flight
  - rate_limit: fixed-window limits for the events endpoint
  - scoring: ranking weights
  - security: CORS origins
  - supervisor: suture failure policy

# Example

	cfg, err := config.Load()
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

Config is immutable after Load and safe for concurrent reads.
*/
package config
