// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

/*
Package main is the entry point for the Happening server.

Happening merges upcoming events for one region from LinkedEvents,
MyHelsinki and Ticketmaster into a single ranked list, served from a two-tier
cache at GET /api/v1/events.

# Application Architecture

	RootSupervisor ("happening")
	├── InfraSupervisor ("infra-layer")
	│   ├── Embedded NATS server (CACHE_BACKEND=nats, NATS_EMBEDDED=true)
	│   ├── Badger value log GC  (CACHE_BACKEND=badger)
	│   └── Rate limit sweeper
	└── APISupervisor ("api-layer")
	    └── HTTP server

Initialization order:

 1. Configuration: Koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog, JSON or console
 3. Shared cache: memory, Badger or NATS JetStream KeyValue
 4. Sources: adapters with per-source circuit breakers
 5. Aggregator, query stage and cache hierarchy
 6. Router: chi with CORS, rate limiting and Prometheus metrics
 7. Supervisor tree: suture v4

# Configuration

	# Server
	HTTP_PORT=8080
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	# Region
	REGION_NAME=helsinki
	REGION_LATITUDE=60.1699
	REGION_LONGITUDE=24.9384
	REGION_RADIUS_KM=30

	# Sources
	TICKETMASTER_API_KEY=<key>   # Ticketmaster is skipped without it
	SOURCE_LANGUAGES=en,fi,sv

	# Cache
	CACHE_BACKEND=memory         # memory, badger or nats
	NATS_URL=nats://127.0.0.1:4222
	NATS_EMBEDDED=false
	BADGER_PATH=/data/cache

	# Rate limiting
	RATE_LIMIT_REQUESTS=60
	RATE_LIMIT_WINDOW=60s

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server stops accepting
connections, waits up to HTTP_SHUTDOWN_TIMEOUT for in-flight requests, then
waits for pending shared cache writes before the store is closed.
*/
package main
