// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/happening/internal/cache"
	"github.com/tomtom215/happening/internal/config"
	"github.com/tomtom215/happening/internal/logging"
)

// natsConnectTimeout bounds the initial connection and bucket setup.
const natsConnectTimeout = 15 * time.Second

// sharedCache is the tier 2 store plus the background services it needs.
type sharedCache struct {
	store    cache.SharedStore
	services []suture.Service
}

// openSharedCache builds the configured tier 2 backend. On error nothing is
// left running.
func openSharedCache(ctx context.Context, cfg *config.CacheConfig) (*sharedCache, error) {
	switch cfg.Backend {
	case cache.BackendMemory, "":
		return &sharedCache{store: cache.NewMemoryStore(cfg.SharedTTL)}, nil

	case cache.BackendBadger:
		store, err := cache.OpenBadgerStore(cache.BadgerConfig{
			Path:       cfg.Badger.Path,
			InMemory:   cfg.Badger.InMemory,
			GCInterval: cfg.Badger.GCInterval,
		})
		if err != nil {
			return nil, fmt.Errorf("open badger cache: %w", err)
		}
		return &sharedCache{store: store, services: []suture.Service{store.GCService()}}, nil

	case cache.BackendNATS:
		return openNATSCache(ctx, cfg)

	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

func openNATSCache(ctx context.Context, cfg *config.CacheConfig) (*sharedCache, error) {
	natsCfg := cache.NATSConfig{
		URL:           cfg.NATS.URL,
		Bucket:        cfg.NATS.Bucket,
		TTL:           cfg.SharedTTL,
		Replicas:      cfg.NATS.Replicas,
		MemoryStorage: cfg.NATS.MemoryStorage,
	}

	sc := &sharedCache{}
	var embedded *cache.EmbeddedServer
	if cfg.NATS.Embedded {
		var err error
		embedded, err = cache.StartEmbeddedServer(cache.EmbeddedServerConfig{
			StoreDir:  cfg.NATS.StoreDir,
			MaxMemory: cfg.NATS.MaxMemory,
			MaxStore:  cfg.NATS.MaxStore,
		})
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS: %w", err)
		}
		natsCfg.URL = embedded.ClientURL()
		sc.services = append(sc.services, embedded)
	}

	dialCtx, cancel := context.WithTimeout(ctx, natsConnectTimeout)
	defer cancel()

	store, err := cache.DialNATSStore(dialCtx, natsCfg)
	if err != nil {
		if embedded != nil {
			embedded.Shutdown()
		}
		return nil, fmt.Errorf("open NATS cache: %w", err)
	}
	sc.store = store

	logging.Info().Str("url", natsCfg.URL).Str("bucket", natsCfg.Bucket).Bool("embedded", embedded != nil).Msg("NATS cache connected")
	return sc, nil
}

// Close releases the store.
func (s *sharedCache) Close() {
	if err := s.store.Close(); err != nil {
		logging.Error().Err(err).Str("backend", s.store.Name()).Msg("Error closing shared cache")
	}
}
