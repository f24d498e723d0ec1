// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/tomtom215/happening/internal/aggregator"
	"github.com/tomtom215/happening/internal/api"
	"github.com/tomtom215/happening/internal/cache"
	"github.com/tomtom215/happening/internal/config"
	"github.com/tomtom215/happening/internal/logging"
	"github.com/tomtom215/happening/internal/normalize"
	"github.com/tomtom215/happening/internal/query"
	"github.com/tomtom215/happening/internal/ratelimit"
	"github.com/tomtom215/happening/internal/scoring"
	"github.com/tomtom215/happening/internal/sources"
	"github.com/tomtom215/happening/internal/supervisor"
	"github.com/tomtom215/happening/internal/supervisor/services"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Happening stopped with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Format = cfg.Logging.Format
	logCfg.Caller = cfg.Logging.Caller
	logging.Init(logCfg)

	logging.Info().
		Str("region", cfg.Region.Name).
		Str("cache_backend", cfg.Cache.Backend).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Happening")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shared, err := openSharedCache(ctx, &cfg.Cache)
	if err != nil {
		return err
	}
	defer shared.Close()

	hierarchy := cache.NewHierarchy(shared.store, cache.HierarchyConfig{
		LocalTTL:     cfg.Cache.LocalTTL,
		SharedTTL:    cfg.Cache.SharedTTL,
		SingleFlight: cfg.Cache.SingleFlight,
		WriteTimeout: cfg.Cache.WriteTimeout,
	})

	norm := normalize.New(cfg.Sources.Languages, cfg.Region.Location())
	registry := sources.NewFromConfig(&cfg.Sources, cfg.Region, norm)
	if registry.Enabled() == 0 {
		logging.Warn().Msg("No sources enabled; every events request will fail")
	}

	scorer := scoring.New(cfg.Scoring)
	center := cfg.Region.Center()
	agg := aggregator.New(registry.Sources(), scorer, aggregator.Options{
		Center: &center,
		Bounds: cfg.Region.Bounds(),
	})

	eventsLimiter := ratelimit.New(ratelimit.Config{
		Name:        "events",
		MaxRequests: cfg.RateLimit.Requests,
		Window:      cfg.RateLimit.Window,
		MaxClients:  cfg.RateLimit.MaxClients,
	})

	handler := api.NewHandler(api.HandlerDeps{
		Cache:        hierarchy,
		Loader:       agg.Aggregate,
		Query:        query.New(scorer),
		Registry:     registry,
		Region:       cfg.Region,
		CacheKey:     cache.GenerateKey(cfg.Cache.KeyPrefix, cfg.Region.Name),
		CacheBackend: shared.store.Name(),
	})

	mwCfg := api.DefaultChiMiddlewareConfig()
	mwCfg.CORSAllowedOrigins = cfg.Security.CORSOrigins
	mwCfg.HealthRequests = cfg.RateLimit.HealthRequests
	mwCfg.RateLimitDisabled = cfg.RateLimit.Disabled
	if cfg.RateLimit.Disabled {
		logging.Warn().Msg("Rate limiting disabled (DISABLE_RATE_LIMIT=true)")
	}

	router := api.NewRouter(handler, eventsLimiter, mwCfg)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(cfg.Supervisor))
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	for _, svc := range shared.services {
		tree.AddInfraService(svc)
	}
	tree.AddInfraService(ratelimit.NewSweeper(cfg.RateLimit.SweepInterval, eventsLimiter))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, hierarchy.Wait))
	logging.Info().Str("addr", server.Addr).Int("sources", registry.Enabled()).Msg("HTTP server service added")

	logging.Info().Msg("Starting supervisor tree")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		tree.LogUnstopped()
		return fmt.Errorf("supervisor tree: %w", err)
	}
	tree.LogUnstopped()

	// Writes still pending if the API layer was killed before draining.
	hierarchy.Wait()
	return nil
}
