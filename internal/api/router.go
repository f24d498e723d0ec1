// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/happening/internal/middleware"
	"github.com/tomtom215/happening/internal/ratelimit"
)

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Router sets up HTTP routes using Chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	config        *ChiMiddlewareConfig

	// eventsLimiter guards /api/v1/events; nil disables it
	eventsLimiter *ratelimit.FixedWindow
}

// NewRouter creates a Router. A nil cfg uses DefaultChiMiddlewareConfig.
func NewRouter(handler *Handler, eventsLimiter *ratelimit.FixedWindow, cfg *ChiMiddlewareConfig) *Router {
	if cfg == nil {
		cfg = DefaultChiMiddlewareConfig()
	}
	if cfg.RateLimitDisabled {
		eventsLimiter = nil
	}
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(cfg),
		config:        cfg,
		eventsLimiter: eventsLimiter,
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chiMiddleware(middleware.AccessLog(router.config.SlowRequestThreshold)))
	r.Use(chiMiddleware(middleware.PrometheusMetrics))
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered
	r.Use(APISecurityHeaders())
	r.Use(chiMiddleware(middleware.Compression))

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	// ========================
	// Health Endpoints
	// ========================
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// ========================
	// Core API Endpoints
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		events := r.With()
		if router.eventsLimiter != nil {
			events = r.With(ratelimit.Middleware(router.eventsLimiter))
		}
		events.Get("/events", router.handler.Events)

		r.With(router.chiMiddleware.RateLimitHealth()).Get("/sources", router.handler.Sources)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
