// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

/*
Package cache provides the two-tier cache that sits in front of aggregation.

# Overview

Every request for events first consults the hierarchy:

  - Tier 1 (LocalSlot): a single in-process slot holding the most recent
    CachePayload, 90 second TTL by default.
  - Tier 2 (SharedStore): a store shared by every instance, 300 second TTL
    by default. Backends: NATS JetStream KeyValue, embedded BadgerDB, or an
    in-process go-cache map for single-instance deployments and tests.
  - Origin: the loader passed to Hierarchy.Get, normally a full aggregation.

A tier 1 miss falls through to tier 2; a tier 2 hit refills tier 1. When both
miss the loader runs, tier 1 is written synchronously and tier 2 is written in
a detached goroutine so the response is never delayed by the shared store.
Tier 2 failures are logged and counted, then treated as a miss.

# Single-flight

With HierarchyConfig.SingleFlight enabled, concurrent origin loads for the
same key inside one process collapse into one. Instances do not coordinate,
so N cold instances may still run N aggregations.

# Serialization

Shared tier payloads are encoded with goccy/go-json. Decoding on every read
hands callers a fresh copy, so no caller can mutate another caller's payload.

# Usage

	store := cache.NewMemoryStore(5 * time.Minute)
	h := cache.NewHierarchy(store, cache.DefaultHierarchyConfig())

	payload, tier, err := h.Get(ctx, cache.GenerateKey("events:v1", "helsinki"), agg.Aggregate)
*/
package cache
