// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package cache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/tomtom215/happening/internal/models"
)

// MemoryStore is an in-process SharedStore backed by go-cache. It is only
// "shared" within one process and exists for single-instance deployments
// and tests.
type MemoryStore struct {
	c *gocache.Cache
}

// NewMemoryStore creates a store whose expired entries are purged every
// cleanupInterval.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultSharedTTL
	}
	return &MemoryStore{c: gocache.New(DefaultSharedTTL, cleanupInterval)}
}

// Get implements SharedStore.
func (s *MemoryStore) Get(_ context.Context, key string) (*models.CachePayload, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	data, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("memory store: unexpected value type %T", v)
	}
	return decodePayload(data)
}

// Set implements SharedStore.
func (s *MemoryStore) Set(_ context.Context, key string, payload *models.CachePayload, ttl time.Duration) error {
	data, err := encodePayload(payload)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = DefaultSharedTTL
	}
	s.c.Set(key, data, ttl)
	return nil
}

// Ping implements SharedStore.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Name implements SharedStore.
func (s *MemoryStore) Name() string { return BackendMemory }

// Close implements SharedStore.
func (s *MemoryStore) Close() error {
	s.c.Flush()
	return nil
}
