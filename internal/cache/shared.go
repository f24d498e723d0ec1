// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/happening/internal/models"
)

// DefaultSharedTTL is the tier 2 time-to-live.
const DefaultSharedTTL = 300 * time.Second

// Backend names accepted by cache.backend.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendNATS   = "nats"
)

// ErrMiss is returned by SharedStore.Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// SharedStore is the tier 2 store shared by all instances.
type SharedStore interface {
	// Get returns the payload stored under key, or ErrMiss.
	Get(ctx context.Context, key string) (*models.CachePayload, error)

	// Set stores payload under key for ttl.
	Set(ctx context.Context, key string, payload *models.CachePayload, ttl time.Duration) error

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error

	// Name identifies the backend in logs and health output.
	Name() string

	Close() error
}

// GenerateKey builds an aggregation key from a prefix and parts, e.g.
// GenerateKey("events:v1", "Helsinki") returns "events:v1:helsinki".
func GenerateKey(prefix string, parts ...string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, p := range parts {
		b.WriteByte(':')
		b.WriteString(strings.ToLower(strings.TrimSpace(p)))
	}
	return b.String()
}

func encodePayload(payload *models.CachePayload) ([]byte, error) {
	if payload == nil {
		return nil, fmt.Errorf("encode payload: nil payload")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return data, nil
}

func decodePayload(data []byte) (*models.CachePayload, error) {
	var payload models.CachePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if payload.Data == nil {
		payload.Data = []models.NormalizedEvent{}
	}
	return &payload, nil
}
