// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package cache

import (
	"sync"
	"time"

	"github.com/tomtom215/happening/internal/models"
)

// DefaultLocalTTL is the tier 1 time-to-live.
const DefaultLocalTTL = 90 * time.Second

// LocalSlot is the process-local tier: one slot holding one key's payload.
//
// Setting a different key replaces the slot. The service aggregates one region
// per process, so a single slot is all tier 1 ever needs.
//
// Thread Safety: guarded by sync.RWMutex. Payloads are stored by pointer and
// must be treated as immutable by every reader.
type LocalSlot struct {
	mu        sync.RWMutex
	key       string
	payload   *models.CachePayload
	expiresAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

// NewLocalSlot creates an empty slot. A non-positive ttl uses DefaultLocalTTL.
func NewLocalSlot(ttl time.Duration) *LocalSlot {
	if ttl <= 0 {
		ttl = DefaultLocalTTL
	}
	return &LocalSlot{ttl: ttl, now: time.Now}
}

// Get returns the payload for key if the slot holds it and it has not expired.
func (s *LocalSlot) Get(key string) (*models.CachePayload, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.payload == nil || s.key != key {
		return nil, false
	}
	if !s.now().Before(s.expiresAt) {
		return nil, false
	}
	return s.payload, true
}

// Set replaces the slot contents, starting a fresh TTL.
func (s *LocalSlot) Set(key string, payload *models.CachePayload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.key = key
	s.payload = payload
	s.expiresAt = s.now().Add(s.ttl)
}

// Clear empties the slot.
func (s *LocalSlot) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.key = ""
	s.payload = nil
	s.expiresAt = time.Time{}
}

// TTL returns the slot's time-to-live.
func (s *LocalSlot) TTL() time.Duration {
	return s.ttl
}
