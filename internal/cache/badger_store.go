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

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/tomtom215/happening/internal/logging"
	"github.com/tomtom215/happening/internal/models"
)

// Key prefix for payloads stored in BadgerDB.
const badgerKeyPrefix = "payload:"

// BadgerConfig configures the embedded BadgerDB backend.
type BadgerConfig struct {
	// Path is the data directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps all data in RAM (tests, ephemeral containers).
	InMemory bool

	// GCInterval is how often the value log GC runs (default 5m).
	GCInterval time.Duration

	// GCDiscardRatio is passed to RunValueLogGC (default 0.5).
	GCDiscardRatio float64
}

// BadgerStore is a SharedStore backed by an embedded BadgerDB. Entries carry a
// per-entry TTL, so expired payloads disappear without a sweeper.
type BadgerStore struct {
	db  *badger.DB
	cfg BadgerConfig
}

// OpenBadgerStore opens (or creates) the database described by cfg.
func OpenBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	if cfg.GCInterval <= 0 {
		cfg.GCInterval = 5 * time.Minute
	}
	if cfg.GCDiscardRatio <= 0 || cfg.GCDiscardRatio >= 1 {
		cfg.GCDiscardRatio = 0.5
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("badger store: path is required unless in-memory")
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.Logger = badgerLogger{logger: logging.WithComponent("badger")}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db, cfg: cfg}, nil
}

// NewBadgerStore wraps an already-open database.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db, cfg: BadgerConfig{GCInterval: 5 * time.Minute, GCDiscardRatio: 0.5}}
}

// Get implements SharedStore.
func (s *BadgerStore) Get(_ context.Context, key string) (*models.CachePayload, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("badger get: %w", err)
	}
	return decodePayload(data)
}

// Set implements SharedStore.
func (s *BadgerStore) Set(_ context.Context, key string, payload *models.CachePayload, ttl time.Duration) error {
	data, err := encodePayload(payload)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = DefaultSharedTTL
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(badgerKeyPrefix+key), data).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("badger set: %w", err)
	}
	return nil
}

// Ping implements SharedStore.
func (s *BadgerStore) Ping(context.Context) error {
	if s.db.IsClosed() {
		return fmt.Errorf("badger store is closed")
	}
	return nil
}

// Name implements SharedStore.
func (s *BadgerStore) Name() string { return BackendBadger }

// Close implements SharedStore.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// RunGC runs value log GC until nothing is left to rewrite.
func (s *BadgerStore) RunGC() error {
	for {
		err := s.db.RunValueLogGC(s.cfg.GCDiscardRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// GCService returns a suture.Service that runs RunGC on the configured interval.
func (s *BadgerStore) GCService() *BadgerGCService {
	return &BadgerGCService{store: s}
}

// BadgerGCService periodically reclaims value log space.
type BadgerGCService struct {
	store *BadgerStore
}

// Serve implements suture.Service.
func (g *BadgerGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(g.store.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := g.store.RunGC(); err != nil {
				logging.Warn().Err(err).Msg("Badger value log GC failed")
			}
		}
	}
}

func (g *BadgerGCService) String() string {
	return "badger-gc"
}

// badgerLogger routes badger's printf-style logging into zerolog.
type badgerLogger struct {
	logger zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Trace().Msgf(strings.TrimSpace(format), args...)
}
