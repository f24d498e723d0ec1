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

	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/happening/internal/logging"
	"github.com/tomtom215/happening/internal/models"
)

// NATSConfig configures the JetStream KeyValue backend.
type NATSConfig struct {
	// URL of the NATS server. Ignored when a connection is passed directly.
	URL string

	// Bucket is the KeyValue bucket name.
	Bucket string

	// TTL is the bucket-wide max age; every key expires this long after its
	// last write.
	TTL time.Duration

	// Replicas for clustered deployments (default 1).
	Replicas int

	// MemoryStorage keeps the bucket in memory instead of on disk.
	MemoryStorage bool
}

// DefaultNATSConfig returns the single-node defaults.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:      natsgo.DefaultURL,
		Bucket:   "happening-events",
		TTL:      DefaultSharedTTL,
		Replicas: 1,
	}
}

// NATSStore is a SharedStore backed by a NATS JetStream KeyValue bucket.
//
// The bucket TTL applies to every key; the ttl argument to Set is ignored.
// Keys are rewritten by kvKey: "a:b:c" becomes "a.b.c" and characters the
// KeyValue alphabet rejects, such as spaces in a region name, are escaped.
type NATSStore struct {
	nc     *natsgo.Conn
	kv     jetstream.KeyValue
	ownsNC bool
}

// DialNATSStore connects to cfg.URL and opens the bucket. The store owns the
// connection and closes it on Close.
func DialNATSStore(ctx context.Context, cfg NATSConfig) (*NATSStore, error) {
	nc, err := natsgo.Connect(cfg.URL,
		natsgo.Name("happening-cache"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2*time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logging.Warn().Err(err).Msg("NATS cache connection lost")
			}
		}),
		natsgo.ReconnectHandler(func(c *natsgo.Conn) {
			logging.Info().Str("url", c.ConnectedUrlRedacted()).Msg("NATS cache connection restored")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	store, err := NewNATSStore(ctx, nc, cfg)
	if err != nil {
		nc.Close()
		return nil, err
	}
	store.ownsNC = true
	return store, nil
}

// NewNATSStore opens (creating or updating) the bucket on an existing connection.
func NewNATSStore(ctx context.Context, nc *natsgo.Conn, cfg NATSConfig) (*NATSStore, error) {
	if cfg.Bucket == "" {
		cfg.Bucket = DefaultNATSConfig().Bucket
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSharedTTL
	}
	if cfg.Replicas <= 0 {
		cfg.Replicas = 1
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	storage := jetstream.FileStorage
	if cfg.MemoryStorage {
		storage = jetstream.MemoryStorage
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      cfg.Bucket,
		Description: "Aggregated event payloads",
		History:     1,
		TTL:         cfg.TTL,
		Storage:     storage,
		Replicas:    cfg.Replicas,
	})
	if err != nil {
		return nil, fmt.Errorf("create KeyValue bucket %q: %w", cfg.Bucket, err)
	}

	logging.Info().
		Str("bucket", cfg.Bucket).
		Dur("ttl", cfg.TTL).
		Msg("NATS KeyValue cache bucket ready")

	return &NATSStore{nc: nc, kv: kv}, nil
}

// Get implements SharedStore.
func (s *NATSStore) Get(ctx context.Context, key string) (*models.CachePayload, error) {
	entry, err := s.kv.Get(ctx, kvKey(key))
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("kv get: %w", err)
	}
	return decodePayload(entry.Value())
}

// Set implements SharedStore.
func (s *NATSStore) Set(ctx context.Context, key string, payload *models.CachePayload, _ time.Duration) error {
	data, err := encodePayload(payload)
	if err != nil {
		return err
	}
	if _, err := s.kv.Put(ctx, kvKey(key), data); err != nil {
		return fmt.Errorf("kv put: %w", err)
	}
	return nil
}

// Ping implements SharedStore.
func (s *NATSStore) Ping(ctx context.Context) error {
	if !s.nc.IsConnected() {
		return fmt.Errorf("nats: not connected (%s)", s.nc.Status())
	}
	if _, err := s.kv.Status(ctx); err != nil {
		return fmt.Errorf("kv status: %w", err)
	}
	return nil
}

// Name implements SharedStore.
func (s *NATSStore) Name() string { return BackendNATS }

// Close implements SharedStore.
func (s *NATSStore) Close() error {
	if s.ownsNC {
		s.nc.Close()
	}
	return nil
}

// kvKey maps an aggregation key onto the KeyValue key alphabet
// [-/_=.a-zA-Z0-9]. Colons become token separators; any other byte outside
// [-/_a-zA-Z0-9] is written as =XX hex, and an empty token as "=", so distinct
// keys never collide.
func kvKey(key string) string {
	tokens := strings.Split(key, ":")
	for i, tok := range tokens {
		tokens[i] = escapeKVToken(tok)
	}
	return strings.Join(tokens, ".")
}

func escapeKVToken(tok string) string {
	if tok == "" {
		return "="
	}
	var b strings.Builder
	for i := 0; i < len(tok); i++ {
		c := tok[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '-', c == '/', c == '_':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "=%02X", c)
		}
	}
	return b.String()
}
