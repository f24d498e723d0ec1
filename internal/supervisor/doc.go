// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

/*
Package supervisor provides process supervision for Happening using suture v4.

# Overview

Long-running components are organized into two layers:

	RootSupervisor ("happening")
	├── InfraSupervisor ("infra-layer")
	│   ├── EmbeddedServer        (CACHE_BACKEND=nats, NATS_EMBEDDED=true)
	│   ├── BadgerGCService       (CACHE_BACKEND=badger)
	│   └── ratelimit.Sweeper
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

The infra layer only supports request handling. If it enters backoff the API
layer keeps serving; the cache hierarchy treats an unreachable shared tier
as a miss.

# Usage

	tree, err := supervisor.NewSupervisorTree(slogger, supervisor.TreeConfigFrom(cfg.Supervisor))
	if err != nil {
	    return err
	}
	tree.AddInfraService(ratelimit.NewSweeper(cfg.RateLimit.SweepInterval, limiter))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, hierarchy.Wait))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = tree.Serve(ctx)

# Failure Handling

Each layer counts failures with exponential decay (FailureDecay seconds).
When the count passes FailureThreshold the layer waits FailureBackoff before
restarting its services. A service that returns nil is not restarted.

Supervisor events are logged through sutureslog, so the tree takes a
*slog.Logger; logging.NewSlogLogger bridges it onto the zerolog output.
*/
package supervisor
