// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

// Package services adapts blocking servers to suture.Service so they can run
// inside the supervisor tree.
//
// Services that already expose Serve(ctx) error, such as the Badger GC loop,
// the embedded NATS server and the rate limit sweeper, are added to the tree
// directly and need no wrapper here.
package services
