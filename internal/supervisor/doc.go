// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

// Package supervisor runs the long-lived parts of ThereIWas under a
// thejerf/suture/v4 tree:
//
//	thereiwas (root)
//	├── background-layer: audit logger, login limiter cleanup
//	└── api-layer: HTTP server
//
// Services restart with backoff when they fail. Supervisor events are
// logged through sutureslog on the zerolog-backed slog bridge. Layers stop
// concurrently when the context passed to Serve is canceled; callers close
// the audit logger after Serve returns so entries recorded during HTTP
// shutdown are still written.
package supervisor
