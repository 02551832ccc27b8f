// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

/*
Package events publishes a location.stored event after each location is
committed.

Backends:
  - none: events are discarded
  - memory: in-process watermill GoChannel, useful for tests and for
    embedding consumers in the same binary
  - nats: NATS JetStream via watermill-nats (requires -tags=nats)

Publishing is best effort. A failed publish never fails the ingest
request; it is logged and counted in thereiwas_events_published_total.
Publishes go through a circuit breaker so an unreachable broker does not
add latency to every request.
*/
package events
