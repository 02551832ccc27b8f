// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

// Package testinfra starts Docker containers for integration tests using
// testcontainers-go. Everything here is behind the integration build tag:
//
//	go test -tags integration ./...
//
// # Postgres
//
//	func TestPostgresStore(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    pg, err := testinfra.NewPostgresContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    testinfra.CleanupContainer(t, pg)
//	    // open the store with driver "postgres" and pg.DSN
//	}
//
// # NATS
//
// NewNATSContainer starts a JetStream-enabled server for the nats event
// backend.
package testinfra
