// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

/*
Package main is the entry point for the ThereIWas server.

ThereIWas receives location reports from OwnTracks clients in HTTP mode,
stores them idempotently, links them to the Wi-Fi access point they were
reported from, and serves the latest positions per device to logged-in
users.

# Application Architecture

	RootSupervisor ("thereiwas")
	├── BackgroundSupervisor ("background-layer")
	│   ├── Audit logger (authentication decisions -> audit_log)
	│   ├── Login limiter cleanup
	│   ├── Position stream hub (memory events backend only)
	│   └── Position stream bridge (location.stored -> hub)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router, /v1)

Component initialization order:

 1. Configuration: koanf with struct defaults, YAML file, environment
 2. Logging: zerolog with JSON/console output modes
 3. Database: DuckDB (default), PostgreSQL or SQLite, migrations applied
 4. Bootstrap: optional initial client token and user
 5. Auth: EdDSA token manager, client and user authenticators, casbin
 6. Ingest: guarded store, access-point resolver, dispatcher, events
 7. Supervisor Tree and HTTP server

# Configuration

Core environment variables:

	DATABASE_DRIVER=duckdb                      # duckdb, postgres, sqlite
	DATABASE_URL=/data/thereiwas.duckdb         # DSN or file path
	HTTP_PORT=3000
	THEREIWAS_LOGGING_LEVEL=info                # trace, debug, info, warn, error
	THEREIWAS_JWT_PRIVATE_KEY_FILE=/keys/jwt.pem
	THEREIWAS_JWT_PUBLIC_KEY_FILE=/keys/jwt.pub.pem
	THEREIWAS_BOOTSTRAP_CLIENT_ID=<uuid>
	THEREIWAS_BOOTSTRAP_CLIENT_SECRET=<max 10 chars>
	THEREIWAS_BOOTSTRAP_ADMIN_USERNAME=admin
	THEREIWAS_BOOTSTRAP_ADMIN_PASSWORD=<password>
	EVENTS_BACKEND=memory                       # none, memory, nats
	NATS_URL=nats://127.0.0.1:4222
	EVENTS_STREAM_ENABLED=true                  # GET /v1/positions/stream
	THEREIWAS_CLIENT_CACHE_TTL=30s              # 0 disables the client token cache

# Build Tags

	go build ./cmd/server                # memory and none event backends
	go build -tags nats ./cmd/server     # adds the NATS event backend

# Signal Handling

SIGINT and SIGTERM cancel the supervisor tree. The HTTP server stops
accepting connections and drains in-flight requests within
server.shutdown_timeout, then the audit logger flushes pending entries and
the database is closed.
*/
package main
