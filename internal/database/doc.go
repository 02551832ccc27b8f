// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

/*
Package database is the relational store behind ThereIWas.

Three backends share one schema and one set of queries: DuckDB (default,
embedded), Postgres through pgx's database/sql driver, and SQLite through
modernc.org/sqlite. Queries use ? placeholders and are rebound for
Postgres.

Ingestion works on a Session, a single pooled connection held for one
request and released on every path:

	sess, err := db.Acquire(ctx) // bounded by database.acquire_timeout
	if err != nil {
	    // errors.Is(err, database.ErrUnavailable) on timeout
	}
	defer sess.Release()
	id, err := sess.InsertLocation(ctx, draft)

Errors are wrapped with a sentinel (ErrUniqueViolation, ErrConflict,
ErrUnavailable, ErrNotFound) so callers can branch with errors.Is while the
driver error stays available for logs.

Schema changes are versioned in schema_migrations and applied by New.
*/
package database
