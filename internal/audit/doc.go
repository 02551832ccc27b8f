// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

// Package audit records authentication and authorization decisions.
//
// Every client-token check, login attempt, bearer token check and role
// decision produces one entry of (action, result, source). Entries are buffered and written in batches by
// a background service so that recording never blocks a request on the
// database:
//
//	Logger.Record() -> buffer (chan) -> Logger.Serve (suture service) -> Store
//
// When the buffer is full the entry is written synchronously instead of
// being dropped. Close drains whatever is still buffered.
//
// Source is the caller's remote address, truncated to 46 characters (the
// longest textual IPv6 form, including an embedded IPv4 suffix).
package audit
