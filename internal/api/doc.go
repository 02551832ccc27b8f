// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

/*
Package api exposes the ThereIWas HTTP surface on a chi router.

Routes (all under /v1):

	POST /v1/owntracks   OwnTracks HTTP mode, client_id/client_secret query auth
	POST /v1/auth/token  username/password login, returns an EdDSA JWT
	GET  /v1/positions   latest positions of a device, JWT + positions:read
	GET  /v1/positions/stream
	                     WebSocket of newly stored locations, same auth
	GET  /v1/health      204 when the store answers a ping, 503 otherwise
	GET  /metrics        Prometheus exposition

Successful ingestion answers 204 No Content with an empty body. Every error
is written as a models.APIResponse envelope carrying a stable code, a fixed
message and the request ID; internal error text never reaches the client.
*/
package api
