// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

/*
Package websocket streams stored locations to connected clients.

A Bridge subscribes to location.stored events and hands them to a Hub, which
fans each one out to every Client watching the reporting device. Both run as
suture services. Server upgrades authenticated HTTP requests into clients.

Frames are JSON:

	{"type": "location", "data": {"event_id": "...", "lat": 52.52, ...}}

Delivery is best effort. A full hub buffer drops the broadcast and a client
whose send buffer is full is disconnected.

Only the memory events backend can be subscribed to in process, so the
stream is served only when that backend is configured.
*/
package websocket
