// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

/*
Package models defines the records that flow between the HTTP layer, the
ingestion pipeline and the store.

Key Components:

  - LocationDraft / StoredLocation: one OwnTracks position report
  - AccessPointEvidence / AccessPointSighting: Wi-Fi access point observed
    with a report, and its stored form
  - LocationToAccessPoint: association between the two
  - ReportTrigger: closed enumeration of OwnTracks trigger codes
  - StatusReport: OwnTracks status message (logged, never stored)
  - ClientToken, User, AuditEntry: authentication records
  - APIResponse: JSON envelope used by all endpoints

Invariants enforced by the store:

  - (reporting device, measurement time) is unique across locations
  - (BSSID, SSID) is unique across access points
  - association rows exist only for locations that carried a BSSID
*/
package models
