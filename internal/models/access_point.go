// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package models

import "time"

// AccessPointEvidence is the optional WiFi information carried by a location
// payload. BSSID is always in canonical upper-case colon form.
type AccessPointEvidence struct {
	BSSID string
	SSID  string // may be empty
}

// AccessPointSighting is a deduplicated WiFi access point.
type AccessPointSighting struct {
	ID       int64      `json:"id"`
	BSSID    string     `json:"bssid"`
	SSID     string     `json:"ssid"`
	LastSeen *time.Time `json:"last_seen,omitempty"`
}

// LocationToAccessPoint links a stored location to an access point seen with it.
type LocationToAccessPoint struct {
	LocationID    int64 `json:"location_id"`
	AccessPointID int64 `json:"wifi_access_point_id"`
}
