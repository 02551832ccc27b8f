// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package models

import "time"

// AuditEntry is one authentication decision as written to audit_log.
type AuditEntry struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Result    string    `json:"result"`
	Source    string    `json:"source"` // remote address, at most 46 chars
	CreatedAt time.Time `json:"created_at"`
}
