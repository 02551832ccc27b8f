// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package models

import "time"

// APIResponse is the envelope for every JSON body the API writes.
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "data": null,
//	  "error": {
//	    "code": "LOCATION_ALREADY_KNOWN",
//	    "message": "Location already known",
//	    "request_id": "3f1c..."
//	  },
//	  "metadata": {"timestamp": "2026-10-14T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata accompanies every response.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError carries a stable machine code and a fixed human message.
// Internal error text is never placed here.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// PositionsResponse is the data of GET /v1/positions.
type PositionsResponse struct {
	Device    int64              `json:"device"`
	Count     int                `json:"count"`
	Positions []PositionResponse `json:"positions"`
}
