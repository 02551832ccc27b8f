// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package api

import (
	"net/http"
	"strconv"
)

// Read path bounds.
const (
	DefaultPositionsLimit = 50
	MaxPositionsLimit     = 1000
)

// PositionsRequest is the query of GET /v1/positions.
type PositionsRequest struct {
	Device int64 `json:"device" validate:"required,gt=0"`
	Limit  int   `json:"limit" validate:"min=1,max=1000"`
}

// parsePositionsRequest reads device and limit. A parameter that is not
// an integer yields the name of the offending field.
func parsePositionsRequest(r *http.Request) (PositionsRequest, string) {
	q := r.URL.Query()
	req := PositionsRequest{Limit: DefaultPositionsLimit}

	if raw := q.Get("device"); raw != "" {
		device, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return req, "device"
		}
		req.Device = device
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return req, "limit"
		}
		req.Limit = limit
	}
	return req, ""
}

// StreamRequest is the query of GET /v1/positions/stream. A zero device
// streams every device.
type StreamRequest struct {
	Device int64 `json:"device" validate:"gte=0"`
}

func parseStreamRequest(r *http.Request) (StreamRequest, string) {
	var req StreamRequest
	if raw := r.URL.Query().Get("device"); raw != "" {
		device, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return req, "device"
		}
		req.Device = device
	}
	return req, ""
}
