// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/thereiwas/internal/logging"
	"github.com/tomtom215/thereiwas/internal/models"
	"github.com/tomtom215/thereiwas/internal/validation"
)

// Positions returns the most recent locations of a device, newest first.
//
//	GET /v1/positions?device=3&limit=10
func (h *Handler) Positions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, badField := parsePositionsRequest(r)
	if badField != "" {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, badField+" must be an integer")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, verr.First().Error())
		return
	}

	stored, err := h.positions.LatestLocations(r.Context(), req.Device, req.Limit)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Int64("device", req.Device).Msg("Failed to read positions")
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabaseError, "Positions could not be read")
		return
	}

	positions := make([]models.PositionResponse, len(stored))
	for i, loc := range stored {
		positions[i] = loc.Position()
	}

	respondSuccess(w, start, models.PositionsResponse{
		Device:    req.Device,
		Count:     len(positions),
		Positions: positions,
	})
}
