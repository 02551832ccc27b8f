// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package api

import (
	"net/http"

	"github.com/tomtom215/thereiwas/internal/logging"
	"github.com/tomtom215/thereiwas/internal/validation"
)

// PositionStream upgrades to a WebSocket that receives every location
// stored from now on, optionally for a single device.
//
//	GET /v1/positions/stream?device=3
func (h *Handler) PositionStream(w http.ResponseWriter, r *http.Request) {
	req, badField := parseStreamRequest(r)
	if badField != "" {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, badField+" must be an integer")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, verr.First().Error())
		return
	}

	// Accept writes its own response when the upgrade fails
	if err := h.stream.Accept(w, r, req.Device); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Position stream not established")
	}
}
