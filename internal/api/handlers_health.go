// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package api

import (
	"context"
	"net/http"

	"github.com/tomtom215/thereiwas/internal/logging"
)

// Health answers 204 when the store responds to a ping within the health
// timeout and 503 otherwise.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.pinger == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Service unavailable")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.healthTimeout)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Health check failed")
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Service unavailable")
		return
	}
	noContent(w)
}
