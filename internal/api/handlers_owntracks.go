// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package api

import (
	"io"
	"net/http"

	"github.com/tomtom215/thereiwas/internal/auth"
	"github.com/tomtom215/thereiwas/internal/ingest"
	"github.com/tomtom215/thereiwas/internal/logging"
)

// OwnTracks accepts one message from an OwnTracks client in HTTP mode.
// The route must be guarded by auth.Middleware.RequireClientToken; the
// authenticated token's ID is the reporting device.
//
// Success is 204 No Content. Failures map through the ingest taxonomy.
func (h *Handler) OwnTracks(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.ClientTokenFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusForbidden, ErrCodeForbidden, "Forbidden")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		if isBodyTooLarge(err) {
			respondError(w, r, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "Request body too large")
			return
		}
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to read request body")
		kind := ingest.KindRequestBodyParsing
		respondError(w, r, kind.HTTPStatus(), kind.Code(), kind.Message())
		return
	}

	if _, err := h.dispatcher.Dispatch(r.Context(), token.ID, body); err != nil {
		kind := ingest.KindOf(err)
		respondError(w, r, kind.HTTPStatus(), kind.Code(), kind.Message())
		return
	}

	noContent(w)
}
