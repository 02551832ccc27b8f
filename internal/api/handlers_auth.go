// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/thereiwas/internal/auth"
	"github.com/tomtom215/thereiwas/internal/logging"
	"github.com/tomtom215/thereiwas/internal/metrics"
	"github.com/tomtom215/thereiwas/internal/models"
	"github.com/tomtom215/thereiwas/internal/validation"
)

// Login exchanges a username and password for an access token.
//
//	POST /v1/auth/token {"username": "...", "password": "..."}
//	200 {"accessToken": "..."}
//
// The success body is the bare token object OwnTracks frontends expect;
// errors use the usual envelope. Attempts are throttled per source address before the body is read.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	source := auth.Source(r)

	if h.throttle != nil && !h.throttle.Allow(source) {
		metrics.APIRateLimitHits.WithLabelValues("login").Inc()
		w.Header().Set("Retry-After", "60")
		respondError(w, r, http.StatusTooManyRequests, ErrCodeTooManyRequests, "Too many login attempts")
		return
	}

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if isBodyTooLarge(err) {
			respondError(w, r, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "Request body too large")
			return
		}
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, verr.First().Error())
		return
	}

	token, err := h.login.Login(r.Context(), req.Username, req.Password, source)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "Invalid username or password")
		return
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Login failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Login could not be completed")
		return
	}

	writeJSON(w, http.StatusOK, models.TokenResponse{AccessToken: token})
}
