// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package models

// Role names used in JWT claims and the authorization policy.
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// ClientToken is the credential an OwnTracks client sends as query
// parameters. Its ID doubles as the reporting device of every location the
// client submits.
type ClientToken struct {
	ID          int64  `json:"id"`
	Client      string `json:"client"` // UUID, max 36 chars
	Secret      string `json:"-"`      // max 10 chars
	Description string `json:"description,omitempty"`
}

// User is an account allowed to log in and read positions.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
}

// LoginRequest is the body of POST /v1/auth/token.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

// TokenResponse is returned after a successful login.
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
}
