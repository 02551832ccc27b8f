// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package auth

import "errors"

var (
	// ErrNoCredentials means the request carried no credentials at all.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidCredentials means the credentials did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken means a bearer token failed validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrRateLimited means the caller exceeded the login rate.
	ErrRateLimited = errors.New("too many login attempts")
)
