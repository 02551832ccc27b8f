// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

// Package auth authenticates the two kinds of callers ThereIWas has.
//
// OwnTracks clients send client_id and client_secret as query parameters.
// The matching client token's id becomes the reporting device of every
// location the client submits. See ClientAuthenticator and
// Middleware.RequireClientToken.
//
// Users log in with username and password (bcrypt) and receive an EdDSA
// signed JWT used as a Bearer token on the read API. See UserAuthenticator,
// TokenManager and Middleware.RequireJWT. Login attempts are throttled per
// source address by LoginLimiter.
//
// Every authentication decision is reported to an audit.Sink.
package auth
