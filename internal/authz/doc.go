// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

// Package authz decides what an authenticated user may do, using a Casbin
// RBAC model. The model and policy are embedded:
//
//	p, viewer, positions, read
//	g, admin, viewer
//
// The subject is the role claim of the caller's JWT. Roles not named in
// the policy are denied everything. Each decision is audited.
package authz
