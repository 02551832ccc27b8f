// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

/*
Package middleware provides infrastructure HTTP middleware shared by every
route: request ID propagation, Prometheus instrumentation and access logging.
All middleware uses the standard func(http.Handler) http.Handler shape so it
composes with chi:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog)

Authentication middleware lives in internal/auth and authorization in
internal/authz.
*/
package middleware
