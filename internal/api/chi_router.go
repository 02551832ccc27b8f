// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/thereiwas/internal/auth"
	"github.com/tomtom215/thereiwas/internal/authz"
	"github.com/tomtom215/thereiwas/internal/middleware"
)

// Router wires handlers and middleware into a chi router.
type Router struct {
	handler       *Handler
	auth          *auth.Middleware
	authz         *authz.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router. chiConfig may be nil for defaults.
func NewRouter(handler *Handler, authMW *auth.Middleware, authzMW *authz.Middleware, chiConfig *ChiMiddlewareConfig) *Router {
	return &Router{
		handler:       handler,
		auth:          authMW,
		authz:         authzMW,
		chiMiddleware: NewChiMiddleware(chiConfig),
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// RealIP runs before anything that reads RemoteAddr (rate limits, audit source).
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		r.Use(router.chiMiddleware.BodyLimit())

		r.Get("/health", router.handler.Health)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())

			r.With(router.auth.RequireClientToken).Post("/owntracks", router.handler.OwnTracks)
			r.Post("/auth/token", router.handler.Login)
			r.With(
				router.auth.RequireJWT,
				router.authz.Authorize(authz.ObjectPositions, authz.ActionRead),
			).Get("/positions", router.handler.Positions)
			if router.handler.stream != nil {
				r.With(
					router.auth.RequireJWT,
					router.authz.Authorize(authz.ObjectPositions, authz.ActionRead),
				).Get("/positions/stream", router.handler.PositionStream)
			}
		})
	})

	return r
}
