// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package authz

import (
	"net/http"

	"github.com/tomtom215/thereiwas/internal/audit"
	"github.com/tomtom215/thereiwas/internal/auth"
	"github.com/tomtom215/thereiwas/internal/logging"
)

// Middleware provides authorization middleware using Casbin.
type Middleware struct {
	enforcer *Enforcer
	audit    audit.Sink
	respond  auth.ErrorResponder
}

// NewMiddleware creates a new authorization middleware. sink receives
// every allow and deny decision and may be nil.
func NewMiddleware(enforcer *Enforcer, sink audit.Sink, respond auth.ErrorResponder) *Middleware {
	if sink == nil {
		sink = audit.Discard
	}
	if respond == nil {
		respond = func(w http.ResponseWriter, _ *http.Request, status int, _, message string) {
			http.Error(w, message, status)
		}
	}
	return &Middleware{enforcer: enforcer, audit: sink, respond: respond}
}

// Authorize requires the JWT role to allow action on object. It must run
// after auth.Middleware.RequireJWT.
func (m *Middleware) Authorize(object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.ClaimsFromContext(r.Context())
			if !ok {
				m.audit.Record(r.Context(), audit.ActionAuthorization, audit.ResultFailed, auth.Source(r))
				m.respond(w, r, http.StatusForbidden, auth.CodeForbidden, "Forbidden: no authentication context")
				return
			}

			allowed, err := m.enforcer.Enforce(claims.Role, object, action)
			if err != nil {
				logging.Ctx(r.Context()).Error().Err(err).Msg("Authorization error")
				m.respond(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
				return
			}
			m.audit.Record(r.Context(), audit.ActionAuthorization, audit.ResultOf(allowed), auth.Source(r))
			if !allowed {
				logging.Ctx(r.Context()).Info().
					Str("user", claims.Username()).
					Str("role", claims.Role).
					Str("object", object).
					Str("action", action).
					Msg("Authorization denied")
				m.respond(w, r, http.StatusForbidden, auth.CodeForbidden, "Forbidden: insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
