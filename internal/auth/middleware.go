// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package auth

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/tomtom215/thereiwas/internal/audit"
	"github.com/tomtom215/thereiwas/internal/logging"
	"github.com/tomtom215/thereiwas/internal/models"
)

type contextKey string

const (
	clientTokenContextKey contextKey = "client_token"
	claimsContextKey      contextKey = "claims"
)

// Error codes written by the middleware.
const (
	CodeForbidden    = "FORBIDDEN"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeDatabase     = "DATABASE_ERROR"
)

// ErrorResponder writes an error response in the API's envelope.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, status int, code, message string)

// Middleware guards routes with client-token or JWT authentication.
type Middleware struct {
	clients *ClientAuthenticator
	tokens  *TokenManager
	audit   audit.Sink
	respond ErrorResponder
}

// NewMiddleware creates a Middleware. Either authenticator may be nil if
// the matching Require method is never used. sink receives bearer token
// decisions and may be nil.
func NewMiddleware(clients *ClientAuthenticator, tokens *TokenManager, sink audit.Sink, respond ErrorResponder) *Middleware {
	if sink == nil {
		sink = audit.Discard
	}
	if respond == nil {
		respond = func(w http.ResponseWriter, _ *http.Request, status int, _, message string) {
			http.Error(w, message, status)
		}
	}
	return &Middleware{clients: clients, tokens: tokens, audit: sink, respond: respond}
}

// RequireClientToken authenticates client_id and client_secret query
// parameters. Failure is 403; a storage failure is 500.
func (m *Middleware) RequireClientToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		token, err := m.clients.Authenticate(r.Context(), q.Get("client_id"), q.Get("client_secret"), Source(r))
		switch {
		case err == nil:
		case errors.Is(err, ErrNoCredentials), errors.Is(err, ErrInvalidCredentials):
			logging.Ctx(r.Context()).Debug().Err(err).Msg("Client token rejected")
			m.respond(w, r, http.StatusForbidden, CodeForbidden, "Forbidden")
			return
		default:
			logging.Ctx(r.Context()).Error().Err(err).Msg("Client token lookup failed")
			m.respond(w, r, http.StatusInternalServerError, CodeDatabase, "Authentication could not be completed")
			return
		}

		ctx := context.WithValue(r.Context(), clientTokenContextKey, token)
		ctx = logging.ContextWithDeviceID(ctx, token.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireJWT validates a Bearer token from the Authorization header.
// Every decision is audited as jwt_authentication.
func (m *Middleware) RequireJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := bearerToken(r.Header.Get("Authorization"))
		if err != nil {
			m.audit.Record(r.Context(), audit.ActionJWTAuthentication, audit.ResultFailed, Source(r))
			m.respond(w, r, http.StatusUnauthorized, CodeUnauthorized, "Missing or malformed bearer token")
			return
		}
		claims, err := m.tokens.Validate(raw)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("Token validation failed")
			m.audit.Record(r.Context(), audit.ActionJWTAuthentication, audit.ResultFailed, Source(r))
			m.respond(w, r, http.StatusUnauthorized, CodeUnauthorized, "Invalid token")
			return
		}
		m.audit.Record(r.Context(), audit.ActionJWTAuthentication, audit.ResultSuccessful, Source(r))
		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrNoCredentials
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(token), nil
}

// ClientTokenFromContext returns the token set by RequireClientToken.
func ClientTokenFromContext(ctx context.Context) (models.ClientToken, bool) {
	token, ok := ctx.Value(clientTokenContextKey).(models.ClientToken)
	return token, ok
}

// ClaimsFromContext returns the claims set by RequireJWT.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok
}

// WithClaims stores claims in ctx.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// Source returns the caller address recorded in audit entries. Behind
// chi's RealIP middleware RemoteAddr already holds the client address.
func Source(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
