// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/thereiwas/internal/audit"
	"github.com/tomtom215/thereiwas/internal/auth"
	"github.com/tomtom215/thereiwas/internal/models"
)

func TestMiddleware_Authorize(t *testing.T) {
	e, err := NewEnforcer()
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}

	var gotCode string
	respond := func(w http.ResponseWriter, _ *http.Request, status int, code, _ string) {
		gotCode = code
		w.WriteHeader(status)
	}
	m := NewMiddleware(e, nil, respond)

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := m.Authorize(ObjectPositions, ActionRead)(ok)

	tests := []struct {
		name       string
		claims     *auth.Claims
		wantStatus int
		wantCode   string
	}{
		{"no claims", nil, http.StatusForbidden, auth.CodeForbidden},
		{"viewer", claimsFor("bob", models.RoleViewer), http.StatusOK, ""},
		{"admin", claimsFor("alice", models.RoleAdmin), http.StatusOK, ""},
		{"unknown role", claimsFor("eve", "guest"), http.StatusForbidden, auth.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotCode = ""
			req := httptest.NewRequest(http.MethodGet, "/v1/positions", nil)
			if tt.claims != nil {
				req = req.WithContext(auth.WithClaims(req.Context(), tt.claims))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if gotCode != tt.wantCode {
				t.Errorf("code = %q, want %q", gotCode, tt.wantCode)
			}
		})
	}
}

func TestMiddleware_DefaultResponder(t *testing.T) {
	e, err := NewEnforcer()
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	m := NewMiddleware(e, nil, nil)
	handler := m.Authorize(ObjectPositions, ActionRead)(http.NotFoundHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/positions", nil))
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestMiddleware_AuthorizeAudits(t *testing.T) {
	e, err := NewEnforcer()
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}

	tests := []struct {
		name   string
		claims *auth.Claims
		result string
	}{
		{"allowed", claimsFor("bob", models.RoleViewer), "successful"},
		{"denied role", claimsFor("eve", "guest"), "failed"},
		{"no claims", nil, "failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := audit.NewMemoryStore(10)
			logger := audit.NewLogger(store, audit.Config{BufferSize: 1})
			if err := logger.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}
			handler := NewMiddleware(e, logger, nil).Authorize(ObjectPositions, ActionRead)(http.NotFoundHandler())

			req := httptest.NewRequest(http.MethodGet, "/v1/positions", nil)
			req.RemoteAddr = "203.0.113.50:9000"
			if tt.claims != nil {
				req = req.WithContext(auth.WithClaims(req.Context(), tt.claims))
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			entries := store.Entries()
			if len(entries) != 1 {
				t.Fatalf("audit entries = %+v, want 1", entries)
			}
			if got := entries[0]; got.Action != "authorization" || got.Result != tt.result || got.Source != "203.0.113.50" {
				t.Errorf("audit entry = %+v, want authorization/%s from 203.0.113.50", got, tt.result)
			}
		})
	}
}

func claimsFor(username, role string) *auth.Claims {
	return &auth.Claims{
		Role:             role,
		RegisteredClaims: jwt.RegisteredClaims{Subject: username},
	}
}
