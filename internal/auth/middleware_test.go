// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tomtom215/thereiwas/internal/audit"
)

func okHandler(t *testing.T, check func(r *http.Request)) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireClientToken(t *testing.T) {
	accounts := newFakeAccounts(t)

	tests := []struct {
		name   string
		query  string
		err    error
		status int
	}{
		{"valid", "client_id=" + testClientID + "&client_secret=" + testSecret, nil, http.StatusNoContent},
		{"wrong secret", "client_id=" + testClientID + "&client_secret=wrong", nil, http.StatusForbidden},
		{"no params", "", nil, http.StatusForbidden},
		{"storage down", "client_id=" + testClientID + "&client_secret=" + testSecret, errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts.err = tt.err
			sink := &recordingSink{}
			m := NewMiddleware(NewClientAuthenticator(accounts, sink), nil, nil, nil)

			var device int64
			h := m.RequireClientToken(okHandler(t, func(r *http.Request) {
				token, ok := ClientTokenFromContext(r.Context())
				if !ok {
					t.Error("client token missing from context")
				}
				device = token.ID
			}))

			req := httptest.NewRequest(http.MethodPost, "/v1/owntracks?"+tt.query, nil)
			req.RemoteAddr = "192.0.2.10:51234"
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status == http.StatusNoContent && device != 42 {
				t.Errorf("device = %d, want 42", device)
			}
			if tt.err == nil {
				records := sink.all()
				if len(records) != 1 || records[0].source != "192.0.2.10" {
					t.Errorf("audit records = %+v", records)
				}
			}
		})
	}
}

func TestRequireJWT(t *testing.T) {
	tokens := newTestManager(t)
	valid, err := tokens.Issue("alice", "viewer")
	if err != nil {
		t.Fatal(err)
	}
	tokens.now = func() time.Time { return issuedAt.Add(time.Minute) }

	var (
		gotStatus int
		gotCode   string
	)
	respond := func(w http.ResponseWriter, _ *http.Request, status int, code, _ string) {
		gotStatus, gotCode = status, code
		w.WriteHeader(status)
	}
	m := NewMiddleware(nil, tokens, nil, respond)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + valid, http.StatusNoContent},
		{"lowercase scheme", "bearer " + valid, http.StatusNoContent},
		{"missing", "", http.StatusUnauthorized},
		{"basic scheme", "Basic YWxpY2U6cHc=", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"tampered", "Bearer " + valid + "x", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotStatus, gotCode = 0, ""
			h := m.RequireJWT(okHandler(t, func(r *http.Request) {
				claims, ok := ClaimsFromContext(r.Context())
				if !ok || claims.Username() != "alice" {
					t.Errorf("claims = %+v", claims)
				}
			}))
			req := httptest.NewRequest(http.MethodGet, "/v1/positions", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status == http.StatusUnauthorized && (gotStatus != http.StatusUnauthorized || gotCode != CodeUnauthorized) {
				t.Errorf("responder got %d/%q", gotStatus, gotCode)
			}
		})
	}
}

// closedAuditLog returns a logger that writes straight to its store.
func closedAuditLog(t *testing.T) (*audit.Logger, *audit.MemoryStore) {
	t.Helper()
	store := audit.NewMemoryStore(100)
	logger := audit.NewLogger(store, audit.Config{BufferSize: 1})
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return logger, store
}

func TestRequireJWTAudits(t *testing.T) {
	issuer := newTestManager(t)
	valid, err := issuer.Issue("alice", "viewer")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		header string
		at     time.Time
		result string
	}{
		{"valid", "Bearer " + valid, issuedAt.Add(time.Minute), "successful"},
		{"expired", "Bearer " + valid, issuedAt.Add(2 * time.Hour), "failed"},
		{"tampered", "Bearer " + valid + "x", issuedAt.Add(time.Minute), "failed"},
		{"missing", "", issuedAt.Add(time.Minute), "failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, store := closedAuditLog(t)
			at := tt.at
			m := NewMiddleware(nil, issuer.WithClock(func() time.Time { return at }), logger, nil)

			req := httptest.NewRequest(http.MethodGet, "/v1/positions", nil)
			req.RemoteAddr = "198.51.100.7:40000"
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			m.RequireJWT(okHandler(t, nil)).ServeHTTP(httptest.NewRecorder(), req)

			entries := store.Entries()
			if len(entries) != 1 {
				t.Fatalf("audit entries = %+v, want 1", entries)
			}
			e := entries[0]
			if e.Action != "jwt_authentication" || e.Result != tt.result || e.Source != "198.51.100.7" {
				t.Errorf("audit entry = %+v, want jwt_authentication/%s from 198.51.100.7", e, tt.result)
			}
		})
	}
}

func TestSource(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"192.0.2.1:1234", "192.0.2.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"203.0.113.9", "203.0.113.9"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remote
		if got := Source(req); got != tt.want {
			t.Errorf("Source(%q) = %q, want %q", tt.remote, got, tt.want)
		}
	}
}
