// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tomtom215/thereiwas/internal/models"
)

func TestPositionStream(t *testing.T) {
	stream := &fakeStream{}
	ts := newTestServer(t, withStream(stream))

	req := httptest.NewRequest(http.MethodGet, "/v1/positions/stream?device=5", nil)
	req.Header.Set("Authorization", ts.bearer(t, "bob", models.RoleViewer))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSwitchingProtocols {
		t.Fatalf("status = %d, want 101 (%s)", rec.Code, rec.Body.String())
	}
	if stream.accepted != 1 || stream.device != 5 {
		t.Errorf("Accept called %d times with device %d", stream.accepted, stream.device)
	}
}

func TestPositionStream_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		role       string
		wantStatus int
		wantCode   string
	}{
		{"no token", "", "", http.StatusUnauthorized, ErrCodeUnauthorized},
		{"unknown role", "", "guest", http.StatusForbidden, ErrCodeForbidden},
		{"non-integer device", "?device=abc", models.RoleAdmin, http.StatusBadRequest, ErrCodeValidationFailed},
		{"negative device", "?device=-2", models.RoleAdmin, http.StatusBadRequest, ErrCodeValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream := &fakeStream{}
			ts := newTestServer(t, withStream(stream))

			req := httptest.NewRequest(http.MethodGet, "/v1/positions/stream"+tt.query, nil)
			if tt.role != "" {
				req.Header.Set("Authorization", ts.bearer(t, "carol", tt.role))
			}
			rec := httptest.NewRecorder()
			ts.handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			resp := decodeEnvelope(t, rec)
			if resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %q", resp.Error, tt.wantCode)
			}
			if stream.accepted != 0 {
				t.Error("stream accepted a rejected request")
			}
		})
	}
}

func TestPositionStream_NotMountedWithoutStream(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/positions/stream", nil)
	req.Header.Set("Authorization", ts.bearer(t, "alice", models.RoleAdmin))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
