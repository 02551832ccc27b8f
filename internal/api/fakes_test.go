// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package api

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/thereiwas/internal/auth"
	"github.com/tomtom215/thereiwas/internal/authz"
	"github.com/tomtom215/thereiwas/internal/database"
	"github.com/tomtom215/thereiwas/internal/ingest"
	"github.com/tomtom215/thereiwas/internal/models"
)

const (
	testClientID = "5b8a3c52-6f0e-4d1b-9a7e-2c4d6e8f0a1b"
	testSecret   = "s3cr3t"
	testDeviceID = int64(7)
)

var testNow = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

type fakeDispatcher struct {
	mu     sync.Mutex
	err    error
	device int64
	body   []byte
	calls  int
}

func (f *fakeDispatcher) Dispatch(_ context.Context, device int64, body []byte) (ingest.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.device = device
	f.body = append([]byte(nil), body...)
	if f.err != nil {
		return ingest.Outcome{}, f.err
	}
	return ingest.Outcome{MessageType: ingest.TypeLocation, LocationID: 1}, nil
}

type fakeClients struct {
	err error
}

func (f *fakeClients) ClientTokenByClient(_ context.Context, client string) (models.ClientToken, error) {
	if f.err != nil {
		return models.ClientToken{}, f.err
	}
	if client != testClientID {
		return models.ClientToken{}, database.ErrNotFound
	}
	return models.ClientToken{ID: testDeviceID, Client: testClientID, Secret: testSecret}, nil
}

type fakePositions struct {
	err    error
	rows   []models.StoredLocation
	device int64
	limit  int
}

func (f *fakePositions) LatestLocations(_ context.Context, device int64, limit int) ([]models.StoredLocation, error) {
	f.device, f.limit = device, limit
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

type fakePinger struct {
	err   error
	block bool
}

func (f *fakePinger) Ping(ctx context.Context) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

type fakeLogin struct {
	tokens *auth.TokenManager
	err    error
	source string
}

var errLoginBackend = errors.New("user store offline")

func (f *fakeLogin) Login(_ context.Context, username, password, source string) (string, error) {
	f.source = source
	if f.err != nil {
		return "", f.err
	}
	if username != "alice" || password != "hunter22" {
		return "", auth.ErrInvalidCredentials
	}
	return f.tokens.Issue(username, models.RoleAdmin)
}

type fakeStream struct {
	device   int64
	accepted int
}

func (f *fakeStream) Accept(w http.ResponseWriter, _ *http.Request, device int64) error {
	f.accepted++
	f.device = device
	w.WriteHeader(http.StatusSwitchingProtocols)
	return nil
}

func withStream(s *fakeStream) serverOption {
	return func(h *HandlerConfig, _ *ChiMiddlewareConfig) { h.Stream = s }
}

type denyAll struct{}

func (denyAll) Allow(string) bool { return false }

// testServer bundles a router with its fakes.
type testServer struct {
	handler    http.Handler
	dispatcher *fakeDispatcher
	clients    *fakeClients
	positions  *fakePositions
	pinger     *fakePinger
	login      *fakeLogin
	issuer     *auth.TokenManager
}

type serverOption func(*HandlerConfig, *ChiMiddlewareConfig)

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	base := auth.NewTokenManagerWithKey(priv, "thereiwas", "thereiwas", time.Hour)
	issuer := base.WithClock(func() time.Time { return testNow })
	validator := base.WithClock(func() time.Time { return testNow.Add(2 * time.Second) })

	ts := &testServer{
		dispatcher: &fakeDispatcher{},
		clients:    &fakeClients{},
		positions:  &fakePositions{},
		pinger:     &fakePinger{},
		issuer:     issuer,
	}
	ts.login = &fakeLogin{tokens: issuer}

	hcfg := HandlerConfig{
		Dispatcher:    ts.dispatcher,
		Positions:     ts.positions,
		Pinger:        ts.pinger,
		Login:         ts.login,
		HealthTimeout: 50 * time.Millisecond,
	}
	ccfg := DefaultChiMiddlewareConfig()
	ccfg.RateLimitDisabled = true
	for _, opt := range opts {
		opt(&hcfg, ccfg)
	}

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	authMW := auth.NewMiddleware(auth.NewClientAuthenticator(ts.clients, nil), validator, nil, respondError)
	authzMW := authz.NewMiddleware(enforcer, nil, respondError)

	ts.handler = NewRouter(NewHandler(hcfg), authMW, authzMW, ccfg).SetupChi()
	return ts
}

func (ts *testServer) bearer(t *testing.T, username, role string) string {
	t.Helper()
	token, err := ts.issuer.Issue(username, role)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	return "Bearer " + token
}
