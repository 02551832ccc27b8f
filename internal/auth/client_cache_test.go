// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/thereiwas/internal/database"
	"github.com/tomtom215/thereiwas/internal/metrics"
	"github.com/tomtom215/thereiwas/internal/models"
)

type countingLookup struct {
	fakeAccounts
	calls int
}

func (c *countingLookup) ClientTokenByClient(ctx context.Context, client string) (models.ClientToken, error) {
	c.calls++
	return c.fakeAccounts.ClientTokenByClient(ctx, client)
}

func TestCachedClientTokens(t *testing.T) {
	ctx := context.Background()
	inner := &countingLookup{fakeAccounts: fakeAccounts{tokens: map[string]models.ClientToken{
		"phone": {ID: 4, Client: "phone", Secret: "s3cret"},
	}}}
	now := issuedAt
	cached := NewCachedClientTokens(inner, 8, time.Minute)
	cached.cache.WithClock(func() time.Time { return now })

	hits := testutil.ToFloat64(metrics.ClientTokenCacheLookups.WithLabelValues("hit"))
	misses := testutil.ToFloat64(metrics.ClientTokenCacheLookups.WithLabelValues("miss"))

	for i := 0; i < 3; i++ {
		token, err := cached.ClientTokenByClient(ctx, "phone")
		if err != nil {
			t.Fatalf("lookup %d: %v", i, err)
		}
		if token.ID != 4 {
			t.Errorf("token.ID = %d, want 4", token.ID)
		}
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
	if got := testutil.ToFloat64(metrics.ClientTokenCacheLookups.WithLabelValues("hit")) - hits; got != 2 {
		t.Errorf("hit delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.ClientTokenCacheLookups.WithLabelValues("miss")) - misses; got != 1 {
		t.Errorf("miss delta = %v, want 1", got)
	}

	now = now.Add(2 * time.Minute)
	if _, err := cached.ClientTokenByClient(ctx, "phone"); err != nil {
		t.Fatalf("lookup after expiry: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("inner calls after expiry = %d, want 2", inner.calls)
	}
}

func TestCachedClientTokensCleanup(t *testing.T) {
	ctx := context.Background()
	inner := &countingLookup{fakeAccounts: fakeAccounts{tokens: map[string]models.ClientToken{
		"phone":  {ID: 4, Client: "phone", Secret: "s3cret"},
		"tablet": {ID: 5, Client: "tablet", Secret: "s3cret"},
	}}}
	now := issuedAt
	cached := NewCachedClientTokens(inner, 8, time.Minute)
	cached.cache.WithClock(func() time.Time { return now })

	if _, err := cached.ClientTokenByClient(ctx, "phone"); err != nil {
		t.Fatal(err)
	}
	now = now.Add(45 * time.Second)
	if _, err := cached.ClientTokenByClient(ctx, "tablet"); err != nil {
		t.Fatal(err)
	}
	now = now.Add(30 * time.Second)

	cached.cleanup()
	if got := cached.cache.Len(); got != 1 {
		t.Errorf("entries after cleanup = %d, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.ClientTokenCacheEntries); got != 1 {
		t.Errorf("entries gauge = %v, want 1", got)
	}
}

func TestCachedClientTokensServe(t *testing.T) {
	cached := NewCachedClientTokens(&countingLookup{}, 8, 0)
	if cached.sweep != time.Second {
		t.Errorf("sweep = %v, want 1s floor", cached.sweep)
	}
	if cached.String() != "client-token-cache" {
		t.Errorf("String() = %q", cached.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := cached.Serve(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}
}

func TestCachedClientTokensDoesNotCacheMisses(t *testing.T) {
	ctx := context.Background()
	inner := &countingLookup{fakeAccounts: fakeAccounts{tokens: map[string]models.ClientToken{}}}
	cached := NewCachedClientTokens(inner, 8, time.Minute)

	for i := 0; i < 2; i++ {
		_, err := cached.ClientTokenByClient(ctx, "ghost")
		if !errors.Is(err, database.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}
}

func TestCachedClientTokensStillChecksSecret(t *testing.T) {
	ctx := context.Background()
	inner := &countingLookup{fakeAccounts: fakeAccounts{tokens: map[string]models.ClientToken{
		"phone": {ID: 4, Client: "phone", Secret: "s3cret"},
	}}}
	a := NewClientAuthenticator(NewCachedClientTokens(inner, 8, time.Minute), nil)

	if _, err := a.Authenticate(ctx, "phone", "s3cret", "10.0.0.1"); err != nil {
		t.Fatalf("warm-up: %v", err)
	}
	if _, err := a.Authenticate(ctx, "phone", "wrong", "10.0.0.1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}
