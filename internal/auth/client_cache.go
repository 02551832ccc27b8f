// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package auth

import (
	"context"
	"time"

	"github.com/tomtom215/thereiwas/internal/cache"
	"github.com/tomtom215/thereiwas/internal/metrics"
	"github.com/tomtom215/thereiwas/internal/models"
)

// CachedClientTokens memoizes successful client token lookups. Misses and
// errors always reach the wrapped lookup, so unknown client ids are never
// cached.
type CachedClientTokens struct {
	next  ClientTokenLookup
	cache *cache.LRU[models.ClientToken]
	sweep time.Duration
}

// NewCachedClientTokens wraps next with an LRU of size entries living ttl.
func NewCachedClientTokens(next ClientTokenLookup, size int, ttl time.Duration) *CachedClientTokens {
	return &CachedClientTokens{
		next:  next,
		cache: cache.NewLRU[models.ClientToken](size, ttl),
		sweep: max(ttl, time.Second),
	}
}

// ClientTokenByClient implements ClientTokenLookup.
func (c *CachedClientTokens) ClientTokenByClient(ctx context.Context, client string) (models.ClientToken, error) {
	if token, ok := c.cache.Get(client); ok {
		metrics.ClientTokenCacheLookups.WithLabelValues("hit").Inc()
		return token, nil
	}
	metrics.ClientTokenCacheLookups.WithLabelValues("miss").Inc()

	token, err := c.next.ClientTokenByClient(ctx, client)
	if err != nil {
		return models.ClientToken{}, err
	}
	c.cache.Add(client, token)
	return token, nil
}

// Serve drops expired entries once per TTL until ctx is done. It
// implements suture.Service.
func (c *CachedClientTokens) Serve(ctx context.Context) error {
	ticker := time.NewTicker(c.sweep)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *CachedClientTokens) String() string { return "client-token-cache" }

func (c *CachedClientTokens) cleanup() {
	c.cache.CleanupExpired()
	metrics.ClientTokenCacheEntries.Set(float64(c.cache.Len()))
}
