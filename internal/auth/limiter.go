// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter entries idle longer than this are dropped by Serve.
const (
	limiterIdleTTL  = time.Hour
	cleanupInterval = 5 * time.Minute
)

// LoginLimiter throttles login attempts per source address.
type LoginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
	now      func() time.Time
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewLoginLimiter allows perMinute attempts per source with the given
// burst. perMinute <= 0 disables throttling.
func NewLoginLimiter(perMinute, burst int) *LoginLimiter {
	l := &LoginLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Inf,
		burst:    burst,
		now:      time.Now,
	}
	if perMinute > 0 {
		l.rate = rate.Every(time.Minute / time.Duration(perMinute))
	}
	if l.burst <= 0 {
		l.burst = 1
	}
	return l
}

// Allow consumes one attempt for source.
func (l *LoginLimiter) Allow(source string) bool {
	now := l.now()

	l.mu.Lock()
	entry, ok := l.limiters[source]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[source] = entry
	}
	entry.lastAccess = now
	limiter := entry.limiter
	l.mu.Unlock()

	return limiter.AllowN(now, 1)
}

// Serve drops idle limiters until ctx is done. It implements
// suture.Service.
func (l *LoginLimiter) Serve(ctx context.Context) error {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.cleanup()
		}
	}
}

func (l *LoginLimiter) String() string { return "login-limiter" }

func (l *LoginLimiter) cleanup() {
	threshold := l.now().Add(-limiterIdleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()
	for source, entry := range l.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(l.limiters, source)
		}
	}
}

// Len returns the number of tracked sources.
func (l *LoginLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
