// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/thereiwas/internal/ingest"
	"github.com/tomtom215/thereiwas/internal/models"
)

// DefaultHealthTimeout bounds the store ping behind GET /v1/health.
const DefaultHealthTimeout = 2 * time.Second

// Dispatcher runs one OwnTracks message through the ingestion pipeline.
type Dispatcher interface {
	Dispatch(ctx context.Context, device int64, body []byte) (ingest.Outcome, error)
}

// PositionReader returns the newest stored locations of a device.
type PositionReader interface {
	LatestLocations(ctx context.Context, device int64, limit int) ([]models.StoredLocation, error)
}

// Pinger checks store reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// LoginService exchanges credentials for an access token.
type LoginService interface {
	Login(ctx context.Context, username, password, source string) (string, error)
}

// LoginThrottle limits login attempts per source address.
type LoginThrottle interface {
	Allow(source string) bool
}

// PositionStream attaches a live position client to the request.
type PositionStream interface {
	Accept(w http.ResponseWriter, r *http.Request, device int64) error
}

// HandlerConfig wires a Handler. Any dependency may be nil when its
// routes are not mounted.
type HandlerConfig struct {
	Dispatcher    Dispatcher
	Positions     PositionReader
	Pinger        Pinger
	Login         LoginService
	LoginThrottle LoginThrottle
	Stream        PositionStream
	HealthTimeout time.Duration
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_owntracks.go: OwnTracks ingestion
//   - handlers_auth.go: login
//   - handlers_positions.go: read path
//   - handlers_stream.go: live positions over WebSocket
//   - handlers_health.go: health probe
type Handler struct {
	dispatcher    Dispatcher
	positions     PositionReader
	pinger        Pinger
	login         LoginService
	throttle      LoginThrottle
	stream        PositionStream
	healthTimeout time.Duration
}

// NewHandler creates a Handler from cfg.
func NewHandler(cfg HandlerConfig) *Handler {
	h := &Handler{
		dispatcher:    cfg.Dispatcher,
		positions:     cfg.Positions,
		pinger:        cfg.Pinger,
		login:         cfg.Login,
		throttle:      cfg.LoginThrottle,
		stream:        cfg.Stream,
		healthTimeout: cfg.HealthTimeout,
	}
	if h.healthTimeout <= 0 {
		h.healthTimeout = DefaultHealthTimeout
	}
	return h
}
