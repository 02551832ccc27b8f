// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package websocket

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/thereiwas/internal/logging"
)

// ErrHubStopped is returned by Accept after the hub has shut down.
var ErrHubStopped = errors.New("position stream hub stopped")

// Server upgrades HTTP requests into hub clients.
type Server struct {
	hub      *Hub
	upgrader websocket.Upgrader
	origins  map[string]struct{}
	anyOrig  bool
}

// NewServer creates a Server. allowedOrigins follows the CORS list; "*"
// allows any origin.
func NewServer(hub *Hub, allowedOrigins []string) *Server {
	s := &Server{hub: hub, origins: make(map[string]struct{}, len(allowedOrigins))}
	for _, o := range allowedOrigins {
		if o == "*" {
			s.anyOrig = true
		}
		s.origins[o] = struct{}{}
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  4096,
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin:      s.checkOrigin,
	}
	return s
}

// Accept upgrades the request and attaches a client watching device, or
// every device when device is zero. On upgrade failure the response has
// already been written.
func (s *Server) Accept(w http.ResponseWriter, r *http.Request, device int64) error {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("upgrade: %w", err)
	}

	c := NewClient(s.hub, conn, device)
	if !s.hub.Register(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return ErrHubStopped
	}
	c.Start()
	return nil
}

// checkOrigin accepts requests without an Origin header, which only
// non-browser clients send.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || s.anyOrig {
		return true
	}
	if _, ok := s.origins[origin]; ok {
		return true
	}
	logging.Warn().Str("origin", origin).Msg("Position stream rejected from unauthorized origin")
	return false
}
