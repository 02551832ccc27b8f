// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/tomtom215/thereiwas/internal/events"
	"github.com/tomtom215/thereiwas/internal/logging"
)

// MessageTypeLocation frames carry an events.LocationStored.
const MessageTypeLocation = "location"

// Message is the envelope of every frame.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type delivery struct {
	device int64
	msg    Message
}

// Hub fans stored locations out to connected clients.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan delivery
	register   chan *Client
	unregister chan *Client
	stopped    chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
}

// NewHub creates a Hub. buffer bounds pending broadcasts; a full buffer
// drops new ones.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 256
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan delivery, buffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopped:    make(chan struct{}),
	}
}

// String implements fmt.Stringer for suture.
func (h *Hub) String() string { return "position-stream-hub" }

// Serve runs the hub until ctx is canceled, then closes every client.
// Lifecycle events are handled before broadcasts so a client registered
// before a broadcast always receives it.
func (h *Hub) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return ctx.Err()
		default:
		}

		select {
		case c := <-h.register:
			h.add(c)
			continue
		case c := <-h.unregister:
			h.remove(c)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown()
			return ctx.Err()
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c)
		case d := <-h.broadcast:
			h.deliver(d)
		}
	}
}

// Register attaches c. It returns false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.stopped:
		return false
	}
}

// Unregister detaches c. It is a no-op once the hub has stopped.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stopped:
	}
}

// BroadcastLocation queues e for every client watching its device.
func (h *Hub) BroadcastLocation(e events.LocationStored) {
	select {
	case h.broadcast <- delivery{device: e.Device, msg: Message{Type: MessageTypeLocation, Data: e}}:
	default:
		logging.Warn().Int64("reporting_device", e.Device).Msg("Position stream buffer full, dropping location")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	logging.Debug().Uint64("client", c.id).Int("total_clients", n).Msg("Position stream client connected")
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	logging.Debug().Uint64("client", c.id).Int("total_clients", n).Msg("Position stream client disconnected")
}

// sorted returns clients in id order. Lock held.
func (h *Hub) sorted() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })
	return clients
}

func (h *Hub) deliver(d delivery) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.sorted() {
		if !c.watches(d.device) {
			continue
		}
		select {
		case c.send <- d.msg:
		default:
			// slow consumer
			close(c.send)
			delete(h.clients, c)
		}
	}
}

func (h *Hub) shutdown() {
	h.stopOnce.Do(func() { close(h.stopped) })

	h.mu.Lock()
	defer h.mu.Unlock()

	n := len(h.clients)
	for _, c := range h.sorted() {
		close(c.send)
		delete(h.clients, c)
	}
	logging.Info().Str("component", h.String()).Int("clients_closed", n).Msg("Position stream hub stopped")
}
