// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/thereiwas/internal/events"
	"github.com/tomtom215/thereiwas/internal/logging"
)

// Source yields location.stored messages. *events.Publisher satisfies it
// on the memory backend.
type Source interface {
	Subscribe(ctx context.Context) (<-chan *message.Message, error)
}

// Bridge feeds a Hub from a Source.
type Bridge struct {
	source Source
	hub    *Hub
}

// NewBridge creates a Bridge.
func NewBridge(source Source, hub *Hub) *Bridge {
	return &Bridge{source: source, hub: hub}
}

// String implements fmt.Stringer for suture.
func (b *Bridge) String() string { return "position-stream-bridge" }

// Serve consumes messages until ctx is canceled. Every message is acked,
// including ones that fail to decode.
func (b *Bridge) Serve(ctx context.Context) error {
	msgs, err := b.source.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to location events: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return errors.New("location event subscription closed")
			}
			b.forward(msg)
		}
	}
}

func (b *Bridge) forward(msg *message.Message) {
	defer msg.Ack()

	if t := msg.Metadata.Get(events.MetadataEventType); t != events.EventTypeLocationStored {
		return
	}
	e, err := events.DecodeLocationStored(msg)
	if err != nil {
		logging.Warn().Err(err).Str("message_id", msg.UUID).Msg("Dropping undecodable location event")
		return
	}
	b.hub.BroadcastLocation(e)
}
