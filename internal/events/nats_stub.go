// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

//go:build !nats

package events

import (
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/thereiwas/internal/config"
)

// ErrNATSNotCompiled is returned for the nats backend in builds without
// the nats tag.
var ErrNATSNotCompiled = errors.New("NATS publisher not available: build with -tags=nats")

func newNATSPublisher(config.EventsConfig) (message.Publisher, error) {
	return nil, ErrNATSNotCompiled
}
