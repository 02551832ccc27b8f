// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

//go:build !nats

package events

import (
	"errors"
	"testing"

	"github.com/tomtom215/thereiwas/internal/config"
)

func TestNATSBackendRequiresBuildTag(t *testing.T) {
	_, err := New(config.EventsConfig{Backend: config.EventsNATS, NATSURL: "nats://127.0.0.1:4222", Topic: "t"}, nil)
	if !errors.Is(err, ErrNATSNotCompiled) {
		t.Errorf("error = %v, want ErrNATSNotCompiled", err)
	}
}
