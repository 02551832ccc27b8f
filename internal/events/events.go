// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package events

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/thereiwas/internal/models"
)

// SchemaVersion is bumped on incompatible payload changes.
const SchemaVersion = 1

// Metadata keys set on every published message.
const (
	MetadataEventType     = "event_type"
	MetadataSchemaVersion = "schema_version"
	MetadataDevice        = "reporting_device"
)

// EventTypeLocationStored identifies LocationStored payloads.
const EventTypeLocationStored = "location.stored"

// LocationStored describes a committed location.
type LocationStored struct {
	EventID         string    `json:"event_id"`
	LocationID      int64     `json:"location_id"`
	Device          int64     `json:"reporting_device"`
	Latitude        float64   `json:"lat"`
	Longitude       float64   `json:"lon"`
	Accuracy        *int32    `json:"acc,omitempty"`
	Trigger         string    `json:"t"`
	MeasurementTime time.Time `json:"measurement_time"`
	Topic           string    `json:"topic"`
	AccessPointID   *int64    `json:"wifi_access_point_id,omitempty"`
	BSSID           string    `json:"bssid,omitempty"`
	StoredAt        time.Time `json:"stored_at"`
}

// NewLocationStored builds the event for loc. apID is nil when the report
// carried no access point.
func NewLocationStored(loc models.StoredLocation, apID *int64, bssid string, storedAt time.Time) LocationStored {
	return LocationStored{
		EventID:         uuid.NewString(),
		LocationID:      loc.ID,
		Device:          loc.ReportingDevice,
		Latitude:        loc.Latitude,
		Longitude:       loc.Longitude,
		Accuracy:        loc.HorizontalAccuracy,
		Trigger:         loc.Trigger.Code(),
		MeasurementTime: loc.MeasurementTime.UTC(),
		Topic:           loc.Topic,
		AccessPointID:   apID,
		BSSID:           bssid,
		StoredAt:        storedAt.UTC(),
	}
}

// Message encodes e as a watermill message keyed by its event id.
func (e LocationStored) Message() (*message.Message, error) {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal location.stored: %w", err)
	}
	msg := message.NewMessage(e.EventID, data)
	msg.Metadata.Set(MetadataEventType, EventTypeLocationStored)
	msg.Metadata.Set(MetadataSchemaVersion, fmt.Sprint(SchemaVersion))
	msg.Metadata.Set(MetadataDevice, fmt.Sprint(e.Device))
	return msg, nil
}

// DecodeLocationStored parses a message produced by Message.
func DecodeLocationStored(msg *message.Message) (LocationStored, error) {
	var e LocationStored
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		return e, fmt.Errorf("unmarshal location.stored %s: %w", msg.UUID, err)
	}
	return e, nil
}
