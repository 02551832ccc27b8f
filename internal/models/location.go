// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package models

import "time"

// DefaultTopic is used when a location payload does not name its topic.
const DefaultTopic = "unknown"

// LocationDraft is a normalized fix that has not been stored yet.
type LocationDraft struct {
	Latitude           float64       `json:"lat" validate:"gte=-90,lte=90"`
	Longitude          float64       `json:"lon" validate:"gte=-180,lte=180"`
	HorizontalAccuracy *int32        `json:"acc,omitempty"` // meters
	VerticalAccuracy   *int32        `json:"vac,omitempty"` // meters
	Altitude           *int32        `json:"alt,omitempty"` // meters above sea level
	BarometricPressure *float64      `json:"p,omitempty"`   // kPa
	Trigger            ReportTrigger `json:"-"`
	MeasurementTime    time.Time     `json:"measurement_time"` // UTC, second resolution
	CreatedAt          *time.Time    `json:"created_at,omitempty"`
	ReportingDevice    int64         `json:"reporting_device"` // client_tokens.id
	Topic              string        `json:"topic"`
	TrackerID          string        `json:"tid,omitempty"` // informational, not persisted
}

// StoredLocation is a LocationDraft after a successful insert.
type StoredLocation struct {
	ID int64 `json:"id"`
	LocationDraft
}

// PositionResponse is the read-path projection of a stored location.
type PositionResponse struct {
	ID                 int64      `json:"id"`
	Latitude           float64    `json:"lat"`
	Longitude          float64    `json:"lon"`
	HorizontalAccuracy *int32     `json:"acc,omitempty"`
	VerticalAccuracy   *int32     `json:"vac,omitempty"`
	Altitude           *int32     `json:"alt,omitempty"`
	BarometricPressure *float64   `json:"p,omitempty"`
	Trigger            string     `json:"t"`
	MeasurementTime    time.Time  `json:"measurement_time"`
	Timestamp          int64      `json:"tst"`
	CreatedAt          *time.Time `json:"created_at,omitempty"`
	ReportingDevice    int64      `json:"reporting_device"`
}

// Position converts a stored location into its API projection.
func (s StoredLocation) Position() PositionResponse {
	return PositionResponse{
		ID:                 s.ID,
		Latitude:           s.Latitude,
		Longitude:          s.Longitude,
		HorizontalAccuracy: s.HorizontalAccuracy,
		VerticalAccuracy:   s.VerticalAccuracy,
		Altitude:           s.Altitude,
		BarometricPressure: s.BarometricPressure,
		Trigger:            s.Trigger.Code(),
		MeasurementTime:    s.MeasurementTime.UTC(),
		Timestamp:          s.MeasurementTime.Unix(),
		CreatedAt:          s.CreatedAt,
		ReportingDevice:    s.ReportingDevice,
	}
}
