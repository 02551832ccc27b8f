// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

// Package normalize turns loosely typed OwnTracks payloads into canonical
// location drafts. Everything here is a pure transformation: no logging and
// no I/O. Callers decide how failures are reported.
package normalize

import (
	"bytes"
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"github.com/tomtom215/thereiwas/internal/models"
	"github.com/tomtom215/thereiwas/internal/validation"
)

// Epoch-second bounds of years 1 through 9999, the range every supported
// backend can store.
const (
	minEpochSeconds = -62135596800
	maxEpochSeconds = 253402300799
)

// Payload is a decoded JSON object with untyped values.
type Payload map[string]any

// Result is a normalized location payload.
type Result struct {
	Draft models.LocationDraft

	// Evidence is set when the payload carried a BSSID.
	Evidence *models.AccessPointEvidence

	// UnrecognizedTrigger holds the raw trigger code when it mapped to
	// TriggerUnknown without being the documented "?" marker.
	UnrecognizedTrigger string
}

// Decode parses body into a Payload. The top-level value must be an object.
func Decode(body []byte) (Payload, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil, ErrNotAnObject
	}
	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return p, nil
}

// MessageType returns the "_type" discriminator.
func (p Payload) MessageType() (string, error) {
	raw, ok := p["_type"]
	if !ok || raw == nil {
		return "", fieldErr("_type", "is required")
	}
	s, ok := raw.(string)
	if !ok {
		return "", fieldErr("_type", "must be a string")
	}
	return s, nil
}

// Location normalizes a "location" payload reported by device.
func Location(p Payload, device int64) (Result, error) {
	var res Result

	lat, err := requiredFloat(p, "lat")
	if err != nil {
		return res, err
	}
	lon, err := requiredFloat(p, "lon")
	if err != nil {
		return res, err
	}
	tst, err := requiredTimestamp(p, "tst")
	if err != nil {
		return res, err
	}

	draft := models.LocationDraft{
		Latitude:        lat,
		Longitude:       lon,
		MeasurementTime: tst,
		ReportingDevice: device,
		Topic:           models.DefaultTopic,
	}

	if draft.HorizontalAccuracy, err = optionalInt32(p, "acc"); err != nil {
		return res, err
	}
	if draft.VerticalAccuracy, err = optionalInt32(p, "vac"); err != nil {
		return res, err
	}
	if draft.Altitude, err = optionalInt32(p, "alt"); err != nil {
		return res, err
	}
	if draft.BarometricPressure, err = optionalFloat(p, "p"); err != nil {
		return res, err
	}
	if draft.CreatedAt, err = optionalTimestamp(p, "created_at"); err != nil {
		return res, err
	}

	code, err := triggerCode(p)
	if err != nil {
		return res, err
	}
	trigger, known := models.ParseReportTrigger(code)
	draft.Trigger = trigger
	if !known {
		res.UnrecognizedTrigger = code
	}

	if topic, err := optionalString(p, "topic"); err != nil {
		return res, err
	} else if topic != nil {
		draft.Topic = *topic
	}
	if tid, err := optionalString(p, "tid"); err != nil {
		return res, err
	} else if tid != nil {
		draft.TrackerID = *tid
	}

	bssid, err := optionalString(p, "BSSID")
	if err != nil {
		return res, err
	}
	ssid, err := optionalString(p, "SSID")
	if err != nil {
		return res, err
	}
	if bssid != nil && *bssid != "" {
		ev := &models.AccessPointEvidence{BSSID: CanonicalBSSID(*bssid)}
		if ssid != nil {
			ev.SSID = *ssid
		}
		res.Evidence = ev
	}

	if verr := validation.ValidateStruct(&draft); verr != nil {
		first := verr.First()
		return res, &FieldError{Field: first.Field(), Reason: first.Error()}
	}

	res.Draft = draft
	return res, nil
}

// EpochToUTC converts epoch seconds to a UTC time at second resolution.
func EpochToUTC(field string, seconds int64) (time.Time, error) {
	if seconds < minEpochSeconds || seconds > maxEpochSeconds {
		return time.Time{}, fieldErr(field, "timestamp %d out of range", seconds)
	}
	return time.Unix(seconds, 0).UTC(), nil
}

func triggerCode(p Payload) (string, error) {
	t, err := optionalString(p, "t")
	if err != nil {
		return "", err
	}
	if t == nil || *t == "" {
		return models.UnknownTriggerCode, nil
	}
	if utf8.RuneCountInString(*t) > 1 {
		return "", fieldErr("t", "must be at most one character")
	}
	return *t, nil
}

func requiredFloat(p Payload, field string) (float64, error) {
	v, err := optionalFloat(p, field)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, fieldErr(field, "is required")
	}
	return *v, nil
}

func optionalFloat(p Payload, field string) (*float64, error) {
	raw, ok := p[field]
	if !ok || raw == nil {
		return nil, nil
	}
	f, ok := raw.(float64)
	if !ok {
		return nil, fieldErr(field, "must be a number")
	}
	return &f, nil
}

func integral(p Payload, field string) (*int64, error) {
	f, err := optionalFloat(p, field)
	if err != nil || f == nil {
		return nil, err
	}
	if math.Trunc(*f) != *f {
		return nil, fieldErr(field, "must be an integer")
	}
	if *f < math.MinInt64 || *f >= math.MaxInt64 {
		return nil, fieldErr(field, "value %g out of range", *f)
	}
	i := int64(*f)
	return &i, nil
}

func optionalInt32(p Payload, field string) (*int32, error) {
	i, err := integral(p, field)
	if err != nil || i == nil {
		return nil, err
	}
	if *i < math.MinInt32 || *i > math.MaxInt32 {
		return nil, fieldErr(field, "value %d out of range", *i)
	}
	v := int32(*i)
	return &v, nil
}

func requiredTimestamp(p Payload, field string) (time.Time, error) {
	ts, err := optionalTimestamp(p, field)
	if err != nil {
		return time.Time{}, err
	}
	if ts == nil {
		return time.Time{}, fieldErr(field, "is required")
	}
	return *ts, nil
}

func optionalTimestamp(p Payload, field string) (*time.Time, error) {
	secs, err := integral(p, field)
	if err != nil || secs == nil {
		return nil, err
	}
	ts, err := EpochToUTC(field, *secs)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

func optionalString(p Payload, field string) (*string, error) {
	raw, ok := p[field]
	if !ok || raw == nil {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, fieldErr(field, "must be a string")
	}
	return &s, nil
}
