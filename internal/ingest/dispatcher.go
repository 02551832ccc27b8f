// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package ingest

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/thereiwas/internal/events"
	"github.com/tomtom215/thereiwas/internal/logging"
	"github.com/tomtom215/thereiwas/internal/metrics"
	"github.com/tomtom215/thereiwas/internal/models"
	"github.com/tomtom215/thereiwas/internal/normalize"
)

// OwnTracks message types with a handler.
const (
	TypeLocation = "location"
	TypeStatus   = "status"
)

// Metric label for message types without a handler or without a readable
// _type. Keeps the label set closed.
const (
	typeLabelOther   = "other"
	typeLabelInvalid = "invalid"
)

// EventPublisher receives an event for every stored location.
type EventPublisher interface {
	PublishLocationStored(ctx context.Context, e events.LocationStored) error
}

// Outcome describes a successfully dispatched message.
type Outcome struct {
	MessageType string

	// LocationID is set for stored locations.
	LocationID int64

	// AccessPointID is set when the location carried a BSSID.
	AccessPointID *int64
}

// DispatcherConfig wires a Dispatcher.
type DispatcherConfig struct {
	Store    Store
	Resolver *AccessPointResolver // defaults to a reconciling resolver
	Events   EventPublisher       // optional
	Now      func() time.Time     // defaults to time.Now
}

// Dispatcher routes an OwnTracks message by its _type and runs the matching
// pipeline. It is the only place pipeline results become *Error values.
type Dispatcher struct {
	store        Store
	locations    LocationStore
	resolver     *AccessPointResolver
	associations AssociationWriter
	events       EventPublisher
	now          func() time.Time
}

// NewDispatcher creates a Dispatcher from cfg.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	d := &Dispatcher{
		store:    cfg.Store,
		resolver: cfg.Resolver,
		events:   cfg.Events,
		now:      cfg.Now,
	}
	if d.resolver == nil {
		d.resolver = &AccessPointResolver{}
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d
}

// Dispatch handles one message body sent by device. Every returned error
// is an *Error.
func (d *Dispatcher) Dispatch(ctx context.Context, device int64, body []byte) (out Outcome, err error) {
	label := typeLabelInvalid

	defer func() {
		if r := recover(); r != nil {
			logging.Ctx(ctx).Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("Recovered panic in ingest pipeline")
			out = Outcome{MessageType: out.MessageType}
			err = newError(KindGenericStorage, fmt.Errorf("panic: %v", r))
		}
		metrics.RecordIngest(label, outcomeLabel(err))
		if err != nil {
			logFailure(ctx, err)
		}
	}()

	payload, err := normalize.Decode(body)
	if err != nil {
		return out, parsingError(err)
	}
	msgType, err := payload.MessageType()
	if err != nil {
		return out, parsingError(err)
	}
	out.MessageType = msgType

	switch msgType {
	case TypeLocation:
		label = TypeLocation
		return d.handleLocation(ctx, device, payload, out)
	case TypeStatus:
		label = TypeStatus
		return out, d.handleStatus(ctx, device, body)
	default:
		label = typeLabelOther
		return out, &Error{
			Kind: KindNoHandler,
			Err:  fmt.Errorf("no handler for message type %q", msgType),
		}
	}
}

func (d *Dispatcher) handleLocation(ctx context.Context, device int64, payload normalize.Payload, out Outcome) (Outcome, error) {
	res, err := normalize.Location(payload, device)
	if err != nil {
		return out, parsingError(err)
	}
	if res.UnrecognizedTrigger != "" {
		metrics.UnknownTriggers.Inc()
		logging.Ctx(ctx).Warn().
			Str("trigger", res.UnrecognizedTrigger).
			Msg("Unrecognized report trigger, storing as unknown")
	}

	sess, err := d.store.Acquire(ctx)
	if err != nil {
		return out, asError(err)
	}
	defer sess.Release()

	stored, err := d.locations.Insert(ctx, sess, res.Draft)
	if err != nil {
		return out, err
	}
	out.LocationID = stored.ID

	var bssid string
	if ev := res.Evidence; ev != nil {
		bssid = ev.BSSID
		apID, err := d.resolver.Resolve(ctx, sess, ev.BSSID, ev.SSID)
		if err != nil {
			return out, err
		}
		if err := d.associations.Associate(ctx, sess, stored.ID, apID); err != nil {
			return out, err
		}
		out.AccessPointID = &apID
	}

	logging.Ctx(ctx).Debug().
		Int64("location_id", stored.ID).
		Time("measurement_time", stored.MeasurementTime).
		Str("trigger", stored.Trigger.String()).
		Bool("with_access_point", out.AccessPointID != nil).
		Msg("Stored location")

	d.publish(ctx, stored, out.AccessPointID, bssid)
	return out, nil
}

func (d *Dispatcher) publish(ctx context.Context, stored models.StoredLocation, apID *int64, bssid string) {
	if d.events == nil {
		return
	}
	e := events.NewLocationStored(stored, apID, bssid, d.now())
	if err := d.events.PublishLocationStored(ctx, e); err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Int64("location_id", stored.ID).
			Msg("Failed to publish location event")
	}
}

func (d *Dispatcher) handleStatus(ctx context.Context, device int64, body []byte) error {
	report, err := normalize.Status(body)
	if err != nil {
		return parsingError(err)
	}

	event := logging.Ctx(ctx).Info().Int64("device", device)
	if report.RequestID != nil {
		event = event.Str("status_request_id", *report.RequestID)
	}
	switch {
	case report.IOS != nil:
		event = event.Dict("ios", zerolog.Dict().
			Str("model", report.IOS.DeviceModel).
			Str("system", report.IOS.DeviceSystemName).
			Str("system_version", report.IOS.DeviceSystemVersion).
			Str("app_version", report.IOS.Version).
			Str("location_authorization", report.IOS.LocationManagerAuthorizationStatus).
			Str("background_refresh", report.IOS.BackgroundRefreshStatus).
			Str("locale", report.IOS.Locale))
	case report.Android != nil:
		event = event.Dict("android", zerolog.Dict().
			Int("hibernation", report.Android.Hibernation).
			Int("battery_optimizing", report.Android.BatteryOptimizing).
			Int("location_permission", report.Android.LocationPerm).
			Int("power_save", report.Android.PowerSave).
			Int("wifi", report.Android.WiFi))
	}
	event.Msg("Device status report")
	return nil
}

func parsingError(err error) *Error {
	e := &Error{Kind: KindRequestBodyParsing, Err: err, Field: "body"}
	var fe *normalize.FieldError
	if errors.As(err, &fe) {
		e.Field = fe.Field
	}
	return e
}

// asError passes *Error through and classifies anything else.
func asError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return storageError(err)
}

func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	return KindOf(err).String()
}

func logFailure(ctx context.Context, err error) {
	kind := KindOf(err)
	var event *zerolog.Event
	switch kind {
	case KindGenericStorage, KindStorageUnavailable:
		event = logging.Ctx(ctx).Error()
	case KindLocationAlreadyKnown, KindWiFiAPInformationAlreadyKnown:
		event = logging.Ctx(ctx).Info()
	default:
		event = logging.Ctx(ctx).Warn()
	}
	var e *Error
	if errors.As(err, &e) && e.Field != "" {
		event = event.Str("field", e.Field)
	}
	event.Err(err).Str("kind", kind.String()).Msg("Ingest request failed")
}
