// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package ingest

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies every failure that leaves the ingestion pipeline.
type Kind int

// Failure kinds. The zero value is never returned.
const (
	KindRequestBodyParsing Kind = iota + 1
	KindLocationAlreadyKnown
	KindWiFiAPInformationAlreadyKnown
	KindGenericStorage
	KindNoHandler
	KindStorageUnavailable
)

type kindInfo struct {
	name    string
	status  int
	code    string
	message string
}

var kinds = map[Kind]kindInfo{
	KindRequestBodyParsing:            {"RequestBodyParsing", http.StatusUnprocessableEntity, "REQUEST_BODY_INVALID", "Request body could not be parsed"},
	KindLocationAlreadyKnown:          {"LocationAlreadyKnown", http.StatusConflict, "LOCATION_ALREADY_KNOWN", "Location already known"},
	KindWiFiAPInformationAlreadyKnown: {"WiFiAPInformationAlreadyKnown", http.StatusConflict, "WIFI_AP_ALREADY_KNOWN", "Wi-Fi access point information already known"},
	KindGenericStorage:                {"GenericStorage", http.StatusInternalServerError, "DATABASE_ERROR", "Location could not be stored"},
	KindNoHandler:                     {"NoHandlerForMessageType", http.StatusBadRequest, "NO_HANDLER_FOR_MESSAGE_TYPE", "No handler for message type"},
	KindStorageUnavailable:            {"StorageUnavailable", http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Storage temporarily unavailable"},
}

func (k Kind) info() kindInfo {
	if info, ok := kinds[k]; ok {
		return info
	}
	return kinds[KindGenericStorage]
}

// String returns the taxonomy name.
func (k Kind) String() string { return k.info().name }

// HTTPStatus returns the response status for k.
func (k Kind) HTTPStatus() int { return k.info().status }

// Code returns the stable API error code for k.
func (k Kind) Code() string { return k.info().code }

// Message returns the fixed client-facing message for k. It never contains
// details of the underlying failure.
func (k Kind) Message() string { return k.info().message }

// Error is the only error type returned by Dispatch.
type Error struct {
	Kind  Kind
	Field string // offending payload field, RequestBodyParsing only
	Err   error  // underlying cause, for logs
}

func (e *Error) Error() string {
	switch {
	case e.Field != "" && e.Err != nil:
		return fmt.Sprintf("%s: field %s: %v", e.Kind, e.Field, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches two *Error values by Kind, so errors.Is(err, &Error{Kind: k})
// works as a kind test.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf returns the Kind carried by err, or KindGenericStorage for
// anything unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindGenericStorage
}
