// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package normalize

import (
	"errors"
	"fmt"
)

// ErrNotAnObject is returned when the payload does not decode to a JSON object.
var ErrNotAnObject = errors.New("payload is not a JSON object")

// FieldError reports the payload field that could not be normalized.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

func fieldErr(field, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
