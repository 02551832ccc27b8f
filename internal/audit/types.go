// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package audit

import (
	"context"
	"unicode/utf8"

	"github.com/tomtom215/thereiwas/internal/models"
)

// Action is the audited operation.
type Action string

// Result is the outcome of an audited operation.
type Result string

// Audited actions.
const (
	ActionClientTokenAuthentication Action = "client_token_authentication"
	ActionUserAuthentication        Action = "user_authentication"
	ActionJWTAuthentication         Action = "jwt_authentication"
	ActionAuthorization             Action = "authorization"
)

// Results.
const (
	ResultSuccessful Result = "successful"
	ResultFailed     Result = "failed"
)

// MaxSourceLength is the stored width of the source column.
const MaxSourceLength = 46

// Sink accepts audit records. Implementations must not block the caller
// for long and must be safe for concurrent use.
type Sink interface {
	Record(ctx context.Context, action Action, result Result, source string)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, action Action, result Result, source string)

// Record calls f.
func (f SinkFunc) Record(ctx context.Context, action Action, result Result, source string) {
	f(ctx, action, result, source)
}

// Discard is a Sink that drops every record.
var Discard Sink = SinkFunc(func(context.Context, Action, Result, string) {})

// Store persists audit entries. *database.DB implements it.
type Store interface {
	WriteAuditEntries(ctx context.Context, entries []models.AuditEntry) error
}

// ResultOf maps a boolean decision to a Result.
func ResultOf(ok bool) Result {
	if ok {
		return ResultSuccessful
	}
	return ResultFailed
}

// TruncateSource cuts s to MaxSourceLength characters.
func TruncateSource(s string) string {
	if len(s) <= MaxSourceLength {
		return s
	}
	n := 0
	for i := range s {
		if n == MaxSourceLength {
			return s[:i]
		}
		n++
	}
	return s
}

func validSource(s string) string {
	if !utf8.ValidString(s) {
		s = string([]rune(s))
	}
	return TruncateSource(s)
}
