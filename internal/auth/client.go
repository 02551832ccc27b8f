// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/tomtom215/thereiwas/internal/audit"
	"github.com/tomtom215/thereiwas/internal/database"
	"github.com/tomtom215/thereiwas/internal/models"
)

// ClientTokenLookup finds a client token by its public client id.
type ClientTokenLookup interface {
	ClientTokenByClient(ctx context.Context, client string) (models.ClientToken, error)
}

// ClientAuthenticator checks OwnTracks client credentials.
type ClientAuthenticator struct {
	tokens ClientTokenLookup
	audit  audit.Sink
}

// NewClientAuthenticator creates a ClientAuthenticator. sink may be nil.
func NewClientAuthenticator(tokens ClientTokenLookup, sink audit.Sink) *ClientAuthenticator {
	if sink == nil {
		sink = audit.Discard
	}
	return &ClientAuthenticator{tokens: tokens, audit: sink}
}

// Authenticate returns the client token matching clientID and secret.
// Missing or wrong credentials return ErrNoCredentials or
// ErrInvalidCredentials; anything else is a storage failure. Both outcomes
// are audited with source.
func (a *ClientAuthenticator) Authenticate(ctx context.Context, clientID, secret, source string) (models.ClientToken, error) {
	token, err := a.authenticate(ctx, clientID, secret)
	switch {
	case err == nil:
		a.audit.Record(ctx, audit.ActionClientTokenAuthentication, audit.ResultSuccessful, source)
	case errors.Is(err, ErrNoCredentials), errors.Is(err, ErrInvalidCredentials):
		a.audit.Record(ctx, audit.ActionClientTokenAuthentication, audit.ResultFailed, source)
	}
	return token, err
}

func (a *ClientAuthenticator) authenticate(ctx context.Context, clientID, secret string) (models.ClientToken, error) {
	if clientID == "" || secret == "" {
		return models.ClientToken{}, ErrNoCredentials
	}

	token, err := a.tokens.ClientTokenByClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return models.ClientToken{}, ErrInvalidCredentials
		}
		return models.ClientToken{}, fmt.Errorf("look up client token: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(token.Secret), []byte(secret)) != 1 {
		return models.ClientToken{}, ErrInvalidCredentials
	}
	return token, nil
}
