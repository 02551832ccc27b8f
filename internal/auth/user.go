// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/thereiwas/internal/audit"
	"github.com/tomtom215/thereiwas/internal/database"
	"github.com/tomtom215/thereiwas/internal/models"
)

// UserLookup finds a user by username.
type UserLookup interface {
	UserByUsername(ctx context.Context, username string) (models.User, error)
}

// UserAuthenticator verifies passwords and issues access tokens.
type UserAuthenticator struct {
	users  UserLookup
	tokens *TokenManager
	audit  audit.Sink
}

// NewUserAuthenticator creates a UserAuthenticator. sink may be nil.
func NewUserAuthenticator(users UserLookup, tokens *TokenManager, sink audit.Sink) *UserAuthenticator {
	if sink == nil {
		sink = audit.Discard
	}
	return &UserAuthenticator{users: users, tokens: tokens, audit: sink}
}

// Login checks username and password and returns a signed access token.
// Wrong username and wrong password are indistinguishable to the caller,
// both in the error and in timing.
func (a *UserAuthenticator) Login(ctx context.Context, username, password, source string) (string, error) {
	user, err := a.users.UserByUsername(ctx, username)
	switch {
	case errors.Is(err, database.ErrNotFound):
		burnComparison(password)
		a.audit.Record(ctx, audit.ActionUserAuthentication, audit.ResultFailed, source)
		return "", ErrInvalidCredentials
	case err != nil:
		return "", fmt.Errorf("look up user: %w", err)
	}

	if !CheckPassword(user.PasswordHash, password) {
		a.audit.Record(ctx, audit.ActionUserAuthentication, audit.ResultFailed, source)
		return "", ErrInvalidCredentials
	}

	token, err := a.tokens.Issue(user.Username, user.Role)
	if err != nil {
		return "", err
	}
	a.audit.Record(ctx, audit.ActionUserAuthentication, audit.ResultSuccessful, source)
	return token, nil
}
