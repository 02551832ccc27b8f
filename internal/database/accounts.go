// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/thereiwas/internal/models"
)

// ClientTokenByClient returns the token registered for client, or
// ErrNotFound.
func (db *DB) ClientTokenByClient(ctx context.Context, client string) (models.ClientToken, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	var (
		token models.ClientToken
		desc  sql.NullString
	)
	err := db.conn.QueryRowContext(ctx,
		db.dialect.rebind(`SELECT id, client, secret, description FROM client_tokens WHERE client = ?`),
		client,
	).Scan(&token.ID, &token.Client, &token.Secret, &desc)
	if err = observe("select", "client_tokens", start, err); err != nil {
		return models.ClientToken{}, fmt.Errorf("lookup client token: %w", err)
	}
	token.Description = desc.String
	return token, nil
}

// CreateClientToken inserts a client token and returns it with its id.
func (db *DB) CreateClientToken(ctx context.Context, token models.ClientToken) (models.ClientToken, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	err := db.conn.QueryRowContext(ctx,
		db.dialect.rebind(`INSERT INTO client_tokens (client, secret, description) VALUES (?, ?, ?) RETURNING id`),
		token.Client, token.Secret, token.Description,
	).Scan(&token.ID)
	if err = observe("insert", "client_tokens", start, err); err != nil {
		return models.ClientToken{}, fmt.Errorf("create client token: %w", err)
	}
	return token, nil
}

// UserByUsername returns the user with username, or ErrNotFound.
func (db *DB) UserByUsername(ctx context.Context, username string) (models.User, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	var user models.User
	err := db.conn.QueryRowContext(ctx,
		db.dialect.rebind(`SELECT id, username, password_hash, role FROM users WHERE username = ?`),
		username,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role)
	if err = observe("select", "users", start, err); err != nil {
		return models.User{}, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

// CreateUser inserts a user whose password is already hashed.
func (db *DB) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	err := db.conn.QueryRowContext(ctx,
		db.dialect.rebind(`INSERT INTO users (username, password_hash, role, created_at) VALUES (?, ?, ?, ?) RETURNING id`),
		user.Username, user.PasswordHash, user.Role, time.Now().UTC(),
	).Scan(&user.ID)
	if err = observe("insert", "users", start, err); err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// EnsureClientToken creates token unless its client id is already
// registered. It reports whether a row was created.
func (db *DB) EnsureClientToken(ctx context.Context, token models.ClientToken) (bool, error) {
	_, err := db.ClientTokenByClient(ctx, token.Client)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if _, err := db.CreateClientToken(ctx, token); err != nil {
		if errors.Is(err, ErrUniqueViolation) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// EnsureUser creates user unless the username exists. It reports whether a
// row was created.
func (db *DB) EnsureUser(ctx context.Context, user models.User) (bool, error) {
	_, err := db.UserByUsername(ctx, user.Username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if _, err := db.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrUniqueViolation) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
