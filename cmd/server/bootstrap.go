// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/thereiwas/internal/auth"
	"github.com/tomtom215/thereiwas/internal/config"
	"github.com/tomtom215/thereiwas/internal/logging"
	"github.com/tomtom215/thereiwas/internal/models"
)

// bootstrapStore is the part of database.DB seeding needs.
type bootstrapStore interface {
	EnsureClientToken(ctx context.Context, token models.ClientToken) (bool, error)
	EnsureUser(ctx context.Context, user models.User) (bool, error)
}

// seedBootstrapAccounts creates the configured client token and user when
// they do not exist yet. Existing rows are never modified.
func seedBootstrapAccounts(ctx context.Context, store bootstrapStore, cfg *config.DatabaseConfig) error {
	if bc := cfg.BootstrapClient; bc.ClientID != "" {
		created, err := store.EnsureClientToken(ctx, models.ClientToken{
			Client:      bc.ClientID,
			Secret:      bc.Secret,
			Description: bc.Description,
		})
		if err != nil {
			return fmt.Errorf("seed bootstrap client token: %w", err)
		}
		logging.Info().Str("client_id", bc.ClientID).Bool("created", created).Msg("Bootstrap client token checked")
	}

	if bu := cfg.BootstrapUser; bu.Username != "" {
		hash, err := auth.HashPassword(bu.Password)
		if err != nil {
			return fmt.Errorf("hash bootstrap user password: %w", err)
		}
		role := bu.Role
		if role == "" {
			role = models.RoleAdmin
		}
		created, err := store.EnsureUser(ctx, models.User{
			Username:     bu.Username,
			PasswordHash: hash,
			Role:         role,
		})
		if err != nil {
			return fmt.Errorf("seed bootstrap user: %w", err)
		}
		logging.Info().Str("username", bu.Username).Str("role", role).Bool("created", created).Msg("Bootstrap user checked")
	}
	return nil
}
