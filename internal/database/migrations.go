// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/thereiwas/internal/logging"
)

// Migration represents a versioned database migration.
type Migration struct {
	Version     int       // Unique version number (monotonically increasing)
	Name        string    // Human-readable migration name
	Description string    // Description of what this migration does
	AppliedAt   time.Time // When the migration was applied (populated on query)

	statements func(d dialect) []string
}

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// migrations returns all versioned migrations in order. Migrations are
// append-only: never modify or remove one that has shipped.
func migrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Name:        "client_tokens",
			Description: "OwnTracks client credentials; id is the reporting device",
			statements: func(d dialect) []string {
				return append(d.sequence("client_tokens"), `CREATE TABLE IF NOT EXISTS client_tokens (
	`+d.idColumn("client_tokens")+`,
	client VARCHAR(36) NOT NULL UNIQUE,
	secret VARCHAR(10) NOT NULL,
	description VARCHAR(255)
)`)
			},
		},
		{
			Version:     2,
			Name:        "users",
			Description: "Accounts that may log in and read positions",
			statements: func(d dialect) []string {
				return append(d.sequence("users"), `CREATE TABLE IF NOT EXISTS users (
	`+d.idColumn("users")+`,
	username VARCHAR(255) NOT NULL UNIQUE,
	password_hash VARCHAR(100) NOT NULL,
	role VARCHAR(32) NOT NULL,
	created_at `+d.timestamp+` NOT NULL DEFAULT CURRENT_TIMESTAMP
)`)
			},
		},
		{
			Version:     3,
			Name:        "locations",
			Description: "Position reports, unique per device and measurement time",
			statements: func(d dialect) []string {
				return append(d.sequence("locations"), `CREATE TABLE IF NOT EXISTS locations (
	`+d.idColumn("locations")+`,
	reporting_device BIGINT NOT NULL,
	latitude DOUBLE PRECISION NOT NULL,
	longitude DOUBLE PRECISION NOT NULL,
	horizontal_accuracy INTEGER,
	vertical_accuracy INTEGER,
	altitude INTEGER,
	barometric_pressure DOUBLE PRECISION,
	report_trigger VARCHAR(1) NOT NULL,
	measurement_time `+d.timestamp+` NOT NULL,
	created_at `+d.timestamp+`,
	topic VARCHAR(255) NOT NULL,
	UNIQUE (reporting_device, measurement_time),
	FOREIGN KEY (reporting_device) REFERENCES client_tokens (id)
)`)
			},
		},
		{
			Version:     4,
			Name:        "wifi_access_points",
			Description: "Wi-Fi access points, unique per BSSID and SSID",
			statements: func(d dialect) []string {
				return append(d.sequence("wifi_access_points"), `CREATE TABLE IF NOT EXISTS wifi_access_points (
	`+d.idColumn("wifi_access_points")+`,
	bssid VARCHAR(17) NOT NULL,
	ssid VARCHAR(255) NOT NULL,
	last_seen `+d.timestamp+`,
	UNIQUE (bssid, ssid)
)`)
			},
		},
		{
			Version:     5,
			Name:        "locations_to_wifi_access_points",
			Description: "Association between a location and the access point seen with it",
			statements: func(d dialect) []string {
				return []string{`CREATE TABLE IF NOT EXISTS locations_to_wifi_access_points (
	location_id BIGINT NOT NULL,
	access_point_id BIGINT NOT NULL,
	PRIMARY KEY (location_id, access_point_id),
	FOREIGN KEY (location_id) REFERENCES locations (id),
	FOREIGN KEY (access_point_id) REFERENCES wifi_access_points (id)
)`}
			},
		},
		{
			Version:     6,
			Name:        "audit_log",
			Description: "Authentication decisions",
			statements: func(d dialect) []string {
				return append(d.sequence("audit_log"), `CREATE TABLE IF NOT EXISTS audit_log (
	`+d.idColumn("audit_log")+`,
	action VARCHAR(64) NOT NULL,
	result VARCHAR(16) NOT NULL,
	source VARCHAR(46) NOT NULL,
	created_at `+d.timestamp+` NOT NULL
)`)
			},
		},
	}
}

// createMigrationsTable creates the schema_migrations table if it doesn't exist
func (db *DB) createMigrationsTable(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	description VARCHAR(255),
	applied_at `+db.dialect.timestamp+` NOT NULL
)`)
	return err
}

// getAppliedMigrations returns a map of version -> Migration for all applied migrations
func (db *DB) getAppliedMigrations(ctx context.Context) (map[int]Migration, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT version, name, description, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]Migration)
	for rows.Next() {
		var m Migration
		if err := rows.Scan(&m.Version, &m.Name, &m.Description, &m.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[m.Version] = m
	}
	return applied, rows.Err()
}

// runMigrations applies every migration not yet recorded. Each migration and
// its schema_migrations row commit in one transaction.
func (db *DB) runMigrations() error {
	ctx, cancel := schemaContext()
	defer cancel()

	if err := db.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := db.getAppliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	newMigrations := 0
	for _, m := range migrations() {
		if _, exists := applied[m.Version]; exists {
			continue
		}
		if err := db.applyMigration(ctx, m); err != nil {
			return err
		}
		newMigrations++
	}

	if newMigrations > 0 {
		logging.Info().Int("count", newMigrations).Msg("Applied new schema migrations")
	}
	return nil
}

func (db *DB) applyMigration(ctx context.Context, m Migration) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration v%d: %w", m.Version, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range m.statements(db.dialect) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute migration v%d (%s): %w", m.Version, m.Name, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		db.dialect.rebind(`INSERT INTO schema_migrations (version, name, description, applied_at) VALUES (?, ?, ?, ?)`),
		m.Version, m.Name, m.Description, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to record migration v%d: %w", m.Version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration v%d: %w", m.Version, err)
	}
	return nil
}

// GetCurrentSchemaVersion returns the highest applied migration version.
func (db *DB) GetCurrentSchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := db.conn.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// GetAppliedMigrations lists applied migrations in version order.
func (db *DB) GetAppliedMigrations(ctx context.Context) ([]Migration, error) {
	applied, err := db.getAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Migration, 0, len(applied))
	for _, m := range migrations() {
		if a, ok := applied[m.Version]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}
