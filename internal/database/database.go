// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/tomtom215/thereiwas/internal/config"
	"github.com/tomtom215/thereiwas/internal/logging"
)

// DB wraps the pooled SQL handle for one of the supported backends.
type DB struct {
	conn    *sql.DB
	cfg     *config.DatabaseConfig
	dialect dialect
}

// New opens the configured backend, sizes the pool and applies migrations.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn := cfg.URL
	switch d.name {
	case config.DriverDuckDB:
		if err := ensureParentDir(dsn); err != nil {
			return nil, err
		}
		dsn = duckDBDSN(cfg)
	case config.DriverSQLite:
		if err := ensureParentDir(dsn); err != nil {
			return nil, err
		}
		dsn = sqliteDSN(dsn)
	}

	conn, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn, cfg: cfg, dialect: d}
	db.configureConnectionPool()

	pingCtx, cancel := context.WithTimeout(context.Background(), cfg.AcquireTimeout)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to reach %s database: %w", d.name, classify(err))
	}

	if err := db.runMigrations(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logging.Info().
		Str("driver", d.name).
		Int("max_connections", cfg.MaxConnections).
		Dur("acquire_timeout", cfg.AcquireTimeout).
		Msg("Database ready")
	return db, nil
}

// duckDBDSN appends tuning options to the DuckDB path.
func duckDBDSN(cfg *config.DatabaseConfig) string {
	path := cfg.URL
	if path == ":memory:" {
		path = ""
	}
	opts := "access_mode=read_write"
	if cfg.MaxMemory != "" {
		opts += "&max_memory=" + cfg.MaxMemory
	}
	return path + "?" + opts
}

// sqliteDSN enables foreign keys and a busy timeout for modernc.org/sqlite.
func sqliteDSN(path string) string {
	if path == ":memory:" {
		// Named shared-cache memory database: every pooled connection sees
		// the same data, and separate DB handles stay isolated.
		path = "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	} else if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func ensureParentDir(path string) error {
	if path == "" || path == ":memory:" || strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}
	return nil
}

// configureConnectionPool applies pool limits from configuration.
func (db *DB) configureConnectionPool() {
	db.conn.SetMaxOpenConns(db.cfg.MaxConnections)
	db.conn.SetMaxIdleConns(db.cfg.MaxIdleConnections)
	if db.cfg.ConnMaxLifetime > 0 {
		db.conn.SetConnMaxLifetime(db.cfg.ConnMaxLifetime)
	}
	if db.cfg.ConnMaxIdleTime > 0 {
		db.conn.SetConnMaxIdleTime(db.cfg.ConnMaxIdleTime)
	}
}

// Driver returns the configured backend name.
func (db *DB) Driver() string {
	return db.dialect.name
}

// Ping checks that the store answers.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// Close closes the pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// queryContext bounds a single statement by the configured query timeout.
func (db *DB) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if db.cfg.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, db.cfg.QueryTimeout)
}

// observe records a query metric and returns the classified error.
func observe(operation, table string, start time.Time, err error) error {
	err = classify(err)
	recordQuery(operation, table, time.Since(start), err)
	return err
}
