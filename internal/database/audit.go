// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/thereiwas/internal/models"
)

// WriteAuditEntries persists a batch of audit entries in one transaction.
func (db *DB) WriteAuditEntries(ctx context.Context, entries []models.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit batch: %w", observe("insert", "audit_log", start, err))
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		db.dialect.rebind(`INSERT INTO audit_log (action, result, source, created_at) VALUES (?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("prepare audit insert: %w", observe("insert", "audit_log", start, err))
	}
	defer closeQuietly(stmt)

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Action, e.Result, e.Source, e.CreatedAt.UTC()); err != nil {
			return fmt.Errorf("insert audit entry: %w", observe("insert", "audit_log", start, err))
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit audit batch: %w", observe("insert", "audit_log", start, err))
	}
	_ = observe("insert", "audit_log", start, nil)
	return nil
}

// RecentAuditEntries returns the newest limit audit entries.
func (db *DB) RecentAuditEntries(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		db.dialect.rebind(`SELECT id, action, result, source, created_at FROM audit_log ORDER BY created_at DESC, id DESC LIMIT ?`),
		limit)
	if err = observe("select", "audit_log", start, err); err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.Result, &e.Source, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.CreatedAt = e.CreatedAt.UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
