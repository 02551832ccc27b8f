// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package database

import (
	"strings"
	"testing"

	"github.com/tomtom215/thereiwas/internal/config"
)

func TestRebind(t *testing.T) {
	tests := []struct {
		driver string
		query  string
		want   string
	}{
		{config.DriverPostgres, "SELECT 1", "SELECT 1"},
		{config.DriverPostgres, "a = ? AND b = ?", "a = $1 AND b = $2"},
		{config.DriverPostgres, "VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", "VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)"},
		{config.DriverDuckDB, "a = ? AND b = ?", "a = ? AND b = ?"},
		{config.DriverSQLite, "a = ?", "a = ?"},
	}

	for _, tt := range tests {
		t.Run(tt.driver+"/"+tt.query, func(t *testing.T) {
			d, err := dialectFor(tt.driver)
			if err != nil {
				t.Fatalf("dialectFor() error = %v", err)
			}
			if got := d.rebind(tt.query); got != tt.want {
				t.Errorf("rebind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDialectSchemaFragments(t *testing.T) {
	duck, _ := dialectFor(config.DriverDuckDB)
	if !strings.Contains(duck.idColumn("locations"), "nextval('locations_id_seq')") {
		t.Errorf("duckdb id column = %q", duck.idColumn("locations"))
	}
	if len(duck.sequence("locations")) != 1 {
		t.Error("duckdb needs a sequence per table")
	}

	pg, _ := dialectFor(config.DriverPostgres)
	if len(pg.sequence("locations")) != 0 {
		t.Error("postgres uses identity columns, not sequences")
	}
	if pg.timestamp != "TIMESTAMPTZ" {
		t.Errorf("postgres timestamp = %q", pg.timestamp)
	}

	lite, _ := dialectFor(config.DriverSQLite)
	if !strings.Contains(lite.idColumn("users"), "AUTOINCREMENT") {
		t.Errorf("sqlite id column = %q", lite.idColumn("users"))
	}
}

func TestSQLiteDSN(t *testing.T) {
	mem := sqliteDSN(":memory:")
	if !strings.HasPrefix(mem, "file:") || !strings.Contains(mem, "mode=memory&cache=shared&_pragma=foreign_keys(1)") {
		t.Errorf("memory DSN = %q", mem)
	}
	if sqliteDSN(":memory:") == mem {
		t.Error("memory DSNs should be unique per handle")
	}
	if got := sqliteDSN("/data/t.db"); got != "file:/data/t.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)" {
		t.Errorf("file DSN = %q", got)
	}
}
