// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package database

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tomtom215/thereiwas/internal/config"
)

// dialect captures the SQL differences between backends. Queries are
// written with ? placeholders and rebound per dialect.
type dialect struct {
	name       string
	driverName string // database/sql driver name
	numbered   bool   // $1, $2 placeholders
	timestamp  string // column type for instants
	sequences  bool   // ids come from CREATE SEQUENCE + nextval
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case config.DriverDuckDB:
		return dialect{name: driver, driverName: "duckdb", timestamp: "TIMESTAMP", sequences: true}, nil
	case config.DriverPostgres:
		return dialect{name: driver, driverName: "pgx", numbered: true, timestamp: "TIMESTAMPTZ"}, nil
	case config.DriverSQLite:
		return dialect{name: driver, driverName: "sqlite", timestamp: "TIMESTAMP"}, nil
	}
	return dialect{}, fmt.Errorf("unsupported database driver %q", driver)
}

// rebind converts ? placeholders to $N for Postgres. Queries in this
// package never contain a literal question mark.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// idColumn returns the surrogate key column definition for table.
func (d dialect) idColumn(table string) string {
	switch d.name {
	case config.DriverDuckDB:
		return fmt.Sprintf("id BIGINT PRIMARY KEY DEFAULT nextval('%s_id_seq')", table)
	case config.DriverPostgres:
		return "id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY"
	}
	return "id INTEGER PRIMARY KEY AUTOINCREMENT"
}

// sequence returns the statement creating table's id sequence, if needed.
func (d dialect) sequence(table string) []string {
	if !d.sequences {
		return nil
	}
	return []string{fmt.Sprintf("CREATE SEQUENCE IF NOT EXISTS %s_id_seq START 1", table)}
}
