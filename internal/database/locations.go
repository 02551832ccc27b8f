// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/thereiwas/internal/models"
)

// LatestLocations returns up to limit locations reported by device, newest
// measurement first. Ties on measurement time are broken by id.
func (db *DB) LatestLocations(ctx context.Context, device int64, limit int) ([]models.StoredLocation, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, db.dialect.rebind(`
		SELECT id, reporting_device, latitude, longitude, horizontal_accuracy,
			vertical_accuracy, altitude, barometric_pressure, report_trigger,
			measurement_time, created_at, topic
		FROM locations
		WHERE reporting_device = ?
		ORDER BY measurement_time DESC, id DESC
		LIMIT ?`), device, limit)
	if err = observe("select", "locations", start, err); err != nil {
		return nil, fmt.Errorf("query latest locations: %w", err)
	}
	defer rows.Close()

	locations := make([]models.StoredLocation, 0, limit)
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locations: %w", classify(err))
	}
	return locations, nil
}

func scanLocation(rows *sql.Rows) (models.StoredLocation, error) {
	var (
		loc       models.StoredLocation
		acc, vac  sql.NullInt32
		alt       sql.NullInt32
		pressure  sql.NullFloat64
		trigger   string
		createdAt sql.NullTime
	)
	err := rows.Scan(
		&loc.ID,
		&loc.ReportingDevice,
		&loc.Latitude,
		&loc.Longitude,
		&acc,
		&vac,
		&alt,
		&pressure,
		&trigger,
		&loc.MeasurementTime,
		&createdAt,
		&loc.Topic,
	)
	if err != nil {
		return models.StoredLocation{}, fmt.Errorf("scan location: %w", err)
	}
	loc.HorizontalAccuracy = int32Ptr(acc)
	loc.VerticalAccuracy = int32Ptr(vac)
	loc.Altitude = int32Ptr(alt)
	loc.BarometricPressure = float64Ptr(pressure)
	loc.Trigger, _ = models.ParseReportTrigger(trigger)
	loc.MeasurementTime = loc.MeasurementTime.UTC()
	loc.CreatedAt = timePtr(createdAt)
	return loc, nil
}
