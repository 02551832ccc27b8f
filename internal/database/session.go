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
	"sync"
	"time"

	"github.com/tomtom215/thereiwas/internal/metrics"
	"github.com/tomtom215/thereiwas/internal/models"
)

// Session is one pooled connection held for the duration of a request.
// It is not safe for concurrent use. Release returns it to the pool and is
// idempotent.
type Session struct {
	db   *DB
	conn *sql.Conn
	once sync.Once
}

// Acquire takes a connection from the pool, waiting at most the configured
// acquire timeout. A timeout or an unreachable backend yields ErrUnavailable.
func (db *DB) Acquire(ctx context.Context) (*Session, error) {
	timeout := db.cfg.AcquireTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	conn, err := db.conn.Conn(actx)
	if err != nil {
		timedOut := errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil
		metrics.RecordStoreAcquire(time.Since(start), timedOut)
		if timedOut {
			return nil, fmt.Errorf("%w: no connection within %s", ErrUnavailable, timeout)
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("acquire connection: %w", ctx.Err())
		}
		return nil, fmt.Errorf("acquire connection: %w", classify(err))
	}
	metrics.RecordStoreAcquire(time.Since(start), false)
	return &Session{db: db, conn: conn}, nil
}

// Release returns the connection to the pool.
func (s *Session) Release() {
	s.once.Do(func() {
		closeWithLog(s.conn, "session connection")
	})
}

// InsertLocation stores draft and returns the generated id. There is no
// pre-check: a duplicate (device, measurement time) surfaces as
// ErrUniqueViolation from the constraint itself.
func (s *Session) InsertLocation(ctx context.Context, draft models.LocationDraft) (int64, error) {
	ctx, cancel := s.db.queryContext(ctx)
	defer cancel()

	query := s.db.dialect.rebind(`
		INSERT INTO locations (
			reporting_device, latitude, longitude, horizontal_accuracy,
			vertical_accuracy, altitude, barometric_pressure, report_trigger,
			measurement_time, created_at, topic
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	start := time.Now()
	var id int64
	err := s.conn.QueryRowContext(ctx, query,
		draft.ReportingDevice,
		draft.Latitude,
		draft.Longitude,
		nullInt32(draft.HorizontalAccuracy),
		nullInt32(draft.VerticalAccuracy),
		nullInt32(draft.Altitude),
		nullFloat64(draft.BarometricPressure),
		draft.Trigger.Code(),
		draft.MeasurementTime.UTC(),
		nullTime(draft.CreatedAt),
		draft.Topic,
	).Scan(&id)
	if err = observe("insert", "locations", start, err); err != nil {
		return 0, fmt.Errorf("insert location: %w", err)
	}
	return id, nil
}

// FindAccessPoint looks up an access point by exact BSSID and SSID.
func (s *Session) FindAccessPoint(ctx context.Context, bssid, ssid string) (models.AccessPointSighting, error) {
	ctx, cancel := s.db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	ap := models.AccessPointSighting{BSSID: bssid, SSID: ssid}
	var lastSeen sql.NullTime
	err := s.conn.QueryRowContext(ctx,
		s.db.dialect.rebind(`SELECT id, last_seen FROM wifi_access_points WHERE bssid = ? AND ssid = ?`),
		bssid, ssid,
	).Scan(&ap.ID, &lastSeen)
	if err = observe("select", "wifi_access_points", start, err); err != nil {
		return models.AccessPointSighting{}, fmt.Errorf("find access point: %w", err)
	}
	ap.LastSeen = timePtr(lastSeen)
	return ap, nil
}

// InsertAccessPoint creates an access point seen at seen and returns its id.
func (s *Session) InsertAccessPoint(ctx context.Context, bssid, ssid string, seen time.Time) (int64, error) {
	ctx, cancel := s.db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	var id int64
	err := s.conn.QueryRowContext(ctx,
		s.db.dialect.rebind(`INSERT INTO wifi_access_points (bssid, ssid, last_seen) VALUES (?, ?, ?) RETURNING id`),
		bssid, ssid, seen.UTC(),
	).Scan(&id)
	if err = observe("insert", "wifi_access_points", start, err); err != nil {
		return 0, fmt.Errorf("insert access point: %w", err)
	}
	return id, nil
}

// TouchAccessPoint advances last_seen and reports the affected row count.
// An older seen never moves last_seen backwards but still counts the row.
func (s *Session) TouchAccessPoint(ctx context.Context, id int64, seen time.Time) (int64, error) {
	ctx, cancel := s.db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	seen = seen.UTC()
	res, err := s.conn.ExecContext(ctx,
		s.db.dialect.rebind(`UPDATE wifi_access_points
			SET last_seen = CASE WHEN last_seen IS NULL OR last_seen < ? THEN ? ELSE last_seen END
			WHERE id = ?`),
		seen, seen, id,
	)
	if err = observe("update", "wifi_access_points", start, err); err != nil {
		return 0, fmt.Errorf("touch access point %d: %w", id, err)
	}
	return rowsAffected(res)
}

// InsertAssociation links a location to an access point and reports the
// affected row count.
func (s *Session) InsertAssociation(ctx context.Context, locationID, accessPointID int64) (int64, error) {
	ctx, cancel := s.db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	res, err := s.conn.ExecContext(ctx,
		s.db.dialect.rebind(`INSERT INTO locations_to_wifi_access_points (location_id, access_point_id) VALUES (?, ?)`),
		locationID, accessPointID,
	)
	if err = observe("insert", "locations_to_wifi_access_points", start, err); err != nil {
		return 0, fmt.Errorf("associate location %d with access point %d: %w", locationID, accessPointID, err)
	}
	return rowsAffected(res)
}

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
