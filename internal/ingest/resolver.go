// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/thereiwas/internal/database"
	"github.com/tomtom215/thereiwas/internal/logging"
	"github.com/tomtom215/thereiwas/internal/metrics"
)

// Resolution paths, also used as metric labels.
const (
	PathFound      = "found"
	PathCreated    = "created"
	PathReconciled = "reconciled"
	PathConflict   = "conflict"
	PathError      = "error"
)

// DefaultResolverAttempts is used when MaxAttempts is unset.
const DefaultResolverAttempts = 2

// AccessPointResolver maps a canonical (BSSID, SSID) to a stable id,
// creating the access point on first sight and advancing last_seen on
// every sight.
//
// Concurrent requests for the same new pair race between the lookup and
// the insert. The loser sees a unique violation and re-queries; the race
// is benign and is reconciled unless ReportConflicts is set.
type AccessPointResolver struct {
	// Now supplies last_seen. Defaults to time.Now.
	Now func() time.Time

	// MaxAttempts bounds whole find/insert/re-query rounds.
	MaxAttempts int

	// ReportConflicts surfaces a lost insert race as
	// KindWiFiAPInformationAlreadyKnown instead of reconciling it.
	ReportConflicts bool
}

// Resolve returns the access point id for bssid and ssid. bssid must
// already be canonical.
func (r *AccessPointResolver) Resolve(ctx context.Context, sess Session, bssid, ssid string) (int64, error) {
	id, path, err := r.resolve(ctx, sess, bssid, ssid)
	metrics.RecordAccessPointResolution(path)
	if err != nil {
		return 0, err
	}
	logging.Ctx(ctx).Trace().Str("bssid", bssid).Str("path", path).Int64("access_point_id", id).Msg("Resolved access point")
	return id, nil
}

func (r *AccessPointResolver) resolve(ctx context.Context, sess Session, bssid, ssid string) (int64, string, error) {
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = DefaultResolverAttempts
	}

	var lastRace error
	for attempt := 1; attempt <= attempts; attempt++ {
		found, err := r.findAndTouch(ctx, sess, bssid, ssid)
		switch {
		case err == nil:
			if attempt == 1 {
				return found, PathFound, nil
			}
			return found, PathReconciled, nil
		case !errors.Is(err, database.ErrNotFound):
			return 0, PathError, err
		}

		id, err := sess.InsertAccessPoint(ctx, bssid, ssid, r.now())
		if err == nil {
			return id, PathCreated, nil
		}
		if !isRace(err) {
			return 0, PathError, storageError(err)
		}
		if r.ReportConflicts {
			return 0, PathConflict, newError(KindWiFiAPInformationAlreadyKnown, err)
		}
		lastRace = err

		// Another request inserted the pair between our lookup and insert.
		found, err = r.findAndTouch(ctx, sess, bssid, ssid)
		switch {
		case err == nil:
			return found, PathReconciled, nil
		case !errors.Is(err, database.ErrNotFound):
			return 0, PathError, err
		}
		// The winner's row is not visible yet; go around again.
	}

	return 0, PathError, newError(KindGenericStorage,
		fmt.Errorf("access point %s unresolved after %d attempts: %w", bssid, attempts, lastRace))
}

// findAndTouch looks up the pair and advances last_seen. A missing row is
// returned as database.ErrNotFound; everything else as *Error.
func (r *AccessPointResolver) findAndTouch(ctx context.Context, sess Session, bssid, ssid string) (int64, error) {
	ap, err := sess.FindAccessPoint(ctx, bssid, ssid)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return 0, err
		}
		return 0, storageError(err)
	}

	n, err := sess.TouchAccessPoint(ctx, ap.ID, r.now())
	if err != nil {
		if isRace(err) {
			// Concurrent touch of the same row; DuckDB reports it as a
			// write conflict. last_seen holds the most recent winner's
			// time, which may be older than this call's.
			return ap.ID, nil
		}
		return 0, storageError(err)
	}
	if n != 1 {
		return 0, newError(KindGenericStorage, fmt.Errorf("touch access point %d affected %d rows", ap.ID, n))
	}
	return ap.ID, nil
}

func (r *AccessPointResolver) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

func isRace(err error) bool {
	return errors.Is(err, database.ErrUniqueViolation) || errors.Is(err, database.ErrConflict)
}
