// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package ingest

import (
	"context"
	"errors"

	"github.com/tomtom215/thereiwas/internal/database"
	"github.com/tomtom215/thereiwas/internal/models"
)

// LocationStore inserts locations. A location is immutable, so a duplicate
// (device, measurement time) is always a conflict and never an update.
type LocationStore struct{}

// Insert stores draft in one round trip. The unique constraint decides
// duplicates; there is no pre-check query.
func (LocationStore) Insert(ctx context.Context, sess Session, draft models.LocationDraft) (models.StoredLocation, error) {
	id, err := sess.InsertLocation(ctx, draft)
	if err != nil {
		if errors.Is(err, database.ErrUniqueViolation) {
			return models.StoredLocation{}, newError(KindLocationAlreadyKnown, err)
		}
		return models.StoredLocation{}, storageError(err)
	}
	return models.StoredLocation{ID: id, LocationDraft: draft}, nil
}

// storageError classifies an unexpected store failure. Unavailability that
// shows up mid-request is still reported as unavailable.
func storageError(err error) *Error {
	if errors.Is(err, database.ErrUnavailable) {
		return newError(KindStorageUnavailable, err)
	}
	return newError(KindGenericStorage, err)
}
