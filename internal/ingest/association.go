// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package ingest

import (
	"context"
	"fmt"
)

// AssociationWriter links a stored location to the access point seen with it.
type AssociationWriter struct{}

// Associate writes exactly one association row. Any other row count is a
// storage error.
func (AssociationWriter) Associate(ctx context.Context, sess Session, locationID, accessPointID int64) error {
	n, err := sess.InsertAssociation(ctx, locationID, accessPointID)
	if err != nil {
		return storageError(err)
	}
	if n != 1 {
		return newError(KindGenericStorage,
			fmt.Errorf("associate location %d with access point %d affected %d rows", locationID, accessPointID, n))
	}
	return nil
}
