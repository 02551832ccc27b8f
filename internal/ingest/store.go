// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/thereiwas/internal/breaker"
	"github.com/tomtom215/thereiwas/internal/database"
	"github.com/tomtom215/thereiwas/internal/models"
)

// Session is a store handle owned by one request. Errors wrap the
// database sentinels (ErrUniqueViolation, ErrNotFound, ...).
type Session interface {
	InsertLocation(ctx context.Context, draft models.LocationDraft) (int64, error)
	FindAccessPoint(ctx context.Context, bssid, ssid string) (models.AccessPointSighting, error)
	InsertAccessPoint(ctx context.Context, bssid, ssid string, seen time.Time) (int64, error)
	TouchAccessPoint(ctx context.Context, id int64, seen time.Time) (int64, error)
	InsertAssociation(ctx context.Context, locationID, accessPointID int64) (int64, error)
	Release()
}

// Store hands out sessions from a bounded pool.
type Store interface {
	Acquire(ctx context.Context) (Session, error)
}

// StoreFunc adapts a function to Store.
type StoreFunc func(ctx context.Context) (Session, error)

// Acquire calls f.
func (f StoreFunc) Acquire(ctx context.Context) (Session, error) { return f(ctx) }

// DatabaseStore exposes db as a Store.
func DatabaseStore(db *database.DB) Store {
	return StoreFunc(func(ctx context.Context) (Session, error) {
		sess, err := db.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		return sess, nil
	})
}

// GuardedStore maps acquisition failures onto the taxonomy and, when a
// breaker is set, stops hammering a store that keeps timing out.
type GuardedStore struct {
	store   Store
	breaker *breaker.Breaker
}

// NewGuardedStore wraps store. b may be nil.
func NewGuardedStore(store Store, b *breaker.Breaker) *GuardedStore {
	return &GuardedStore{store: store, breaker: b}
}

// StoreBreakerSettings counts only unavailability against the circuit;
// caller cancellations and query errors do not trip it.
func StoreBreakerSettings(threshold uint32, timeout time.Duration) breaker.Settings {
	return breaker.Settings{
		Name:             "store-acquire",
		FailureThreshold: threshold,
		Timeout:          timeout,
		IsFailure: func(err error) bool {
			return errors.Is(err, database.ErrUnavailable)
		},
	}
}

// Acquire returns a session or an *Error of kind StorageUnavailable or
// GenericStorage.
func (g *GuardedStore) Acquire(ctx context.Context) (Session, error) {
	var (
		sess Session
		err  error
	)
	if g.breaker == nil {
		sess, err = g.store.Acquire(ctx)
	} else {
		sess, err = breaker.Cast[Session](g.breaker.Execute(func() (interface{}, error) {
			s, err := g.store.Acquire(ctx)
			if err != nil {
				return nil, err
			}
			return s, nil
		}))
	}
	if err == nil {
		return sess, nil
	}

	switch {
	case breaker.IsRejected(err),
		errors.Is(err, database.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return nil, newError(KindStorageUnavailable, err)
	}
	return nil, newError(KindGenericStorage, err)
}
