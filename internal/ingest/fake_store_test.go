// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/thereiwas/internal/database"
	"github.com/tomtom215/thereiwas/internal/models"
)

type locationKey struct {
	device int64
	unix   int64
}

type apKey struct {
	bssid string
	ssid  string
}

// fakeStore is an in-memory store with the same unique constraints as the
// real schema. All sessions share its state.
type fakeStore struct {
	mu   sync.Mutex
	cond *sync.Cond

	nextID       int64
	locations    map[locationKey]int64
	drafts       map[int64]models.LocationDraft
	accessPoints map[apKey]*models.AccessPointSighting
	associations map[[2]int64]bool

	acquired int
	released int

	// Failure injection.
	acquireErr     error
	insertLocErr   error
	findErr        error
	insertAPErr    error
	touchErr       error
	touchRows      *int64
	associateRows  *int64
	panicOnResolve bool

	// hideFinds makes the next n FindAccessPoint calls miss.
	hideFinds int

	// missBarrier blocks missing finds until this many have happened, so
	// every goroutine races into InsertAccessPoint together.
	missBarrier int
	misses      int
}

func newFakeStore() *fakeStore {
	s := &fakeStore{
		locations:    make(map[locationKey]int64),
		drafts:       make(map[int64]models.LocationDraft),
		accessPoints: make(map[apKey]*models.AccessPointSighting),
		associations: make(map[[2]int64]bool),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *fakeStore) Acquire(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", database.ErrUnavailable, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.acquireErr != nil {
		return nil, s.acquireErr
	}
	s.acquired++
	return &fakeSession{store: s}, nil
}

func (s *fakeStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) seedAccessPoint(bssid, ssid string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.accessPoints[apKey{bssid, ssid}] = &models.AccessPointSighting{ID: id, BSSID: bssid, SSID: ssid}
	return id
}

func (s *fakeStore) counts() (locations, accessPoints, associations int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locations), len(s.accessPoints), len(s.associations)
}

func (s *fakeStore) sessions() (acquired, released int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acquired, s.released
}

func (s *fakeStore) accessPoint(bssid, ssid string) (models.AccessPointSighting, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ap, ok := s.accessPoints[apKey{bssid, ssid}]
	if !ok {
		return models.AccessPointSighting{}, false
	}
	return *ap, true
}

type fakeSession struct {
	store    *fakeStore
	released bool
}

func (f *fakeSession) InsertLocation(_ context.Context, draft models.LocationDraft) (int64, error) {
	s := f.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertLocErr != nil {
		return 0, s.insertLocErr
	}
	key := locationKey{draft.ReportingDevice, draft.MeasurementTime.Unix()}
	if _, ok := s.locations[key]; ok {
		return 0, fmt.Errorf("%w: duplicate key locations", database.ErrUniqueViolation)
	}
	id := s.id()
	s.locations[key] = id
	s.drafts[id] = draft
	return id, nil
}

func (f *fakeSession) FindAccessPoint(_ context.Context, bssid, ssid string) (models.AccessPointSighting, error) {
	s := f.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panicOnResolve {
		panic("resolver exploded")
	}
	if s.findErr != nil {
		return models.AccessPointSighting{}, s.findErr
	}
	ap, ok := s.accessPoints[apKey{bssid, ssid}]
	if s.hideFinds > 0 {
		s.hideFinds--
		ok = false
	}
	if !ok {
		s.misses++
		if s.misses >= s.missBarrier {
			s.cond.Broadcast()
		}
		for s.misses < s.missBarrier {
			s.cond.Wait()
		}
		return models.AccessPointSighting{}, fmt.Errorf("%w: access point", database.ErrNotFound)
	}
	return *ap, nil
}

func (f *fakeSession) InsertAccessPoint(_ context.Context, bssid, ssid string, seen time.Time) (int64, error) {
	s := f.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertAPErr != nil {
		return 0, s.insertAPErr
	}
	key := apKey{bssid, ssid}
	if _, ok := s.accessPoints[key]; ok {
		return 0, fmt.Errorf("%w: duplicate key wifi_access_points", database.ErrUniqueViolation)
	}
	id := s.id()
	seenCopy := seen
	s.accessPoints[key] = &models.AccessPointSighting{ID: id, BSSID: bssid, SSID: ssid, LastSeen: &seenCopy}
	return id, nil
}

func (f *fakeSession) TouchAccessPoint(_ context.Context, id int64, seen time.Time) (int64, error) {
	s := f.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.touchErr != nil {
		return 0, s.touchErr
	}
	if s.touchRows != nil {
		return *s.touchRows, nil
	}
	for _, ap := range s.accessPoints {
		if ap.ID == id {
			if ap.LastSeen == nil || ap.LastSeen.Before(seen) {
				seenCopy := seen
				ap.LastSeen = &seenCopy
			}
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeSession) InsertAssociation(_ context.Context, locationID, accessPointID int64) (int64, error) {
	s := f.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.associateRows != nil {
		return *s.associateRows, nil
	}
	key := [2]int64{locationID, accessPointID}
	if s.associations[key] {
		return 0, fmt.Errorf("%w: duplicate key associations", database.ErrUniqueViolation)
	}
	s.associations[key] = true
	return 1, nil
}

func (f *fakeSession) Release() {
	s := f.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.released {
		return
	}
	f.released = true
	s.released++
}

func int64p(v int64) *int64 { return &v }
