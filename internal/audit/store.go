// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package audit

import (
	"context"
	"sync"

	"github.com/tomtom215/thereiwas/internal/models"
)

// MemoryStore implements Store using in-memory storage.
// Suitable for development and testing. Data is lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []models.AuditEntry
	nextID  int64
	maxLen  int
}

// NewMemoryStore creates a new in-memory audit store.
func NewMemoryStore(maxLen int) *MemoryStore {
	if maxLen <= 0 {
		maxLen = 10000
	}
	return &MemoryStore{
		entries: make([]models.AuditEntry, 0, min(maxLen, 1024)),
		maxLen:  maxLen,
	}
}

// WriteAuditEntries appends entries, assigning ids.
func (s *MemoryStore) WriteAuditEntries(ctx context.Context, entries []models.AuditEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		// Enforce max length by removing the oldest 10%
		if len(s.entries) >= s.maxLen {
			removeCount := max(s.maxLen/10, 1)
			s.entries = s.entries[removeCount:]
		}
		s.nextID++
		e.ID = s.nextID
		s.entries = append(s.entries, e)
	}
	return nil
}

// Entries returns a copy of the stored entries, oldest first.
func (s *MemoryStore) Entries() []models.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.AuditEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
