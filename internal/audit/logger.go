// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package audit

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/thereiwas/internal/logging"
	"github.com/tomtom215/thereiwas/internal/metrics"
	"github.com/tomtom215/thereiwas/internal/models"
)

// Config holds configuration for the audit logger.
type Config struct {
	// BufferSize is the size of the async write buffer.
	BufferSize int

	// BatchSize caps entries per store write.
	BatchSize int

	// WriteTimeout bounds one store write.
	WriteTimeout time.Duration

	// LogEntries also writes every entry to the application log.
	LogEntries bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BufferSize:   1000,
		BatchSize:    100,
		WriteTimeout: 5 * time.Second,
		LogEntries:   true,
	}
}

// Logger is an asynchronous Sink backed by a Store. Run Serve (directly or
// under a supervisor) to flush the buffer.
type Logger struct {
	store   Store
	config  Config
	entries chan models.AuditEntry
	now     func() time.Time

	mu     sync.RWMutex
	closed bool
}

// NewLogger creates a Logger writing to store.
func NewLogger(store Store, config Config) *Logger {
	def := DefaultConfig()
	if config.BufferSize <= 0 {
		config.BufferSize = def.BufferSize
	}
	if config.BatchSize <= 0 {
		config.BatchSize = def.BatchSize
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = def.WriteTimeout
	}
	return &Logger{
		store:   store,
		config:  config,
		entries: make(chan models.AuditEntry, config.BufferSize),
		now:     time.Now,
	}
}

// Record queues one entry. After Close, and whenever the buffer is full,
// the entry is written synchronously.
func (l *Logger) Record(ctx context.Context, action Action, result Result, source string) {
	entry := models.AuditEntry{
		Action:    string(action),
		Result:    string(result),
		Source:    validSource(source),
		CreatedAt: l.now().UTC(),
	}
	metrics.AuditEntries.WithLabelValues(entry.Action, entry.Result).Inc()

	if l.config.LogEntries {
		logging.Ctx(ctx).Info().
			Str("action", entry.Action).
			Str("result", entry.Result).
			Str("source", entry.Source).
			Msg("Audit")
	}

	l.mu.RLock()
	closed := l.closed
	if !closed {
		select {
		case l.entries <- entry:
			l.mu.RUnlock()
			return
		default:
		}
	}
	l.mu.RUnlock()

	if !closed {
		metrics.AuditSyncWrites.Inc()
		logging.Ctx(ctx).Warn().Str("action", entry.Action).Msg("Audit buffer full, writing synchronously")
	}
	l.write([]models.AuditEntry{entry})
}

// Serve flushes queued entries until ctx is canceled, then drains the
// buffer and returns. It implements suture.Service.
func (l *Logger) Serve(ctx context.Context) error {
	logging.Debug().Int("buffer_size", l.config.BufferSize).Msg("Audit logger started")
	for {
		select {
		case <-ctx.Done():
			l.drain()
			logging.Debug().Msg("Audit logger stopped")
			return ctx.Err()
		case entry := <-l.entries:
			l.write(l.collect(entry))
		}
	}
}

// String names the service in supervisor logs.
func (l *Logger) String() string { return "audit-logger" }

// collect gathers first plus whatever is already buffered, up to BatchSize.
func (l *Logger) collect(first models.AuditEntry) []models.AuditEntry {
	batch := make([]models.AuditEntry, 1, l.config.BatchSize)
	batch[0] = first
	for len(batch) < l.config.BatchSize {
		select {
		case entry := <-l.entries:
			batch = append(batch, entry)
		default:
			return batch
		}
	}
	return batch
}

func (l *Logger) drain() {
	for {
		select {
		case entry := <-l.entries:
			l.write(l.collect(entry))
		default:
			return
		}
	}
}

func (l *Logger) write(batch []models.AuditEntry) {
	if l.store == nil || len(batch) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), l.config.WriteTimeout)
	defer cancel()

	if err := l.store.WriteAuditEntries(ctx, batch); err != nil {
		metrics.AuditWriteErrors.Add(float64(len(batch)))
		logging.Error().Err(err).Int("entries", len(batch)).Msg("Failed to save audit entries")
	}
}

// Pending returns the number of buffered entries.
func (l *Logger) Pending() int {
	return len(l.entries)
}

// Close stops buffering and writes everything still queued. It is safe to
// call more than once and concurrently with Serve.
func (l *Logger) Close() error {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.drain()
	return nil
}
