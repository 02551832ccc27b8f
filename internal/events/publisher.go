// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/thereiwas/internal/breaker"
	"github.com/tomtom215/thereiwas/internal/config"
	"github.com/tomtom215/thereiwas/internal/logging"
	"github.com/tomtom215/thereiwas/internal/metrics"
)

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("event publisher is closed")

// ErrNoSubscriber is returned by Subscribe on backends that cannot be
// consumed in process.
var ErrNoSubscriber = errors.New("event backend does not support in-process subscribers")

// Publisher sends location.stored events to the configured backend.
// A Publisher for the none backend is valid and drops every event.
type Publisher struct {
	backend string
	topic   string
	pub     message.Publisher
	sub     message.Subscriber
	breaker *breaker.Breaker

	mu     sync.RWMutex
	closed bool
}

// New creates a Publisher for cfg. b guards publishes and may be nil.
func New(cfg config.EventsConfig, b *breaker.Breaker) (*Publisher, error) {
	p := &Publisher{backend: cfg.Backend, topic: cfg.Topic, breaker: b}

	switch cfg.Backend {
	case config.EventsNone, "":
		p.backend = config.EventsNone
	case config.EventsMemory:
		gc := gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: cfg.BufferSize,
		}, logging.NewWatermillAdapter())
		p.pub = gc
		p.sub = gc
	case config.EventsNATS:
		pub, err := newNATSPublisher(cfg)
		if err != nil {
			return nil, fmt.Errorf("create NATS publisher: %w", err)
		}
		p.pub = pub
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}

	logging.Info().
		Str("backend", p.backend).
		Str("topic", p.topic).
		Msg("Event publisher initialized")
	return p, nil
}

// BreakerSettings returns the circuit settings used for publishes.
func BreakerSettings(cfg config.IngestConfig) breaker.Settings {
	return breaker.Settings{
		Name:             "events-publish",
		FailureThreshold: cfg.BreakerFailureThreshold,
		Timeout:          cfg.BreakerTimeout,
	}
}

// Backend returns the configured backend name.
func (p *Publisher) Backend() string { return p.backend }

// Topic returns the topic events are published to.
func (p *Publisher) Topic() string { return p.topic }

// PublishLocationStored publishes e. The context is only checked before
// publishing; watermill publishers do not take one.
func (p *Publisher) PublishLocationStored(ctx context.Context, e LocationStored) error {
	if p.pub == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		metrics.EventsPublished.WithLabelValues(p.backend, "closed").Inc()
		return ErrPublisherClosed
	}

	msg, err := e.Message()
	if err != nil {
		metrics.EventsPublished.WithLabelValues(p.backend, "error").Inc()
		return err
	}
	msg.SetContext(ctx)

	publish := func() error { return p.pub.Publish(p.topic, msg) }
	if p.breaker != nil {
		err = p.breaker.Do(publish)
	} else {
		err = publish()
	}

	switch {
	case err == nil:
		metrics.EventsPublished.WithLabelValues(p.backend, "success").Inc()
		return nil
	case breaker.IsRejected(err):
		metrics.EventsPublished.WithLabelValues(p.backend, "rejected").Inc()
	default:
		metrics.EventsPublished.WithLabelValues(p.backend, "error").Inc()
	}
	return fmt.Errorf("publish %s: %w", EventTypeLocationStored, err)
}

// Subscribe returns a channel of events on the memory backend. Messages
// must be acked by the consumer.
func (p *Publisher) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	if p.sub == nil {
		return nil, ErrNoSubscriber
	}
	return p.sub.Subscribe(ctx, p.topic)
}

// Close releases the backend. It is safe to call more than once.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.pub == nil {
		p.closed = true
		return nil
	}
	p.closed = true
	if err := p.pub.Close(); err != nil {
		return fmt.Errorf("close %s publisher: %w", p.backend, err)
	}
	logging.Info().Str("backend", p.backend).Msg("Event publisher closed")
	return nil
}
