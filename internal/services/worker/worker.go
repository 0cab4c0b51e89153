// Package worker drains the booking outbox and delivers notifications with
// retry backoff.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/isaacyap/stretchlad/internal/services/booking/storage"
)

// Defaults for outbox draining.
const (
	DefaultPollInterval = 5 * time.Second
	DefaultBatchSize    = 25
	DefaultMaxAttempts  = 5
	DefaultBaseBackoff  = 30 * time.Second
	DefaultMaxBackoff   = 15 * time.Minute
)

// Store is the outbox persistence surface the worker drains.
type Store interface {
	ListDueOutboxEvents(ctx context.Context, now time.Time, limit int) ([]storage.OutboxEventRecord, error)
	MarkOutboxEventDelivered(ctx context.Context, id string, at time.Time) error
	RescheduleOutboxEvent(ctx context.Context, id string, attemptCount int, nextAttemptAt time.Time) error
	MarkOutboxEventFailed(ctx context.Context, id string, at time.Time) error
}

// Handler delivers one outbox event.
type Handler interface {
	Dispatch(ctx context.Context, eventType string, payloadJSON string) error
}

// Config tunes outbox draining.
type Config struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	BaseBackoff  time.Duration
	MaxBackoff   time.Duration
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = DefaultBaseBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = DefaultMaxBackoff
	}
	return c
}

// Worker polls the outbox and hands due events to the handler.
type Worker struct {
	store   Store
	handler Handler
	logger  *log.Logger
	clock   func() time.Time
	cfg     Config
}

// New constructs an outbox worker.
func New(store Store, handler Handler, logger *log.Logger, clock func() time.Time, cfg Config) (*Worker, error) {
	if store == nil {
		return nil, errors.New("worker store is required")
	}
	if handler == nil {
		return nil, errors.New("worker handler is required")
	}
	if logger == nil {
		logger = log.Default()
	}
	if clock == nil {
		clock = time.Now
	}
	return &Worker{
		store:   store,
		handler: handler,
		logger:  logger,
		clock:   clock,
		cfg:     cfg.withDefaults(),
	}, nil
}

// Run drains the outbox until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := w.RunOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			w.logger.Printf("outbox pass failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce processes one batch of due events and reports how many it handled.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	now := w.clock().UTC()
	events, err := w.store.ListDueOutboxEvents(ctx, now, w.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("list due events: %w", err)
	}

	processed := 0
	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return processed, err
		}
		if err := w.processEvent(ctx, event); err != nil {
			return processed, err
		}
		processed++
	}
	return processed, nil
}

func (w *Worker) processEvent(ctx context.Context, event storage.OutboxEventRecord) error {
	now := w.clock().UTC()
	dispatchErr := w.handler.Dispatch(ctx, event.EventType, event.PayloadJSON)
	if dispatchErr == nil {
		if err := w.store.MarkOutboxEventDelivered(ctx, event.ID, now); err != nil {
			return fmt.Errorf("mark event %s delivered: %w", event.ID, err)
		}
		return nil
	}

	attempts := event.AttemptCount + 1
	if attempts >= w.cfg.MaxAttempts {
		w.logger.Printf("event %s (%s) failed permanently after %d attempts: %v", event.ID, event.EventType, attempts, dispatchErr)
		if err := w.store.MarkOutboxEventFailed(ctx, event.ID, now); err != nil {
			return fmt.Errorf("mark event %s failed: %w", event.ID, err)
		}
		return nil
	}

	delay := w.backoffFor(attempts)
	w.logger.Printf("event %s (%s) attempt %d failed, retrying in %s: %v", event.ID, event.EventType, attempts, delay, dispatchErr)
	if err := w.store.RescheduleOutboxEvent(ctx, event.ID, attempts, now.Add(delay)); err != nil {
		return fmt.Errorf("reschedule event %s: %w", event.ID, err)
	}
	return nil
}

// backoffFor doubles the base delay per attempt, capped at MaxBackoff.
func (w *Worker) backoffFor(attempts int) time.Duration {
	delay := w.cfg.BaseBackoff
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= w.cfg.MaxBackoff {
			return w.cfg.MaxBackoff
		}
	}
	if delay > w.cfg.MaxBackoff {
		return w.cfg.MaxBackoff
	}
	return delay
}
