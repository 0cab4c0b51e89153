package worker

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/isaacyap/stretchlad/internal/services/booking/storage"
)

type fakeStore struct {
	events map[string]storage.OutboxEventRecord
}

func newFakeStore(events ...storage.OutboxEventRecord) *fakeStore {
	store := &fakeStore{events: map[string]storage.OutboxEventRecord{}}
	for _, event := range events {
		store.events[event.ID] = event
	}
	return store
}

func (f *fakeStore) ListDueOutboxEvents(_ context.Context, now time.Time, limit int) ([]storage.OutboxEventRecord, error) {
	var due []storage.OutboxEventRecord
	for _, event := range f.events {
		if event.Status == storage.OutboxStatusPending && !event.NextAttemptAt.After(now) {
			due = append(due, event)
		}
		if len(due) == limit {
			break
		}
	}
	return due, nil
}

func (f *fakeStore) MarkOutboxEventDelivered(_ context.Context, id string, at time.Time) error {
	event, ok := f.events[id]
	if !ok {
		return storage.ErrNotFound
	}
	event.Status = storage.OutboxStatusDelivered
	event.UpdatedAt = at
	f.events[id] = event
	return nil
}

func (f *fakeStore) RescheduleOutboxEvent(_ context.Context, id string, attemptCount int, nextAttemptAt time.Time) error {
	event, ok := f.events[id]
	if !ok {
		return storage.ErrNotFound
	}
	event.AttemptCount = attemptCount
	event.NextAttemptAt = nextAttemptAt
	f.events[id] = event
	return nil
}

func (f *fakeStore) MarkOutboxEventFailed(_ context.Context, id string, at time.Time) error {
	event, ok := f.events[id]
	if !ok {
		return storage.ErrNotFound
	}
	event.Status = storage.OutboxStatusFailed
	event.UpdatedAt = at
	f.events[id] = event
	return nil
}

type fakeHandler struct {
	calls []string
	err   error
}

func (f *fakeHandler) Dispatch(_ context.Context, eventType string, _ string) error {
	f.calls = append(f.calls, eventType)
	return f.err
}

func pendingEvent(id string, at time.Time) storage.OutboxEventRecord {
	return storage.OutboxEventRecord{
		ID:            id,
		EventType:     "booking.request_received",
		PayloadJSON:   "{}",
		DedupeKey:     "key-" + id,
		Status:        storage.OutboxStatusPending,
		NextAttemptAt: at,
		CreatedAt:     at,
		UpdatedAt:     at,
	}
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestRunOnceDeliversDueEvents(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeStore(pendingEvent("evt-1", now), pendingEvent("evt-2", now))
	handler := &fakeHandler{}
	w, err := New(store, handler, quietLogger(), func() time.Time { return now }, Config{})
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}

	processed, err := w.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if processed != 2 {
		t.Fatalf("processed = %d, want 2", processed)
	}
	if len(handler.calls) != 2 {
		t.Fatalf("dispatch calls = %d, want 2", len(handler.calls))
	}
	for id, event := range store.events {
		if event.Status != storage.OutboxStatusDelivered {
			t.Fatalf("event %s status = %q, want delivered", id, event.Status)
		}
	}
}

func TestRunOnceSkipsFutureEvents(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeStore(pendingEvent("evt-future", now.Add(time.Hour)))
	handler := &fakeHandler{}
	w, err := New(store, handler, quietLogger(), func() time.Time { return now }, Config{})
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}

	processed, err := w.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if processed != 0 || len(handler.calls) != 0 {
		t.Fatalf("processed = %d, calls = %d, want none", processed, len(handler.calls))
	}
}

func TestFailedDispatchReschedulesWithBackoff(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeStore(pendingEvent("evt-1", now))
	handler := &fakeHandler{err: errors.New("relay down")}
	w, err := New(store, handler, quietLogger(), func() time.Time { return now }, Config{
		BaseBackoff: 30 * time.Second,
		MaxBackoff:  10 * time.Minute,
		MaxAttempts: 5,
	})
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}

	if _, err := w.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	event := store.events["evt-1"]
	if event.Status != storage.OutboxStatusPending {
		t.Fatalf("status = %q, want pending", event.Status)
	}
	if event.AttemptCount != 1 {
		t.Fatalf("attempts = %d, want 1", event.AttemptCount)
	}
	if want := now.Add(30 * time.Second); !event.NextAttemptAt.Equal(want) {
		t.Fatalf("next attempt = %v, want %v", event.NextAttemptAt, want)
	}
}

func TestBackoffDoublesAndCaps(t *testing.T) {
	t.Parallel()

	w, err := New(newFakeStore(), &fakeHandler{}, quietLogger(), nil, Config{
		BaseBackoff: time.Minute,
		MaxBackoff:  5 * time.Minute,
	})
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}

	cases := []struct {
		attempts int
		want     time.Duration
	}{
		{1, time.Minute},
		{2, 2 * time.Minute},
		{3, 4 * time.Minute},
		{4, 5 * time.Minute},
		{10, 5 * time.Minute},
	}
	for _, tc := range cases {
		if got := w.backoffFor(tc.attempts); got != tc.want {
			t.Errorf("backoffFor(%d) = %v, want %v", tc.attempts, got, tc.want)
		}
	}
}

func TestExhaustedRetriesMarkFailed(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	event := pendingEvent("evt-1", now)
	event.AttemptCount = 4
	store := newFakeStore(event)
	handler := &fakeHandler{err: errors.New("relay down")}
	w, err := New(store, handler, quietLogger(), func() time.Time { return now }, Config{MaxAttempts: 5})
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}

	if _, err := w.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if got := store.events["evt-1"].Status; got != storage.OutboxStatusFailed {
		t.Fatalf("status = %q, want failed", got)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	w, err := New(newFakeStore(), &fakeHandler{}, quietLogger(), func() time.Time { return now }, Config{
		PollInterval: 10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v, want nil on cancel", err)
		}
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, &fakeHandler{}, nil, nil, Config{}); err == nil {
		t.Fatal("expected missing store error")
	}
	if _, err := New(newFakeStore(), nil, nil, nil, Config{}); err == nil {
		t.Fatal("expected missing handler error")
	}
}
