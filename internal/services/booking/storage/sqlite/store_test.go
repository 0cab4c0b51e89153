package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/isaacyap/stretchlad/internal/services/booking/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestPutRequestWithOutboxEventPersistsBoth(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)

	request := storage.RequestRecord{
		ID:            "req-1",
		Name:          "Priya",
		Email:         "priya@example.com",
		Telegram:      "@priya",
		Description:   "Tight hamstrings after running",
		PreferredDate: "2026-08-17",
		PreferredTime: "09:00 - 10:00",
		IssueArea:     "hamstrings",
		Status:        storage.RequestStatusNew,
		CreatedAt:     now,
	}
	event := storage.OutboxEventRecord{
		ID:          "evt-1",
		EventType:   "booking.request_received",
		PayloadJSON: `{"id":"req-1"}`,
		DedupeKey:   "booking_request:req-1:v1",
		Status:      storage.OutboxStatusPending,
		CreatedAt:   now,
	}
	if err := store.PutRequestWithOutboxEvent(context.Background(), request, event); err != nil {
		t.Fatalf("put request: %v", err)
	}

	got, err := store.GetRequest(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if got.Name != "Priya" || got.Telegram != "@priya" || got.Status != storage.RequestStatusNew {
		t.Fatalf("unexpected request record: %+v", got)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("created at = %v, want %v", got.CreatedAt, now)
	}

	due, err := store.ListDueOutboxEvents(context.Background(), now, 10)
	if err != nil {
		t.Fatalf("list due events: %v", err)
	}
	if len(due) != 1 || due[0].ID != "evt-1" {
		t.Fatalf("due events = %+v, want evt-1", due)
	}
	if !due[0].NextAttemptAt.Equal(now) {
		t.Fatalf("next attempt = %v, want %v", due[0].NextAttemptAt, now)
	}
}

func TestPutRequestDeduplicatesOutboxEvents(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"req-a", "req-b"} {
		request := storage.RequestRecord{
			ID:          id,
			Name:        "Sam",
			Description: "Lower back stiffness",
			CreatedAt:   now.Add(time.Duration(i) * time.Minute),
		}
		event := storage.OutboxEventRecord{
			ID:          "evt-" + id,
			EventType:   "booking.request_received",
			PayloadJSON: `{}`,
			DedupeKey:   "booking_request:shared:v1",
			CreatedAt:   now,
		}
		if err := store.PutRequestWithOutboxEvent(context.Background(), request, event); err != nil {
			t.Fatalf("put request %s: %v", id, err)
		}
	}

	due, err := store.ListDueOutboxEvents(context.Background(), now, 10)
	if err != nil {
		t.Fatalf("list due events: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("due events = %d, want 1 after dedupe", len(due))
	}
}

func TestGetRequestNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if _, err := store.GetRequest(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get missing request error = %v, want ErrNotFound", err)
	}
}

func TestListRequestsNewestFirst(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"req-1", "req-2", "req-3"} {
		record := storage.RequestRecord{
			ID:          id,
			Name:        "Client",
			Description: "Shoulder mobility",
			CreatedAt:   now.Add(time.Duration(i) * time.Hour),
		}
		event := storage.OutboxEventRecord{
			ID:          "evt-" + id,
			EventType:   "booking.request_received",
			PayloadJSON: `{}`,
			DedupeKey:   "booking_request:" + id + ":v1",
			CreatedAt:   record.CreatedAt,
		}
		if err := store.PutRequestWithOutboxEvent(context.Background(), record, event); err != nil {
			t.Fatalf("put request %s: %v", id, err)
		}
	}

	records, err := store.ListRequests(context.Background(), 2)
	if err != nil {
		t.Fatalf("list requests: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("list requests returned %d records, want 2", len(records))
	}
	if records[0].ID != "req-3" || records[1].ID != "req-2" {
		t.Fatalf("unexpected order: %s, %s", records[0].ID, records[1].ID)
	}
}

func TestUpdateRequestStatus(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)

	request := storage.RequestRecord{
		ID:          "req-1",
		Name:        "Sam",
		Description: "Neck tension",
		CreatedAt:   now,
	}
	event := storage.OutboxEventRecord{
		ID:          "evt-1",
		EventType:   "booking.request_received",
		PayloadJSON: `{}`,
		DedupeKey:   "booking_request:req-1:v1",
		CreatedAt:   now,
	}
	if err := store.PutRequestWithOutboxEvent(context.Background(), request, event); err != nil {
		t.Fatalf("put request: %v", err)
	}

	updated, err := store.UpdateRequestStatus(context.Background(), "req-1", storage.RequestStatusContacted)
	if err != nil {
		t.Fatalf("update request status: %v", err)
	}
	if updated.Status != storage.RequestStatusContacted {
		t.Fatalf("status = %q, want contacted", updated.Status)
	}

	if _, err := store.UpdateRequestStatus(context.Background(), "missing", storage.RequestStatusClosed); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("update missing request error = %v, want ErrNotFound", err)
	}
}

func TestPutSessionConflictOnSameSlot(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)

	first := storage.SessionRecord{
		ID:        "sess-1",
		ClientID:  "client-1",
		Date:      "2026-08-17",
		StartTime: "09:00",
		EndTime:   "10:00",
		Status:    storage.SessionStatusConfirmed,
		CreatedAt: now,
	}
	if err := store.PutSessionWithOutboxEvent(context.Background(), first, outboxEventFor("sess-1", now)); err != nil {
		t.Fatalf("put first session: %v", err)
	}

	second := first
	second.ID = "sess-2"
	second.ClientID = "client-2"
	err := store.PutSessionWithOutboxEvent(context.Background(), second, outboxEventFor("sess-2", now))
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("second booking error = %v, want ErrConflict", err)
	}

	// The conflicting write must not leave a stray outbox event behind.
	due, err := store.ListDueOutboxEvents(context.Background(), now, 10)
	if err != nil {
		t.Fatalf("list due events: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("due events = %d, want 1", len(due))
	}
}

func TestCancelledSessionFreesSlot(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)

	first := storage.SessionRecord{
		ID:        "sess-1",
		ClientID:  "client-1",
		Date:      "2026-08-17",
		StartTime: "09:00",
		EndTime:   "10:00",
		CreatedAt: now,
	}
	if err := store.PutSessionWithOutboxEvent(context.Background(), first, outboxEventFor("sess-1", now)); err != nil {
		t.Fatalf("put first session: %v", err)
	}
	if _, err := store.UpdateSessionStatus(context.Background(), "sess-1", storage.SessionStatusCancelled); err != nil {
		t.Fatalf("cancel session: %v", err)
	}

	second := first
	second.ID = "sess-2"
	second.ClientID = "client-2"
	if err := store.PutSessionWithOutboxEvent(context.Background(), second, outboxEventFor("sess-2", now)); err != nil {
		t.Fatalf("rebook cancelled slot: %v", err)
	}
}

func TestListSessionsByDateAndClient(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)

	sessions := []storage.SessionRecord{
		{ID: "sess-1", ClientID: "client-1", Date: "2026-08-17", StartTime: "10:00", EndTime: "11:00", CreatedAt: now},
		{ID: "sess-2", ClientID: "client-1", Date: "2026-08-18", StartTime: "09:00", EndTime: "10:00", CreatedAt: now},
		{ID: "sess-3", ClientID: "client-2", Date: "2026-08-17", StartTime: "09:00", EndTime: "10:00", CreatedAt: now},
	}
	for _, session := range sessions {
		if err := store.PutSessionWithOutboxEvent(context.Background(), session, outboxEventFor(session.ID, now)); err != nil {
			t.Fatalf("put session %s: %v", session.ID, err)
		}
	}

	byDate, err := store.ListSessionsByDate(context.Background(), "2026-08-17")
	if err != nil {
		t.Fatalf("list by date: %v", err)
	}
	if len(byDate) != 2 || byDate[0].ID != "sess-3" || byDate[1].ID != "sess-1" {
		t.Fatalf("unexpected by-date result: %+v", byDate)
	}

	byClient, err := store.ListSessionsByClient(context.Background(), "client-1")
	if err != nil {
		t.Fatalf("list by client: %v", err)
	}
	if len(byClient) != 2 || byClient[0].ID != "sess-2" || byClient[1].ID != "sess-1" {
		t.Fatalf("unexpected by-client result: %+v", byClient)
	}
}

func TestTemplateSlotUpsertAndDelete(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)

	slot := storage.TemplateSlotRecord{
		ID:          "slot-1",
		DayOfWeek:   1,
		StartTime:   "09:00",
		EndTime:     "10:00",
		IsAvailable: true,
	}
	if err := store.PutTemplateSlot(context.Background(), slot); err != nil {
		t.Fatalf("put template slot: %v", err)
	}

	// Same weekday window replaces the existing row instead of duplicating.
	slot.EndTime = "10:30"
	slot.IsAvailable = false
	if err := store.PutTemplateSlot(context.Background(), slot); err != nil {
		t.Fatalf("upsert template slot: %v", err)
	}

	slots, err := store.ListTemplateSlots(context.Background())
	if err != nil {
		t.Fatalf("list template slots: %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("template slots = %d, want 1", len(slots))
	}
	if slots[0].EndTime != "10:30" || slots[0].IsAvailable {
		t.Fatalf("unexpected slot after upsert: %+v", slots[0])
	}

	if err := store.DeleteTemplateSlot(context.Background(), "slot-1"); err != nil {
		t.Fatalf("delete template slot: %v", err)
	}
	if err := store.DeleteTemplateSlot(context.Background(), "slot-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("delete missing slot error = %v, want ErrNotFound", err)
	}
}

func TestTemplateSlotsOrderedByWeekdayThenStart(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)

	inputs := []storage.TemplateSlotRecord{
		{ID: "slot-wed", DayOfWeek: 3, StartTime: "09:00", EndTime: "10:00", IsAvailable: true},
		{ID: "slot-mon-late", DayOfWeek: 1, StartTime: "18:00", EndTime: "19:00", IsAvailable: true},
		{ID: "slot-mon-early", DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00", IsAvailable: true},
	}
	for _, input := range inputs {
		if err := store.PutTemplateSlot(context.Background(), input); err != nil {
			t.Fatalf("put template slot %s: %v", input.ID, err)
		}
	}

	slots, err := store.ListTemplateSlots(context.Background())
	if err != nil {
		t.Fatalf("list template slots: %v", err)
	}
	want := []string{"slot-mon-early", "slot-mon-late", "slot-wed"}
	if len(slots) != len(want) {
		t.Fatalf("template slots = %d, want %d", len(slots), len(want))
	}
	for i, id := range want {
		if slots[i].ID != id {
			t.Fatalf("slot %d = %s, want %s", i, slots[i].ID, id)
		}
	}
}

func TestOutboxLifecycle(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)

	request := storage.RequestRecord{
		ID:          "req-1",
		Name:        "Sam",
		Description: "Hip mobility",
		CreatedAt:   now,
	}
	if err := store.PutRequestWithOutboxEvent(context.Background(), request, outboxEventFor("req-1", now)); err != nil {
		t.Fatalf("put request: %v", err)
	}
	due, err := store.ListDueOutboxEvents(context.Background(), now, 10)
	if err != nil {
		t.Fatalf("list due events: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("due events = %d, want 1", len(due))
	}
	eventID := due[0].ID

	// Rescheduled events stay hidden until their next attempt time.
	retryAt := now.Add(30 * time.Second)
	if err := store.RescheduleOutboxEvent(context.Background(), eventID, 1, retryAt); err != nil {
		t.Fatalf("reschedule event: %v", err)
	}
	due, err = store.ListDueOutboxEvents(context.Background(), now, 10)
	if err != nil {
		t.Fatalf("list due events after reschedule: %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("due events before retry time = %d, want 0", len(due))
	}
	due, err = store.ListDueOutboxEvents(context.Background(), retryAt, 10)
	if err != nil {
		t.Fatalf("list due events at retry time: %v", err)
	}
	if len(due) != 1 || due[0].AttemptCount != 1 {
		t.Fatalf("unexpected due events at retry time: %+v", due)
	}

	if err := store.MarkOutboxEventDelivered(context.Background(), eventID, retryAt); err != nil {
		t.Fatalf("mark delivered: %v", err)
	}
	due, err = store.ListDueOutboxEvents(context.Background(), retryAt.Add(time.Hour), 10)
	if err != nil {
		t.Fatalf("list due events after delivery: %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("due events after delivery = %d, want 0", len(due))
	}

	if err := store.MarkOutboxEventFailed(context.Background(), "missing", retryAt); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("mark missing event error = %v, want ErrNotFound", err)
	}
}

func outboxEventFor(id string, at time.Time) storage.OutboxEventRecord {
	return storage.OutboxEventRecord{
		ID:          "evt-" + id,
		EventType:   "booking.session_confirmed",
		PayloadJSON: `{"id":"` + id + `"}`,
		DedupeKey:   "booking:" + id + ":v1",
		Status:      storage.OutboxStatusPending,
		CreatedAt:   at,
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	storePath := filepath.Join(t.TempDir(), "booking.db")
	store, err := Open(storePath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := store.Close(); closeErr != nil {
			t.Fatalf("close store: %v", closeErr)
		}
	})
	return store
}
