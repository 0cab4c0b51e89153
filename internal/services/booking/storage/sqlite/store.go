package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/isaacyap/stretchlad/internal/platform/storage/sqlitemigrate"
	"github.com/isaacyap/stretchlad/internal/services/booking/storage"
	"github.com/isaacyap/stretchlad/internal/services/booking/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for booking state.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a booking SQLite store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.Apply(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// PutRequestWithOutboxEvent atomically persists one consultation request with
// its notification event.
func (s *Store) PutRequestWithOutboxEvent(ctx context.Context, request storage.RequestRecord, event storage.OutboxEventRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	normalizedRequest, err := normalizeRequestRecord(request)
	if err != nil {
		return err
	}
	normalizedEvent, err := normalizeOutboxEventRecord(event)
	if err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin request write: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback request write: %v", cause, rollbackErr)
		}
		return cause
	}

	if err := putRequestExec(ctx, tx, normalizedRequest); err != nil {
		return rollbackWith(err)
	}
	if err := putOutboxEventExec(ctx, tx, normalizedEvent); err != nil {
		return rollbackWith(err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit request write: %w", err)
	}
	return nil
}

func putRequestExec(ctx context.Context, db execer, record storage.RequestRecord) error {
	_, err := db.ExecContext(ctx, `
INSERT INTO booking_requests (id, name, email, phone, telegram, instagram, description, preferred_date, preferred_time, issue_area, status, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		record.ID,
		record.Name,
		record.Email,
		record.Phone,
		record.Telegram,
		record.Instagram,
		record.Description,
		record.PreferredDate,
		record.PreferredTime,
		record.IssueArea,
		record.Status,
		toMillis(record.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("insert booking request: %w", err)
	}
	return nil
}

// GetRequest loads one consultation request by id.
func (s *Store) GetRequest(ctx context.Context, id string) (storage.RequestRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.RequestRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.RequestRecord{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.RequestRecord{}, fmt.Errorf("request id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, name, email, phone, telegram, instagram, description, preferred_date, preferred_time, issue_area, status, created_at
FROM booking_requests
WHERE id = ?
`, id)
	record, err := scanRequest(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.RequestRecord{}, storage.ErrNotFound
		}
		return storage.RequestRecord{}, fmt.Errorf("get booking request: %w", err)
	}
	return record, nil
}

// ListRequests lists consultation requests newest-first.
func (s *Store) ListRequests(ctx context.Context, limit int) ([]storage.RequestRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, name, email, phone, telegram, instagram, description, preferred_date, preferred_time, issue_area, status, created_at
FROM booking_requests
ORDER BY created_at DESC, id DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list booking requests: %w", err)
	}
	defer rows.Close()

	var records []storage.RequestRecord
	for rows.Next() {
		record, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan booking request: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list booking requests: %w", err)
	}
	return records, nil
}

// UpdateRequestStatus transitions one consultation request status.
func (s *Store) UpdateRequestStatus(ctx context.Context, id string, status string) (storage.RequestRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.RequestRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.RequestRecord{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	status = strings.TrimSpace(status)
	if id == "" {
		return storage.RequestRecord{}, fmt.Errorf("request id is required")
	}
	if status == "" {
		return storage.RequestRecord{}, fmt.Errorf("request status is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE booking_requests SET status = ? WHERE id = ?
`, status, id)
	if err != nil {
		return storage.RequestRecord{}, fmt.Errorf("update booking request status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storage.RequestRecord{}, fmt.Errorf("update booking request rows affected: %w", err)
	}
	if affected == 0 {
		return storage.RequestRecord{}, storage.ErrNotFound
	}
	return s.GetRequest(ctx, id)
}

// PutSessionWithOutboxEvent atomically persists one session booking with its
// notification event. A confirmed booking on the same date and start time
// maps to ErrConflict.
func (s *Store) PutSessionWithOutboxEvent(ctx context.Context, session storage.SessionRecord, event storage.OutboxEventRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	normalizedSession, err := normalizeSessionRecord(session)
	if err != nil {
		return err
	}
	normalizedEvent, err := normalizeOutboxEventRecord(event)
	if err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin session write: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback session write: %v", cause, rollbackErr)
		}
		return cause
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO booking_sessions (id, client_id, date, start_time, end_time, status, client_notes, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`,
		normalizedSession.ID,
		normalizedSession.ClientID,
		normalizedSession.Date,
		normalizedSession.StartTime,
		normalizedSession.EndTime,
		normalizedSession.Status,
		normalizedSession.ClientNotes,
		toMillis(normalizedSession.CreatedAt),
	); err != nil {
		if isUniqueConstraintError(err) {
			return rollbackWith(storage.ErrConflict)
		}
		return rollbackWith(fmt.Errorf("insert booking session: %w", err))
	}
	if err := putOutboxEventExec(ctx, tx, normalizedEvent); err != nil {
		return rollbackWith(err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session write: %w", err)
	}
	return nil
}

// GetSession loads one session booking by id.
func (s *Store) GetSession(ctx context.Context, id string) (storage.SessionRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.SessionRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.SessionRecord{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.SessionRecord{}, fmt.Errorf("session id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, client_id, date, start_time, end_time, status, client_notes, created_at
FROM booking_sessions
WHERE id = ?
`, id)
	record, err := scanSession(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.SessionRecord{}, storage.ErrNotFound
		}
		return storage.SessionRecord{}, fmt.Errorf("get booking session: %w", err)
	}
	return record, nil
}

// ListSessionsByDate lists all session bookings on one calendar date.
func (s *Store) ListSessionsByDate(ctx context.Context, date string) ([]storage.SessionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	date = strings.TrimSpace(date)
	if date == "" {
		return nil, fmt.Errorf("session date is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, client_id, date, start_time, end_time, status, client_notes, created_at
FROM booking_sessions
WHERE date = ?
ORDER BY start_time ASC, id ASC
`, date)
	if err != nil {
		return nil, fmt.Errorf("list sessions by date: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

// ListSessionsByClient lists all session bookings for one client,
// newest date first.
func (s *Store) ListSessionsByClient(ctx context.Context, clientID string) ([]storage.SessionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, fmt.Errorf("client id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, client_id, date, start_time, end_time, status, client_notes, created_at
FROM booking_sessions
WHERE client_id = ?
ORDER BY date DESC, start_time DESC
`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list sessions by client: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

// UpdateSessionStatus transitions one session booking status.
func (s *Store) UpdateSessionStatus(ctx context.Context, id string, status string) (storage.SessionRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.SessionRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.SessionRecord{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	status = strings.TrimSpace(status)
	if id == "" {
		return storage.SessionRecord{}, fmt.Errorf("session id is required")
	}
	if status == "" {
		return storage.SessionRecord{}, fmt.Errorf("session status is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE booking_sessions SET status = ? WHERE id = ?
`, status, id)
	if err != nil {
		return storage.SessionRecord{}, fmt.Errorf("update session status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storage.SessionRecord{}, fmt.Errorf("update session rows affected: %w", err)
	}
	if affected == 0 {
		return storage.SessionRecord{}, storage.ErrNotFound
	}
	return s.GetSession(ctx, id)
}

// ListTemplateSlots lists the weekly availability template ordered by
// weekday then start time.
func (s *Store) ListTemplateSlots(ctx context.Context) ([]storage.TemplateSlotRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, day_of_week, start_time, end_time, is_available
FROM availability_template_slots
ORDER BY day_of_week ASC, start_time ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list template slots: %w", err)
	}
	defer rows.Close()

	var records []storage.TemplateSlotRecord
	for rows.Next() {
		var record storage.TemplateSlotRecord
		var available int
		if err := rows.Scan(&record.ID, &record.DayOfWeek, &record.StartTime, &record.EndTime, &available); err != nil {
			return nil, fmt.Errorf("scan template slot: %w", err)
		}
		record.IsAvailable = available != 0
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list template slots: %w", err)
	}
	return records, nil
}

// PutTemplateSlot upserts one weekly availability window.
func (s *Store) PutTemplateSlot(ctx context.Context, slot storage.TemplateSlotRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(slot.ID) == "" {
		return fmt.Errorf("template slot id is required")
	}
	if slot.DayOfWeek < 0 || slot.DayOfWeek > 6 {
		return fmt.Errorf("template slot day of week must be between 0 and 6")
	}
	if strings.TrimSpace(slot.StartTime) == "" || strings.TrimSpace(slot.EndTime) == "" {
		return fmt.Errorf("template slot start and end times are required")
	}

	available := 0
	if slot.IsAvailable {
		available = 1
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO availability_template_slots (id, day_of_week, start_time, end_time, is_available)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (day_of_week, start_time) DO UPDATE SET
    end_time = excluded.end_time,
    is_available = excluded.is_available
`,
		strings.TrimSpace(slot.ID),
		slot.DayOfWeek,
		strings.TrimSpace(slot.StartTime),
		strings.TrimSpace(slot.EndTime),
		available,
	)
	if err != nil {
		return fmt.Errorf("put template slot: %w", err)
	}
	return nil
}

// DeleteTemplateSlot removes one weekly availability window.
func (s *Store) DeleteTemplateSlot(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("template slot id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `
DELETE FROM availability_template_slots WHERE id = ?
`, id)
	if err != nil {
		return fmt.Errorf("delete template slot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete template slot rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func putOutboxEventExec(ctx context.Context, db execer, record storage.OutboxEventRecord) error {
	_, err := db.ExecContext(ctx, `
INSERT INTO integration_outbox_events (id, event_type, payload_json, dedupe_key, status, attempt_count, next_attempt_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (dedupe_key) DO NOTHING
`,
		record.ID,
		record.EventType,
		record.PayloadJSON,
		record.DedupeKey,
		record.Status,
		record.AttemptCount,
		toMillis(record.NextAttemptAt),
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

// ListDueOutboxEvents lists pending events whose next attempt time has
// passed, oldest first.
func (s *Store) ListDueOutboxEvents(ctx context.Context, now time.Time, limit int) ([]storage.OutboxEventRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, event_type, payload_json, dedupe_key, status, attempt_count, next_attempt_at, created_at, updated_at
FROM integration_outbox_events
WHERE status = ? AND next_attempt_at <= ?
ORDER BY next_attempt_at ASC, id ASC
LIMIT ?
`, storage.OutboxStatusPending, toMillis(now), limit)
	if err != nil {
		return nil, fmt.Errorf("list due outbox events: %w", err)
	}
	defer rows.Close()

	var records []storage.OutboxEventRecord
	for rows.Next() {
		var record storage.OutboxEventRecord
		var nextAttemptAt, createdAt, updatedAt int64
		if err := rows.Scan(
			&record.ID,
			&record.EventType,
			&record.PayloadJSON,
			&record.DedupeKey,
			&record.Status,
			&record.AttemptCount,
			&nextAttemptAt,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		record.NextAttemptAt = fromMillis(nextAttemptAt)
		record.CreatedAt = fromMillis(createdAt)
		record.UpdatedAt = fromMillis(updatedAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list due outbox events: %w", err)
	}
	return records, nil
}

// MarkOutboxEventDelivered finalizes one event after successful delivery.
func (s *Store) MarkOutboxEventDelivered(ctx context.Context, id string, at time.Time) error {
	return s.setOutboxStatus(ctx, id, storage.OutboxStatusDelivered, at)
}

// MarkOutboxEventFailed finalizes one event after exhausting retries.
func (s *Store) MarkOutboxEventFailed(ctx context.Context, id string, at time.Time) error {
	return s.setOutboxStatus(ctx, id, storage.OutboxStatusFailed, at)
}

func (s *Store) setOutboxStatus(ctx context.Context, id string, status string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("outbox event id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE integration_outbox_events SET status = ?, updated_at = ? WHERE id = ?
`, status, toMillis(at), id)
	if err != nil {
		return fmt.Errorf("update outbox event status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update outbox event rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// RescheduleOutboxEvent records one failed attempt and the next retry time.
func (s *Store) RescheduleOutboxEvent(ctx context.Context, id string, attemptCount int, nextAttemptAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("outbox event id is required")
	}
	if attemptCount < 0 {
		return fmt.Errorf("outbox attempt count must not be negative")
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE integration_outbox_events
SET attempt_count = ?, next_attempt_at = ?, updated_at = ?
WHERE id = ?
`, attemptCount, toMillis(nextAttemptAt), toMillis(nextAttemptAt), id)
	if err != nil {
		return fmt.Errorf("reschedule outbox event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reschedule outbox event rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func normalizeRequestRecord(record storage.RequestRecord) (storage.RequestRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.Name = strings.TrimSpace(record.Name)
	record.Email = strings.TrimSpace(record.Email)
	record.Phone = strings.TrimSpace(record.Phone)
	record.Telegram = strings.TrimSpace(record.Telegram)
	record.Instagram = strings.TrimSpace(record.Instagram)
	record.Description = strings.TrimSpace(record.Description)
	record.PreferredDate = strings.TrimSpace(record.PreferredDate)
	record.PreferredTime = strings.TrimSpace(record.PreferredTime)
	record.IssueArea = strings.TrimSpace(record.IssueArea)
	record.Status = strings.TrimSpace(record.Status)
	if record.ID == "" {
		return storage.RequestRecord{}, fmt.Errorf("request id is required")
	}
	if record.Name == "" {
		return storage.RequestRecord{}, fmt.Errorf("request name is required")
	}
	if record.Description == "" {
		return storage.RequestRecord{}, fmt.Errorf("request description is required")
	}
	if record.Status == "" {
		record.Status = storage.RequestStatusNew
	}
	if record.CreatedAt.IsZero() {
		return storage.RequestRecord{}, fmt.Errorf("request created at is required")
	}
	return record, nil
}

func normalizeSessionRecord(record storage.SessionRecord) (storage.SessionRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.ClientID = strings.TrimSpace(record.ClientID)
	record.Date = strings.TrimSpace(record.Date)
	record.StartTime = strings.TrimSpace(record.StartTime)
	record.EndTime = strings.TrimSpace(record.EndTime)
	record.Status = strings.TrimSpace(record.Status)
	record.ClientNotes = strings.TrimSpace(record.ClientNotes)
	if record.ID == "" {
		return storage.SessionRecord{}, fmt.Errorf("session id is required")
	}
	if record.ClientID == "" {
		return storage.SessionRecord{}, fmt.Errorf("session client id is required")
	}
	if record.Date == "" {
		return storage.SessionRecord{}, fmt.Errorf("session date is required")
	}
	if record.StartTime == "" || record.EndTime == "" {
		return storage.SessionRecord{}, fmt.Errorf("session start and end times are required")
	}
	if record.Status == "" {
		record.Status = storage.SessionStatusConfirmed
	}
	if record.CreatedAt.IsZero() {
		return storage.SessionRecord{}, fmt.Errorf("session created at is required")
	}
	return record, nil
}

func normalizeOutboxEventRecord(record storage.OutboxEventRecord) (storage.OutboxEventRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.EventType = strings.TrimSpace(record.EventType)
	record.DedupeKey = strings.TrimSpace(record.DedupeKey)
	record.Status = strings.TrimSpace(record.Status)
	if record.ID == "" {
		return storage.OutboxEventRecord{}, fmt.Errorf("outbox event id is required")
	}
	if record.EventType == "" {
		return storage.OutboxEventRecord{}, fmt.Errorf("outbox event type is required")
	}
	if record.DedupeKey == "" {
		return storage.OutboxEventRecord{}, fmt.Errorf("outbox dedupe key is required")
	}
	if strings.TrimSpace(record.PayloadJSON) == "" {
		return storage.OutboxEventRecord{}, fmt.Errorf("outbox payload is required")
	}
	if record.Status == "" {
		record.Status = storage.OutboxStatusPending
	}
	if record.CreatedAt.IsZero() {
		return storage.OutboxEventRecord{}, fmt.Errorf("outbox created at is required")
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}
	if record.NextAttemptAt.IsZero() {
		record.NextAttemptAt = record.CreatedAt
	}
	return record, nil
}

func scanRequest(scan func(...any) error) (storage.RequestRecord, error) {
	var record storage.RequestRecord
	var createdAt int64
	if err := scan(
		&record.ID,
		&record.Name,
		&record.Email,
		&record.Phone,
		&record.Telegram,
		&record.Instagram,
		&record.Description,
		&record.PreferredDate,
		&record.PreferredTime,
		&record.IssueArea,
		&record.Status,
		&createdAt,
	); err != nil {
		return storage.RequestRecord{}, err
	}
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

func scanSession(scan func(...any) error) (storage.SessionRecord, error) {
	var record storage.SessionRecord
	var createdAt int64
	if err := scan(
		&record.ID,
		&record.ClientID,
		&record.Date,
		&record.StartTime,
		&record.EndTime,
		&record.Status,
		&record.ClientNotes,
		&createdAt,
	); err != nil {
		return storage.SessionRecord{}, err
	}
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

func collectSessions(rows *sql.Rows) ([]storage.SessionRecord, error) {
	var records []storage.SessionRecord
	for rows.Next() {
		record, err := scanSession(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan booking session: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("collect booking sessions: %w", err)
	}
	return records, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "unique constraint failed")
}

var _ storage.Store = (*Store)(nil)
