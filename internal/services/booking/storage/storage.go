// Package storage defines persistence contracts for booking service state.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested booking record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a write collided with a uniqueness constraint.
	ErrConflict = errors.New("record conflict")
)

// Request statuses for public consultation requests.
const (
	RequestStatusNew       = "new"
	RequestStatusContacted = "contacted"
	RequestStatusClosed    = "closed"
)

// Session statuses for portal bookings.
const (
	SessionStatusConfirmed = "confirmed"
	SessionStatusCompleted = "completed"
	SessionStatusCancelled = "cancelled"
)

// Outbox event statuses.
const (
	OutboxStatusPending   = "pending"
	OutboxStatusDelivered = "delivered"
	OutboxStatusFailed    = "failed"
)

// RequestRecord stores one consultation request from the public form.
// Contact fields are optional; visitors choose how they want to be reached.
type RequestRecord struct {
	ID            string
	Name          string
	Email         string
	Phone         string
	Telegram      string
	Instagram     string
	Description   string
	PreferredDate string // YYYY-MM-DD, may be empty
	PreferredTime string // free-form range string, may be empty
	IssueArea     string
	Status        string
	CreatedAt     time.Time
}

// SessionRecord stores one portal session booking on a specific date.
type SessionRecord struct {
	ID          string
	ClientID    string
	Date        string // YYYY-MM-DD
	StartTime   string // HH:MM
	EndTime     string // HH:MM
	Status      string
	ClientNotes string
	CreatedAt   time.Time
}

// TemplateSlotRecord stores one recurring weekly availability window.
type TemplateSlotRecord struct {
	ID          string
	DayOfWeek   int // 0 = Sunday .. 6 = Saturday
	StartTime   string
	EndTime     string
	IsAvailable bool
}

// OutboxEventRecord stores one pending integration side effect. Booking
// writes and their notification events commit in the same transaction so a
// stored booking always has its event, and delivery retries never depend on
// the original request.
type OutboxEventRecord struct {
	ID            string
	EventType     string
	PayloadJSON   string
	DedupeKey     string
	Status        string
	AttemptCount  int
	NextAttemptAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Store persists booking service records.
type Store interface {
	PutRequestWithOutboxEvent(ctx context.Context, request RequestRecord, event OutboxEventRecord) error
	GetRequest(ctx context.Context, id string) (RequestRecord, error)
	ListRequests(ctx context.Context, limit int) ([]RequestRecord, error)
	UpdateRequestStatus(ctx context.Context, id string, status string) (RequestRecord, error)

	PutSessionWithOutboxEvent(ctx context.Context, session SessionRecord, event OutboxEventRecord) error
	GetSession(ctx context.Context, id string) (SessionRecord, error)
	ListSessionsByDate(ctx context.Context, date string) ([]SessionRecord, error)
	ListSessionsByClient(ctx context.Context, clientID string) ([]SessionRecord, error)
	UpdateSessionStatus(ctx context.Context, id string, status string) (SessionRecord, error)

	ListTemplateSlots(ctx context.Context) ([]TemplateSlotRecord, error)
	PutTemplateSlot(ctx context.Context, slot TemplateSlotRecord) error
	DeleteTemplateSlot(ctx context.Context, id string) error

	ListDueOutboxEvents(ctx context.Context, now time.Time, limit int) ([]OutboxEventRecord, error)
	MarkOutboxEventDelivered(ctx context.Context, id string, at time.Time) error
	RescheduleOutboxEvent(ctx context.Context, id string, attemptCount int, nextAttemptAt time.Time) error
	MarkOutboxEventFailed(ctx context.Context, id string, at time.Time) error
}
