// Package domain implements booking lifecycle behavior for consultation
// requests, portal sessions, and weekly availability.
package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/isaacyap/stretchlad/internal/platform/id"
	"github.com/isaacyap/stretchlad/internal/schedule"
	"github.com/isaacyap/stretchlad/internal/services/booking/storage"
)

var (
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("booking store is not configured")
	// ErrNameRequired indicates a consultation request is missing a name.
	ErrNameRequired = errors.New("name is required")
	// ErrDescriptionRequired indicates a consultation request is missing a description.
	ErrDescriptionRequired = errors.New("description is required")
	// ErrClientIDRequired indicates a session booking is missing client identity.
	ErrClientIDRequired = errors.New("client id is required")
	// ErrInvalidDate indicates a date failed to parse as YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidSlot indicates a requested time window is malformed.
	ErrInvalidSlot = errors.New("invalid slot")
	// ErrSlotUnavailable indicates the requested window is not open for booking.
	ErrSlotUnavailable = errors.New("slot unavailable")
	// ErrNotFound indicates a booking record was not found.
	ErrNotFound = errors.New("booking not found")
	// ErrNotSessionOwner indicates a client tried to change someone else's session.
	ErrNotSessionOwner = errors.New("session belongs to another client")
	// ErrSessionNotConfirmed indicates a status transition from a non-confirmed session.
	ErrSessionNotConfirmed = errors.New("session is not confirmed")
)

// DateFormat is the canonical calendar date layout for stored bookings.
const DateFormat = "2006-01-02"

// Outbox event types emitted by booking writes.
const (
	EventRequestReceived  = "booking.request_received"
	EventSessionConfirmed = "booking.session_confirmed"
)

// Service orchestrates booking use-cases over the storage boundary.
type Service struct {
	store storage.Store
	clock func() time.Time
	newID func() (string, error)
}

// NewService constructs booking domain use-cases.
func NewService(store storage.Store, clock func() time.Time, newID func() (string, error)) *Service {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Service{
		store: store,
		clock: clock,
		newID: newID,
	}
}

// RequestInput captures one public consultation form submission. Every
// contact channel is optional.
type RequestInput struct {
	Name          string
	Email         string
	Phone         string
	Telegram      string
	Instagram     string
	Description   string
	PreferredDate string
	PreferredTime string
	IssueArea     string
}

// RequestPayload is the outbox event payload for notification delivery.
type RequestPayload struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Telegram      string `json:"telegram,omitempty"`
	Instagram     string `json:"instagram,omitempty"`
	Description   string `json:"description"`
	PreferredDate string `json:"preferred_date,omitempty"`
	PreferredTime string `json:"preferred_time,omitempty"`
	IssueArea     string `json:"issue_area,omitempty"`
}

// SubmitRequest validates and stores one consultation request together with
// its notification outbox event.
func (s *Service) SubmitRequest(ctx context.Context, input RequestInput) (storage.RequestRecord, error) {
	if s == nil || s.store == nil {
		return storage.RequestRecord{}, ErrStoreNotConfigured
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return storage.RequestRecord{}, ErrNameRequired
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return storage.RequestRecord{}, ErrDescriptionRequired
	}
	preferredDate := strings.TrimSpace(input.PreferredDate)
	if preferredDate != "" {
		if _, err := time.Parse(DateFormat, preferredDate); err != nil {
			return storage.RequestRecord{}, ErrInvalidDate
		}
	}

	requestID, err := s.newID()
	if err != nil {
		return storage.RequestRecord{}, fmt.Errorf("generate request id: %w", err)
	}
	now := s.nowUTC()
	record := storage.RequestRecord{
		ID:            requestID,
		Name:          name,
		Email:         strings.TrimSpace(input.Email),
		Phone:         strings.TrimSpace(input.Phone),
		Telegram:      strings.TrimSpace(input.Telegram),
		Instagram:     strings.TrimSpace(input.Instagram),
		Description:   description,
		PreferredDate: preferredDate,
		PreferredTime: strings.TrimSpace(input.PreferredTime),
		IssueArea:     strings.TrimSpace(input.IssueArea),
		Status:        storage.RequestStatusNew,
		CreatedAt:     now,
	}

	event, err := s.outboxEventFor(EventRequestReceived, "booking_request:"+requestID+":v1", requestPayload(record), now)
	if err != nil {
		return storage.RequestRecord{}, err
	}
	if err := s.store.PutRequestWithOutboxEvent(ctx, record, event); err != nil {
		return storage.RequestRecord{}, fmt.Errorf("store request: %w", err)
	}
	return record, nil
}

func requestPayload(record storage.RequestRecord) RequestPayload {
	return RequestPayload{
		ID:            record.ID,
		Name:          record.Name,
		Email:         record.Email,
		Phone:         record.Phone,
		Telegram:      record.Telegram,
		Instagram:     record.Instagram,
		Description:   record.Description,
		PreferredDate: record.PreferredDate,
		PreferredTime: record.PreferredTime,
		IssueArea:     record.IssueArea,
	}
}

// AvailableSlots resolves the bookable windows for one calendar date by
// projecting the weekly template and removing overlapping confirmed
// bookings.
func (s *Service) AvailableSlots(ctx context.Context, date time.Time) ([]schedule.Slot, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	if date.IsZero() {
		return nil, ErrInvalidDate
	}

	templateRecords, err := s.store.ListTemplateSlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("load availability template: %w", err)
	}
	template := make([]schedule.TemplateSlot, 0, len(templateRecords))
	for _, record := range templateRecords {
		start, err := schedule.ParseTimeOfDay(record.StartTime)
		if err != nil {
			return nil, fmt.Errorf("template slot %s start: %w", record.ID, err)
		}
		end, err := schedule.ParseTimeOfDay(record.EndTime)
		if err != nil {
			return nil, fmt.Errorf("template slot %s end: %w", record.ID, err)
		}
		template = append(template, schedule.TemplateSlot{
			DayOfWeek: time.Weekday(record.DayOfWeek),
			Start:     start,
			End:       end,
			Available: record.IsAvailable,
		})
	}

	sessions, err := s.store.ListSessionsByDate(ctx, date.Format(DateFormat))
	if err != nil {
		return nil, fmt.Errorf("load booked sessions: %w", err)
	}
	booked := make([]schedule.BookedSlot, 0, len(sessions))
	for _, session := range sessions {
		if session.Status != storage.SessionStatusConfirmed {
			continue
		}
		start, err := schedule.ParseTimeOfDay(session.StartTime)
		if err != nil {
			return nil, fmt.Errorf("session %s start: %w", session.ID, err)
		}
		end, err := schedule.ParseTimeOfDay(session.EndTime)
		if err != nil {
			return nil, fmt.Errorf("session %s end: %w", session.ID, err)
		}
		booked = append(booked, schedule.BookedSlot{Date: date, Start: start, End: end})
	}

	return schedule.SlotsForDate(date, template, booked), nil
}

// BookSessionInput captures one portal booking for a resolved slot.
type BookSessionInput struct {
	ClientID string
	Date     time.Time
	Start    string
	End      string
	Notes    string
}

// SessionPayload is the outbox event payload for session notifications.
type SessionPayload struct {
	ID       string `json:"id"`
	ClientID string `json:"client_id"`
	Date     string `json:"date"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Notes    string `json:"notes,omitempty"`
}

// BookSession books one open slot for a client. The requested window must
// match a currently available slot; a concurrent booking of the same window
// surfaces as ErrSlotUnavailable.
func (s *Service) BookSession(ctx context.Context, input BookSessionInput) (storage.SessionRecord, error) {
	if s == nil || s.store == nil {
		return storage.SessionRecord{}, ErrStoreNotConfigured
	}
	clientID := strings.TrimSpace(input.ClientID)
	if clientID == "" {
		return storage.SessionRecord{}, ErrClientIDRequired
	}
	if input.Date.IsZero() {
		return storage.SessionRecord{}, ErrInvalidDate
	}
	start, err := schedule.ParseTimeOfDay(input.Start)
	if err != nil {
		return storage.SessionRecord{}, ErrInvalidSlot
	}
	end, err := schedule.ParseTimeOfDay(input.End)
	if err != nil {
		return storage.SessionRecord{}, ErrInvalidSlot
	}
	if !start.Before(end) {
		return storage.SessionRecord{}, ErrInvalidSlot
	}

	available, err := s.AvailableSlots(ctx, input.Date)
	if err != nil {
		return storage.SessionRecord{}, err
	}
	open := false
	for _, slot := range available {
		if slot.Start == start && slot.End == end {
			open = true
			break
		}
	}
	if !open {
		return storage.SessionRecord{}, ErrSlotUnavailable
	}

	sessionID, err := s.newID()
	if err != nil {
		return storage.SessionRecord{}, fmt.Errorf("generate session id: %w", err)
	}
	now := s.nowUTC()
	record := storage.SessionRecord{
		ID:          sessionID,
		ClientID:    clientID,
		Date:        input.Date.Format(DateFormat),
		StartTime:   start.String(),
		EndTime:     end.String(),
		Status:      storage.SessionStatusConfirmed,
		ClientNotes: strings.TrimSpace(input.Notes),
		CreatedAt:   now,
	}
	payload := SessionPayload{
		ID:       record.ID,
		ClientID: record.ClientID,
		Date:     record.Date,
		Start:    record.StartTime,
		End:      record.EndTime,
		Notes:    record.ClientNotes,
	}
	event, err := s.outboxEventFor(EventSessionConfirmed, "booking_session:"+sessionID+":v1", payload, now)
	if err != nil {
		return storage.SessionRecord{}, err
	}
	if err := s.store.PutSessionWithOutboxEvent(ctx, record, event); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return storage.SessionRecord{}, ErrSlotUnavailable
		}
		return storage.SessionRecord{}, fmt.Errorf("store session: %w", err)
	}
	return record, nil
}

// SessionsForClient lists a client's bookings newest first.
func (s *Service) SessionsForClient(ctx context.Context, clientID string) ([]storage.SessionRecord, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, ErrClientIDRequired
	}
	records, err := s.store.ListSessionsByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list client sessions: %w", err)
	}
	return records, nil
}

// CompleteSession marks one confirmed session as completed and returns the
// updated record.
func (s *Service) CompleteSession(ctx context.Context, sessionID string) (storage.SessionRecord, error) {
	return s.transitionSession(ctx, sessionID, "", storage.SessionStatusCompleted)
}

// CancelSession cancels one of the client's own confirmed sessions, freeing
// its slot.
func (s *Service) CancelSession(ctx context.Context, sessionID string, clientID string) (storage.SessionRecord, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return storage.SessionRecord{}, ErrClientIDRequired
	}
	return s.transitionSession(ctx, sessionID, clientID, storage.SessionStatusCancelled)
}

func (s *Service) transitionSession(ctx context.Context, sessionID string, requireClientID string, status string) (storage.SessionRecord, error) {
	if s == nil || s.store == nil {
		return storage.SessionRecord{}, ErrStoreNotConfigured
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return storage.SessionRecord{}, ErrNotFound
	}
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.SessionRecord{}, ErrNotFound
		}
		return storage.SessionRecord{}, fmt.Errorf("load session: %w", err)
	}
	if requireClientID != "" && session.ClientID != requireClientID {
		return storage.SessionRecord{}, ErrNotSessionOwner
	}
	if session.Status != storage.SessionStatusConfirmed {
		return storage.SessionRecord{}, ErrSessionNotConfirmed
	}
	updated, err := s.store.UpdateSessionStatus(ctx, sessionID, status)
	if err != nil {
		return storage.SessionRecord{}, fmt.Errorf("update session status: %w", err)
	}
	return updated, nil
}

// TemplateSlotInput describes one weekly availability window.
type TemplateSlotInput struct {
	DayOfWeek int
	Start     string
	End       string
	Available bool
}

// TemplateSlots lists the weekly availability template.
func (s *Service) TemplateSlots(ctx context.Context) ([]storage.TemplateSlotRecord, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	records, err := s.store.ListTemplateSlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("list template slots: %w", err)
	}
	return records, nil
}

// UpsertTemplateSlot validates and stores one weekly availability window.
func (s *Service) UpsertTemplateSlot(ctx context.Context, input TemplateSlotInput) (storage.TemplateSlotRecord, error) {
	if s == nil || s.store == nil {
		return storage.TemplateSlotRecord{}, ErrStoreNotConfigured
	}
	if input.DayOfWeek < 0 || input.DayOfWeek > 6 {
		return storage.TemplateSlotRecord{}, ErrInvalidSlot
	}
	start, err := schedule.ParseTimeOfDay(input.Start)
	if err != nil {
		return storage.TemplateSlotRecord{}, ErrInvalidSlot
	}
	end, err := schedule.ParseTimeOfDay(input.End)
	if err != nil {
		return storage.TemplateSlotRecord{}, ErrInvalidSlot
	}
	if !start.Before(end) {
		return storage.TemplateSlotRecord{}, ErrInvalidSlot
	}

	slotID, err := s.newID()
	if err != nil {
		return storage.TemplateSlotRecord{}, fmt.Errorf("generate slot id: %w", err)
	}
	record := storage.TemplateSlotRecord{
		ID:          slotID,
		DayOfWeek:   input.DayOfWeek,
		StartTime:   start.String(),
		EndTime:     end.String(),
		IsAvailable: input.Available,
	}
	if err := s.store.PutTemplateSlot(ctx, record); err != nil {
		return storage.TemplateSlotRecord{}, fmt.Errorf("store template slot: %w", err)
	}
	return record, nil
}

// RemoveTemplateSlot deletes one weekly availability window.
func (s *Service) RemoveTemplateSlot(ctx context.Context, slotID string) error {
	if s == nil || s.store == nil {
		return ErrStoreNotConfigured
	}
	slotID = strings.TrimSpace(slotID)
	if slotID == "" {
		return ErrNotFound
	}
	if err := s.store.DeleteTemplateSlot(ctx, slotID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete template slot: %w", err)
	}
	return nil
}

// SessionsOnDate lists every session held on one calendar date.
func (s *Service) SessionsOnDate(ctx context.Context, date time.Time) ([]storage.SessionRecord, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	if date.IsZero() {
		return nil, ErrInvalidDate
	}
	records, err := s.store.ListSessionsByDate(ctx, date.Format(DateFormat))
	if err != nil {
		return nil, fmt.Errorf("list sessions by date: %w", err)
	}
	return records, nil
}

// Request returns one consultation request by id.
func (s *Service) Request(ctx context.Context, requestID string) (storage.RequestRecord, error) {
	if s == nil || s.store == nil {
		return storage.RequestRecord{}, ErrStoreNotConfigured
	}
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return storage.RequestRecord{}, ErrNotFound
	}
	record, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.RequestRecord{}, ErrNotFound
		}
		return storage.RequestRecord{}, fmt.Errorf("load request: %w", err)
	}
	return record, nil
}

// Requests lists recent consultation requests for the admin area.
func (s *Service) Requests(ctx context.Context, limit int) ([]storage.RequestRecord, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	if limit <= 0 {
		limit = 50
	}
	records, err := s.store.ListRequests(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return records, nil
}

// MarkRequestContacted transitions one consultation request to contacted.
func (s *Service) MarkRequestContacted(ctx context.Context, requestID string) (storage.RequestRecord, error) {
	return s.transitionRequest(ctx, requestID, storage.RequestStatusContacted)
}

// CloseRequest transitions one consultation request to closed.
func (s *Service) CloseRequest(ctx context.Context, requestID string) (storage.RequestRecord, error) {
	return s.transitionRequest(ctx, requestID, storage.RequestStatusClosed)
}

func (s *Service) transitionRequest(ctx context.Context, requestID string, status string) (storage.RequestRecord, error) {
	if s == nil || s.store == nil {
		return storage.RequestRecord{}, ErrStoreNotConfigured
	}
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return storage.RequestRecord{}, ErrNotFound
	}
	record, err := s.store.UpdateRequestStatus(ctx, requestID, status)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.RequestRecord{}, ErrNotFound
		}
		return storage.RequestRecord{}, fmt.Errorf("update request status: %w", err)
	}
	return record, nil
}

func (s *Service) outboxEventFor(eventType string, dedupeKey string, payload any, now time.Time) (storage.OutboxEventRecord, error) {
	eventID, err := s.newID()
	if err != nil {
		return storage.OutboxEventRecord{}, fmt.Errorf("generate event id: %w", err)
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return storage.OutboxEventRecord{}, fmt.Errorf("encode event payload: %w", err)
	}
	return storage.OutboxEventRecord{
		ID:            eventID,
		EventType:     eventType,
		PayloadJSON:   string(payloadJSON),
		DedupeKey:     dedupeKey,
		Status:        storage.OutboxStatusPending,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (s *Service) nowUTC() time.Time {
	if s == nil || s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}
