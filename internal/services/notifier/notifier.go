package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/isaacyap/stretchlad/internal/ical"
	bookingdomain "github.com/isaacyap/stretchlad/internal/services/booking/domain"
	"github.com/isaacyap/stretchlad/internal/services/notifier/render"
)

// ErrUnknownEventType indicates an outbox event the dispatcher cannot handle.
var ErrUnknownEventType = errors.New("unknown event type")

// Dispatcher fans one booking outbox event out to the configured relays.
// An unconfigured relay is skipped rather than treated as a failure, so a
// deployment without SMTP still delivers Telegram alerts.
type Dispatcher struct {
	telegram *TelegramRelay
	email    *EmailRelay
	logger   *log.Logger
}

// NewDispatcher constructs the notification dispatcher.
func NewDispatcher(telegram *TelegramRelay, email *EmailRelay, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{
		telegram: telegram,
		email:    email,
		logger:   logger,
	}
}

// Dispatch handles one outbox event by type.
func (d *Dispatcher) Dispatch(ctx context.Context, eventType string, payloadJSON string) error {
	if d == nil {
		return fmt.Errorf("dispatcher is not configured")
	}
	switch eventType {
	case bookingdomain.EventRequestReceived:
		return d.dispatchRequest(ctx, payloadJSON)
	case bookingdomain.EventSessionConfirmed:
		return d.dispatchSession(ctx, payloadJSON)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEventType, eventType)
	}
}

func (d *Dispatcher) dispatchRequest(ctx context.Context, payloadJSON string) error {
	var booking render.Booking
	if err := json.Unmarshal([]byte(payloadJSON), &booking); err != nil {
		return fmt.Errorf("decode request payload: %w", err)
	}

	if d.telegram.Configured() {
		if err := d.telegram.Send(ctx, render.TelegramMessage(booking)); err != nil {
			return fmt.Errorf("telegram alert: %w", err)
		}
	} else {
		d.logger.Printf("telegram relay not configured, skipping alert for request %s", booking.ID)
	}

	if strings.TrimSpace(booking.Email) == "" {
		return nil
	}
	if !d.email.Configured() {
		d.logger.Printf("email relay not configured, skipping confirmation for request %s", booking.ID)
		return nil
	}
	ics := ical.Booking{
		ID:            booking.ID,
		PreferredDate: booking.PreferredDate,
		PreferredTime: booking.PreferredTime,
		IssueArea:     booking.IssueArea,
		Description:   booking.Description,
	}.Event()
	if err := d.email.Send(booking.Email, render.EmailSubject(booking), render.EmailHTML(booking), ics); err != nil {
		return fmt.Errorf("confirmation email: %w", err)
	}
	return nil
}

func (d *Dispatcher) dispatchSession(ctx context.Context, payloadJSON string) error {
	var session render.Session
	if err := json.Unmarshal([]byte(payloadJSON), &session); err != nil {
		return fmt.Errorf("decode session payload: %w", err)
	}
	if !d.telegram.Configured() {
		d.logger.Printf("telegram relay not configured, skipping alert for session %s", session.ID)
		return nil
	}
	if err := d.telegram.Send(ctx, render.SessionMessage(session)); err != nil {
		return fmt.Errorf("telegram alert: %w", err)
	}
	return nil
}
