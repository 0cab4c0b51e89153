package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"
)

func TestTelegramRelaySendsHTMLMessage(t *testing.T) {
	t.Parallel()

	var captured sendMessageRequest
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	relay := NewTelegramRelay(TelegramConfig{
		BotToken: "bot-token",
		ChatID:   "12345",
		Endpoint: server.URL,
	})
	if err := relay.Send(context.Background(), "<b>hello</b>"); err != nil {
		t.Fatalf("send: %v", err)
	}

	if path != "/botbot-token/sendMessage" {
		t.Fatalf("path = %q", path)
	}
	if captured.ChatID != "12345" || captured.Text != "<b>hello</b>" || captured.ParseMode != "HTML" {
		t.Fatalf("unexpected request: %+v", captured)
	}
}

func TestTelegramRelayRejectsAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false,"description":"chat not found"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	relay := NewTelegramRelay(TelegramConfig{BotToken: "t", ChatID: "c", Endpoint: server.URL})
	err := relay.Send(context.Background(), "hello")
	if err == nil || !strings.Contains(err.Error(), "status 400") {
		t.Fatalf("error = %v, want status 400", err)
	}
}

func TestTelegramRelayUnconfigured(t *testing.T) {
	t.Parallel()

	relay := NewTelegramRelay(TelegramConfig{})
	if relay.Configured() {
		t.Fatal("relay without credentials reports configured")
	}
	if err := relay.Send(context.Background(), "hello"); !errors.Is(err, ErrTelegramNotConfigured) {
		t.Fatalf("error = %v, want ErrTelegramNotConfigured", err)
	}
}

func TestEmailRelaySendsMultipartWithInvite(t *testing.T) {
	t.Parallel()

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	relay := NewEmailRelay(EmailConfig{
		Host: "smtp.example.com", Port: 587,
		Username: "mailer@example.com", Password: "secret",
		From: "hello@example.com",
	}, func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	})

	if err := relay.Send("priya@example.com", "Booking Received", "<p>hi</p>", "BEGIN:VCALENDAR\r\nEND:VCALENDAR"); err != nil {
		t.Fatalf("send: %v", err)
	}

	if gotAddr != "smtp.example.com:587" || gotFrom != "hello@example.com" {
		t.Fatalf("addr = %q, from = %q", gotAddr, gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "priya@example.com" {
		t.Fatalf("to = %v", gotTo)
	}
	message := string(gotMsg)
	for _, want := range []string{
		"Subject:", "multipart/mixed", "text/html", "text/calendar", "invite.ics",
	} {
		if !strings.Contains(message, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestEmailRelayUnconfigured(t *testing.T) {
	t.Parallel()

	relay := NewEmailRelay(EmailConfig{}, func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("sendMail called on unconfigured relay")
		return nil
	})
	if err := relay.Send("a@example.com", "s", "b", ""); !errors.Is(err, ErrEmailNotConfigured) {
		t.Fatalf("error = %v, want ErrEmailNotConfigured", err)
	}
}

func TestDispatchRequestSendsTelegramAndEmail(t *testing.T) {
	t.Parallel()

	var telegramBody sendMessageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&telegramBody)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	var mailed []string
	telegram := NewTelegramRelay(TelegramConfig{BotToken: "t", ChatID: "c", Endpoint: server.URL})
	email := NewEmailRelay(EmailConfig{
		Host: "smtp.example.com", Port: 587, Username: "u", From: "f@example.com",
	}, func(_ string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		mailed = append(mailed, to[0])
		if !strings.Contains(string(msg), "BEGIN:VCALENDAR") {
			t.Error("mail missing calendar invite")
		}
		return nil
	})
	dispatcher := NewDispatcher(telegram, email, log.New(io.Discard, "", 0))

	payload := `{"id":"req-1","name":"Priya","email":"priya@example.com","description":"Tight hamstrings","preferred_date":"2026-09-07","preferred_time":"09:00 - 10:00"}`
	if err := dispatcher.Dispatch(context.Background(), "booking.request_received", payload); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !strings.Contains(telegramBody.Text, "Priya") {
		t.Fatalf("telegram alert missing name: %q", telegramBody.Text)
	}
	if len(mailed) != 1 || mailed[0] != "priya@example.com" {
		t.Fatalf("mailed = %v", mailed)
	}
}

func TestDispatchRequestWithoutEmailSkipsMail(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	telegram := NewTelegramRelay(TelegramConfig{BotToken: "t", ChatID: "c", Endpoint: server.URL})
	email := NewEmailRelay(EmailConfig{
		Host: "smtp.example.com", Port: 587, Username: "u", From: "f@example.com",
	}, func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("sendMail called for booking without email")
		return nil
	})
	dispatcher := NewDispatcher(telegram, email, log.New(io.Discard, "", 0))

	payload := `{"id":"req-1","name":"Sam","description":"stiff back"}`
	if err := dispatcher.Dispatch(context.Background(), "booking.request_received", payload); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
}

func TestDispatchSessionSendsTelegramOnly(t *testing.T) {
	t.Parallel()

	var telegramBody sendMessageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&telegramBody)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	telegram := NewTelegramRelay(TelegramConfig{BotToken: "t", ChatID: "c", Endpoint: server.URL})
	dispatcher := NewDispatcher(telegram, NewEmailRelay(EmailConfig{}, nil), log.New(io.Discard, "", 0))

	payload := `{"id":"sess-1","client_id":"client-1","date":"2026-09-07","start":"09:00","end":"10:00"}`
	if err := dispatcher.Dispatch(context.Background(), "booking.session_confirmed", payload); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !strings.Contains(telegramBody.Text, "SESSION BOOKED") {
		t.Fatalf("unexpected alert: %q", telegramBody.Text)
	}
	if !strings.Contains(telegramBody.Text, "Mon, 7 Sep 2026") {
		t.Fatalf("alert missing formatted date: %q", telegramBody.Text)
	}
}

func TestDispatchUnknownEventType(t *testing.T) {
	t.Parallel()

	dispatcher := NewDispatcher(NewTelegramRelay(TelegramConfig{}), NewEmailRelay(EmailConfig{}, nil), log.New(io.Discard, "", 0))
	if err := dispatcher.Dispatch(context.Background(), "mystery.event", "{}"); !errors.Is(err, ErrUnknownEventType) {
		t.Fatalf("error = %v, want ErrUnknownEventType", err)
	}
}
