package notifier

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
)

// ErrEmailNotConfigured indicates the mailer is missing SMTP credentials.
var ErrEmailNotConfigured = errors.New("email relay is not configured")

// EmailConfig wires the SMTP confirmation mailer.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SendMailFunc matches smtp.SendMail so tests can capture outgoing mail.
type SendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailRelay sends booking confirmation emails with an attached calendar
// invite over SMTP.
type EmailRelay struct {
	cfg      EmailConfig
	sendMail SendMailFunc
}

// NewEmailRelay constructs the SMTP mailer. Missing credentials are allowed;
// sends then fail with ErrEmailNotConfigured.
func NewEmailRelay(cfg EmailConfig, sendMail SendMailFunc) *EmailRelay {
	if sendMail == nil {
		sendMail = smtp.SendMail
	}
	return &EmailRelay{cfg: cfg, sendMail: sendMail}
}

// Configured reports whether the mailer has credentials to deliver mail.
func (r *EmailRelay) Configured() bool {
	return r != nil &&
		strings.TrimSpace(r.cfg.Host) != "" &&
		r.cfg.Port > 0 &&
		strings.TrimSpace(r.cfg.Username) != "" &&
		strings.TrimSpace(r.cfg.From) != ""
}

// Send delivers one HTML email with an optional text/calendar part.
func (r *EmailRelay) Send(to string, subject string, htmlBody string, icsContent string) error {
	if !r.Configured() {
		return ErrEmailNotConfigured
	}
	to = strings.TrimSpace(to)
	if to == "" {
		return fmt.Errorf("recipient is required")
	}

	msg := buildMessage(r.cfg.From, to, subject, htmlBody, icsContent)
	addr := fmt.Sprintf("%s:%d", r.cfg.Host, r.cfg.Port)
	auth := smtp.PlainAuth("", r.cfg.Username, r.cfg.Password, r.cfg.Host)
	if err := r.sendMail(addr, auth, r.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

const mimeBoundary = "stretchlad-mail-boundary"

func buildMessage(from, to, subject, htmlBody, icsContent string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")

	if icsContent == "" {
		b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
		b.WriteString(htmlBody)
		return []byte(b.String())
	}

	fmt.Fprintf(&b, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mimeBoundary)

	fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
	b.WriteString("Content-Type: text/calendar; method=REQUEST; charset=utf-8\r\n")
	b.WriteString("Content-Transfer-Encoding: base64\r\n")
	b.WriteString("Content-Disposition: attachment; filename=invite.ics\r\n\r\n")
	b.WriteString(base64.StdEncoding.EncodeToString([]byte(icsContent)))
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", mimeBoundary)
	return []byte(b.String())
}
