// Package render builds notification message bodies for booking events.
package render

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/isaacyap/stretchlad/internal/ical"
)

// Booking carries the fields rendered into notification messages. JSON tags
// match the booking outbox event payload.
type Booking struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Telegram      string `json:"telegram"`
	Instagram     string `json:"instagram"`
	Description   string `json:"description"`
	PreferredDate string `json:"preferred_date"`
	PreferredTime string `json:"preferred_time"`
	IssueArea     string `json:"issue_area"`
}

const missing = "—"

// TelegramMessage renders the studio's new-booking alert in Telegram HTML.
func TelegramMessage(booking Booking) string {
	var b strings.Builder
	b.WriteString("🔔 <b>NEW BOOKING — Fab The Stretch Lad</b>\n\n")
	fmt.Fprintf(&b, "👤 <b>Name:</b> %s\n", orDash(booking.Name))
	fmt.Fprintf(&b, "📧 <b>Email:</b> %s\n", orDash(booking.Email))
	fmt.Fprintf(&b, "📱 <b>Phone:</b> %s\n", orDash(booking.Phone))
	fmt.Fprintf(&b, "💬 <b>Telegram:</b> %s\n", handleOrDash(booking.Telegram))
	fmt.Fprintf(&b, "📸 <b>Instagram:</b> %s\n", handleOrDash(booking.Instagram))
	fmt.Fprintf(&b, "📅 <b>Date:</b> %s\n", longDate(booking.PreferredDate, "Mon, 2 Jan 2006", "Not specified"))
	fmt.Fprintf(&b, "⏰ <b>Time:</b> %s\n", orDefault(booking.PreferredTime, "Not specified"))
	fmt.Fprintf(&b, "🎯 <b>Issue Area:</b> %s\n", orDash(booking.IssueArea))
	fmt.Fprintf(&b, "✏️ <b>Description:</b> %s", orDash(booking.Description))
	return b.String()
}

// ReferenceID derives the short booking reference shown to clients.
func ReferenceID(bookingID string) string {
	id := strings.TrimSpace(bookingID)
	if id == "" {
		return "PENDING"
	}
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

// EmailSubject renders the confirmation email subject line.
func EmailSubject(booking Booking) string {
	return fmt.Sprintf("Booking Received — Fab The Stretch Lad #%s", ReferenceID(booking.ID))
}

// EmailHTML renders the confirmation email body. All booking fields are
// HTML-escaped before interpolation.
func EmailHTML(booking Booking) string {
	calendarURL := ical.Booking{
		ID:            booking.ID,
		PreferredDate: booking.PreferredDate,
		PreferredTime: booking.PreferredTime,
		IssueArea:     booking.IssueArea,
		Description:   booking.Description,
	}.GoogleCalendarURL()

	refID := html.EscapeString(ReferenceID(booking.ID))
	safeName := html.EscapeString(booking.Name)
	safeDate := html.EscapeString(longDate(booking.PreferredDate, "Monday, 2 January 2006", "To be confirmed"))
	safeTime := html.EscapeString(orDefault(booking.PreferredTime, "To be confirmed"))
	safeIssue := html.EscapeString(orDefault(booking.IssueArea, "General"))
	safeDesc := html.EscapeString(orDash(booking.Description))

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><meta name="viewport" content="width=device-width,initial-scale=1"></head>
<body style="margin:0;padding:0;background:#0a0a0a;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;">
<div style="max-width:600px;margin:0 auto;padding:20px;">
  <div style="background:#1a1a1a;border-radius:16px;overflow:hidden;border:1px solid rgba(255,255,255,0.1);">
    <div style="background:#dc2626;padding:32px 24px;text-align:center;">
      <h1 style="color:#fff;margin:8px 0 0;font-size:28px;font-weight:900;">FAB</h1>
      <p style="color:rgba(255,255,255,0.7);margin:2px 0 0;font-size:10px;letter-spacing:3px;text-transform:uppercase;">The Stretch Lad</p>
    </div>
    <div style="padding:32px 24px;">
      <div style="text-align:center;margin-bottom:24px;">
        <h2 style="color:#fff;margin:0 0 8px;font-size:24px;">Booking Received!</h2>
        <p style="color:#a3a3a3;margin:0;font-size:14px;">Reference: <strong style="color:#dc2626;">#`)
	b.WriteString(refID)
	b.WriteString(`</strong></p>
      </div>
      <div style="background:rgba(255,255,255,0.05);border:1px solid rgba(255,255,255,0.1);border-radius:12px;padding:20px;margin-bottom:24px;">
        <table style="width:100%;border-collapse:collapse;">
`)
	writeRow(&b, "Name", safeName)
	writeRow(&b, "Date", safeDate)
	writeRow(&b, "Time", safeTime)
	writeRow(&b, "Location", "Singapore (Mobile)")
	writeRow(&b, "Issue Area", safeIssue)
	writeRow(&b, "Details", safeDesc)
	b.WriteString(`        </table>
      </div>
      <p style="color:#a3a3a3;font-size:14px;text-align:center;margin-bottom:24px;">
        Fab will get back to you within <strong style="color:#fff;">24 hours</strong> to confirm your session.
      </p>
      <div style="text-align:center;">
        <a href="`)
	b.WriteString(html.EscapeString(calendarURL))
	b.WriteString(`" target="_blank" style="display:inline-block;background:#dc2626;color:#fff;padding:12px 24px;border-radius:24px;text-decoration:none;font-size:14px;font-weight:700;">
          Add to Google Calendar
        </a>
      </div>
    </div>
    <div style="border-top:1px solid rgba(255,255,255,0.1);padding:20px 24px;text-align:center;">
      <p style="color:#525252;font-size:12px;margin:0;">
        Fab The Stretch Lad — <a href="https://fabthestretchlad.com" style="color:#dc2626;text-decoration:none;">fabthestretchlad.com</a>
      </p>
    </div>
  </div>
</div>
</body>
</html>`)
	return b.String()
}

func writeRow(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, `          <tr><td style="padding:8px 0;color:#a3a3a3;font-size:13px;width:120px;">%s</td><td style="padding:8px 0;color:#fff;font-size:14px;">%s</td></tr>
`, label, value)
}

func orDash(value string) string {
	return orDefault(value, missing)
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func handleOrDash(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return missing
	}
	if !strings.HasPrefix(value, "@") {
		value = "@" + value
	}
	return value
}

// longDate formats a YYYY-MM-DD date with the given layout, falling back
// when the date is empty or malformed.
func longDate(date string, layout string, fallback string) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return fallback
	}
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return fallback
	}
	return parsed.Format(layout)
}
