// Package ical renders calendar artifacts for confirmed booking requests:
// an iCalendar event body and a Google Calendar template URL. Both are pure
// formatting over booking fields.
package ical

import (
	"net/url"
	"regexp"
	"strings"
)

// Booking carries the fields a calendar entry is derived from.
type Booking struct {
	ID            string
	PreferredDate string // YYYY-MM-DD
	PreferredTime string // stored time-range string, e.g. "09:00 - 10:00"
	IssueArea     string
	Description   string
}

const (
	eventSummary  = "Stretch Session with Fab — The Stretch Lad"
	eventLocation = "Singapore (Mobile — Fab comes to you)"
	defaultStart  = "090000"
	defaultEnd    = "100000"
)

var (
	startTimePattern = regexp.MustCompile(`^(\d{2}):(\d{2})`)
	endTimePattern   = regexp.MustCompile(`(\d{2}):(\d{2})$`)
)

// eventWindow derives compact DTSTART/DTEND stamps from the stored date and
// time-range string. When no HH:MM prefix or suffix parses, the window
// defaults to 09:00–10:00.
func (b Booking) eventWindow() (string, string) {
	date := strings.ReplaceAll(b.PreferredDate, "-", "")
	start := date + "T" + defaultStart
	end := date + "T" + defaultEnd
	if m := startTimePattern.FindStringSubmatch(strings.TrimSpace(b.PreferredTime)); m != nil {
		start = date + "T" + m[1] + m[2] + "00"
	}
	if m := endTimePattern.FindStringSubmatch(strings.TrimSpace(b.PreferredTime)); m != nil {
		end = date + "T" + m[1] + m[2] + "00"
	}
	return start, end
}

func (b Booking) issueArea() string {
	if strings.TrimSpace(b.IssueArea) == "" {
		return "General"
	}
	return b.IssueArea
}

// Event renders an iCalendar document for the booking. Lines are joined
// with CRLF per RFC 5545 and newlines in the description are escaped.
func (b Booking) Event() string {
	start, end := b.eventWindow()
	uid := b.ID
	if uid == "" {
		uid = "pending"
	}
	description := "Issue: " + b.issueArea() + "\\n" + strings.ReplaceAll(b.Description, "\n", "\\n")
	return strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//FabTheStretchLad//Booking//EN",
		"BEGIN:VEVENT",
		"UID:" + uid + "@fabthestretchlad.com",
		"DTSTART:" + start,
		"DTEND:" + end,
		"SUMMARY:" + eventSummary,
		"LOCATION:Singapore (Mobile)",
		"DESCRIPTION:" + description,
		"STATUS:CONFIRMED",
		"END:VEVENT",
		"END:VCALENDAR",
	}, "\r\n")
}

// GoogleCalendarURL builds a calendar.google.com render link prefilled with
// the booking window.
func (b Booking) GoogleCalendarURL() string {
	start, end := b.eventWindow()
	params := url.Values{}
	params.Set("action", "TEMPLATE")
	params.Set("text", eventSummary)
	params.Set("dates", start+"/"+end)
	params.Set("details", "Issue Area: "+b.issueArea()+"\n"+b.Description)
	params.Set("location", eventLocation)
	return "https://calendar.google.com/calendar/render?" + params.Encode()
}
