// Package schedule computes bookable time windows for a specific date from
// a weekly recurring slot template and the bookings already taken. The
// resolver is a pure function of its inputs; persistence and template
// editing live with the booking service.
package schedule

import (
	"sort"
	"time"
)

// TemplateSlot is one recurring weekly availability window.
type TemplateSlot struct {
	DayOfWeek time.Weekday
	Start     TimeOfDay
	End       TimeOfDay
	// Available toggles the window without deleting it from the template.
	Available bool
}

// BookedSlot is an already-reserved window on a specific calendar date.
type BookedSlot struct {
	Date  time.Time
	Start TimeOfDay
	End   TimeOfDay
}

// Slot is a free bookable window derived for one date. Never persisted;
// recomputed on every query.
type Slot struct {
	Start TimeOfDay
	End   TimeOfDay
}

// SlotsForDate returns the free windows for date, ascending by start time.
//
// Template entries are filtered to the date's weekday and Available=true,
// then any entry that overlaps a booking on the same date is removed.
// Overlap uses the half-open interval rule (existing.Start < slot.End &&
// slot.Start < existing.End) rather than exact start/end pair equality, so
// a booking with different but overlapping times still blocks the window. A weekday with no template entries yields an empty
// slice. Duplicate template entries are not collapsed; template integrity
// belongs to the admin workflow.
func SlotsForDate(date time.Time, template []TemplateSlot, booked []BookedSlot) []Slot {
	weekday := date.Weekday()

	var out []Slot
	for _, entry := range template {
		if entry.DayOfWeek != weekday || !entry.Available {
			continue
		}
		if isBlocked(entry, date, booked) {
			continue
		}
		out = append(out, Slot{Start: entry.Start, End: entry.End})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

func isBlocked(entry TemplateSlot, date time.Time, booked []BookedSlot) bool {
	for _, b := range booked {
		if !sameDate(b.Date, date) {
			continue
		}
		if b.Start.Before(entry.End) && entry.Start.Before(b.End) {
			return true
		}
	}
	return false
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
