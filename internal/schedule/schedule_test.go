package schedule

import (
	"testing"
	"time"
)

// monday is a fixed Monday used across resolver tests.
var monday = time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

func slot(day time.Weekday, start, end string) TemplateSlot {
	return TemplateSlot{
		DayOfWeek: day,
		Start:     MustParseTimeOfDay(start),
		End:       MustParseTimeOfDay(end),
		Available: true,
	}
}

func TestSlotsForDateEmptyWeekday(t *testing.T) {
	template := []TemplateSlot{slot(time.Tuesday, "09:00", "10:00")}

	got := SlotsForDate(monday, template, nil)
	if len(got) != 0 {
		t.Fatalf("expected no slots for an empty weekday, got %d", len(got))
	}
}

func TestSlotsForDateExcludesExactBooking(t *testing.T) {
	template := []TemplateSlot{slot(time.Monday, "09:00", "10:00")}
	booked := []BookedSlot{{
		Date:  monday,
		Start: MustParseTimeOfDay("09:00"),
		End:   MustParseTimeOfDay("10:00"),
	}}

	if got := SlotsForDate(monday, template, booked); len(got) != 0 {
		t.Fatalf("booked slot should be excluded, got %v", got)
	}
	if got := SlotsForDate(monday, template, nil); len(got) != 1 {
		t.Fatalf("free slot should be returned, got %v", got)
	}
}

func TestSlotsForDateExcludesOverlappingBooking(t *testing.T) {
	template := []TemplateSlot{slot(time.Monday, "09:00", "10:00")}
	booked := []BookedSlot{{
		Date:  monday,
		Start: MustParseTimeOfDay("09:30"),
		End:   MustParseTimeOfDay("10:30"),
	}}

	if got := SlotsForDate(monday, template, booked); len(got) != 0 {
		t.Fatalf("overlapping booking should block the slot, got %v", got)
	}
}

func TestSlotsForDateAdjacentBookingDoesNotBlock(t *testing.T) {
	template := []TemplateSlot{slot(time.Monday, "09:00", "10:00")}
	booked := []BookedSlot{{
		Date:  monday,
		Start: MustParseTimeOfDay("10:00"),
		End:   MustParseTimeOfDay("11:00"),
	}}

	if got := SlotsForDate(monday, template, booked); len(got) != 1 {
		t.Fatalf("back-to-back booking must not block, got %v", got)
	}
}

func TestSlotsForDateIgnoresOtherDates(t *testing.T) {
	template := []TemplateSlot{slot(time.Monday, "09:00", "10:00")}
	nextMonday := monday.AddDate(0, 0, 7)
	booked := []BookedSlot{{
		Date:  nextMonday,
		Start: MustParseTimeOfDay("09:00"),
		End:   MustParseTimeOfDay("10:00"),
	}}

	if got := SlotsForDate(monday, template, booked); len(got) != 1 {
		t.Fatalf("booking on another date must not block, got %v", got)
	}
}

func TestSlotsForDateSortedAscending(t *testing.T) {
	template := []TemplateSlot{
		slot(time.Monday, "14:00", "15:00"),
		slot(time.Monday, "08:00", "09:00"),
		slot(time.Monday, "10:30", "11:30"),
	}

	got := SlotsForDate(monday, template, nil)
	if len(got) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if !got[i-1].Start.Before(got[i].Start) {
			t.Fatalf("slots out of order: %v", got)
		}
	}
}

func TestSlotsForDateSkipsUnavailableEntries(t *testing.T) {
	entry := slot(time.Monday, "09:00", "10:00")
	entry.Available = false

	if got := SlotsForDate(monday, []TemplateSlot{entry}, nil); len(got) != 0 {
		t.Fatalf("unavailable entry should be skipped, got %v", got)
	}
}

func TestSlotsForDateKeepsDuplicateTemplateEntries(t *testing.T) {
	template := []TemplateSlot{
		slot(time.Monday, "09:00", "10:00"),
		slot(time.Monday, "09:00", "10:00"),
	}

	if got := SlotsForDate(monday, template, nil); len(got) != 2 {
		t.Fatalf("duplicate template entries pass through, got %d", len(got))
	}
}
