package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeOfDay is a minute-resolution wall-clock time within one day.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses a 24-hour "HH:MM" string.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	value = strings.TrimSpace(value)
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("invalid time %q: expected HH:MM", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q: %w", value, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid minute in %q: %w", value, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("time %q out of range", value)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// MustParseTimeOfDay parses a 24-hour "HH:MM" string and panics on error.
// Intended for fixed literals in tests and seed data.
func MustParseTimeOfDay(value string) TimeOfDay {
	t, err := ParseTimeOfDay(value)
	if err != nil {
		panic(err)
	}
	return t
}

// Minutes returns the minute offset from midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Before reports whether t is earlier than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.Minutes() < other.Minutes()
}

// String formats the time as zero-padded 24-hour "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Format12 renders the time for display, e.g. "2:30 PM". Midnight renders
// as "12:MM AM" and noon as "12:MM PM".
func (t TimeOfDay) Format12() string {
	suffix := "AM"
	if t.Hour >= 12 {
		suffix = "PM"
	}
	hour := t.Hour
	switch {
	case hour == 0:
		hour = 12
	case hour > 12:
		hour -= 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, t.Minute, suffix)
}

// ParseTime12 parses the 12-hour display form produced by Format12.
func ParseTime12(value string) (TimeOfDay, error) {
	value = strings.TrimSpace(value)
	fields := strings.Fields(value)
	if len(fields) != 2 {
		return TimeOfDay{}, fmt.Errorf("invalid 12-hour time %q", value)
	}
	suffix := strings.ToUpper(fields[1])
	if suffix != "AM" && suffix != "PM" {
		return TimeOfDay{}, fmt.Errorf("invalid meridiem in %q", value)
	}
	parts := strings.SplitN(fields[0], ":", 2)
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("invalid 12-hour time %q", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 1 || hour > 12 {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid minute in %q", value)
	}
	if suffix == "AM" {
		if hour == 12 {
			hour = 0
		}
	} else if hour != 12 {
		hour += 12
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}
