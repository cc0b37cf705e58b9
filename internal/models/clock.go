package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClockTime is a wall-clock time of day, stored as minutes since midnight.
type ClockTime int

const minutesPerDay = 24 * 60

// NewClockTime builds a clock time from a 24-hour hour and minute.
func NewClockTime(hour, minute int) (ClockTime, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid clock time %02d:%02d", hour, minute)
	}
	return ClockTime(hour*60 + minute), nil
}

// MustClockTime parses a clock time and panics on malformed input. Intended for fixtures.
func MustClockTime(value string) ClockTime {
	ct, err := ParseClockTime(value)
	if err != nil {
		panic(err)
	}
	return ct
}

// ParseClockTime accepts "9:30 AM", "9 PM", "12:05am" and 24-hour "14:45".
func ParseClockTime(value string) (ClockTime, error) {
	raw := strings.ToUpper(strings.TrimSpace(value))
	if raw == "" {
		return 0, fmt.Errorf("clock time must not be empty")
	}

	meridiem := ""
	switch {
	case strings.HasSuffix(raw, "AM"):
		meridiem = "AM"
	case strings.HasSuffix(raw, "PM"):
		meridiem = "PM"
	}
	clock := strings.TrimSpace(strings.TrimSuffix(raw, meridiem))

	hourPart, minutePart, hasMinutes := strings.Cut(clock, ":")
	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q", value)
	}
	minute := 0
	if hasMinutes {
		minute, err = strconv.Atoi(minutePart)
		if err != nil || len(minutePart) != 2 {
			return 0, fmt.Errorf("invalid clock time %q", value)
		}
	}

	switch meridiem {
	case "AM", "PM":
		if hour < 1 || hour > 12 {
			return 0, fmt.Errorf("invalid clock time %q", value)
		}
		if hour == 12 {
			hour = 0
		}
		if meridiem == "PM" {
			hour += 12
		}
	default:
		if !hasMinutes {
			return 0, fmt.Errorf("invalid clock time %q", value)
		}
	}

	ct, err := NewClockTime(hour, minute)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q", value)
	}
	return ct, nil
}

// Hour returns the 24-hour hour.
func (c ClockTime) Hour() int { return int(c) / 60 }

// Minute returns the minute within the hour.
func (c ClockTime) Minute() int { return int(c) % 60 }

// Valid reports whether the value lies within a single day.
func (c ClockTime) Valid() bool {
	return c >= 0 && c < minutesPerDay
}

// SinceMidnight returns the offset from midnight.
func (c ClockTime) SinceMidnight() time.Duration {
	return time.Duration(c) * time.Minute
}

// On anchors the clock time to the calendar day of date, in date's location.
func (c ClockTime) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), 0, 0, date.Location())
}

// String formats the value as "9:30 AM".
func (c ClockTime) String() string {
	hour := c.Hour()
	meridiem := "AM"
	if hour >= 12 {
		meridiem = "PM"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, c.Minute(), meridiem)
}

// MarshalText implements encoding.TextMarshaler.
func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ClockTime) UnmarshalText(text []byte) error {
	parsed, err := ParseClockTime(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
