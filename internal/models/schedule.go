package models

import (
	"fmt"
	"strings"
	"time"
)

// MeetingSlot is one class meeting within a day.
type MeetingSlot struct {
	StartTime ClockTime `json:"startTime"`
	EndTime   ClockTime `json:"endTime"`
	Location  string    `json:"location"`
}

// Validate checks the slot ends after it starts within the same day.
func (m MeetingSlot) Validate() error {
	if !m.StartTime.Valid() || !m.EndTime.Valid() {
		return invalid("schedule", "meeting time out of range")
	}
	if m.EndTime <= m.StartTime {
		return invalid("schedule", fmt.Sprintf("meeting ending %s must end after %s", m.EndTime, m.StartTime))
	}
	return nil
}

// WeeklySchedule maps every weekday to zero or more meeting slots.
type WeeklySchedule struct {
	Monday    []MeetingSlot `json:"monday"`
	Tuesday   []MeetingSlot `json:"tuesday"`
	Wednesday []MeetingSlot `json:"wednesday"`
	Thursday  []MeetingSlot `json:"thursday"`
	Friday    []MeetingSlot `json:"friday"`
	Saturday  []MeetingSlot `json:"saturday"`
	Sunday    []MeetingSlot `json:"sunday"`
}

// Weekdays lists the schedule keys in Monday-first order.
var Weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// WeekdayKey returns the lower-case document key of a weekday.
func WeekdayKey(day time.Weekday) string {
	return strings.ToLower(day.String())
}

func (w *WeeklySchedule) day(day time.Weekday) *[]MeetingSlot {
	switch day {
	case time.Monday:
		return &w.Monday
	case time.Tuesday:
		return &w.Tuesday
	case time.Wednesday:
		return &w.Wednesday
	case time.Thursday:
		return &w.Thursday
	case time.Friday:
		return &w.Friday
	case time.Saturday:
		return &w.Saturday
	default:
		return &w.Sunday
	}
}

// On returns the meetings scheduled on a weekday.
func (w WeeklySchedule) On(day time.Weekday) []MeetingSlot {
	return *w.day(day)
}

// Set replaces the meetings of a weekday.
func (w *WeeklySchedule) Set(day time.Weekday, slots ...MeetingSlot) *WeeklySchedule {
	*w.day(day) = append([]MeetingSlot(nil), slots...)
	return w
}

// Add appends a meeting to a weekday.
func (w *WeeklySchedule) Add(day time.Weekday, slot MeetingSlot) *WeeklySchedule {
	list := w.day(day)
	*list = append(*list, slot)
	return w
}

// Clear removes every meeting of a weekday.
func (w *WeeklySchedule) Clear(day time.Weekday) *WeeklySchedule {
	*w.day(day) = nil
	return w
}

// HasMeetings reports whether at least one weekday has a meeting.
func (w WeeklySchedule) HasMeetings() bool {
	for _, day := range Weekdays {
		if len(w.On(day)) > 0 {
			return true
		}
	}
	return false
}

// Validate checks every meeting slot.
func (w WeeklySchedule) Validate() error {
	for _, day := range Weekdays {
		for _, slot := range w.On(day) {
			if err := slot.Validate(); err != nil {
				return invalid("schedule."+WeekdayKey(day), err.(*ValidationError).Reason)
			}
		}
	}
	return nil
}
