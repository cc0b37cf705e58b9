package models

import (
	"fmt"
	"time"

	"github.com/noah-isme/planner-go-api/internal/snowflake"
)

// Semester is an academic term owning zero or more courses.
type Semester struct {
	ID        snowflake.ID   `json:"id"`
	UserID    string         `json:"userId"`
	StartDate time.Time      `json:"startDate"`
	EndDate   time.Time      `json:"endDate"`
	Term      Term           `json:"term"`
	Year      int            `json:"year"`
	Name      string         `json:"name"`
	CourseIDs []snowflake.ID `json:"courseIds"`
	Status    SemesterStatus `json:"status"`
}

// DefaultSemesterName renders names such as "Fall 2025".
func DefaultSemesterName(term Term, year int) string {
	return fmt.Sprintf("%s %d", term.Title(), year)
}

// ClassifySemester derives the status of a date range relative to now.
func ClassifySemester(start, end, now time.Time) SemesterStatus {
	switch {
	case start.After(now):
		return SemesterUpcoming
	case end.Before(now):
		return SemesterCompleted
	default:
		return SemesterCurrent
	}
}

// Contains reports whether the calendar day of date lies within the semester,
// both ends inclusive, compared in date's location.
func (s Semester) Contains(date time.Time) bool {
	loc := date.Location()
	day := truncateDay(date)
	return !day.Before(truncateDay(s.StartDate.In(loc))) && !day.After(truncateDay(s.EndDate.In(loc)))
}

// HasCourse reports whether the course id is referenced by the semester.
func (s Semester) HasCourse(id snowflake.ID) bool {
	for _, existing := range s.CourseIDs {
		if existing == id {
			return true
		}
	}
	return false
}

// Validate checks the invariants that must hold before the semester is written.
func (s Semester) Validate() error {
	if !s.Term.Valid() {
		return invalid("term", "must be one of fall, spring, summer")
	}
	if s.Year < 1900 || s.Year > 9999 {
		return invalid("year", "out of range")
	}
	if s.StartDate.IsZero() || s.EndDate.IsZero() {
		return invalid("dates", "start and end dates are required")
	}
	if !s.EndDate.After(s.StartDate) {
		return invalid("endDate", "must be after the start date")
	}
	if s.Status != "" && !s.Status.Valid() {
		return invalid("status", "unknown semester status")
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
