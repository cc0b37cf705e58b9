package planner

import (
	"time"

	"github.com/noah-isme/planner-go-api/internal/models"
	"github.com/noah-isme/planner-go-api/internal/snowflake"
)

// NextClassWindow is how many calendar days, starting with the reference
// day, are scanned for an upcoming meeting.
const NextClassWindow = 14

// NextClassResult describes the next meeting to attend.
type NextClassResult struct {
	CourseID snowflake.ID
	Code     string
	Name     string
	Location string
	Start    time.Time
	// Relative is "9:30 AM" later today, "9:30 AM Tomorrow" or "9:30 AM Wednesday".
	Relative string
	TimeOnly string
}

// NextClass finds the earliest meeting of the first day, scanning forward
// from reference, that still has a meeting starting strictly after
// reference. Online courses are ignored. Day proximity wins: a later day is
// never consulted once an earlier one yields a candidate.
func NextClass(courses []models.Course, reference time.Time) (NextClassResult, bool) {
	y, m, d := reference.Date()

	for offset := 0; offset < NextClassWindow; offset++ {
		date := time.Date(y, m, d+offset, 0, 0, 0, 0, reference.Location())

		var best NextClassResult
		found := false
		for _, course := range courses {
			if course.Online {
				continue
			}
			for _, slot := range course.Schedule.On(date.Weekday()) {
				start := slot.StartTime.On(date)
				if !start.After(reference) {
					continue
				}
				if found && !start.Before(best.Start) {
					continue
				}
				best = NextClassResult{
					CourseID: course.ID,
					Code:     course.Code,
					Name:     course.Name,
					Location: slot.Location,
					Start:    start,
					TimeOnly: slot.StartTime.String(),
				}
				found = true
			}
		}

		if found {
			best.Relative = relativeLabel(best.TimeOnly, offset, date.Weekday())
			return best, true
		}
	}

	return NextClassResult{}, false
}

// relativeLabel is keyed on the day offset rather than the weekday so a
// meeting exactly a week ahead is not labelled as today.
func relativeLabel(clock string, offset int, weekday time.Weekday) string {
	switch offset {
	case 0:
		return clock
	case 1:
		return clock + " Tomorrow"
	default:
		return clock + " " + weekday.String()
	}
}
