package service

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/rs/zerolog"

	"github.com/noah-isme/planner-go-api/internal/models"
	"github.com/noah-isme/planner-go-api/internal/repository"
	"github.com/noah-isme/planner-go-api/internal/snowflake"
)

const (
	calendarProductID = "-//noah-isme//planner-go-api//EN"
	calendarUIDDomain = "planner-go-api"
	rruleUntilLayout  = "20060102T150405Z"
)

// CalendarService renders a semester as an iCalendar feed.
type CalendarService interface {
	Export(ctx context.Context, userID, semesterID string) (string, error)
}

type calendarService struct {
	repos    repository.Factory
	location *time.Location
	logger   zerolog.Logger
	now      func() time.Time
}

// NewCalendarService builds the calendar exporter. Meeting times are
// interpreted in loc.
func NewCalendarService(repos repository.Factory, loc *time.Location, logger zerolog.Logger) CalendarService {
	return &calendarService{
		repos:    repos,
		location: locationOrUTC(loc),
		logger:   logger.With().Str("component", "calendar_service").Logger(),
		now:      time.Now,
	}
}

// Export emits one weekly recurring event per meeting slot, repeating until
// the last day of the semester, plus one event per assignment deadline.
func (s *calendarService) Export(ctx context.Context, userID, semesterID string) (string, error) {
	repos, err := s.repos(userID)
	if err != nil {
		return "", err
	}

	semester, found, err := repos.Semesters.Get(ctx, snowflake.ID(semesterID))
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrSemesterNotFound
	}

	courses, err := repos.Courses.ListBySemester(ctx, semester.ID)
	if err != nil {
		return "", err
	}
	assignments, err := repos.Assignments.ListBySemester(ctx, semester.ID)
	if err != nil {
		return "", err
	}

	stamp := s.now().UTC()
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName(semester.Name)

	first := semester.StartDate.In(s.location)
	last := semester.EndDate.In(s.location)
	until := time.Date(last.Year(), last.Month(), last.Day(), 23, 59, 59, 0, s.location).UTC()

	codes := make(map[snowflake.ID]string, len(courses))
	for _, course := range courses {
		codes[course.ID] = course.Code
		for _, day := range models.Weekdays {
			for index, slot := range course.Schedule.On(day) {
				date := firstOnOrAfter(first, day)
				if date.After(last) {
					continue
				}

				event := cal.AddEvent(fmt.Sprintf("%s-%s-%d@%s", course.ID, models.WeekdayKey(day), index, calendarUIDDomain))
				event.SetDtStampTime(stamp)
				event.SetStartAt(slot.StartTime.On(date))
				event.SetEndAt(slot.EndTime.On(date))
				event.SetSummary(fmt.Sprintf("%s %s", course.Code, course.Name))
				if slot.Location != "" {
					event.SetLocation(slot.Location)
				}
				if course.Instructor != "" {
					event.SetDescription(course.Instructor)
				}
				if course.CourseLink != "" {
					event.SetURL(course.CourseLink)
				}
				event.AddRrule("FREQ=WEEKLY;UNTIL=" + until.Format(rruleUntilLayout))
			}
		}
	}

	for _, assignment := range assignments {
		event := cal.AddEvent(fmt.Sprintf("%s@%s", assignment.ID, calendarUIDDomain))
		event.SetDtStampTime(stamp)
		event.SetStartAt(assignment.DueDate)
		event.SetEndAt(assignment.DueDate)
		summary := assignment.Name
		if code, ok := codes[assignment.CourseID]; ok {
			summary = code + ": " + summary
		}
		event.SetSummary("Due: " + summary)
		if assignment.Description != nil && *assignment.Description != "" {
			event.SetDescription(*assignment.Description)
		}
		if assignment.AssignmentLink != "" {
			event.SetURL(assignment.AssignmentLink)
		}
	}

	s.logger.Debug().
		Str("semester_id", semesterID).
		Int("courses", len(courses)).
		Int("assignments", len(assignments)).
		Msg("calendar exported")

	return cal.Serialize(), nil
}

// firstOnOrAfter returns midnight of the first day on or after from that
// falls on weekday.
func firstOnOrAfter(from time.Time, weekday time.Weekday) time.Time {
	shift := (int(weekday) - int(from.Weekday()) + 7) % 7
	return time.Date(from.Year(), from.Month(), from.Day()+shift, 0, 0, 0, 0, from.Location())
}
