package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/planner-go-api/internal/dto"
	"github.com/noah-isme/planner-go-api/internal/models"
	"github.com/noah-isme/planner-go-api/internal/planner"
	"github.com/noah-isme/planner-go-api/internal/repository"
)

// ScheduleService lays out weekly meetings and finds the next class.
type ScheduleService interface {
	Week(ctx context.Context, userID string, query dto.WeekQuery) (dto.WeekLayoutResponse, error)
	NextClass(ctx context.Context, userID string) (*dto.NextClassResponse, error)
}

type scheduleService struct {
	repos    repository.Factory
	location *time.Location
	logger   zerolog.Logger
	now      func() time.Time
}

// NewScheduleService builds the schedule service. Weeks and days are
// computed in loc.
func NewScheduleService(repos repository.Factory, loc *time.Location, logger zerolog.Logger) ScheduleService {
	return &scheduleService{
		repos:    repos,
		location: locationOrUTC(loc),
		logger:   logger.With().Str("component", "schedule_service").Logger(),
		now:      time.Now,
	}
}

// Week returns the layout of the week containing query.Date, or of the
// current week shifted by query.Offset weeks when no date is given.
func (s *scheduleService) Week(ctx context.Context, userID string, query dto.WeekQuery) (dto.WeekLayoutResponse, error) {
	repos, err := s.repos(userID)
	if err != nil {
		return dto.WeekLayoutResponse{}, err
	}

	anchor := s.now().In(s.location)
	if query.Date != "" {
		parsed, err := dto.ParseDate(query.Date, s.location)
		if err != nil {
			return dto.WeekLayoutResponse{}, &models.ValidationError{Field: "date", Reason: "must be a date or RFC3339 timestamp"}
		}
		anchor = parsed.In(s.location)
	} else if query.Offset != 0 {
		anchor = anchor.AddDate(0, 0, 7*query.Offset)
	}

	semesters, err := repos.Semesters.List(ctx)
	if err != nil {
		return dto.WeekLayoutResponse{}, err
	}
	courses, err := repos.Courses.List(ctx)
	if err != nil {
		return dto.WeekLayoutResponse{}, err
	}

	return dto.NewWeekLayoutResponse(planner.LayoutWeek(semesters, courses, planner.WeekStart(anchor))), nil
}

// NextClass returns nil when nothing is scheduled in the scan window.
func (s *scheduleService) NextClass(ctx context.Context, userID string) (*dto.NextClassResponse, error) {
	repos, err := s.repos(userID)
	if err != nil {
		return nil, err
	}

	semesters, err := repos.Semesters.List(ctx)
	if err != nil {
		return nil, err
	}
	courses, err := repos.Courses.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.location)
	next, ok := planner.NextClass(planner.CoursesOn(semesters, courses, now), now)
	if !ok {
		return nil, nil
	}
	return newNextClassResponse(next), nil
}
