package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/planner-go-api/internal/dto"
	"github.com/noah-isme/planner-go-api/internal/models"
	"github.com/noah-isme/planner-go-api/internal/observability"
	"github.com/noah-isme/planner-go-api/internal/planner"
	"github.com/noah-isme/planner-go-api/internal/repository"
)

const upcomingAssignmentLimit = 5

// DashboardService produces the planner overview. Cached results may lag
// the clock by up to the cache TTL; writes invalidate them.
type DashboardService interface {
	Get(ctx context.Context, userID string) (dto.DashboardResponse, error)
	Invalidate(ctx context.Context, userID string)
}

type dashboardService struct {
	repos    repository.Factory
	cache    *redis.Client
	cacheTTL time.Duration
	scale    planner.GradeScale
	location *time.Location
	tracer   trace.Tracer
	logger   zerolog.Logger
	now      func() time.Time
}

// NewDashboardService builds the dashboard aggregator. A nil cache disables caching.
func NewDashboardService(repos repository.Factory, cache *redis.Client, ttl time.Duration, scale planner.GradeScale, loc *time.Location, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		repos:    repos,
		cache:    cache,
		cacheTTL: ttl,
		scale:    scale,
		location: locationOrUTC(loc),
		tracer:   otel.Tracer("github.com/noah-isme/planner-go-api/internal/service/dashboard"),
		logger:   logger.With().Str("component", "dashboard_service").Logger(),
		now:      time.Now,
	}
}

func dashboardCacheKey(userID string) string {
	return "planner:dashboard:" + userID
}

func (s *dashboardService) Get(ctx context.Context, userID string) (dto.DashboardResponse, error) {
	repos, err := s.repos(userID)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	cacheKey := dashboardCacheKey(userID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.DashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				observability.DashboardCache().WithLabelValues("hit").Inc()
				s.logger.Debug().Str("user_id", userID).Msg("dashboard cache hit")
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			observability.DashboardCache().WithLabelValues("error").Inc()
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		} else {
			observability.DashboardCache().WithLabelValues("miss").Inc()
		}
	}

	ctx, span := s.tracer.Start(ctx, "dashboard.build", trace.WithAttributes(attribute.String("planner.user_id", userID)))
	defer span.End()

	semesters, err := repos.Semesters.List(ctx)
	if err != nil {
		span.RecordError(err)
		return dto.DashboardResponse{}, err
	}
	courses, err := repos.Courses.List(ctx)
	if err != nil {
		span.RecordError(err)
		return dto.DashboardResponse{}, err
	}
	assignments, err := repos.Assignments.List(ctx)
	if err != nil {
		span.RecordError(err)
		return dto.DashboardResponse{}, err
	}

	response := s.buildResponse(semesters, courses, assignments)

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

// Invalidate drops the cached dashboard of userID.
func (s *dashboardService) Invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, dashboardCacheKey(userID)).Err(); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to invalidate dashboard cache")
	}
}

func (s *dashboardService) buildResponse(semesters []models.Semester, courses []models.Course, assignments []models.Assignment) dto.DashboardResponse {
	now := s.now().In(s.location)

	response := dto.DashboardResponse{
		GeneratedAt:         now.UTC(),
		SemesterGPA:         planner.NotApplicable,
		SemesterCredits:     planner.NotApplicable,
		UpcomingAssignments: []dto.AssignmentResponse{},
	}
	response.SemesterGPADisplay = planner.FormatGPA(response.SemesterGPA)

	if current, ok := planner.CurrentSemester(semesters, now); ok {
		summary := dto.NewSemesterResponse(current)
		summary.Status = string(models.ClassifySemester(current.StartDate, current.EndDate, now))
		summary.GPA = planner.SemesterGPAWithScale(s.scale, current.ID, semesters, courses)
		summary.GPADisplay = planner.FormatGPA(summary.GPA)
		summary.LetterGPA = planner.SemesterLetterGPA(current.ID, semesters, courses)
		summary.Credits = planner.SemesterCredits(current.ID, semesters, courses)

		response.CurrentSemester = &summary
		response.SemesterGPA = summary.GPA
		response.SemesterGPADisplay = summary.GPADisplay
		response.SemesterCredits = summary.Credits

		for _, course := range courses {
			if course.SemesterID == current.ID {
				response.CourseCount++
			}
		}
	}

	started := make([]models.Semester, 0, len(semesters))
	for _, semester := range semesters {
		if !semester.StartDate.After(now) {
			started = append(started, semester)
		}
	}
	response.CumulativeGPA = planner.CumulativeGPA(s.scale, started, courses)
	response.CumulativeGPADisplay = planner.FormatGPA(response.CumulativeGPA)

	counts := planner.SummarizeAssignments(assignments, now)
	response.Assignments = dto.AssignmentCounts{
		Upcoming:    counts.Upcoming,
		DueThisWeek: counts.DueThisWeek,
		Overdue:     counts.Overdue,
		Completed:   counts.Completed,
	}

	open := planner.FilterAssignments(assignments, planner.AssignmentFilter{HideCompleted: true, HideOverdue: true}, now)
	if len(open) > upcomingAssignmentLimit {
		open = open[:upcomingAssignmentLimit]
	}
	response.UpcomingAssignments = dto.NewAssignmentResponseSlice(open, now)

	if next, ok := planner.NextClass(planner.CoursesOn(semesters, courses, now), now); ok {
		response.NextClass = newNextClassResponse(next)
	}

	return response
}

func newNextClassResponse(next planner.NextClassResult) *dto.NextClassResponse {
	return &dto.NextClassResponse{
		CourseID: next.CourseID.String(),
		Code:     next.Code,
		Name:     next.Name,
		Location: next.Location,
		StartsAt: next.Start,
		Relative: next.Relative,
		TimeOnly: next.TimeOnly,
	}
}
