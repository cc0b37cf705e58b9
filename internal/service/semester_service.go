package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/planner-go-api/internal/dto"
	"github.com/noah-isme/planner-go-api/internal/events"
	"github.com/noah-isme/planner-go-api/internal/models"
	"github.com/noah-isme/planner-go-api/internal/planner"
	"github.com/noah-isme/planner-go-api/internal/repository"
	"github.com/noah-isme/planner-go-api/internal/snowflake"
)

// SemesterService exposes semester use cases.
type SemesterService interface {
	List(ctx context.Context, userID string) ([]dto.SemesterResponse, error)
	Get(ctx context.Context, userID, id string) (dto.SemesterResponse, error)
	Create(ctx context.Context, userID string, payload dto.SemesterCreateRequest) (dto.SemesterResponse, error)
	Update(ctx context.Context, userID, id string, payload dto.SemesterUpdateRequest) (dto.SemesterResponse, error)
	Delete(ctx context.Context, userID, id string) error
	RefreshStatuses(ctx context.Context, userID string) (int, error)
}

type semesterService struct {
	repos     repository.Factory
	validator *validator.Validate
	scale     planner.GradeScale
	location  *time.Location
	mutations mutations
	tracer    trace.Tracer
	logger    zerolog.Logger
	now       func() time.Time
}

// NewSemesterService builds the semester service. Bare dates in requests are
// read in loc.
func NewSemesterService(repos repository.Factory, validate *validator.Validate, scale planner.GradeScale, loc *time.Location, publisher events.Publisher, dashboard DashboardInvalidator, logger zerolog.Logger) SemesterService {
	logger = logger.With().Str("component", "semester_service").Logger()
	return &semesterService{
		repos:     repos,
		validator: validate,
		scale:     scale,
		location:  locationOrUTC(loc),
		mutations: newMutations(publisher, dashboard, logger),
		tracer:    otel.Tracer("github.com/noah-isme/planner-go-api/internal/service/semester"),
		logger:    logger,
		now:       time.Now,
	}
}

func (s *semesterService) List(ctx context.Context, userID string) ([]dto.SemesterResponse, error) {
	ctx, span := s.tracer.Start(ctx, "semesters.list", trace.WithAttributes(attribute.String("planner.user_id", userID)))
	defer span.End()

	repos, err := s.repos(userID)
	if err != nil {
		return nil, err
	}

	semesters, err := repos.Semesters.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	courses, err := repos.Courses.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	planner.SortSemesters(semesters)
	responses := make([]dto.SemesterResponse, 0, len(semesters))
	for _, semester := range semesters {
		responses = append(responses, s.respond(semester, semesters, courses))
	}
	return responses, nil
}

func (s *semesterService) Get(ctx context.Context, userID, id string) (dto.SemesterResponse, error) {
	repos, err := s.repos(userID)
	if err != nil {
		return dto.SemesterResponse{}, err
	}

	semester, found, err := repos.Semesters.Get(ctx, snowflake.ID(id))
	if err != nil {
		return dto.SemesterResponse{}, err
	}
	if !found {
		return dto.SemesterResponse{}, ErrSemesterNotFound
	}

	courses, err := repos.Courses.ListBySemester(ctx, semester.ID)
	if err != nil {
		return dto.SemesterResponse{}, err
	}
	return s.respond(semester, []models.Semester{semester}, courses), nil
}

func (s *semesterService) Create(ctx context.Context, userID string, payload dto.SemesterCreateRequest) (dto.SemesterResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SemesterResponse{}, err
	}

	repos, err := s.repos(userID)
	if err != nil {
		return dto.SemesterResponse{}, err
	}

	start, err := dto.ParseDate(payload.StartDate, s.location)
	if err != nil {
		return dto.SemesterResponse{}, &models.ValidationError{Field: "start_date", Reason: "must be a date or RFC3339 timestamp"}
	}
	end, err := dto.ParseDate(payload.EndDate, s.location)
	if err != nil {
		return dto.SemesterResponse{}, &models.ValidationError{Field: "end_date", Reason: "must be a date or RFC3339 timestamp"}
	}

	term := models.Term(payload.Term)
	name := cleanText(payload.Name)
	if name == "" {
		name = models.DefaultSemesterName(term, payload.Year)
	}

	semester := models.Semester{
		StartDate: start,
		EndDate:   end,
		Term:      term,
		Year:      payload.Year,
		Name:      name,
		Status:    models.ClassifySemester(start, end, s.now()),
	}

	ctx, span := s.tracer.Start(ctx, "semesters.create", trace.WithAttributes(attribute.String("planner.user_id", userID)))
	defer span.End()

	if err := repos.Semesters.Create(ctx, &semester); err != nil {
		span.RecordError(err)
		return dto.SemesterResponse{}, err
	}

	s.logger.Info().Str("semester_id", semester.ID.String()).Msg("semester created")
	s.mutations.changed(ctx, userID, events.EntitySemester, events.ActionCreated, semester.ID.String())

	return s.respond(semester, []models.Semester{semester}, nil), nil
}

func (s *semesterService) Update(ctx context.Context, userID, id string, payload dto.SemesterUpdateRequest) (dto.SemesterResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SemesterResponse{}, err
	}

	repos, err := s.repos(userID)
	if err != nil {
		return dto.SemesterResponse{}, err
	}

	current, found, err := repos.Semesters.Get(ctx, snowflake.ID(id))
	if err != nil {
		return dto.SemesterResponse{}, err
	}
	if !found {
		return dto.SemesterResponse{}, ErrSemesterNotFound
	}

	var patch repository.SemesterPatch
	if payload.Term != nil {
		term := models.Term(*payload.Term)
		patch.Term = &term
	}
	if payload.Year != nil {
		patch.Year = payload.Year
	}
	if payload.Name != nil {
		patch.Name = cleanOptional(payload.Name)
	}
	if payload.StartDate != nil {
		start, err := dto.ParseDate(*payload.StartDate, s.location)
		if err != nil {
			return dto.SemesterResponse{}, &models.ValidationError{Field: "start_date", Reason: "must be a date or RFC3339 timestamp"}
		}
		patch.StartDate = &start
	}
	if payload.EndDate != nil {
		end, err := dto.ParseDate(*payload.EndDate, s.location)
		if err != nil {
			return dto.SemesterResponse{}, &models.ValidationError{Field: "end_date", Reason: "must be a date or RFC3339 timestamp"}
		}
		patch.EndDate = &end
	}

	updated := patch.Apply(current)
	if patch.Name != nil && updated.Name == "" {
		updated.Name = models.DefaultSemesterName(updated.Term, updated.Year)
		patch.Name = &updated.Name
	}
	status := models.ClassifySemester(updated.StartDate, updated.EndDate, s.now())
	updated.Status = status
	patch.Status = &status

	if err := updated.Validate(); err != nil {
		return dto.SemesterResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "semesters.update", trace.WithAttributes(attribute.String("planner.semester_id", id)))
	defer span.End()

	if err := repos.Semesters.Update(ctx, current.ID, patch); err != nil {
		span.RecordError(err)
		if errors.Is(err, repository.ErrNotFound) {
			return dto.SemesterResponse{}, ErrSemesterNotFound
		}
		return dto.SemesterResponse{}, err
	}

	s.logger.Info().Str("semester_id", id).Msg("semester updated")
	s.mutations.changed(ctx, userID, events.EntitySemester, events.ActionUpdated, id)

	courses, err := repos.Courses.ListBySemester(ctx, updated.ID)
	if err != nil {
		return dto.SemesterResponse{}, err
	}
	return s.respond(updated, []models.Semester{updated}, courses), nil
}

func (s *semesterService) Delete(ctx context.Context, userID, id string) error {
	repos, err := s.repos(userID)
	if err != nil {
		return err
	}

	if _, found, err := repos.Semesters.Get(ctx, snowflake.ID(id)); err != nil {
		return err
	} else if !found {
		return ErrSemesterNotFound
	}

	if err := repos.Semesters.Delete(ctx, snowflake.ID(id)); err != nil {
		return err
	}

	s.logger.Info().Str("semester_id", id).Msg("semester deleted")
	s.mutations.changed(ctx, userID, events.EntitySemester, events.ActionDeleted, id)
	return nil
}

// RefreshStatuses persists the status every semester should have today and
// reports how many changed.
func (s *semesterService) RefreshStatuses(ctx context.Context, userID string) (int, error) {
	ctx, span := s.tracer.Start(ctx, "semesters.refresh_statuses", trace.WithAttributes(attribute.String("planner.user_id", userID)))
	defer span.End()

	repos, err := s.repos(userID)
	if err != nil {
		return 0, err
	}

	semesters, err := repos.Semesters.List(ctx)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	now := s.now()
	changed := 0
	for _, semester := range semesters {
		status := models.ClassifySemester(semester.StartDate, semester.EndDate, now)
		if status == semester.Status {
			continue
		}
		if err := repos.Semesters.Update(ctx, semester.ID, repository.SemesterPatch{Status: &status}); err != nil {
			span.RecordError(err)
			return changed, err
		}
		changed++
	}

	if changed > 0 {
		s.logger.Info().Int("changed", changed).Msg("semester statuses refreshed")
		if s.mutations.dashboard != nil {
			s.mutations.dashboard.Invalidate(ctx, userID)
		}
	}
	return changed, nil
}

func (s *semesterService) respond(semester models.Semester, semesters []models.Semester, courses []models.Course) dto.SemesterResponse {
	response := dto.NewSemesterResponse(semester)
	response.GPA = planner.SemesterGPAWithScale(s.scale, semester.ID, semesters, courses)
	response.GPADisplay = planner.FormatGPA(response.GPA)
	response.LetterGPA = planner.SemesterLetterGPA(semester.ID, semesters, courses)
	response.Credits = planner.SemesterCredits(semester.ID, semesters, courses)
	return response
}
