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

// CourseService exposes course use cases.
type CourseService interface {
	List(ctx context.Context, userID, semesterID string) ([]dto.CourseResponse, error)
	Get(ctx context.Context, userID, id string) (dto.CourseResponse, error)
	Create(ctx context.Context, userID string, payload dto.CourseCreateRequest) (dto.CourseResponse, error)
	Update(ctx context.Context, userID, id string, payload dto.CourseUpdateRequest) (dto.CourseResponse, error)
	Delete(ctx context.Context, userID, id string) error
}

type courseService struct {
	repos     repository.Factory
	validator *validator.Validate
	scale     planner.GradeScale
	mutations mutations
	tracer    trace.Tracer
	logger    zerolog.Logger
	now       func() time.Time
}

// NewCourseService builds the course service.
func NewCourseService(repos repository.Factory, validate *validator.Validate, scale planner.GradeScale, publisher events.Publisher, dashboard DashboardInvalidator, logger zerolog.Logger) CourseService {
	logger = logger.With().Str("component", "course_service").Logger()
	return &courseService{
		repos:     repos,
		validator: validate,
		scale:     scale,
		mutations: newMutations(publisher, dashboard, logger),
		tracer:    otel.Tracer("github.com/noah-isme/planner-go-api/internal/service/course"),
		logger:    logger,
		now:       time.Now,
	}
}

func (s *courseService) List(ctx context.Context, userID, semesterID string) ([]dto.CourseResponse, error) {
	repos, err := s.repos(userID)
	if err != nil {
		return nil, err
	}

	var courses []models.Course
	if semesterID != "" {
		courses, err = repos.Courses.ListBySemester(ctx, snowflake.ID(semesterID))
	} else {
		courses, err = repos.Courses.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, s.respond(course))
	}
	return responses, nil
}

func (s *courseService) Get(ctx context.Context, userID, id string) (dto.CourseResponse, error) {
	repos, err := s.repos(userID)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	course, found, err := repos.Courses.Get(ctx, snowflake.ID(id))
	if err != nil {
		return dto.CourseResponse{}, err
	}
	if !found {
		return dto.CourseResponse{}, ErrCourseNotFound
	}
	return s.respond(course), nil
}

func (s *courseService) Create(ctx context.Context, userID string, payload dto.CourseCreateRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	repos, err := s.repos(userID)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	semesterID := snowflake.ID(payload.SemesterID)
	if _, found, err := repos.Semesters.Get(ctx, semesterID); err != nil {
		return dto.CourseResponse{}, err
	} else if !found {
		return dto.CourseResponse{}, ErrSemesterNotFound
	}

	schedule, err := payload.Schedule.ToModel()
	if err != nil {
		return dto.CourseResponse{}, err
	}

	course := models.Course{
		SemesterID:         semesterID,
		Name:               cleanText(payload.Name),
		Code:               cleanText(payload.Code),
		Credits:            payload.Credits,
		Instructor:         cleanText(payload.Instructor),
		Schedule:           cleanSchedule(schedule),
		Resources:          cleanResources(dto.ResourcesToModel(payload.Resources)),
		CourseLink:         payload.CourseLink,
		SyllabusLink:       payload.SyllabusLink,
		GradeSpreadsheetID: payload.GradeSpreadsheetID,
		Grade:              payload.Grade,
		Online:             payload.Online,
		LetterGrade:        models.LetterGrade(payload.LetterGrade),
	}

	ctx, span := s.tracer.Start(ctx, "courses.create", trace.WithAttributes(
		attribute.String("planner.user_id", userID),
		attribute.String("planner.semester_id", payload.SemesterID),
	))
	defer span.End()

	if err := repos.Courses.Create(ctx, &course); err != nil {
		span.RecordError(err)
		return dto.CourseResponse{}, err
	}

	s.logger.Info().Str("course_id", course.ID.String()).Str("semester_id", payload.SemesterID).Msg("course created")
	s.mutations.changed(ctx, userID, events.EntityCourse, events.ActionCreated, course.ID.String())

	return s.respond(course), nil
}

func (s *courseService) Update(ctx context.Context, userID, id string, payload dto.CourseUpdateRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	repos, err := s.repos(userID)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	current, found, err := repos.Courses.Get(ctx, snowflake.ID(id))
	if err != nil {
		return dto.CourseResponse{}, err
	}
	if !found {
		return dto.CourseResponse{}, ErrCourseNotFound
	}

	patch := repository.CoursePatch{
		Name:               cleanOptional(payload.Name),
		Code:               cleanOptional(payload.Code),
		Credits:            payload.Credits,
		Instructor:         cleanOptional(payload.Instructor),
		CourseLink:         payload.CourseLink,
		SyllabusLink:       payload.SyllabusLink,
		GradeSpreadsheetID: payload.GradeSpreadsheetID,
		Grade:              payload.Grade,
		Online:             payload.Online,
	}
	if payload.Schedule != nil {
		schedule, err := payload.Schedule.ToModel()
		if err != nil {
			return dto.CourseResponse{}, err
		}
		schedule = cleanSchedule(schedule)
		patch.Schedule = &schedule
	}
	if payload.Resources != nil {
		resources := cleanResources(dto.ResourcesToModel(*payload.Resources))
		if resources == nil {
			resources = []models.ResourceLink{}
		}
		patch.Resources = &resources
	}
	if payload.LetterGrade != nil {
		grade := models.LetterGrade(*payload.LetterGrade)
		patch.LetterGrade = &grade
	}

	updated := patch.Apply(current)
	if err := updated.Validate(); err != nil {
		return dto.CourseResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "courses.update", trace.WithAttributes(attribute.String("planner.course_id", id)))
	defer span.End()

	if err := repos.Courses.Update(ctx, current.ID, patch); err != nil {
		span.RecordError(err)
		if errors.Is(err, repository.ErrNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	s.logger.Info().Str("course_id", id).Msg("course updated")
	s.mutations.changed(ctx, userID, events.EntityCourse, events.ActionUpdated, id)

	return s.respond(updated), nil
}

func (s *courseService) Delete(ctx context.Context, userID, id string) error {
	repos, err := s.repos(userID)
	if err != nil {
		return err
	}

	if _, found, err := repos.Courses.Get(ctx, snowflake.ID(id)); err != nil {
		return err
	} else if !found {
		return ErrCourseNotFound
	}

	if err := repos.Courses.Delete(ctx, snowflake.ID(id)); err != nil {
		return err
	}

	s.logger.Info().Str("course_id", id).Msg("course deleted")
	s.mutations.changed(ctx, userID, events.EntityCourse, events.ActionDeleted, id)
	return nil
}

func (s *courseService) respond(course models.Course) dto.CourseResponse {
	response := dto.NewCourseResponse(course)
	response.GradePoints = s.scale.Points(course.Grade)
	return response
}

func cleanSchedule(schedule models.WeeklySchedule) models.WeeklySchedule {
	var cleaned models.WeeklySchedule
	for _, day := range models.Weekdays {
		for _, slot := range schedule.On(day) {
			slot.Location = cleanText(slot.Location)
			cleaned.Add(day, slot)
		}
	}
	return cleaned
}

func cleanResources(resources []models.ResourceLink) []models.ResourceLink {
	if resources == nil {
		return nil
	}
	cleaned := make([]models.ResourceLink, 0, len(resources))
	for _, resource := range resources {
		cleaned = append(cleaned, models.ResourceLink{URL: resource.URL, Title: cleanText(resource.Title)})
	}
	return cleaned
}
