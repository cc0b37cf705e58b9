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

// AssignmentService exposes assignment use cases.
type AssignmentService interface {
	List(ctx context.Context, userID string, query dto.AssignmentListQuery) ([]dto.AssignmentResponse, error)
	Get(ctx context.Context, userID, id string) (dto.AssignmentResponse, error)
	Create(ctx context.Context, userID string, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Update(ctx context.Context, userID, id string, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	CycleStatus(ctx context.Context, userID, id string) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, userID, id string) error
}

type assignmentService struct {
	repos     repository.Factory
	validator *validator.Validate
	mutations mutations
	tracer    trace.Tracer
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAssignmentService builds the assignment service.
func NewAssignmentService(repos repository.Factory, validate *validator.Validate, publisher events.Publisher, dashboard DashboardInvalidator, logger zerolog.Logger) AssignmentService {
	logger = logger.With().Str("component", "assignment_service").Logger()
	return &assignmentService{
		repos:     repos,
		validator: validate,
		mutations: newMutations(publisher, dashboard, logger),
		tracer:    otel.Tracer("github.com/noah-isme/planner-go-api/internal/service/assignment"),
		logger:    logger,
		now:       time.Now,
	}
}

func (s *assignmentService) List(ctx context.Context, userID string, query dto.AssignmentListQuery) ([]dto.AssignmentResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, err
	}

	repos, err := s.repos(userID)
	if err != nil {
		return nil, err
	}

	var assignments []models.Assignment
	switch {
	case query.CourseID != "":
		assignments, err = repos.Assignments.ListByCourse(ctx, snowflake.ID(query.CourseID))
	case query.SemesterID != "":
		assignments, err = repos.Assignments.ListBySemester(ctx, snowflake.ID(query.SemesterID))
	default:
		assignments, err = repos.Assignments.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	filtered := planner.FilterAssignments(assignments, planner.AssignmentFilter{
		HideCompleted: query.HideCompleted,
		HideOverdue:   query.HideOverdue,
	}, now)
	return dto.NewAssignmentResponseSlice(filtered, now), nil
}

func (s *assignmentService) Get(ctx context.Context, userID, id string) (dto.AssignmentResponse, error) {
	repos, err := s.repos(userID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.find(ctx, repos, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	return dto.NewAssignmentResponse(assignment, s.now()), nil
}

func (s *assignmentService) Create(ctx context.Context, userID string, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	repos, err := s.repos(userID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	course, found, err := repos.Courses.Get(ctx, snowflake.ID(payload.CourseID))
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	if !found {
		return dto.AssignmentResponse{}, ErrCourseNotFound
	}

	dueDate, err := time.Parse(time.RFC3339, payload.DueDate)
	if err != nil {
		return dto.AssignmentResponse{}, &models.ValidationError{Field: "due_date", Reason: "must be an RFC3339 timestamp"}
	}

	status := models.AssignmentStatus(payload.Status)
	if status == "" {
		status = models.AssignmentNotStarted
	}

	assignment := models.Assignment{
		Name:           cleanText(payload.Name),
		Description:    cleanOptional(payload.Description),
		DueDate:        dueDate,
		CourseID:       course.ID,
		SemesterID:     course.SemesterID,
		Resources:      cleanResources(dto.ResourcesToModel(payload.Resources)),
		AssignmentLink: payload.AssignmentLink,
		Status:         status,
		Category:       models.Category(payload.Category),
	}
	if assignment.Resources == nil {
		assignment.Resources = []models.ResourceLink{}
	}

	ctx, span := s.tracer.Start(ctx, "assignments.create", trace.WithAttributes(
		attribute.String("planner.user_id", userID),
		attribute.String("planner.course_id", payload.CourseID),
	))
	defer span.End()

	if err := repos.Assignments.Create(ctx, &assignment); err != nil {
		span.RecordError(err)
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Str("assignment_id", assignment.ID.String()).Str("course_id", payload.CourseID).Msg("assignment created")
	s.mutations.changed(ctx, userID, events.EntityAssignment, events.ActionCreated, assignment.ID.String())

	return dto.NewAssignmentResponse(assignment, s.now()), nil
}

func (s *assignmentService) Update(ctx context.Context, userID, id string, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	repos, err := s.repos(userID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	current, err := s.find(ctx, repos, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	patch := repository.AssignmentPatch{
		Name:           cleanOptional(payload.Name),
		AssignmentLink: payload.AssignmentLink,
	}
	if payload.Description != nil {
		if description := cleanText(*payload.Description); description == "" {
			patch.ClearDescription = true
		} else {
			patch.Description = &description
		}
	}
	if payload.DueDate != nil {
		dueDate, err := time.Parse(time.RFC3339, *payload.DueDate)
		if err != nil {
			return dto.AssignmentResponse{}, &models.ValidationError{Field: "due_date", Reason: "must be an RFC3339 timestamp"}
		}
		patch.DueDate = &dueDate
	}
	if payload.Resources != nil {
		resources := cleanResources(dto.ResourcesToModel(*payload.Resources))
		if resources == nil {
			resources = []models.ResourceLink{}
		}
		patch.Resources = &resources
	}
	if payload.Status != nil {
		status := models.AssignmentStatus(*payload.Status)
		patch.Status = &status
	}
	if payload.Category != nil {
		category := models.Category(*payload.Category)
		patch.Category = &category
	}

	updated := patch.Apply(current)
	if err := updated.Validate(); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if err := s.write(ctx, repos, userID, current.ID, patch); err != nil {
		return dto.AssignmentResponse{}, err
	}
	return dto.NewAssignmentResponse(updated, s.now()), nil
}

// CycleStatus advances the stored status not_started -> in_progress ->
// completed -> not_started.
func (s *assignmentService) CycleStatus(ctx context.Context, userID, id string) (dto.AssignmentResponse, error) {
	repos, err := s.repos(userID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	current, err := s.find(ctx, repos, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	next := current.Status.Next()
	if err := s.write(ctx, repos, userID, current.ID, repository.AssignmentPatch{Status: &next}); err != nil {
		return dto.AssignmentResponse{}, err
	}

	current.Status = next
	return dto.NewAssignmentResponse(current, s.now()), nil
}

func (s *assignmentService) Delete(ctx context.Context, userID, id string) error {
	repos, err := s.repos(userID)
	if err != nil {
		return err
	}

	if _, err := s.find(ctx, repos, id); err != nil {
		return err
	}

	if err := repos.Assignments.Delete(ctx, snowflake.ID(id)); err != nil {
		return err
	}

	s.logger.Info().Str("assignment_id", id).Msg("assignment deleted")
	s.mutations.changed(ctx, userID, events.EntityAssignment, events.ActionDeleted, id)
	return nil
}

func (s *assignmentService) find(ctx context.Context, repos *repository.Repositories, id string) (models.Assignment, error) {
	assignment, found, err := repos.Assignments.Get(ctx, snowflake.ID(id))
	if err != nil {
		return models.Assignment{}, err
	}
	if !found {
		return models.Assignment{}, ErrAssignmentNotFound
	}
	return assignment, nil
}

func (s *assignmentService) write(ctx context.Context, repos *repository.Repositories, userID string, id snowflake.ID, patch repository.AssignmentPatch) error {
	ctx, span := s.tracer.Start(ctx, "assignments.update", trace.WithAttributes(attribute.String("planner.assignment_id", id.String())))
	defer span.End()

	if err := repos.Assignments.Update(ctx, id, patch); err != nil {
		span.RecordError(err)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	s.logger.Info().Str("assignment_id", id.String()).Msg("assignment updated")
	s.mutations.changed(ctx, userID, events.EntityAssignment, events.ActionUpdated, id.String())
	return nil
}
