package dto

import (
	"time"

	"github.com/noah-isme/planner-go-api/internal/models"
)

// AssignmentCreateRequest describes the payload for creating an assignment.
type AssignmentCreateRequest struct {
	CourseID       string            `json:"course_id" validate:"required,numeric"`
	Name           string            `json:"name" validate:"required,max=200"`
	Description    *string           `json:"description" validate:"omitempty,max=5000"`
	DueDate        string            `json:"due_date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Resources      []ResourcePayload `json:"resources" validate:"dive"`
	AssignmentLink string            `json:"assignment_link" validate:"omitempty,url"`
	Status         string            `json:"status" validate:"omitempty,oneof=not_started in_progress completed"`
	Category       string            `json:"category" validate:"required,oneof=homework project exam quiz lab essay reading other"`
}

// AssignmentUpdateRequest describes a partial assignment update. An empty
// description clears it.
type AssignmentUpdateRequest struct {
	Name           *string            `json:"name" validate:"omitempty,max=200"`
	Description    *string            `json:"description" validate:"omitempty,max=5000"`
	DueDate        *string            `json:"due_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Resources      *[]ResourcePayload `json:"resources" validate:"omitempty,dive"`
	AssignmentLink *string            `json:"assignment_link" validate:"omitempty,url"`
	Status         *string            `json:"status" validate:"omitempty,oneof=not_started in_progress completed"`
	Category       *string            `json:"category" validate:"omitempty,oneof=homework project exam quiz lab essay reading other"`
}

// AssignmentListQuery narrows an assignment listing.
type AssignmentListQuery struct {
	CourseID      string `query:"course_id" validate:"omitempty,numeric"`
	SemesterID    string `query:"semester_id" validate:"omitempty,numeric"`
	HideCompleted bool   `query:"hide_completed"`
	HideOverdue   bool   `query:"hide_overdue"`
}

// AssignmentResponse is the serialized representation returned to API clients.
// Status is the stored lifecycle value; DisplayStatus adds the derived overdue state.
type AssignmentResponse struct {
	ID             string             `json:"id"`
	CourseID       string             `json:"course_id"`
	SemesterID     string             `json:"semester_id"`
	Name           string             `json:"name"`
	Description    *string            `json:"description"`
	DueDate        time.Time          `json:"due_date"`
	Resources      []ResourceResponse `json:"resources"`
	AssignmentLink string             `json:"assignment_link"`
	Status         string             `json:"status"`
	DisplayStatus  string             `json:"display_status"`
	Category       string             `json:"category"`
	Overdue        bool               `json:"overdue"`
}

// NewAssignmentResponse converts a model into a DTO, deriving the display
// status at now.
func NewAssignmentResponse(model models.Assignment, now time.Time) AssignmentResponse {
	display := model.DisplayStatus(now)
	return AssignmentResponse{
		ID:             model.ID.String(),
		CourseID:       model.CourseID.String(),
		SemesterID:     model.SemesterID.String(),
		Name:           model.Name,
		Description:    model.Description,
		DueDate:        model.DueDate,
		Resources:      NewResourceResponseSlice(model.Resources),
		AssignmentLink: model.AssignmentLink,
		Status:         string(model.Status),
		DisplayStatus:  string(display),
		Category:       string(model.Category),
		Overdue:        display == models.AssignmentOverdue,
	}
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment, now time.Time) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment, now))
	}
	return responses
}
