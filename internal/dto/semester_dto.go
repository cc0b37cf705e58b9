package dto

import (
	"time"

	"github.com/noah-isme/planner-go-api/internal/models"
	"github.com/noah-isme/planner-go-api/internal/snowflake"
)

// SemesterCreateRequest describes the payload for creating a semester.
type SemesterCreateRequest struct {
	Term      string `json:"term" validate:"required,oneof=fall spring summer"`
	Year      int    `json:"year" validate:"required,min=1900,max=9999"`
	Name      string `json:"name" validate:"omitempty,max=120"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
}

// SemesterUpdateRequest describes a partial semester update.
type SemesterUpdateRequest struct {
	Term      *string `json:"term" validate:"omitempty,oneof=fall spring summer"`
	Year      *int    `json:"year" validate:"omitempty,min=1900,max=9999"`
	Name      *string `json:"name" validate:"omitempty,max=120"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

// SemesterResponse is the serialized semester with its derived figures.
// GPA and credit values of -1 mean the figure is not applicable.
type SemesterResponse struct {
	ID            string    `json:"id"`
	Term          string    `json:"term"`
	Year          int       `json:"year"`
	Name          string    `json:"name"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Status        string    `json:"status"`
	CourseIDs     []string  `json:"course_ids"`
	GPA           float64   `json:"gpa"`
	GPADisplay    string    `json:"gpa_display"`
	LetterGPA     float64   `json:"letter_gpa"`
	Credits       float64   `json:"credits"`
	CourseCount   int       `json:"course_count"`
	CreatedAt     time.Time `json:"created_at"`
	IsCurrentTerm bool      `json:"is_current"`
}

// NewSemesterResponse converts a model into a DTO. Derived figures are left
// for the caller to fill in.
func NewSemesterResponse(model models.Semester) SemesterResponse {
	courseIDs := make([]string, 0, len(model.CourseIDs))
	for _, id := range model.CourseIDs {
		courseIDs = append(courseIDs, id.String())
	}

	response := SemesterResponse{
		ID:            model.ID.String(),
		Term:          string(model.Term),
		Year:          model.Year,
		Name:          model.Name,
		StartDate:     model.StartDate,
		EndDate:       model.EndDate,
		Status:        string(model.Status),
		CourseIDs:     courseIDs,
		CourseCount:   len(courseIDs),
		IsCurrentTerm: model.Status == models.SemesterCurrent,
	}
	if created, err := snowflake.Timestamp(model.ID); err == nil {
		response.CreatedAt = created
	}
	return response
}
