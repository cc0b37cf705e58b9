package models

import (
	"time"

	"github.com/noah-isme/planner-go-api/internal/snowflake"
)

// Assignment is a gradable task belonging to one course.
type Assignment struct {
	ID             snowflake.ID     `json:"id"`
	UserID         string           `json:"userId"`
	Name           string           `json:"name"`
	Description    *string          `json:"description"`
	DueDate        time.Time        `json:"dueDate"`
	CourseID       snowflake.ID     `json:"courseId"`
	SemesterID     snowflake.ID     `json:"semesterId"`
	Resources      []ResourceLink   `json:"resources"`
	AssignmentLink string           `json:"assignmentLink"`
	Status         AssignmentStatus `json:"status"`
	Category       Category         `json:"category"`
}

// IsPastDue returns true when the deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}

// DisplayStatus derives the status shown to the user: anything not completed
// whose deadline has passed is overdue. The stored status is left untouched.
func (a Assignment) DisplayStatus(now time.Time) AssignmentStatus {
	if a.Status != AssignmentCompleted && a.IsPastDue(now) {
		return AssignmentOverdue
	}
	return a.Status
}

// Validate checks the invariants that must hold before the assignment is written.
func (a Assignment) Validate() error {
	if a.Name == "" {
		return invalid("name", "is required")
	}
	if a.CourseID.IsZero() {
		return invalid("courseId", "is required")
	}
	if a.DueDate.IsZero() {
		return invalid("dueDate", "is required")
	}
	if !a.Status.Persistable() {
		return invalid("status", "must be one of not_started, in_progress, completed")
	}
	if !a.Category.Valid() {
		return invalid("category", "unknown category")
	}
	return nil
}
