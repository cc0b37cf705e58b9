package repository

import (
	"context"
	"time"

	"github.com/noah-isme/planner-go-api/internal/models"
	"github.com/noah-isme/planner-go-api/internal/snowflake"
	"github.com/noah-isme/planner-go-api/internal/store"
)

// AssignmentPatch lists the assignment fields an update may change.
// ClearDescription removes the description and wins over Description.
type AssignmentPatch struct {
	Name             *string
	Description      *string
	ClearDescription bool
	DueDate          *time.Time
	Resources        *[]models.ResourceLink
	AssignmentLink   *string
	Status           *models.AssignmentStatus
	Category         *models.Category
}

// Validate rejects values that may never be stored, whatever the record holds.
func (p AssignmentPatch) Validate() error {
	if p.Status != nil && !p.Status.Persistable() {
		return &models.ValidationError{Field: "status", Reason: "must be one of not_started, in_progress, completed"}
	}
	if p.Category != nil && !p.Category.Valid() {
		return &models.ValidationError{Field: "category", Reason: "unknown category"}
	}
	if p.Name != nil && *p.Name == "" {
		return &models.ValidationError{Field: "name", Reason: "is required"}
	}
	return nil
}

// Fields converts the patch into a partial document.
func (p AssignmentPatch) Fields() map[string]any {
	fields := map[string]any{}
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	switch {
	case p.ClearDescription:
		fields["description"] = nil
	case p.Description != nil:
		fields["description"] = *p.Description
	}
	if p.DueDate != nil {
		fields["dueDate"] = p.DueDate.UTC()
	}
	if p.Resources != nil {
		fields["resources"] = resourceList(*p.Resources)
	}
	if p.AssignmentLink != nil {
		fields["assignmentLink"] = *p.AssignmentLink
	}
	if p.Status != nil {
		fields["status"] = string(*p.Status)
	}
	if p.Category != nil {
		fields["category"] = string(*p.Category)
	}
	return fields
}

// Apply returns a copy of assignment with the patch applied.
func (p AssignmentPatch) Apply(assignment models.Assignment) models.Assignment {
	if p.Name != nil {
		assignment.Name = *p.Name
	}
	switch {
	case p.ClearDescription:
		assignment.Description = nil
	case p.Description != nil:
		description := *p.Description
		assignment.Description = &description
	}
	if p.DueDate != nil {
		assignment.DueDate = *p.DueDate
	}
	if p.Resources != nil {
		assignment.Resources = *p.Resources
	}
	if p.AssignmentLink != nil {
		assignment.AssignmentLink = *p.AssignmentLink
	}
	if p.Status != nil {
		assignment.Status = *p.Status
	}
	if p.Category != nil {
		assignment.Category = *p.Category
	}
	return assignment
}

// AssignmentRepository defines persistence operations for the user's assignments.
type AssignmentRepository interface {
	List(ctx context.Context) ([]models.Assignment, error)
	ListByCourse(ctx context.Context, courseID snowflake.ID) ([]models.Assignment, error)
	ListBySemester(ctx context.Context, semesterID snowflake.ID) ([]models.Assignment, error)
	Get(ctx context.Context, id snowflake.ID) (models.Assignment, bool, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, id snowflake.ID, patch AssignmentPatch) error
	Delete(ctx context.Context, id snowflake.ID) error
}

type assignmentRepository struct {
	scope
}

func (r *assignmentRepository) List(ctx context.Context) ([]models.Assignment, error) {
	return r.query(ctx)
}

func (r *assignmentRepository) ListByCourse(ctx context.Context, courseID snowflake.ID) ([]models.Assignment, error) {
	return r.query(ctx, store.Eq(fieldCourseID, courseID.String()))
}

func (r *assignmentRepository) ListBySemester(ctx context.Context, semesterID snowflake.ID) ([]models.Assignment, error) {
	return r.query(ctx, store.Eq(fieldSemesterID, semesterID.String()))
}

func (r *assignmentRepository) query(ctx context.Context, filters ...store.Filter) ([]models.Assignment, error) {
	documents, err := r.list(ctx, store.CollectionAssignments, filters...)
	if err != nil {
		return nil, err
	}

	assignments := make([]models.Assignment, 0, len(documents))
	for _, document := range documents {
		assignment, err := decodeAssignment(document)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}
	return assignments, nil
}

func (r *assignmentRepository) Get(ctx context.Context, id snowflake.ID) (models.Assignment, bool, error) {
	document, found, err := r.get(ctx, store.CollectionAssignments, id.String())
	if err != nil || !found {
		return models.Assignment{}, false, err
	}

	assignment, err := decodeAssignment(document)
	if err != nil {
		return models.Assignment{}, false, err
	}
	return assignment, true, nil
}

// Create writes the assignment and then appends its id to the owning course.
// Repeating a create with the same id does not duplicate the reference.
func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	callerID := !assignment.ID.IsZero()
	if !callerID {
		assignment.ID = snowflake.Generate()
	}
	assignment.UserID = r.userID
	if assignment.Status == "" {
		assignment.Status = models.AssignmentNotStarted
	}
	if err := assignment.Validate(); err != nil {
		return err
	}

	if err := r.put(ctx, store.CollectionAssignments, assignment.ID.String(), callerID, assignmentDocument(*assignment)); err != nil {
		return err
	}

	if err := r.appendChild(ctx, store.CollectionCourses, assignment.CourseID.String(), fieldAssignmentIDs, assignment.ID.String()); err != nil {
		r.warnPartial(err, "append assignment to course", assignment.ID.String(), assignment.CourseID.String())
		return err
	}
	return nil
}

func (r *assignmentRepository) Update(ctx context.Context, id snowflake.ID, patch AssignmentPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	return r.merge(ctx, store.CollectionAssignments, id.String(), patch.Fields())
}

// Delete removes the assignment id from its course and then the assignment.
func (r *assignmentRepository) Delete(ctx context.Context, id snowflake.ID) error {
	document, found, err := r.get(ctx, store.CollectionAssignments, id.String())
	if err != nil || !found {
		return err
	}

	courseID, _ := document.Data[fieldCourseID].(string)
	if err := r.removeChild(ctx, store.CollectionCourses, courseID, fieldAssignmentIDs, id.String()); err != nil {
		return err
	}

	if err := r.docs.Delete(ctx, store.CollectionAssignments, id.String()); err != nil {
		r.warnPartial(err, "delete assignment after course update", id.String(), courseID)
		return err
	}
	return nil
}
