package repository

import (
	"context"
	"time"

	"github.com/noah-isme/planner-go-api/internal/models"
	"github.com/noah-isme/planner-go-api/internal/snowflake"
	"github.com/noah-isme/planner-go-api/internal/store"
)

// SemesterPatch lists the semester fields an update may change. Nil fields
// are left untouched.
type SemesterPatch struct {
	StartDate *time.Time
	EndDate   *time.Time
	Term      *models.Term
	Year      *int
	Name      *string
	Status    *models.SemesterStatus
}

// Fields converts the patch into a partial document.
func (p SemesterPatch) Fields() map[string]any {
	fields := map[string]any{}
	if p.StartDate != nil {
		fields["startDate"] = p.StartDate.UTC()
	}
	if p.EndDate != nil {
		fields["endDate"] = p.EndDate.UTC()
	}
	if p.Term != nil {
		fields["term"] = string(*p.Term)
	}
	if p.Year != nil {
		fields["year"] = *p.Year
	}
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Status != nil {
		fields["status"] = string(*p.Status)
	}
	return fields
}

// Apply returns a copy of semester with the patch applied.
func (p SemesterPatch) Apply(semester models.Semester) models.Semester {
	if p.StartDate != nil {
		semester.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		semester.EndDate = *p.EndDate
	}
	if p.Term != nil {
		semester.Term = *p.Term
	}
	if p.Year != nil {
		semester.Year = *p.Year
	}
	if p.Name != nil {
		semester.Name = *p.Name
	}
	if p.Status != nil {
		semester.Status = *p.Status
	}
	return semester
}

// SemesterRepository defines persistence operations for the user's semesters.
type SemesterRepository interface {
	List(ctx context.Context) ([]models.Semester, error)
	Get(ctx context.Context, id snowflake.ID) (models.Semester, bool, error)
	Create(ctx context.Context, semester *models.Semester) error
	Update(ctx context.Context, id snowflake.ID, patch SemesterPatch) error
	Delete(ctx context.Context, id snowflake.ID) error
}

type semesterRepository struct {
	scope
}

func (r *semesterRepository) List(ctx context.Context) ([]models.Semester, error) {
	documents, err := r.list(ctx, store.CollectionSemesters)
	if err != nil {
		return nil, err
	}

	semesters := make([]models.Semester, 0, len(documents))
	for _, document := range documents {
		semester, err := decodeSemester(document)
		if err != nil {
			return nil, err
		}
		semesters = append(semesters, semester)
	}
	return semesters, nil
}

func (r *semesterRepository) Get(ctx context.Context, id snowflake.ID) (models.Semester, bool, error) {
	document, found, err := r.get(ctx, store.CollectionSemesters, id.String())
	if err != nil || !found {
		return models.Semester{}, false, err
	}

	semester, err := decodeSemester(document)
	if err != nil {
		return models.Semester{}, false, err
	}
	return semester, true, nil
}

// Create assigns an id when the semester has none and stamps the owner.
func (r *semesterRepository) Create(ctx context.Context, semester *models.Semester) error {
	callerID := !semester.ID.IsZero()
	if !callerID {
		semester.ID = snowflake.Generate()
	}
	semester.UserID = r.userID
	if semester.CourseIDs == nil {
		semester.CourseIDs = []snowflake.ID{}
	}
	if err := semester.Validate(); err != nil {
		return err
	}

	return r.put(ctx, store.CollectionSemesters, semester.ID.String(), callerID, semesterDocument(*semester))
}

func (r *semesterRepository) Update(ctx context.Context, id snowflake.ID, patch SemesterPatch) error {
	return r.merge(ctx, store.CollectionSemesters, id.String(), patch.Fields())
}

// Delete removes the semester document only. Courses that point at it stay
// and are treated as orphans by readers.
func (r *semesterRepository) Delete(ctx context.Context, id snowflake.ID) error {
	_, found, err := r.get(ctx, store.CollectionSemesters, id.String())
	if err != nil || !found {
		return err
	}
	return r.docs.Delete(ctx, store.CollectionSemesters, id.String())
}
