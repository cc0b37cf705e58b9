package repository

import (
	"context"

	"github.com/noah-isme/planner-go-api/internal/models"
	"github.com/noah-isme/planner-go-api/internal/snowflake"
	"github.com/noah-isme/planner-go-api/internal/store"
)

// CoursePatch lists the course fields an update may change. The owning
// semester is fixed at creation.
type CoursePatch struct {
	Name               *string
	Code               *string
	Credits            *int
	Instructor         *string
	Schedule           *models.WeeklySchedule
	Resources          *[]models.ResourceLink
	CourseLink         *string
	SyllabusLink       *string
	GradeSpreadsheetID *string
	Grade              *float64
	Online             *bool
	LetterGrade        *models.LetterGrade
}

// Fields converts the patch into a partial document.
func (p CoursePatch) Fields() map[string]any {
	fields := map[string]any{}
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Code != nil {
		fields["code"] = *p.Code
	}
	if p.Credits != nil {
		fields["credits"] = *p.Credits
	}
	if p.Instructor != nil {
		fields["instructor"] = *p.Instructor
	}
	if p.Schedule != nil {
		fields["schedule"] = scheduleDocument(*p.Schedule)
	}
	if p.Resources != nil {
		fields["resources"] = resourceList(*p.Resources)
	}
	if p.CourseLink != nil {
		fields["courseLink"] = *p.CourseLink
	}
	if p.SyllabusLink != nil {
		fields["syllabusLink"] = *p.SyllabusLink
	}
	if p.GradeSpreadsheetID != nil {
		fields["gradeSpreadsheetId"] = *p.GradeSpreadsheetID
	}
	if p.Grade != nil {
		fields["grade"] = *p.Grade
	}
	if p.Online != nil {
		fields["online"] = *p.Online
	}
	if p.LetterGrade != nil {
		fields["letterGrade"] = string(*p.LetterGrade)
	}
	return fields
}

// Apply returns a copy of course with the patch applied.
func (p CoursePatch) Apply(course models.Course) models.Course {
	if p.Name != nil {
		course.Name = *p.Name
	}
	if p.Code != nil {
		course.Code = *p.Code
	}
	if p.Credits != nil {
		course.Credits = *p.Credits
	}
	if p.Instructor != nil {
		course.Instructor = *p.Instructor
	}
	if p.Schedule != nil {
		course.Schedule = *p.Schedule
	}
	if p.Resources != nil {
		course.Resources = *p.Resources
	}
	if p.CourseLink != nil {
		course.CourseLink = *p.CourseLink
	}
	if p.SyllabusLink != nil {
		course.SyllabusLink = *p.SyllabusLink
	}
	if p.GradeSpreadsheetID != nil {
		course.GradeSpreadsheetID = *p.GradeSpreadsheetID
	}
	if p.Grade != nil {
		course.Grade = *p.Grade
	}
	if p.Online != nil {
		course.Online = *p.Online
	}
	if p.LetterGrade != nil {
		course.LetterGrade = *p.LetterGrade
	}
	return course
}

// CourseRepository defines persistence operations for the user's courses.
type CourseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	ListBySemester(ctx context.Context, semesterID snowflake.ID) ([]models.Course, error)
	Get(ctx context.Context, id snowflake.ID) (models.Course, bool, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, id snowflake.ID, patch CoursePatch) error
	Delete(ctx context.Context, id snowflake.ID) error
}

type courseRepository struct {
	scope
}

func (r *courseRepository) List(ctx context.Context) ([]models.Course, error) {
	return r.query(ctx)
}

func (r *courseRepository) ListBySemester(ctx context.Context, semesterID snowflake.ID) ([]models.Course, error) {
	return r.query(ctx, store.Eq(fieldSemesterID, semesterID.String()))
}

func (r *courseRepository) query(ctx context.Context, filters ...store.Filter) ([]models.Course, error) {
	documents, err := r.list(ctx, store.CollectionCourses, filters...)
	if err != nil {
		return nil, err
	}

	courses := make([]models.Course, 0, len(documents))
	for _, document := range documents {
		course, err := decodeCourse(document)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	return courses, nil
}

func (r *courseRepository) Get(ctx context.Context, id snowflake.ID) (models.Course, bool, error) {
	document, found, err := r.get(ctx, store.CollectionCourses, id.String())
	if err != nil || !found {
		return models.Course{}, false, err
	}

	course, err := decodeCourse(document)
	if err != nil {
		return models.Course{}, false, err
	}
	return course, true, nil
}

// Create writes the course and then appends its id to the owning semester.
// Repeating a create with the same id does not duplicate the reference.
func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	callerID := !course.ID.IsZero()
	if !callerID {
		course.ID = snowflake.Generate()
	}
	course.UserID = r.userID
	if course.AssignmentIDs == nil {
		course.AssignmentIDs = []snowflake.ID{}
	}
	if err := course.Validate(); err != nil {
		return err
	}

	if err := r.put(ctx, store.CollectionCourses, course.ID.String(), callerID, courseDocument(*course)); err != nil {
		return err
	}

	if err := r.appendChild(ctx, store.CollectionSemesters, course.SemesterID.String(), fieldCourseIDs, course.ID.String()); err != nil {
		r.warnPartial(err, "append course to semester", course.ID.String(), course.SemesterID.String())
		return err
	}
	return nil
}

func (r *courseRepository) Update(ctx context.Context, id snowflake.ID, patch CoursePatch) error {
	return r.merge(ctx, store.CollectionCourses, id.String(), patch.Fields())
}

// Delete removes the course id from its semester and then the course itself.
// Assignments of the course are left in place.
func (r *courseRepository) Delete(ctx context.Context, id snowflake.ID) error {
	document, found, err := r.get(ctx, store.CollectionCourses, id.String())
	if err != nil || !found {
		return err
	}

	semesterID, _ := document.Data[fieldSemesterID].(string)
	if err := r.removeChild(ctx, store.CollectionSemesters, semesterID, fieldCourseIDs, id.String()); err != nil {
		return err
	}

	if err := r.docs.Delete(ctx, store.CollectionCourses, id.String()); err != nil {
		r.warnPartial(err, "delete course after semester update", id.String(), semesterID)
		return err
	}
	return nil
}
