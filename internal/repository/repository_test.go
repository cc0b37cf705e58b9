package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/planner-go-api/internal/models"
	"github.com/noah-isme/planner-go-api/internal/snowflake"
	"github.com/noah-isme/planner-go-api/internal/store"
)

func setupStore(t *testing.T) *store.GormStore {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	docs := store.NewGormStore(db)
	require.NoError(t, docs.Migrate())
	return docs
}

func setupRepositories(t *testing.T, docs store.DocumentStore, userID string) *Repositories {
	t.Helper()
	repos, err := New(docs, userID, zerolog.Nop())
	require.NoError(t, err)
	return repos
}

func sampleSemester() *models.Semester {
	return &models.Semester{
		StartDate: time.Date(2025, time.August, 25, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, time.December, 12, 0, 0, 0, 0, time.UTC),
		Term:      models.TermFall,
		Year:      2025,
		Name:      "Fall 2025",
		Status:    models.SemesterCurrent,
	}
}

func sampleCourse(semesterID snowflake.ID) *models.Course {
	course := &models.Course{
		SemesterID: semesterID,
		Name:       "Linear Algebra",
		Code:       "MATH 221",
		Credits:    4,
		Instructor: "Dr. Noether",
		Grade:      91.5,
	}
	course.Schedule.Add(time.Monday, models.MeetingSlot{
		StartTime: models.MustClockTime("9:30 AM"),
		EndTime:   models.MustClockTime("10:45 AM"),
		Location:  "Hall 2",
	})
	return course
}

func sampleAssignment(courseID snowflake.ID) *models.Assignment {
	description := "Chapter 3 exercises"
	return &models.Assignment{
		Name:        "Problem Set 1",
		Description: &description,
		DueDate:     time.Date(2025, time.September, 5, 23, 59, 0, 0, time.UTC),
		CourseID:    courseID,
		Category:    models.CategoryHomework,
	}
}

func TestNewRequiresUser(t *testing.T) {
	_, err := New(setupStore(t), "  ", zerolog.Nop())
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSemesterRoundTrip(t *testing.T) {
	repos := setupRepositories(t, setupStore(t), "user-1")
	ctx := context.Background()

	semester := sampleSemester()
	require.NoError(t, repos.Semesters.Create(ctx, semester))
	require.False(t, semester.ID.IsZero())
	require.Equal(t, "user-1", semester.UserID)

	stored, found, err := repos.Semesters.Get(ctx, semester.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, semester.Name, stored.Name)
	require.True(t, semester.StartDate.Equal(stored.StartDate))
	require.Empty(t, stored.CourseIDs)

	name := "Autumn 2025"
	require.NoError(t, repos.Semesters.Update(ctx, semester.ID, SemesterPatch{Name: &name}))
	stored, _, err = repos.Semesters.Get(ctx, semester.ID)
	require.NoError(t, err)
	require.Equal(t, name, stored.Name)
	require.Equal(t, models.TermFall, stored.Term)
}

func TestCourseCreateAppendsToSemesterOnce(t *testing.T) {
	repos := setupRepositories(t, setupStore(t), "user-1")
	ctx := context.Background()

	semester := sampleSemester()
	require.NoError(t, repos.Semesters.Create(ctx, semester))

	course := sampleCourse(semester.ID)
	require.NoError(t, repos.Courses.Create(ctx, course))
	require.NoError(t, repos.Courses.Create(ctx, course))

	stored, found, err := repos.Semesters.Get(ctx, semester.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []snowflake.ID{course.ID}, stored.CourseIDs)

	decoded, found, err := repos.Courses.Get(ctx, course.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, course.Schedule.Monday, decoded.Schedule.Monday)
	require.Empty(t, decoded.Schedule.Tuesday)
	require.Equal(t, 4, decoded.Credits)
	require.InDelta(t, 91.5, decoded.Grade, 1e-9)
}

func TestCourseCreateWithMissingSemesterSkipsBackReference(t *testing.T) {
	repos := setupRepositories(t, setupStore(t), "user-1")
	ctx := context.Background()

	course := sampleCourse(snowflake.Generate())
	require.NoError(t, repos.Courses.Create(ctx, course))

	_, found, err := repos.Courses.Get(ctx, course.ID)
	require.NoError(t, err)
	require.True(t, found)
}

func TestCourseDeleteRemovesBackReferenceAndIsIdempotent(t *testing.T) {
	repos := setupRepositories(t, setupStore(t), "user-1")
	ctx := context.Background()

	semester := sampleSemester()
	require.NoError(t, repos.Semesters.Create(ctx, semester))
	first := sampleCourse(semester.ID)
	second := sampleCourse(semester.ID)
	second.Code = "PHYS 101"
	require.NoError(t, repos.Courses.Create(ctx, first))
	require.NoError(t, repos.Courses.Create(ctx, second))

	require.NoError(t, repos.Courses.Delete(ctx, first.ID))
	require.NoError(t, repos.Courses.Delete(ctx, first.ID))

	stored, _, err := repos.Semesters.Get(ctx, semester.ID)
	require.NoError(t, err)
	require.Equal(t, []snowflake.ID{second.ID}, stored.CourseIDs)

	_, found, err := repos.Courses.Get(ctx, first.ID)
	require.NoError(t, err)
	require.False(t, found)

	courses, err := repos.Courses.ListBySemester(ctx, semester.ID)
	require.NoError(t, err)
	require.Len(t, courses, 1)
}

func TestAssignmentLifecycle(t *testing.T) {
	repos := setupRepositories(t, setupStore(t), "user-1")
	ctx := context.Background()

	semester := sampleSemester()
	require.NoError(t, repos.Semesters.Create(ctx, semester))
	course := sampleCourse(semester.ID)
	require.NoError(t, repos.Courses.Create(ctx, course))

	assignment := sampleAssignment(course.ID)
	assignment.SemesterID = semester.ID
	require.NoError(t, repos.Assignments.Create(ctx, assignment))
	require.Equal(t, models.AssignmentNotStarted, assignment.Status)

	storedCourse, _, err := repos.Courses.Get(ctx, course.ID)
	require.NoError(t, err)
	require.Equal(t, []snowflake.ID{assignment.ID}, storedCourse.AssignmentIDs)

	bySemester, err := repos.Assignments.ListBySemester(ctx, semester.ID)
	require.NoError(t, err)
	require.Len(t, bySemester, 1)

	status := models.AssignmentCompleted
	require.NoError(t, repos.Assignments.Update(ctx, assignment.ID, AssignmentPatch{Status: &status, ClearDescription: true}))

	stored, found, err := repos.Assignments.Get(ctx, assignment.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, models.AssignmentCompleted, stored.Status)
	require.Nil(t, stored.Description)
	require.True(t, assignment.DueDate.Equal(stored.DueDate))

	overdue := models.AssignmentOverdue
	err = repos.Assignments.Update(ctx, assignment.ID, AssignmentPatch{Status: &overdue})
	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)

	require.NoError(t, repos.Assignments.Delete(ctx, assignment.ID))
	require.NoError(t, repos.Assignments.Delete(ctx, assignment.ID))

	storedCourse, _, err = repos.Courses.Get(ctx, course.ID)
	require.NoError(t, err)
	require.Empty(t, storedCourse.AssignmentIDs)
}

func TestForeignRecordsAreInvisible(t *testing.T) {
	docs := setupStore(t)
	owner := setupRepositories(t, docs, "user-1")
	intruder := setupRepositories(t, docs, "user-2")
	ctx := context.Background()

	semester := sampleSemester()
	require.NoError(t, owner.Semesters.Create(ctx, semester))

	_, found, err := intruder.Semesters.Get(ctx, semester.ID)
	require.NoError(t, err)
	require.False(t, found)

	listed, err := intruder.Semesters.List(ctx)
	require.NoError(t, err)
	require.Empty(t, listed)

	name := "Hijacked"
	require.ErrorIs(t, intruder.Semesters.Update(ctx, semester.ID, SemesterPatch{Name: &name}), ErrNotFound)
	require.NoError(t, intruder.Semesters.Delete(ctx, semester.ID))

	stored, found, err := owner.Semesters.Get(ctx, semester.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Fall 2025", stored.Name)
}

func TestCreateWithForeignIDDoesNotOverwrite(t *testing.T) {
	docs := setupStore(t)
	owner := setupRepositories(t, docs, "user-1")
	intruder := setupRepositories(t, docs, "user-2")
	ctx := context.Background()

	semester := sampleSemester()
	require.NoError(t, owner.Semesters.Create(ctx, semester))
	course := sampleCourse(semester.ID)
	require.NoError(t, owner.Courses.Create(ctx, course))

	hijack := sampleSemester()
	hijack.ID = semester.ID
	hijack.Name = "Hijacked"
	require.ErrorIs(t, intruder.Semesters.Create(ctx, hijack), ErrNotFound)

	copied := sampleCourse(semester.ID)
	copied.ID = course.ID
	require.ErrorIs(t, intruder.Courses.Create(ctx, copied), ErrNotFound)

	stored, found, err := owner.Semesters.Get(ctx, semester.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Fall 2025", stored.Name)
	require.Equal(t, []snowflake.ID{course.ID}, stored.CourseIDs)

	_, found, err = owner.Courses.Get(ctx, course.ID)
	require.NoError(t, err)
	require.True(t, found)

	again := sampleSemester()
	again.ID = semester.ID
	again.CourseIDs = []snowflake.ID{course.ID}
	require.NoError(t, owner.Semesters.Create(ctx, again))
}

func TestListReturnsCreationOrder(t *testing.T) {
	repos := setupRepositories(t, setupStore(t), "user-1")
	ctx := context.Background()

	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	ids := []snowflake.ID{
		snowflake.Compose(base.Add(2*time.Hour), 1),
		snowflake.Compose(base, 7),
		snowflake.Compose(base.Add(time.Hour), 3),
	}
	for _, id := range ids {
		semester := sampleSemester()
		semester.ID = id
		require.NoError(t, repos.Semesters.Create(ctx, semester))
	}

	listed, err := repos.Semesters.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	require.Equal(t, ids[1], listed[0].ID)
	require.Equal(t, ids[2], listed[1].ID)
	require.Equal(t, ids[0], listed[2].ID)
}

func TestDecodeAcceptsLegacyShapes(t *testing.T) {
	document := store.Document{
		ID: "42",
		Data: map[string]any{
			"userId":     "user-1",
			"semesterId": "7",
			"name":       "Chemistry",
			"code":       "CHEM 101",
			"credits":    float64(3),
			"schedule": map[string]any{
				"monday":  map[string]any{"startTime": "8:00 AM", "endTime": "9:15 AM", "location": "Lab"},
				"tuesday": nil,
				"friday":  []any{map[string]any{"startTime": "1:00 PM", "endTime": "2:00 PM", "location": "Hall"}},
			},
			"assignmentIds": []any{"9", "10"},
			"grade":         float64(88),
		},
	}

	course, err := decodeCourse(document)
	require.NoError(t, err)
	require.Equal(t, snowflake.ID("42"), course.ID)
	require.Len(t, course.Schedule.Monday, 1)
	require.Equal(t, models.MustClockTime("8:00 AM"), course.Schedule.Monday[0].StartTime)
	require.Empty(t, course.Schedule.Tuesday)
	require.Len(t, course.Schedule.Friday, 1)
	require.Equal(t, []snowflake.ID{"9", "10"}, course.AssignmentIDs)

	semester, err := decodeSemester(store.Document{
		ID: "7",
		Data: map[string]any{
			"userId":    "user-1",
			"startDate": map[string]any{"seconds": float64(1756080000), "nanoseconds": float64(0)},
			"endDate":   "2025-12-12T00:00:00Z",
			"term":      "fall",
			"year":      float64(2025),
		},
	})
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, time.August, 25, 0, 0, 0, 0, time.UTC), semester.StartDate)
	require.Equal(t, 2025, semester.Year)
}

type failingStore struct {
	store.DocumentStore
	failUpdates string
}

func (f *failingStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if collection == f.failUpdates {
		return errors.New("store unavailable")
	}
	return f.DocumentStore.Update(ctx, collection, id, fields)
}

func TestStoredTimestampShapesDecodeThroughGormStore(t *testing.T) {
	docs := setupStore(t)
	ctx := context.Background()

	require.NoError(t, docs.Set(ctx, store.CollectionSemesters, "77", map[string]any{
		"userId":    "user-1",
		"startDate": map[string]any{"seconds": int64(1756080000), "nanoseconds": int64(0)},
		"endDate":   int64(1765497600000),
		"term":      "fall",
		"year":      2025,
		"courseIds": []string{},
		"status":    "current",
	}))

	repos := setupRepositories(t, docs, "user-1")
	semester, found, err := repos.Semesters.Get(ctx, "77")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, time.Date(2025, time.August, 25, 0, 0, 0, 0, time.UTC), semester.StartDate)
	require.Equal(t, time.Date(2025, time.December, 12, 0, 0, 0, 0, time.UTC), semester.EndDate)
	require.Equal(t, 2025, semester.Year)

	listed, err := repos.Semesters.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, semester.EndDate, listed[0].EndDate)
}

func TestCreatePropagatesBackReferenceFailure(t *testing.T) {
	docs := setupStore(t)
	healthy := setupRepositories(t, docs, "user-1")
	broken := setupRepositories(t, &failingStore{DocumentStore: docs, failUpdates: store.CollectionSemesters}, "user-1")
	ctx := context.Background()

	semester := sampleSemester()
	require.NoError(t, healthy.Semesters.Create(ctx, semester))

	course := sampleCourse(semester.ID)
	require.EqualError(t, broken.Courses.Create(ctx, course), "store unavailable")

	// the course was written even though the semester was not updated
	_, found, err := healthy.Courses.Get(ctx, course.ID)
	require.NoError(t, err)
	require.True(t, found)

	stored, _, err := healthy.Semesters.Get(ctx, semester.ID)
	require.NoError(t, err)
	require.Empty(t, stored.CourseIDs)
}
