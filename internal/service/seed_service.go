package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/planner-go-api/internal/dto"
	"github.com/noah-isme/planner-go-api/internal/models"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// SeedResult reports the records created by a demo seed.
type SeedResult struct {
	SemesterID    string   `json:"semester_id"`
	CourseIDs     []string `json:"course_ids"`
	AssignmentIDs []string `json:"assignment_ids"`
}

// SeedService fills a user's planner with a demo term for development.
type SeedService interface {
	SeedDemo(ctx context.Context, token, userID string) (SeedResult, error)
}

type seedService struct {
	semesters   SemesterService
	courses     CourseService
	assignments AssignmentService
	enabled     bool
	token       string
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSeedService constructs a seeding service on top of the regular use
// cases so seeded data passes the same validation and back-reference steps.
func NewSeedService(semesters SemesterService, courses CourseService, assignments AssignmentService, enabled bool, token string, logger zerolog.Logger) SeedService {
	return &seedService{
		semesters:   semesters,
		courses:     courses,
		assignments: assignments,
		enabled:     enabled,
		token:       token,
		logger:      logger.With().Str("component", "seed_service").Logger(),
		now:         time.Now,
	}
}

func (s *seedService) SeedDemo(ctx context.Context, token, userID string) (SeedResult, error) {
	if !s.enabled {
		return SeedResult{}, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return SeedResult{}, ErrSeedUnauthorized
	}

	now := s.now().UTC()
	term := termFor(now.Month())
	semester, err := s.semesters.Create(ctx, userID, dto.SemesterCreateRequest{
		Term:      string(term),
		Year:      now.Year(),
		StartDate: now.AddDate(0, 0, -28).Format("2006-01-02"),
		EndDate:   now.AddDate(0, 0, 84).Format("2006-01-02"),
	})
	if err != nil {
		return SeedResult{}, err
	}

	result := SeedResult{SemesterID: semester.ID}
	for _, course := range demoCourses(semester.ID) {
		created, err := s.courses.Create(ctx, userID, course)
		if err != nil {
			return result, err
		}
		result.CourseIDs = append(result.CourseIDs, created.ID)
	}

	for i, assignment := range demoAssignments(now) {
		assignment.CourseID = result.CourseIDs[i%len(result.CourseIDs)]
		created, err := s.assignments.Create(ctx, userID, assignment)
		if err != nil {
			return result, err
		}
		result.AssignmentIDs = append(result.AssignmentIDs, created.ID)
	}

	s.logger.Info().
		Str("user_id", userID).
		Int("courses", len(result.CourseIDs)).
		Int("assignments", len(result.AssignmentIDs)).
		Msg("demo planner seeded")
	return result, nil
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.TrimSpace(token))) == 1
}

func termFor(month time.Month) models.Term {
	switch {
	case month <= time.May:
		return models.TermSpring
	case month <= time.July:
		return models.TermSummer
	default:
		return models.TermFall
	}
}

func demoCourses(semesterID string) []dto.CourseCreateRequest {
	slot := func(start, end, location string) []dto.MeetingSlotPayload {
		return []dto.MeetingSlotPayload{{StartTime: start, EndTime: end, Location: location}}
	}

	return []dto.CourseCreateRequest{
		{
			SemesterID: semesterID,
			Name:       "Data Structures",
			Code:       "CS 201",
			Credits:    4,
			Instructor: "Dr. Rivera",
			Grade:      91,
			Schedule: dto.SchedulePayload{
				Monday:    slot("9:00 AM", "9:50 AM", "Engineering 110"),
				Wednesday: slot("9:00 AM", "9:50 AM", "Engineering 110"),
				Friday:    slot("9:00 AM", "9:50 AM", "Engineering 110"),
			},
		},
		{
			SemesterID: semesterID,
			Name:       "Linear Algebra",
			Code:       "MATH 221",
			Credits:    3,
			Instructor: "Prof. Chen",
			Grade:      84,
			Schedule: dto.SchedulePayload{
				Tuesday:  slot("10:30 AM", "11:45 AM", "Science Hall 204"),
				Thursday: slot("10:30 AM", "11:45 AM", "Science Hall 204"),
			},
		},
		{
			SemesterID: semesterID,
			Name:       "Physics Lab",
			Code:       "PHYS 150L",
			Credits:    1,
			Grade:      77,
			Schedule: dto.SchedulePayload{
				Monday: slot("9:30 AM", "11:20 AM", "Physics B12"),
			},
		},
		{
			SemesterID: semesterID,
			Name:       "Technical Writing",
			Code:       "ENGL 305",
			Credits:    3,
			Online:     true,
		},
	}
}

func demoAssignments(now time.Time) []dto.AssignmentCreateRequest {
	due := func(days int) string {
		return now.AddDate(0, 0, days).Truncate(time.Hour).Format(time.RFC3339)
	}

	return []dto.AssignmentCreateRequest{
		{Name: "Linked list lab", DueDate: due(2), Category: string(models.CategoryLab)},
		{Name: "Problem set 4", DueDate: due(6), Category: string(models.CategoryHomework)},
		{Name: "Pendulum report", DueDate: due(-1), Category: string(models.CategoryEssay), Status: string(models.AssignmentInProgress)},
		{Name: "Style guide reading", DueDate: due(10), Category: string(models.CategoryReading)},
		{Name: "Midterm exam", DueDate: due(14), Category: string(models.CategoryExam)},
	}
}
