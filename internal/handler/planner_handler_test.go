package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/planner-go-api/internal/config"
	"github.com/noah-isme/planner-go-api/internal/handler"
	"github.com/noah-isme/planner-go-api/internal/planner"
	"github.com/noah-isme/planner-go-api/internal/repository"
	"github.com/noah-isme/planner-go-api/internal/router"
	"github.com/noah-isme/planner-go-api/internal/service"
	"github.com/noah-isme/planner-go-api/internal/store"
)

const jwtSecret = "handler-secret"

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Details json.RawMessage `json:"details"`
}

type testAPI struct {
	t   *testing.T
	app *fiber.App
}

func setupAPI(t *testing.T, allowedUserID string) *testAPI {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	docs := store.NewGormStore(db)
	require.NoError(t, docs.Migrate())

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	logger := zerolog.New(io.Discard)
	validate := validator.New(validator.WithRequiredStructEnabled())
	repos := repository.NewFactory(docs, logger)

	dashboard := service.NewDashboardService(repos, redisClient, time.Minute, planner.DefaultScale, time.UTC, logger)
	semesters := service.NewSemesterService(repos, validate, planner.DefaultScale, time.UTC, nil, dashboard, logger)
	courses := service.NewCourseService(repos, validate, planner.DefaultScale, nil, dashboard, logger)
	assignments := service.NewAssignmentService(repos, validate, nil, dashboard, logger)
	schedule := service.NewScheduleService(repos, time.UTC, logger)
	calendar := service.NewCalendarService(repos, time.UTC, logger)

	cfg := config.Config{AppName: "Planner Test", JWTSecret: jwtSecret, AllowedUserID: allowedUserID, StoreDriver: config.StoreDriverSQLite}

	app := fiber.New()
	router.Register(app, cfg, router.Dependencies{
		SemesterHandler:   handler.NewSemesterHandler(semesters, calendar, logger),
		CourseHandler:     handler.NewCourseHandler(courses, logger),
		AssignmentHandler: handler.NewAssignmentHandler(assignments, logger),
		DashboardHandler:  handler.NewDashboardHandler(dashboard, schedule, logger),
	})

	return &testAPI{t: t, app: app}
}

func token(t *testing.T, subject string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return signed
}

func (a *testAPI) do(method, path, user string, body interface{}) *http.Response {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		switch value := body.(type) {
		case string:
			reader = strings.NewReader(value)
		default:
			payload, err := json.Marshal(value)
			require.NoError(a.t, err)
			reader = bytes.NewReader(payload)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+token(a.t, user))
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response, target interface{}) envelope {
	t.Helper()
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	if target != nil {
		require.NoError(t, json.Unmarshal(env.Data, target))
	}
	return env
}

// currentTerm returns a semester payload whose date range contains today.
func currentTerm() map[string]interface{} {
	today := time.Now().UTC()
	return map[string]interface{}{
		"term":       "fall",
		"year":       today.Year(),
		"start_date": today.AddDate(0, 0, -30).Format("2006-01-02"),
		"end_date":   today.AddDate(0, 0, 90).Format("2006-01-02"),
	}
}

func everyWeekday(start, end string) map[string]interface{} {
	slot := []map[string]string{{"start_time": start, "end_time": end, "location": "Room 101"}}
	return map[string]interface{}{
		"monday": slot, "tuesday": slot, "wednesday": slot, "thursday": slot, "friday": slot,
		"saturday": slot, "sunday": slot,
	}
}

func TestHealthIsPublicAndResourcesAreProtected(t *testing.T) {
	api := setupAPI(t, "")

	resp := api.do(http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "Planner Test", resp.Header.Get("X-Application"))

	resp = api.do(http.MethodGet, "/api/v1/semesters", "", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = api.do(http.MethodGet, "/api/v1/semesters", "user-1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var semesters []map[string]interface{}
	decodeEnvelope(t, resp, &semesters)
	require.Empty(t, semesters)
}

func TestOwnerGuardRejectsOtherUsers(t *testing.T) {
	api := setupAPI(t, "owner")

	require.Equal(t, fiber.StatusOK, api.do(http.MethodGet, "/api/v1/dashboard", "owner", nil).StatusCode)
	require.Equal(t, fiber.StatusForbidden, api.do(http.MethodGet, "/api/v1/dashboard", "visitor", nil).StatusCode)
}

func TestSemesterEndpoints(t *testing.T) {
	api := setupAPI(t, "")

	resp := api.do(http.MethodPost, "/api/v1/semesters", "user-1", currentTerm())
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created struct {
		ID     string  `json:"id"`
		Name   string  `json:"name"`
		Status string  `json:"status"`
		GPA    float64 `json:"gpa"`
	}
	decodeEnvelope(t, resp, &created)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "current", created.Status)
	require.Equal(t, planner.NotApplicable, created.GPA)

	resp = api.do(http.MethodGet, "/api/v1/semesters/"+created.ID, "user-2", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = api.do(http.MethodPatch, "/api/v1/semesters/"+created.ID, "user-1", map[string]string{"name": "Autumn"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeEnvelope(t, resp, &created)
	require.Equal(t, "Autumn", created.Name)

	resp = api.do(http.MethodPost, "/api/v1/semesters", "user-1", "{not json")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = api.do(http.MethodPost, "/api/v1/semesters", "user-1", map[string]interface{}{"term": "winter", "year": 2025})
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	backwards := currentTerm()
	backwards["start_date"], backwards["end_date"] = backwards["end_date"], backwards["start_date"]
	resp = api.do(http.MethodPost, "/api/v1/semesters", "user-1", backwards)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	env := decodeEnvelope(t, resp, nil)
	require.Contains(t, string(env.Details), "endDate")

	resp = api.do(http.MethodGet, "/api/v1/semesters/abc", "user-1", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = api.do(http.MethodDelete, "/api/v1/semesters/"+created.ID, "user-1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = api.do(http.MethodDelete, "/api/v1/semesters/"+created.ID, "user-1", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCourseAndAssignmentEndpoints(t *testing.T) {
	api := setupAPI(t, "")

	var semester struct {
		ID string `json:"id"`
	}
	decodeEnvelope(t, api.do(http.MethodPost, "/api/v1/semesters", "user-1", currentTerm()), &semester)

	resp := api.do(http.MethodPost, "/api/v1/courses", "user-1", map[string]interface{}{
		"semester_id": semester.ID,
		"name":        "Linear Algebra",
		"code":        "MATH 221",
		"credits":     3,
		"grade":       88,
		"schedule":    everyWeekday("11:00 PM", "11:30 PM"),
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var course struct {
		ID          string  `json:"id"`
		GradePoints float64 `json:"grade_points"`
	}
	decodeEnvelope(t, resp, &course)
	require.Equal(t, 3.0, course.GradePoints)

	resp = api.do(http.MethodPost, "/api/v1/courses", "user-1", map[string]interface{}{
		"semester_id": "42", "name": "Ghost", "code": "GH 1", "credits": 3, "online": true,
	})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	due := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Second).Format(time.RFC3339)
	resp = api.do(http.MethodPost, "/api/v1/assignments", "user-1", map[string]interface{}{
		"course_id": course.ID,
		"name":      "Problem Set 1",
		"due_date":  due,
		"category":  "homework",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var assignment struct {
		ID         string `json:"id"`
		SemesterID string `json:"semester_id"`
		Status     string `json:"status"`
	}
	decodeEnvelope(t, resp, &assignment)
	require.Equal(t, semester.ID, assignment.SemesterID)
	require.Equal(t, "not_started", assignment.Status)

	for _, want := range []string{"in_progress", "completed"} {
		resp = api.do(http.MethodPost, "/api/v1/assignments/"+assignment.ID+"/cycle-status", "user-1", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		decodeEnvelope(t, resp, &assignment)
		require.Equal(t, want, assignment.Status)
	}

	var listed []map[string]interface{}
	resp = api.do(http.MethodGet, "/api/v1/assignments?course_id="+course.ID+"&hide_completed=true", "user-1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeEnvelope(t, resp, &listed)
	require.Empty(t, listed)

	resp = api.do(http.MethodGet, "/api/v1/assignments?semester_id="+semester.ID, "user-1", nil)
	decodeEnvelope(t, resp, &listed)
	require.Len(t, listed, 1)

	resp = api.do(http.MethodPatch, "/api/v1/assignments/"+assignment.ID, "user-1", map[string]string{"status": "overdue"})
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var courses []map[string]interface{}
	resp = api.do(http.MethodGet, "/api/v1/courses?semester_id="+semester.ID, "user-1", nil)
	decodeEnvelope(t, resp, &courses)
	require.Len(t, courses, 1)
	require.Equal(t, []interface{}{assignment.ID}, courses[0]["assignment_ids"])

	resp = api.do(http.MethodGet, "/api/v1/semesters/"+semester.ID+"/calendar.ics", "user-1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/calendar"))
	feed, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(feed), "BEGIN:VCALENDAR")
	require.Contains(t, string(feed), "Due: MATH 221: Problem Set 1")

	resp = api.do(http.MethodDelete, "/api/v1/courses/"+course.ID, "user-1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = api.do(http.MethodGet, "/api/v1/courses/"+course.ID, "user-1", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestScheduleEndpoints(t *testing.T) {
	api := setupAPI(t, "")

	var semester struct {
		ID string `json:"id"`
	}
	decodeEnvelope(t, api.do(http.MethodPost, "/api/v1/semesters", "user-1", currentTerm()), &semester)
	resp := api.do(http.MethodPost, "/api/v1/courses", "user-1", map[string]interface{}{
		"semester_id": semester.ID,
		"name":        "Physics",
		"code":        "PHYS 101",
		"credits":     4,
		"schedule":    everyWeekday("11:58 PM", "11:59 PM"),
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = api.do(http.MethodGet, "/api/v1/schedule/week", "user-1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var week struct {
		WeekStart string `json:"week_start"`
		Days      []struct {
			Blocks []map[string]interface{} `json:"blocks"`
		} `json:"days"`
	}
	decodeEnvelope(t, resp, &week)
	require.Len(t, week.Days, 5)
	monday, err := time.Parse("2006-01-02", week.WeekStart)
	require.NoError(t, err)
	require.Equal(t, time.Monday, monday.Weekday())

	resp = api.do(http.MethodGet, "/api/v1/schedule/week?date=yesterday", "user-1", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = api.do(http.MethodGet, "/api/v1/schedule/next-class", "user-1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var next struct {
		Code string `json:"code"`
	}
	decodeEnvelope(t, resp, &next)
	require.Equal(t, "PHYS 101", next.Code)
}

func TestDashboardContract(t *testing.T) {
	api := setupAPI(t, "")

	schemaPath, err := filepath.Abs(filepath.Join("testdata", "dashboard.schema.json"))
	require.NoError(t, err)
	schema, err := jsonschema.NewCompiler().Compile("file://" + schemaPath)
	require.NoError(t, err)

	validate := func() {
		t.Helper()
		resp := api.do(http.MethodGet, "/api/v1/dashboard", "user-1", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		resp.Body.Close()

		var payload interface{}
		require.NoError(t, json.Unmarshal(body, &payload))
		require.NoError(t, schema.Validate(payload))
	}

	validate()

	var semester struct {
		ID string `json:"id"`
	}
	decodeEnvelope(t, api.do(http.MethodPost, "/api/v1/semesters", "user-1", currentTerm()), &semester)
	var course struct {
		ID string `json:"id"`
	}
	decodeEnvelope(t, api.do(http.MethodPost, "/api/v1/courses", "user-1", map[string]interface{}{
		"semester_id": semester.ID,
		"name":        "Chemistry",
		"code":        "CHEM 110",
		"credits":     4,
		"grade":       93,
		"schedule":    everyWeekday("11:58 PM", "11:59 PM"),
	}), &course)
	resp := api.do(http.MethodPost, "/api/v1/assignments", "user-1", map[string]interface{}{
		"course_id": course.ID,
		"name":      "Lab Report",
		"due_date":  time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second).Format(time.RFC3339),
		"category":  "lab",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	validate()
}
