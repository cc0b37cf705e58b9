package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/planner-go-api/internal/models"
	"github.com/noah-isme/planner-go-api/internal/snowflake"
)

func fallSemester() models.Semester {
	return models.Semester{
		ID:        "fall",
		StartDate: time.Date(2025, time.August, 25, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, time.December, 12, 0, 0, 0, 0, time.UTC),
	}
}

func courseMeeting(id string, day time.Weekday, start, end string) models.Course {
	course := models.Course{ID: snowflake.ID(id), SemesterID: "fall", Code: id, Name: id}
	course.Schedule.Add(day, meeting(start, end))
	return course
}

func TestWeekStart(t *testing.T) {
	wednesday := time.Date(2025, time.September, 3, 15, 4, 5, 0, time.UTC)
	require.Equal(t, monday, WeekStart(wednesday))
	require.Equal(t, monday, WeekStart(monday.Add(23*time.Hour)))

	sunday := time.Date(2025, time.September, 7, 10, 0, 0, 0, time.UTC)
	require.Equal(t, monday, WeekStart(sunday))
}

func TestLayoutWeekLanes(t *testing.T) {
	courses := []models.Course{
		courseMeeting("a", time.Monday, "9:00 AM", "10:00 AM"),
		courseMeeting("b", time.Monday, "9:00 AM", "10:00 AM"),
		courseMeeting("c", time.Monday, "10:00 AM", "11:00 AM"),
	}

	week := LayoutWeek([]models.Semester{fallSemester()}, courses, monday)
	require.Len(t, week.Days, LayoutDays)
	require.Equal(t, time.Monday, week.Days[0].Weekday)
	require.Equal(t, time.Friday, week.Days[4].Weekday)

	blocks := week.Days[0].Blocks
	require.Len(t, blocks, 3)

	require.Equal(t, snowflake.ID("a"), blocks[0].CourseID)
	require.Equal(t, 0, blocks[0].Lane)
	require.Equal(t, 2, blocks[0].TotalLanes)
	require.Equal(t, snowflake.ID("b"), blocks[1].CourseID)
	require.Equal(t, 1, blocks[1].Lane)
	require.Equal(t, 2, blocks[1].TotalLanes)
	require.InDelta(t, 0.5, blocks[1].Offset, 1e-9)
	require.InDelta(t, 0.5, blocks[1].Width, 1e-9)

	require.Equal(t, snowflake.ID("c"), blocks[2].CourseID)
	require.Equal(t, 0, blocks[2].Lane)
	require.Equal(t, 1, blocks[2].TotalLanes)
	require.InDelta(t, 1.0, blocks[2].Width, 1e-9)

	for _, day := range week.Days[1:] {
		require.Empty(t, day.Blocks)
	}
}

func TestAssignLanesChainedOverlap(t *testing.T) {
	blocks := AssignLanes([]Block{
		{Code: "late", Start: models.MustClockTime("10:30 AM"), End: models.MustClockTime("11:30 AM")},
		{Code: "long", Start: models.MustClockTime("9:00 AM"), End: models.MustClockTime("11:00 AM")},
		{Code: "short", Start: models.MustClockTime("9:00 AM"), End: models.MustClockTime("9:45 AM")},
		{Code: "solo", Start: models.MustClockTime("1:00 PM"), End: models.MustClockTime("2:00 PM")},
	})

	require.Equal(t, []string{"short", "long", "late", "solo"}, codes(blocks))
	require.Equal(t, []int{0, 1, 0, 0}, lanes(blocks))
	require.Equal(t, []int{2, 2, 2, 1}, totals(blocks))
}

func TestAssignLanesEmpty(t *testing.T) {
	require.Empty(t, AssignLanes(nil))
}

func TestLayoutWeekRespectsSemesterRange(t *testing.T) {
	semester := fallSemester()
	semester.StartDate = time.Date(2025, time.September, 3, 0, 0, 0, 0, time.UTC)
	semester.EndDate = time.Date(2025, time.September, 4, 0, 0, 0, 0, time.UTC)

	course := courseMeeting("daily", time.Monday, "9:00 AM", "10:00 AM")
	for _, day := range []time.Weekday{time.Tuesday, time.Wednesday, time.Thursday, time.Friday} {
		course.Schedule.Add(day, meeting("9:00 AM", "10:00 AM"))
	}
	orphan := courseMeeting("orphan", time.Wednesday, "1:00 PM", "2:00 PM")
	orphan.SemesterID = "deleted"

	week := LayoutWeek([]models.Semester{semester}, []models.Course{course, orphan}, monday)

	counts := make([]int, 0, len(week.Days))
	for _, day := range week.Days {
		counts = append(counts, len(day.Blocks))
	}
	// Wednesday and Thursday fall inside the semester, both days inclusive.
	require.Equal(t, []int{0, 0, 1, 1, 0}, counts)
}

func codes(blocks []Block) []string {
	out := make([]string, 0, len(blocks))
	for _, block := range blocks {
		out = append(out, block.Code)
	}
	return out
}

func lanes(blocks []Block) []int {
	out := make([]int, 0, len(blocks))
	for _, block := range blocks {
		out = append(out, block.Lane)
	}
	return out
}

func totals(blocks []Block) []int {
	out := make([]int, 0, len(blocks))
	for _, block := range blocks {
		out = append(out, block.TotalLanes)
	}
	return out
}
