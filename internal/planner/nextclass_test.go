package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/planner-go-api/internal/models"
)

func meeting(start, end string) models.MeetingSlot {
	return models.MeetingSlot{StartTime: models.MustClockTime(start), EndTime: models.MustClockTime(end), Location: "Room 101"}
}

// 2025-09-01 is a Monday.
var monday = time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)

func TestNextClassSameDay(t *testing.T) {
	course := models.Course{ID: "1", Code: "MATH 221", Name: "Linear Algebra"}
	course.Schedule.Add(time.Monday, meeting("9:30 AM", "10:45 AM"))
	course.Schedule.Add(time.Wednesday, meeting("10:00 AM", "11:00 AM"))

	result, ok := NextClass([]models.Course{course}, monday.Add(8*time.Hour))
	require.True(t, ok)
	require.Equal(t, "9:30 AM", result.Relative)
	require.Equal(t, "9:30 AM", result.TimeOnly)
	require.Equal(t, "MATH 221", result.Code)
	require.Equal(t, "Linear Algebra", result.Name)
	require.Equal(t, monday.Add(9*time.Hour+30*time.Minute), result.Start)
}

func TestNextClassLabels(t *testing.T) {
	course := models.Course{ID: "1", Code: "BIO 110", Name: "Biology"}
	course.Schedule.Add(time.Tuesday, meeting("12:00 PM", "1:00 PM"))

	result, ok := NextClass([]models.Course{course}, monday.Add(20*time.Hour))
	require.True(t, ok)
	require.Equal(t, "12:00 PM Tomorrow", result.Relative)

	// Tuesday afternoon: the next meeting is a full week away.
	tuesdayAfternoon := monday.AddDate(0, 0, 1).Add(15 * time.Hour)
	result, ok = NextClass([]models.Course{course}, tuesdayAfternoon)
	require.True(t, ok)
	require.Equal(t, "12:00 PM Tuesday", result.Relative)
	require.Equal(t, monday.AddDate(0, 0, 8).Add(12*time.Hour), result.Start)
}

func TestNextClassDayProximityWins(t *testing.T) {
	late := models.Course{ID: "1", Code: "LATE"}
	late.Schedule.Add(time.Tuesday, meeting("4:00 PM", "5:00 PM"))
	early := models.Course{ID: "2", Code: "EARLY"}
	early.Schedule.Add(time.Thursday, meeting("8:00 AM", "9:00 AM"))
	sameDayEarlier := models.Course{ID: "3", Code: "NOON"}
	sameDayEarlier.Schedule.Add(time.Tuesday, meeting("12:00 PM", "1:00 PM"))

	result, ok := NextClass([]models.Course{late, early, sameDayEarlier}, monday.Add(18*time.Hour))
	require.True(t, ok)
	require.Equal(t, "NOON", result.Code)
	require.Equal(t, "12:00 PM Tomorrow", result.Relative)
}

func TestNextClassSkipsOnlineAndStartedMeetings(t *testing.T) {
	online := models.Course{ID: "1", Code: "WEB", Online: true}
	online.Schedule.Add(time.Monday, meeting("11:00 AM", "12:00 PM"))
	started := models.Course{ID: "2", Code: "NOW"}
	started.Schedule.Add(time.Monday, meeting("9:00 AM", "10:00 AM"))
	started.Schedule.Add(time.Wednesday, meeting("9:00 AM", "10:00 AM"))

	result, ok := NextClass([]models.Course{online, started}, monday.Add(9*time.Hour))
	require.True(t, ok)
	require.Equal(t, "NOW", result.Code)
	require.Equal(t, "9:00 AM Wednesday", result.Relative)
}

func TestNextClassNone(t *testing.T) {
	_, ok := NextClass(nil, monday)
	require.False(t, ok)

	online := models.Course{ID: "1", Online: true}
	online.Schedule.Add(time.Monday, meeting("11:00 AM", "12:00 PM"))
	_, ok = NextClass([]models.Course{online}, monday)
	require.False(t, ok)

	unscheduled := models.Course{ID: "2", Code: "TBA"}
	_, ok = NextClass([]models.Course{unscheduled}, monday)
	require.False(t, ok)
}

func TestNextClassWeekAheadOnSameWeekday(t *testing.T) {
	course := models.Course{ID: "1", Code: "DAWN"}
	course.Schedule.Add(time.Monday, meeting("12:00 AM", "1:00 AM"))

	result, ok := NextClass([]models.Course{course}, monday)
	require.True(t, ok)
	require.Equal(t, monday.AddDate(0, 0, 7), result.Start)
	require.Equal(t, "12:00 AM Monday", result.Relative)
}
