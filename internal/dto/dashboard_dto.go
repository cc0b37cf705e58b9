package dto

import (
	"time"

	"github.com/noah-isme/planner-go-api/internal/planner"
)

// DashboardResponse aggregates the planner overview for one user.
type DashboardResponse struct {
	GeneratedAt          time.Time            `json:"generated_at"`
	CurrentSemester      *SemesterResponse    `json:"current_semester"`
	SemesterGPA          float64              `json:"semester_gpa"`
	SemesterGPADisplay   string               `json:"semester_gpa_display"`
	SemesterCredits      float64              `json:"semester_credits"`
	CumulativeGPA        float64              `json:"cumulative_gpa"`
	CumulativeGPADisplay string               `json:"cumulative_gpa_display"`
	CourseCount          int                  `json:"course_count"`
	Assignments          AssignmentCounts     `json:"assignments"`
	UpcomingAssignments  []AssignmentResponse `json:"upcoming_assignments"`
	NextClass            *NextClassResponse   `json:"next_class"`
}

// AssignmentCounts summarises assignments by derived state.
type AssignmentCounts struct {
	Upcoming    int `json:"upcoming"`
	DueThisWeek int `json:"due_this_week"`
	Overdue     int `json:"overdue"`
	Completed   int `json:"completed"`
}

// NextClassResponse describes the next meeting to attend.
type NextClassResponse struct {
	CourseID string    `json:"course_id"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	Location string    `json:"location"`
	StartsAt time.Time `json:"starts_at"`
	Relative string    `json:"relative"`
	TimeOnly string    `json:"time_only"`
}

// WeekLayoutResponse is the Monday to Friday lane layout of a week.
type WeekLayoutResponse struct {
	WeekStart string              `json:"week_start"`
	Days      []DayLayoutResponse `json:"days"`
}

// DayLayoutResponse holds the positioned blocks of one day.
type DayLayoutResponse struct {
	Date    string          `json:"date"`
	Weekday string          `json:"weekday"`
	Blocks  []BlockResponse `json:"blocks"`
}

// BlockResponse is one meeting positioned within its day column.
type BlockResponse struct {
	CourseID     string  `json:"course_id"`
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Location     string  `json:"location"`
	Online       bool    `json:"online"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	StartMinutes int     `json:"start_minutes"`
	EndMinutes   int     `json:"end_minutes"`
	Lane         int     `json:"lane"`
	TotalLanes   int     `json:"total_lanes"`
	Offset       float64 `json:"offset"`
	Width        float64 `json:"width"`
}

// WeekQuery selects a week by a date inside it or by an offset in weeks
// from the current one.
type WeekQuery struct {
	Date   string `query:"date"`
	Offset int    `query:"offset"`
}

// NewWeekLayoutResponse converts a computed layout.
func NewWeekLayoutResponse(layout planner.WeekLayout) WeekLayoutResponse {
	response := WeekLayoutResponse{
		WeekStart: FormatDate(layout.Start),
		Days:      make([]DayLayoutResponse, 0, len(layout.Days)),
	}
	for _, day := range layout.Days {
		blocks := make([]BlockResponse, 0, len(day.Blocks))
		for _, block := range day.Blocks {
			blocks = append(blocks, BlockResponse{
				CourseID:     block.CourseID.String(),
				Code:         block.Code,
				Name:         block.Name,
				Location:     block.Location,
				Online:       block.Online,
				StartTime:    block.Start.String(),
				EndTime:      block.End.String(),
				StartMinutes: int(block.Start),
				EndMinutes:   int(block.End),
				Lane:         block.Lane,
				TotalLanes:   block.TotalLanes,
				Offset:       block.Offset,
				Width:        block.Width,
			})
		}
		response.Days = append(response.Days, DayLayoutResponse{
			Date:    FormatDate(day.Date),
			Weekday: day.Weekday.String(),
			Blocks:  blocks,
		})
	}
	return response
}
