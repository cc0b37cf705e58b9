package planner

import (
	"sort"
	"time"

	"github.com/noah-isme/planner-go-api/internal/models"
	"github.com/noah-isme/planner-go-api/internal/snowflake"
)

// LaneTolerance lets a meeting start marginally before the previous one in
// a lane ends and still share the lane.
const LaneTolerance = 36 * time.Second

// LayoutDays is the number of weekdays, Monday first, covered by a layout.
const LayoutDays = 5

// Block is one meeting positioned within its day.
type Block struct {
	CourseID   snowflake.ID
	Code       string
	Name       string
	Location   string
	Online     bool
	Start      models.ClockTime
	End        models.ClockTime
	Lane       int
	TotalLanes int
	// Offset and Width are fractions of the day column width.
	Offset float64
	Width  float64
}

// DayLayout holds the blocks of one calendar day, ordered by start then end.
type DayLayout struct {
	Date    time.Time
	Weekday time.Weekday
	Blocks  []Block
}

// WeekLayout is the Monday to Friday layout of one week.
type WeekLayout struct {
	Start time.Time
	Days  []DayLayout
}

// WeekStart returns local midnight of the Monday on or before t.
func WeekStart(t time.Time) time.Time {
	y, m, d := t.Date()
	back := (int(t.Weekday()) + 6) % 7
	return time.Date(y, m, d-back, 0, 0, 0, 0, t.Location())
}

// LayoutWeek places every meeting of the five days starting at weekStart.
// A course contributes to a day only when its semester resolves and that
// day lies within the semester's dates.
//
// Lanes are assigned greedily: blocks are visited in start order (end order
// on ties) and each takes the first lane whose last block has ended, or
// opens a new lane. The lane count reported on a block is that of its
// cluster, the maximal run of transitively overlapping blocks, so a block
// that overlaps nothing spans the full width. Visiting blocks in a
// different order can give a different, equally valid assignment.
func LayoutWeek(semesters []models.Semester, courses []models.Course, weekStart time.Time) WeekLayout {
	byID := make(map[snowflake.ID]models.Semester, len(semesters))
	for _, semester := range semesters {
		byID[semester.ID] = semester
	}

	y, m, d := weekStart.Date()
	layout := WeekLayout{
		Start: time.Date(y, m, d, 0, 0, 0, 0, weekStart.Location()),
		Days:  make([]DayLayout, 0, LayoutDays),
	}

	for offset := 0; offset < LayoutDays; offset++ {
		date := time.Date(y, m, d+offset, 0, 0, 0, 0, weekStart.Location())

		var blocks []Block
		for _, course := range courses {
			semester, ok := byID[course.SemesterID]
			if !ok || !semester.Contains(date) {
				continue
			}
			for _, slot := range course.Schedule.On(date.Weekday()) {
				blocks = append(blocks, Block{
					CourseID: course.ID,
					Code:     course.Code,
					Name:     course.Name,
					Location: slot.Location,
					Online:   course.Online,
					Start:    slot.StartTime,
					End:      slot.EndTime,
				})
			}
		}

		layout.Days = append(layout.Days, DayLayout{
			Date:    date,
			Weekday: date.Weekday(),
			Blocks:  AssignLanes(blocks),
		})
	}

	return layout
}

// AssignLanes sorts blocks and fills in their lane placement.
func AssignLanes(blocks []Block) []Block {
	if len(blocks) == 0 {
		return []Block{}
	}

	sorted := append([]Block(nil), blocks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	var (
		lanes        []time.Duration
		clusterStart int
		clusterEnd   time.Duration
	)
	closeCluster := func(upTo int) {
		for i := clusterStart; i < upTo; i++ {
			sorted[i].TotalLanes = len(lanes)
			sorted[i].Width = 1 / float64(len(lanes))
			sorted[i].Offset = float64(sorted[i].Lane) * sorted[i].Width
		}
	}

	for i := range sorted {
		start := sorted[i].Start.SinceMidnight()
		end := sorted[i].End.SinceMidnight()

		if i > 0 && start >= clusterEnd-LaneTolerance {
			closeCluster(i)
			lanes = lanes[:0]
			clusterStart = i
		}

		placed := false
		for lane, laneEnd := range lanes {
			if start >= laneEnd-LaneTolerance {
				lanes[lane] = end
				sorted[i].Lane = lane
				placed = true
				break
			}
		}
		if !placed {
			sorted[i].Lane = len(lanes)
			lanes = append(lanes, end)
		}

		if i == clusterStart || end > clusterEnd {
			clusterEnd = end
		}
	}
	closeCluster(len(sorted))

	return sorted
}
