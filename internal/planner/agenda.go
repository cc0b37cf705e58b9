package planner

import (
	"sort"
	"time"

	"github.com/noah-isme/planner-go-api/internal/models"
)

// CurrentSemester picks the semester whose dates contain now. When several
// do, the one starting latest wins.
func CurrentSemester(semesters []models.Semester, now time.Time) (models.Semester, bool) {
	var (
		current models.Semester
		found   bool
	)
	for _, semester := range semesters {
		if !semester.Contains(now) {
			continue
		}
		if !found || semester.StartDate.After(current.StartDate) {
			current = semester
			found = true
		}
	}
	return current, found
}

// SortSemesters orders semesters newest first by start date.
func SortSemesters(semesters []models.Semester) {
	sort.SliceStable(semesters, func(i, j int) bool {
		return semesters[i].StartDate.After(semesters[j].StartDate)
	})
}

// AssignmentFilter narrows an assignment listing by derived status.
type AssignmentFilter struct {
	HideCompleted bool
	HideOverdue   bool
}

// FilterAssignments applies filter using statuses derived at now and
// returns the survivors ordered by due date.
func FilterAssignments(assignments []models.Assignment, filter AssignmentFilter, now time.Time) []models.Assignment {
	out := make([]models.Assignment, 0, len(assignments))
	for _, assignment := range assignments {
		switch assignment.DisplayStatus(now) {
		case models.AssignmentCompleted:
			if filter.HideCompleted {
				continue
			}
		case models.AssignmentOverdue:
			if filter.HideOverdue {
				continue
			}
		}
		out = append(out, assignment)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate.Before(out[j].DueDate)
	})
	return out
}

// AssignmentSummary counts assignments by their derived state at a moment.
type AssignmentSummary struct {
	Upcoming    int
	DueThisWeek int
	Overdue     int
	Completed   int
}

// SummarizeAssignments counts open assignments still ahead of now, those
// due before the end of now's week (Sunday midnight), overdue ones and
// completed ones.
func SummarizeAssignments(assignments []models.Assignment, now time.Time) AssignmentSummary {
	weekEnd := WeekStart(now).AddDate(0, 0, 7)

	var summary AssignmentSummary
	for _, assignment := range assignments {
		switch assignment.DisplayStatus(now) {
		case models.AssignmentCompleted:
			summary.Completed++
		case models.AssignmentOverdue:
			summary.Overdue++
		default:
			summary.Upcoming++
			if assignment.DueDate.Before(weekEnd) {
				summary.DueThisWeek++
			}
		}
	}
	return summary
}

// CoursesOn returns the courses whose semester resolves and contains day.
func CoursesOn(semesters []models.Semester, courses []models.Course, day time.Time) []models.Course {
	active := make(map[string]bool, len(semesters))
	for _, semester := range semesters {
		if semester.Contains(day) {
			active[semester.ID.String()] = true
		}
	}

	out := make([]models.Course, 0, len(courses))
	for _, course := range courses {
		if active[course.SemesterID.String()] {
			out = append(out, course)
		}
	}
	return out
}
