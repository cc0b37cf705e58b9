// Package planner derives read-only figures from already-fetched semesters,
// courses and assignments: GPAs, credit totals, the next upcoming class and a
// lane layout of the week. Nothing here touches storage.
package planner

import (
	"fmt"
	"strings"

	"github.com/noah-isme/planner-go-api/internal/models"
	"github.com/noah-isme/planner-go-api/internal/snowflake"
)

// NotApplicable is returned by GPA and credit calculations when the semester
// is unknown or no credits are eligible. It is never a real result.
const NotApplicable = -1.0

// Breakpoint maps grades at or above Min to Points.
type Breakpoint struct {
	Min    float64
	Points float64
}

// GradeScale converts a numeric 0-100 grade to grade points. Breakpoints are
// checked in order; grades below every breakpoint earn zero.
type GradeScale struct {
	Name        string
	Breakpoints []Breakpoint
}

var (
	// RoundedScale accepts grades half a point under each boundary.
	RoundedScale = GradeScale{
		Name: "rounded",
		Breakpoints: []Breakpoint{
			{Min: 89.5, Points: 4.0},
			{Min: 79.5, Points: 3.0},
			{Min: 69.5, Points: 2.0},
			{Min: 59.5, Points: 1.0},
		},
	}
	// StrictScale uses the whole-number boundaries.
	StrictScale = GradeScale{
		Name: "strict",
		Breakpoints: []Breakpoint{
			{Min: 90, Points: 4.0},
			{Min: 80, Points: 3.0},
			{Min: 70, Points: 2.0},
			{Min: 60, Points: 1.0},
		},
	}
)

// DefaultScale is the canonical numeric conversion.
var DefaultScale = RoundedScale

// ParseGradeScale resolves a scale by name. An empty name selects DefaultScale.
func ParseGradeScale(name string) (GradeScale, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return DefaultScale, nil
	case RoundedScale.Name:
		return RoundedScale, nil
	case StrictScale.Name:
		return StrictScale, nil
	default:
		return GradeScale{}, fmt.Errorf("unknown grade scale %q", name)
	}
}

// Points converts a numeric grade to grade points.
func (s GradeScale) Points(grade float64) float64 {
	for _, bp := range s.Breakpoints {
		if grade >= bp.Min {
			return bp.Points
		}
	}
	return 0
}

var letterPoints = map[models.LetterGrade]float64{
	models.GradeA:      4.0,
	models.GradeAMinus: 3.7,
	models.GradeBPlus:  3.3,
	models.GradeB:      3.0,
	models.GradeBMinus: 2.7,
	models.GradeCPlus:  2.3,
	models.GradeC:      2.0,
	models.GradeCMinus: 1.7,
	models.GradeDPlus:  1.3,
	models.GradeD:      1.0,
	models.GradeDMinus: 0.7,
	models.GradeF:      0.0,
}

// LetterPoints returns the grade points of a letter grade. ok is false for
// N/A, empty and unknown grades.
func LetterPoints(grade models.LetterGrade) (float64, bool) {
	points, ok := letterPoints[grade]
	return points, ok
}

// SemesterGPA is SemesterGPAWithScale using DefaultScale.
func SemesterGPA(semesterID snowflake.ID, semesters []models.Semester, courses []models.Course) float64 {
	return SemesterGPAWithScale(DefaultScale, semesterID, semesters, courses)
}

// SemesterGPAWithScale returns the credit-weighted GPA of the semester's
// courses from their numeric grades. Course ids that do not resolve are
// skipped. The result is not rounded.
func SemesterGPAWithScale(scale GradeScale, semesterID snowflake.ID, semesters []models.Semester, courses []models.Course) float64 {
	resolved, ok := semesterCourses(semesterID, semesters, courses)
	if !ok {
		return NotApplicable
	}
	return NumericGPA(scale, resolved)
}

// NumericGPA returns the credit-weighted GPA of courses from their numeric grades.
func NumericGPA(scale GradeScale, courses []models.Course) float64 {
	var points, credits float64
	for _, course := range courses {
		weight := float64(course.Credits)
		points += scale.Points(course.Grade) * weight
		credits += weight
	}
	if credits == 0 {
		return NotApplicable
	}
	return points / credits
}

// SemesterLetterGPA returns the credit-weighted GPA of the semester's courses
// from their letter grades. Ungraded courses count towards neither sum.
func SemesterLetterGPA(semesterID snowflake.ID, semesters []models.Semester, courses []models.Course) float64 {
	resolved, ok := semesterCourses(semesterID, semesters, courses)
	if !ok {
		return NotApplicable
	}
	return LetterGPA(resolved)
}

// LetterGPA returns the credit-weighted letter-grade GPA of courses.
func LetterGPA(courses []models.Course) float64 {
	var points, credits float64
	for _, course := range courses {
		value, ok := LetterPoints(course.LetterGrade)
		if !ok {
			continue
		}
		weight := float64(course.Credits)
		points += value * weight
		credits += weight
	}
	if credits == 0 {
		return NotApplicable
	}
	return points / credits
}

// CumulativeGPA weights every course referenced by any of the semesters.
func CumulativeGPA(scale GradeScale, semesters []models.Semester, courses []models.Course) float64 {
	index := indexCourses(courses)
	var all []models.Course
	for _, semester := range semesters {
		for _, id := range semester.CourseIDs {
			if course, ok := index[id]; ok {
				all = append(all, course)
			}
		}
	}
	return NumericGPA(scale, all)
}

// SemesterCredits sums the credits of the semester's resolvable courses.
// An unknown semester yields NotApplicable; a semester without courses yields 0.
func SemesterCredits(semesterID snowflake.ID, semesters []models.Semester, courses []models.Course) float64 {
	resolved, ok := semesterCourses(semesterID, semesters, courses)
	if !ok {
		return NotApplicable
	}

	var total float64
	for _, course := range resolved {
		total += float64(course.Credits)
	}
	return total
}

// FormatGPA renders a GPA with two decimals, or N/A for NotApplicable.
func FormatGPA(gpa float64) string {
	if gpa < 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", gpa)
}

// semesterCourses resolves the semester's course ids against courses,
// dropping ids that do not resolve.
func semesterCourses(semesterID snowflake.ID, semesters []models.Semester, courses []models.Course) ([]models.Course, bool) {
	semester, ok := findSemester(semesterID, semesters)
	if !ok {
		return nil, false
	}

	index := indexCourses(courses)
	resolved := make([]models.Course, 0, len(semester.CourseIDs))
	for _, id := range semester.CourseIDs {
		if course, ok := index[id]; ok {
			resolved = append(resolved, course)
		}
	}
	return resolved, true
}

func findSemester(id snowflake.ID, semesters []models.Semester) (models.Semester, bool) {
	for _, semester := range semesters {
		if semester.ID == id {
			return semester, true
		}
	}
	return models.Semester{}, false
}

func indexCourses(courses []models.Course) map[snowflake.ID]models.Course {
	index := make(map[snowflake.ID]models.Course, len(courses))
	for _, course := range courses {
		index[course.ID] = course
	}
	return index
}
