package models

import "strings"

// Term is the academic term of a semester.
type Term string

const (
	TermFall   Term = "fall"
	TermSpring Term = "spring"
	TermSummer Term = "summer"
)

// Valid reports whether the term is one of the known terms.
func (t Term) Valid() bool {
	switch t {
	case TermFall, TermSpring, TermSummer:
		return true
	}
	return false
}

// Title returns the capitalised term name.
func (t Term) Title() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// SemesterStatus classifies a semester against the current date.
type SemesterStatus string

const (
	SemesterCurrent   SemesterStatus = "current"
	SemesterCompleted SemesterStatus = "completed"
	SemesterUpcoming  SemesterStatus = "upcoming"
)

// Valid reports whether the status is known.
func (s SemesterStatus) Valid() bool {
	switch s {
	case SemesterCurrent, SemesterCompleted, SemesterUpcoming:
		return true
	}
	return false
}

// AssignmentStatus is the lifecycle state of an assignment.
type AssignmentStatus string

const (
	AssignmentNotStarted AssignmentStatus = "not_started"
	AssignmentInProgress AssignmentStatus = "in_progress"
	AssignmentCompleted  AssignmentStatus = "completed"
	// AssignmentOverdue is derived at read time and never stored.
	AssignmentOverdue AssignmentStatus = "overdue"
)

// Persistable reports whether the status may be written to the store.
func (s AssignmentStatus) Persistable() bool {
	switch s {
	case AssignmentNotStarted, AssignmentInProgress, AssignmentCompleted:
		return true
	}
	return false
}

// Next returns the following status in the not_started -> in_progress -> completed cycle.
// Overdue cycles as not_started.
func (s AssignmentStatus) Next() AssignmentStatus {
	switch s {
	case AssignmentNotStarted, AssignmentOverdue:
		return AssignmentInProgress
	case AssignmentInProgress:
		return AssignmentCompleted
	default:
		return AssignmentNotStarted
	}
}

// Category classifies an assignment.
type Category string

const (
	CategoryHomework Category = "homework"
	CategoryProject  Category = "project"
	CategoryExam     Category = "exam"
	CategoryQuiz     Category = "quiz"
	CategoryLab      Category = "lab"
	CategoryEssay    Category = "essay"
	CategoryReading  Category = "reading"
	CategoryOther    Category = "other"
)

// Valid reports whether the category is known.
func (c Category) Valid() bool {
	switch c {
	case CategoryHomework, CategoryProject, CategoryExam, CategoryQuiz,
		CategoryLab, CategoryEssay, CategoryReading, CategoryOther:
		return true
	}
	return false
}

// LetterGrade is an optional letter classification of a course result.
type LetterGrade string

const (
	GradeA         LetterGrade = "A"
	GradeAMinus    LetterGrade = "A-"
	GradeBPlus     LetterGrade = "B+"
	GradeB         LetterGrade = "B"
	GradeBMinus    LetterGrade = "B-"
	GradeCPlus     LetterGrade = "C+"
	GradeC         LetterGrade = "C"
	GradeCMinus    LetterGrade = "C-"
	GradeDPlus     LetterGrade = "D+"
	GradeD         LetterGrade = "D"
	GradeDMinus    LetterGrade = "D-"
	GradeF         LetterGrade = "F"
	GradeNotGraded LetterGrade = "N/A"
)

// Graded reports whether the letter grade counts towards a GPA.
// An empty grade is treated as N/A.
func (g LetterGrade) Graded() bool {
	return g != "" && g != GradeNotGraded
}

// Valid reports whether the grade is empty or one of the known letters.
func (g LetterGrade) Valid() bool {
	switch g {
	case "", GradeA, GradeAMinus, GradeBPlus, GradeB, GradeBMinus, GradeCPlus, GradeC,
		GradeCMinus, GradeDPlus, GradeD, GradeDMinus, GradeF, GradeNotGraded:
		return true
	}
	return false
}
