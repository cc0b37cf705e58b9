package models

import "github.com/noah-isme/planner-go-api/internal/snowflake"

// ResourceLink is a titled external link embedded in courses and assignments.
type ResourceLink struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Course is a class taken within one semester.
type Course struct {
	ID                 snowflake.ID   `json:"id"`
	UserID             string         `json:"userId"`
	SemesterID         snowflake.ID   `json:"semesterId"`
	Name               string         `json:"name"`
	Code               string         `json:"code"`
	Credits            int            `json:"credits"`
	Instructor         string         `json:"instructor"`
	Schedule           WeeklySchedule `json:"schedule"`
	Resources          []ResourceLink `json:"resources"`
	CourseLink         string         `json:"courseLink"`
	SyllabusLink       string         `json:"syllabusLink"`
	GradeSpreadsheetID string         `json:"gradeSpreadsheetId,omitempty"`
	Grade              float64        `json:"grade"`
	AssignmentIDs      []snowflake.ID `json:"assignmentIds"`
	Online             bool           `json:"online"`
	LetterGrade        LetterGrade    `json:"letterGrade,omitempty"`
}

// HasAssignment reports whether the assignment id is referenced by the course.
func (c Course) HasAssignment(id snowflake.ID) bool {
	for _, existing := range c.AssignmentIDs {
		if existing == id {
			return true
		}
	}
	return false
}

// Validate checks the invariants that must hold before the course is written.
func (c Course) Validate() error {
	if c.SemesterID.IsZero() {
		return invalid("semesterId", "is required")
	}
	if c.Name == "" {
		return invalid("name", "is required")
	}
	if c.Code == "" {
		return invalid("code", "is required")
	}
	if c.Credits <= 0 {
		return invalid("credits", "must be a positive integer")
	}
	if c.Grade < 0 || c.Grade > 100 {
		return invalid("grade", "must be between 0 and 100")
	}
	if !c.LetterGrade.Valid() {
		return invalid("letterGrade", "unknown letter grade")
	}
	if !c.Online && !c.Schedule.HasMeetings() {
		return invalid("schedule", "in-person courses need at least one weekly meeting")
	}
	return c.Schedule.Validate()
}
