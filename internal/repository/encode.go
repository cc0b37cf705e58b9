package repository

import (
	"github.com/noah-isme/planner-go-api/internal/models"
	"github.com/noah-isme/planner-go-api/internal/snowflake"
)

// The encoders below produce the persisted document layout. The document id
// is the store key and is not repeated inside the data.

func semesterDocument(semester models.Semester) map[string]any {
	return map[string]any{
		"userId":    semester.UserID,
		"startDate": semester.StartDate.UTC(),
		"endDate":   semester.EndDate.UTC(),
		"term":      string(semester.Term),
		"year":      semester.Year,
		"name":      semester.Name,
		"courseIds": idList(semester.CourseIDs),
		"status":    string(semester.Status),
	}
}

func courseDocument(course models.Course) map[string]any {
	data := map[string]any{
		"userId":        course.UserID,
		"semesterId":    course.SemesterID.String(),
		"name":          course.Name,
		"code":          course.Code,
		"credits":       course.Credits,
		"instructor":    course.Instructor,
		"schedule":      scheduleDocument(course.Schedule),
		"resources":     resourceList(course.Resources),
		"courseLink":    course.CourseLink,
		"syllabusLink":  course.SyllabusLink,
		"grade":         course.Grade,
		"assignmentIds": idList(course.AssignmentIDs),
		"online":        course.Online,
	}
	if course.GradeSpreadsheetID != "" {
		data["gradeSpreadsheetId"] = course.GradeSpreadsheetID
	}
	if course.LetterGrade != "" {
		data["letterGrade"] = string(course.LetterGrade)
	}
	return data
}

func assignmentDocument(assignment models.Assignment) map[string]any {
	var description any
	if assignment.Description != nil {
		description = *assignment.Description
	}
	return map[string]any{
		"userId":         assignment.UserID,
		"name":           assignment.Name,
		"description":    description,
		"dueDate":        assignment.DueDate.UTC(),
		"courseId":       assignment.CourseID.String(),
		"semesterId":     assignment.SemesterID.String(),
		"resources":      resourceList(assignment.Resources),
		"assignmentLink": assignment.AssignmentLink,
		"status":         string(assignment.Status),
		"category":       string(assignment.Category),
	}
}

func scheduleDocument(schedule models.WeeklySchedule) map[string]any {
	out := make(map[string]any, len(models.Weekdays))
	for _, day := range models.Weekdays {
		slots := schedule.On(day)
		encoded := make([]any, 0, len(slots))
		for _, slot := range slots {
			encoded = append(encoded, map[string]any{
				"startTime": slot.StartTime.String(),
				"endTime":   slot.EndTime.String(),
				"location":  slot.Location,
			})
		}
		out[models.WeekdayKey(day)] = encoded
	}
	return out
}

func resourceList(resources []models.ResourceLink) []any {
	out := make([]any, 0, len(resources))
	for _, resource := range resources {
		out = append(out, map[string]any{
			"url":   resource.URL,
			"title": resource.Title,
		})
	}
	return out
}

func idList(ids []snowflake.ID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
