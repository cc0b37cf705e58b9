package dto

import (
	"time"

	"github.com/noah-isme/planner-go-api/internal/models"
)

// MeetingSlotPayload is one weekly meeting as sent by clients. Times use the
// "9:30 AM" form; 24-hour "14:30" is accepted too.
type MeetingSlotPayload struct {
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	Location  string `json:"location" validate:"max=120"`
}

// SchedulePayload lists meetings per weekday.
type SchedulePayload struct {
	Monday    []MeetingSlotPayload `json:"monday" validate:"dive"`
	Tuesday   []MeetingSlotPayload `json:"tuesday" validate:"dive"`
	Wednesday []MeetingSlotPayload `json:"wednesday" validate:"dive"`
	Thursday  []MeetingSlotPayload `json:"thursday" validate:"dive"`
	Friday    []MeetingSlotPayload `json:"friday" validate:"dive"`
	Saturday  []MeetingSlotPayload `json:"saturday" validate:"dive"`
	Sunday    []MeetingSlotPayload `json:"sunday" validate:"dive"`
}

func (p SchedulePayload) days() map[time.Weekday][]MeetingSlotPayload {
	return map[time.Weekday][]MeetingSlotPayload{
		time.Monday:    p.Monday,
		time.Tuesday:   p.Tuesday,
		time.Wednesday: p.Wednesday,
		time.Thursday:  p.Thursday,
		time.Friday:    p.Friday,
		time.Saturday:  p.Saturday,
		time.Sunday:    p.Sunday,
	}
}

// ToModel parses the clock times of every meeting.
func (p SchedulePayload) ToModel() (models.WeeklySchedule, error) {
	var schedule models.WeeklySchedule
	days := p.days()
	for _, day := range models.Weekdays {
		for _, slot := range days[day] {
			start, err := models.ParseClockTime(slot.StartTime)
			if err != nil {
				return models.WeeklySchedule{}, &models.ValidationError{Field: "schedule." + models.WeekdayKey(day), Reason: err.Error()}
			}
			end, err := models.ParseClockTime(slot.EndTime)
			if err != nil {
				return models.WeeklySchedule{}, &models.ValidationError{Field: "schedule." + models.WeekdayKey(day), Reason: err.Error()}
			}
			schedule.Add(day, models.MeetingSlot{StartTime: start, EndTime: end, Location: slot.Location})
		}
	}
	return schedule, nil
}

// MeetingSlotResponse is a meeting as returned to clients.
type MeetingSlotResponse struct {
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	StartMinutes int    `json:"start_minutes"`
	EndMinutes   int    `json:"end_minutes"`
	Location     string `json:"location"`
}

// NewScheduleResponse renders every weekday, empty days included.
func NewScheduleResponse(schedule models.WeeklySchedule) map[string][]MeetingSlotResponse {
	out := make(map[string][]MeetingSlotResponse, len(models.Weekdays))
	for _, day := range models.Weekdays {
		slots := schedule.On(day)
		rendered := make([]MeetingSlotResponse, 0, len(slots))
		for _, slot := range slots {
			rendered = append(rendered, MeetingSlotResponse{
				StartTime:    slot.StartTime.String(),
				EndTime:      slot.EndTime.String(),
				StartMinutes: int(slot.StartTime),
				EndMinutes:   int(slot.EndTime),
				Location:     slot.Location,
			})
		}
		out[models.WeekdayKey(day)] = rendered
	}
	return out
}

// CourseCreateRequest describes the payload for creating a course.
type CourseCreateRequest struct {
	SemesterID         string            `json:"semester_id" validate:"required,numeric"`
	Name               string            `json:"name" validate:"required,max=200"`
	Code               string            `json:"code" validate:"required,max=40"`
	Credits            int               `json:"credits" validate:"required,min=1,max=30"`
	Instructor         string            `json:"instructor" validate:"max=120"`
	Schedule           SchedulePayload   `json:"schedule"`
	Resources          []ResourcePayload `json:"resources" validate:"dive"`
	CourseLink         string            `json:"course_link" validate:"omitempty,url"`
	SyllabusLink       string            `json:"syllabus_link" validate:"omitempty,url"`
	GradeSpreadsheetID string            `json:"grade_spreadsheet_id" validate:"max=200"`
	Grade              float64           `json:"grade" validate:"min=0,max=100"`
	Online             bool              `json:"online"`
	LetterGrade        string            `json:"letter_grade" validate:"omitempty,oneof=A A- B+ B B- C+ C C- D+ D D- F N/A"`
}

// CourseUpdateRequest describes a partial course update.
type CourseUpdateRequest struct {
	Name               *string            `json:"name" validate:"omitempty,max=200"`
	Code               *string            `json:"code" validate:"omitempty,max=40"`
	Credits            *int               `json:"credits" validate:"omitempty,min=1,max=30"`
	Instructor         *string            `json:"instructor" validate:"omitempty,max=120"`
	Schedule           *SchedulePayload   `json:"schedule"`
	Resources          *[]ResourcePayload `json:"resources" validate:"omitempty,dive"`
	CourseLink         *string            `json:"course_link" validate:"omitempty,url"`
	SyllabusLink       *string            `json:"syllabus_link" validate:"omitempty,url"`
	GradeSpreadsheetID *string            `json:"grade_spreadsheet_id" validate:"omitempty,max=200"`
	Grade              *float64           `json:"grade" validate:"omitempty,min=0,max=100"`
	Online             *bool              `json:"online"`
	LetterGrade        *string            `json:"letter_grade" validate:"omitempty,oneof=A A- B+ B B- C+ C C- D+ D D- F N/A"`
}

// CourseResponse is the serialized representation returned to API clients.
type CourseResponse struct {
	ID                 string                           `json:"id"`
	SemesterID         string                           `json:"semester_id"`
	Name               string                           `json:"name"`
	Code               string                           `json:"code"`
	Credits            int                              `json:"credits"`
	Instructor         string                           `json:"instructor"`
	Schedule           map[string][]MeetingSlotResponse `json:"schedule"`
	Resources          []ResourceResponse               `json:"resources"`
	CourseLink         string                           `json:"course_link"`
	SyllabusLink       string                           `json:"syllabus_link"`
	GradeSpreadsheetID string                           `json:"grade_spreadsheet_id,omitempty"`
	Grade              float64                          `json:"grade"`
	GradePoints        float64                          `json:"grade_points"`
	LetterGrade        string                           `json:"letter_grade,omitempty"`
	Online             bool                             `json:"online"`
	AssignmentIDs      []string                         `json:"assignment_ids"`
}

// NewCourseResponse converts a model into a DTO.
func NewCourseResponse(model models.Course) CourseResponse {
	assignmentIDs := make([]string, 0, len(model.AssignmentIDs))
	for _, id := range model.AssignmentIDs {
		assignmentIDs = append(assignmentIDs, id.String())
	}

	return CourseResponse{
		ID:                 model.ID.String(),
		SemesterID:         model.SemesterID.String(),
		Name:               model.Name,
		Code:               model.Code,
		Credits:            model.Credits,
		Instructor:         model.Instructor,
		Schedule:           NewScheduleResponse(model.Schedule),
		Resources:          NewResourceResponseSlice(model.Resources),
		CourseLink:         model.CourseLink,
		SyllabusLink:       model.SyllabusLink,
		GradeSpreadsheetID: model.GradeSpreadsheetID,
		Grade:              model.Grade,
		LetterGrade:        string(model.LetterGrade),
		Online:             model.Online,
		AssignmentIDs:      assignmentIDs,
	}
}

// NewCourseResponseSlice converts a slice of models into DTOs.
func NewCourseResponseSlice(courses []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, NewCourseResponse(course))
	}
	return responses
}
