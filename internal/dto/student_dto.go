package dto

import (
	"encoding/json"
	"time"

	"github.com/edupulse/studentsuccess-api/internal/models"
)

// AddressRequest mirrors the mailing address stored on a student profile.
type AddressRequest struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

// StudentCreateRequest describes the payload for creating a student profile.
type StudentCreateRequest struct {
	UserID        uint            `json:"user_id" validate:"required,min=1"`
	StudentNumber string          `json:"student_number" validate:"required,min=1,max=64"`
	DateOfBirth   string          `json:"date_of_birth" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Gender        string          `json:"gender" validate:"required,oneof=male female other"`
	Address       *AddressRequest `json:"address"`
	ContactNumber string          `json:"contact_number" validate:"required,min=3,max=32"`
}

// StudentUpdateRequest is the allow-listed patch applied to a student profile.
// Identity fields (user, student number) never change through this path.
type StudentUpdateRequest struct {
	Gender          *string         `json:"gender" validate:"omitempty,oneof=male female other"`
	Address         *AddressRequest `json:"address"`
	ContactNumber   *string         `json:"contact_number" validate:"omitempty,min=3,max=32"`
	CurrentSemester *int            `json:"current_semester" validate:"omitempty,min=1"`
	GPA             *float64        `json:"gpa" validate:"omitempty,min=0,max=4"`
}

// AddTranscriptCourseRequest appends a course to the student's transcript.
type AddTranscriptCourseRequest struct {
	CourseID uint `json:"course_id" validate:"required,min=1"`
	Semester int  `json:"semester" validate:"required,min=1"`
	Year     int  `json:"year" validate:"required,min=2000"`
}

// SetTranscriptGradeRequest records the letter grade on a transcript entry.
type SetTranscriptGradeRequest struct {
	Grade string `json:"grade" validate:"required,oneof=A B C D F W I"`
}

// GoalCreateRequest describes a new student goal.
type GoalCreateRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description"`
	TargetDate  string `json:"target_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// GoalUpdateRequest patches an existing student goal.
type GoalUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	TargetDate  *string `json:"target_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Status      *string `json:"status" validate:"omitempty,oneof=pending in-progress completed"`
}

// AddressResponse is the serialized mailing address.
type AddressResponse struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

// TranscriptCourseResponse is a serialized transcript entry.
type TranscriptCourseResponse struct {
	ID       uint           `json:"id"`
	Course   *CourseSummary `json:"course,omitempty"`
	CourseID uint           `json:"course_id"`
	Grade    *string        `json:"grade"`
	Semester int            `json:"semester"`
	Year     int            `json:"year"`
}

// GoalResponse is a serialized student goal.
type GoalResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	TargetDate  time.Time `json:"target_date"`
	Status      string    `json:"status"`
}

// StudentResponse is the serialized representation returned to API clients.
type StudentResponse struct {
	ID              uint                       `json:"id"`
	User            UserResponse               `json:"user"`
	StudentNumber   string                     `json:"student_number"`
	DateOfBirth     time.Time                  `json:"date_of_birth"`
	Gender          string                     `json:"gender"`
	Address         *AddressResponse           `json:"address"`
	ContactNumber   string                     `json:"contact_number"`
	EnrollmentDate  time.Time                  `json:"enrollment_date"`
	CurrentSemester int                        `json:"current_semester"`
	GPA             float64                    `json:"gpa"`
	Courses         []TranscriptCourseResponse `json:"courses"`
	Goals           []GoalResponse             `json:"goals"`
	CreatedAt       time.Time                  `json:"created_at"`
	UpdatedAt       time.Time                  `json:"updated_at"`
}

// StudentDashboardResponse aggregates everything the student landing page
// renders in one payload.
type StudentDashboardResponse struct {
	Student         StudentResponse `json:"student"`
	CourseCount     int             `json:"course_count"`
	CompletedGoals  int             `json:"completed_goals"`
	PendingGoals    int             `json:"pending_goals"`
	InProgressGoals int             `json:"in_progress_goals"`
	GeneratedAt     time.Time       `json:"generated_at"`
}

// NewStudentResponse converts a model into a DTO.
func NewStudentResponse(student models.Student) StudentResponse {
	response := StudentResponse{
		ID:              student.ID,
		User:            NewUserResponse(student.User),
		StudentNumber:   student.StudentNumber,
		DateOfBirth:     student.DateOfBirth,
		Gender:          student.Gender,
		ContactNumber:   student.ContactNumber,
		EnrollmentDate:  student.EnrollmentDate,
		CurrentSemester: student.CurrentSemester,
		GPA:             student.GPA,
		Courses:         make([]TranscriptCourseResponse, 0, len(student.Courses)),
		Goals:           make([]GoalResponse, 0, len(student.Goals)),
		CreatedAt:       student.CreatedAt,
		UpdatedAt:       student.UpdatedAt,
	}

	if len(student.Address) > 0 {
		var address AddressResponse
		if err := json.Unmarshal(student.Address, &address); err == nil {
			response.Address = &address
		}
	}

	for _, entry := range student.Courses {
		item := TranscriptCourseResponse{
			ID:       entry.ID,
			CourseID: entry.CourseID,
			Grade:    entry.Grade,
			Semester: entry.Semester,
			Year:     entry.Year,
		}
		if entry.Course.ID != 0 {
			summary := NewCourseSummary(entry.Course)
			item.Course = &summary
		}
		response.Courses = append(response.Courses, item)
	}

	for _, goal := range student.Goals {
		response.Goals = append(response.Goals, GoalResponse{
			ID:          goal.ID,
			Title:       goal.Title,
			Description: goal.Description,
			TargetDate:  goal.TargetDate,
			Status:      goal.Status,
		})
	}

	return response
}

// NewStudentResponseSlice converts a slice of models into DTOs.
func NewStudentResponseSlice(students []models.Student) []StudentResponse {
	responses := make([]StudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, NewStudentResponse(student))
	}

	return responses
}
