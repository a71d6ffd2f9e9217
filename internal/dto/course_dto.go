package dto

import (
	"time"

	"github.com/edupulse/studentsuccess-api/internal/models"
)

// ScheduleRequest mirrors the weekly meeting slot of a course.
type ScheduleRequest struct {
	Day       string `json:"day" validate:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	Room      string `json:"room" validate:"required"`
}

// CourseCreateRequest describes the payload for creating a course.
type CourseCreateRequest struct {
	Code          string          `json:"code" validate:"required,min=2,max=32"`
	Title         string          `json:"title" validate:"required,min=3,max=255"`
	Description   string          `json:"description" validate:"required"`
	Credits       int             `json:"credits" validate:"required,min=1,max=6"`
	Semester      int             `json:"semester" validate:"required,min=1,max=8"`
	Capacity      int             `json:"capacity" validate:"required,min=1"`
	Schedule      ScheduleRequest `json:"schedule" validate:"required"`
	StartDate     string          `json:"start_date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	EndDate       string          `json:"end_date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Prerequisites []uint          `json:"prerequisites" validate:"omitempty,dive,min=1"`
}

// CourseUpdateRequest is the allow-listed patch applied to a course. Only the
// fields present in the payload are written; code and instructor never change
// through this path.
type CourseUpdateRequest struct {
	Title         *string          `json:"title" validate:"omitempty,min=3,max=255"`
	Description   *string          `json:"description" validate:"omitempty"`
	Credits       *int             `json:"credits" validate:"omitempty,min=1,max=6"`
	Semester      *int             `json:"semester" validate:"omitempty,min=1,max=8"`
	Capacity      *int             `json:"capacity" validate:"omitempty,min=1"`
	Status        *string          `json:"status" validate:"omitempty,oneof=active inactive completed"`
	Schedule      *ScheduleRequest `json:"schedule" validate:"omitempty"`
	StartDate     *string          `json:"start_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	EndDate       *string          `json:"end_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Prerequisites *[]uint          `json:"prerequisites" validate:"omitempty,dive,min=1"`
}

// EnrollRequest identifies the student to seat in a course.
type EnrollRequest struct {
	StudentID uint `json:"student_id" validate:"required,min=1"`
}

// AddStudentRequest identifies a student by account email, the way teachers
// add students to their course.
type AddStudentRequest struct {
	StudentEmail string `json:"student_email" validate:"required,email"`
}

// SetGradeRequest carries the numeric grade to record.
type SetGradeRequest struct {
	Grade float64 `json:"grade" validate:"min=0,max=100"`
}

// CommentCreateRequest describes a new teacher comment about a student.
type CommentCreateRequest struct {
	Text string `json:"text" validate:"required,min=1"`
}

// CommentUpdateRequest replaces the text of an existing comment.
type CommentUpdateRequest struct {
	Text string `json:"text" validate:"required,min=1"`
}

// ScheduleResponse is the serialized meeting slot.
type ScheduleResponse struct {
	Day       string `json:"day"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Room      string `json:"room"`
}

// CourseSummary is the compact course representation used inside other DTOs.
type CourseSummary struct {
	ID       uint   `json:"id"`
	Code     string `json:"code"`
	Title    string `json:"title"`
	Credits  int    `json:"credits"`
	Semester int    `json:"semester"`
}

// CourseResponse is the serialized representation returned to API clients.
type CourseResponse struct {
	ID            uint                    `json:"id"`
	Code          string                  `json:"code"`
	Title         string                  `json:"title"`
	Description   string                  `json:"description"`
	Credits       int                     `json:"credits"`
	Instructor    UserResponse            `json:"instructor"`
	Semester      int                     `json:"semester"`
	Capacity      int                     `json:"capacity"`
	Enrolled      int                     `json:"enrolled"`
	Status        string                  `json:"status"`
	Schedule      ScheduleResponse        `json:"schedule"`
	StartDate     time.Time               `json:"start_date"`
	EndDate       time.Time               `json:"end_date"`
	Prerequisites []CourseSummary         `json:"prerequisites"`
	Enrollments   []EnrollmentResponse    `json:"enrollments,omitempty"`
	Grades        []CourseGradeResponse   `json:"grades,omitempty"`
	Comments      []CourseCommentResponse `json:"comments,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// EnrollmentResponse is a serialized roster seat.
type EnrollmentResponse struct {
	ID         uint      `json:"id"`
	StudentID  uint      `json:"student_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// CourseGradeResponse is a serialized grade record.
type CourseGradeResponse struct {
	ID         uint      `json:"id"`
	StudentID  uint      `json:"student_id"`
	Grade      *float64  `json:"grade"`
	RecordedAt time.Time `json:"recorded_at"`
}

// CourseCommentResponse is a serialized teacher comment.
type CourseCommentResponse struct {
	ID         uint      `json:"id"`
	StudentID  uint      `json:"student_id"`
	Text       string    `json:"text"`
	RecordedAt time.Time `json:"recorded_at"`
}

// StudentPerformanceResponse is the derived per-student view over a course's
// grade and comment records.
type StudentPerformanceResponse struct {
	CourseID  uint                    `json:"course_id"`
	StudentID uint                    `json:"student_id"`
	Grades    []CourseGradeResponse   `json:"grades"`
	Comments  []CourseCommentResponse `json:"comments"`
}

// NewCourseSummary converts a model into its compact DTO.
func NewCourseSummary(course models.Course) CourseSummary {
	return CourseSummary{
		ID:       course.ID,
		Code:     course.Code,
		Title:    course.Title,
		Credits:  course.Credits,
		Semester: course.Semester,
	}
}

// NewCourseResponse converts a model into a DTO. Child collections are
// included only when they were preloaded.
func NewCourseResponse(course models.Course) CourseResponse {
	prerequisites := make([]CourseSummary, 0, len(course.Prerequisites))
	for _, prerequisite := range course.Prerequisites {
		prerequisites = append(prerequisites, NewCourseSummary(prerequisite))
	}

	response := CourseResponse{
		ID:          course.ID,
		Code:        course.Code,
		Title:       course.Title,
		Description: course.Description,
		Credits:     course.Credits,
		Instructor:  NewUserResponse(course.Instructor),
		Semester:    course.Semester,
		Capacity:    course.Capacity,
		Enrolled:    len(course.Enrollments),
		Status:      course.Status,
		Schedule: ScheduleResponse{
			Day:       course.Schedule.Day,
			StartTime: course.Schedule.StartTime,
			EndTime:   course.Schedule.EndTime,
			Room:      course.Schedule.Room,
		},
		StartDate:     course.StartDate,
		EndDate:       course.EndDate,
		Prerequisites: prerequisites,
		CreatedAt:     course.CreatedAt,
		UpdatedAt:     course.UpdatedAt,
	}

	for _, enrollment := range course.Enrollments {
		response.Enrollments = append(response.Enrollments, NewEnrollmentResponse(enrollment))
	}
	for _, grade := range course.Grades {
		response.Grades = append(response.Grades, NewCourseGradeResponse(grade))
	}
	for _, comment := range course.Comments {
		response.Comments = append(response.Comments, NewCourseCommentResponse(comment))
	}

	return response
}

// NewCourseResponseSlice converts a slice of models into DTOs.
func NewCourseResponseSlice(courses []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, NewCourseResponse(course))
	}

	return responses
}

// NewEnrollmentResponse converts a roster seat into a DTO.
func NewEnrollmentResponse(enrollment models.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ID:         enrollment.ID,
		StudentID:  enrollment.StudentID,
		EnrolledAt: enrollment.EnrolledAt,
	}
}

// NewCourseGradeResponse converts a grade record into a DTO.
func NewCourseGradeResponse(grade models.CourseGrade) CourseGradeResponse {
	return CourseGradeResponse{
		ID:         grade.ID,
		StudentID:  grade.StudentID,
		Grade:      grade.Grade,
		RecordedAt: grade.RecordedAt,
	}
}

// NewCourseCommentResponse converts a teacher comment into a DTO.
func NewCourseCommentResponse(comment models.CourseComment) CourseCommentResponse {
	return CourseCommentResponse{
		ID:         comment.ID,
		StudentID:  comment.StudentID,
		Text:       comment.Text,
		RecordedAt: comment.RecordedAt,
	}
}
