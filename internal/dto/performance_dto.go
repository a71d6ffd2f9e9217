package dto

import (
	"time"

	"github.com/edupulse/studentsuccess-api/internal/models"
)

// PerformanceCreateRequest describes a new performance snapshot.
type PerformanceCreateRequest struct {
	Subjects []string `json:"subjects" validate:"required,min=1,dive,required"`
	Grades   []string `json:"grades" validate:"required,min=1,dive,required"`
	Comments string   `json:"comments" validate:"required"`
	Semester string   `json:"semester"`
}

// PerformanceUpdateRequest patches the latest snapshot for a student. Absent
// fields keep their stored values.
type PerformanceUpdateRequest struct {
	Subjects *[]string `json:"subjects" validate:"omitempty,min=1,dive,required"`
	Grades   *[]string `json:"grades" validate:"omitempty,min=1,dive,required"`
	Comments *string   `json:"comments" validate:"omitempty"`
	Semester *string   `json:"semester" validate:"omitempty"`
}

// PerformanceResponse is the serialized snapshot returned to API clients.
type PerformanceResponse struct {
	ID         uint         `json:"id"`
	StudentID  uint         `json:"student_id"`
	Teacher    UserResponse `json:"teacher"`
	Subjects   []string     `json:"subjects"`
	Grades     []string     `json:"grades"`
	Comments   string       `json:"comments"`
	Semester   string       `json:"semester"`
	RecordedAt time.Time    `json:"recorded_at"`
}

// NewPerformanceResponse converts a model into a DTO.
func NewPerformanceResponse(performance models.Performance) PerformanceResponse {
	return PerformanceResponse{
		ID:         performance.ID,
		StudentID:  performance.StudentID,
		Teacher:    NewUserResponse(performance.Teacher),
		Subjects:   []string(performance.Subjects),
		Grades:     []string(performance.Grades),
		Comments:   performance.Comments,
		Semester:   performance.Semester,
		RecordedAt: performance.RecordedAt,
	}
}

// NewPerformanceResponseSlice converts a slice of models into DTOs.
func NewPerformanceResponseSlice(performances []models.Performance) []PerformanceResponse {
	responses := make([]PerformanceResponse, 0, len(performances))
	for _, performance := range performances {
		responses = append(responses, NewPerformanceResponse(performance))
	}

	return responses
}
