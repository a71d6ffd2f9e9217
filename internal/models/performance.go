package models

import (
	"time"

	"gorm.io/datatypes"
)

// Performance is a per-teacher snapshot of a student's standing. Snapshots
// are never reconciled with the grade records kept on courses; repeated
// snapshots for the same student form a history, newest first.
type Performance struct {
	ID         uint                        `gorm:"primaryKey" json:"id"`
	StudentID  uint                        `gorm:"index;not null" json:"student_id"`
	Student    Student                     `json:"student"`
	TeacherID  uint                        `gorm:"index;not null" json:"teacher_id"`
	Teacher    User                        `json:"teacher"`
	Subjects   datatypes.JSONSlice[string] `gorm:"type:json" json:"subjects"`
	Grades     datatypes.JSONSlice[string] `gorm:"type:json" json:"grades"`
	Comments   string                      `gorm:"type:text" json:"comments"`
	Semester   string                      `gorm:"size:32;not null" json:"semester"`
	RecordedAt time.Time                   `json:"recorded_at"`
	CreatedAt  time.Time                   `json:"created_at"`
	UpdatedAt  time.Time                   `json:"updated_at"`
}
