package models

import "time"

// Course statuses.
const (
	CourseStatusActive    = "active"
	CourseStatusInactive  = "inactive"
	CourseStatusCompleted = "completed"
)

// Schedule describes the weekly meeting slot of a course.
type Schedule struct {
	Day       string `gorm:"size:16;not null" json:"day"`
	StartTime string `gorm:"size:8;not null" json:"start_time"`
	EndTime   string `gorm:"size:8;not null" json:"end_time"`
	Room      string `gorm:"size:64;not null" json:"room"`
}

// Course represents a taught course with its roster, grade records and
// teacher comments.
type Course struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Code          string          `gorm:"size:32;uniqueIndex;not null" json:"code"`
	Title         string          `gorm:"size:255;not null" json:"title"`
	Description   string          `gorm:"type:text" json:"description"`
	Credits       int             `gorm:"not null" json:"credits"`
	InstructorID  uint            `gorm:"index;not null" json:"instructor_id"`
	Instructor    User            `json:"instructor"`
	Semester      int             `gorm:"not null" json:"semester"`
	Capacity      int             `gorm:"not null" json:"capacity"`
	Status        string          `gorm:"size:32;not null;default:active" json:"status"`
	Schedule      Schedule        `gorm:"embedded;embeddedPrefix:schedule_" json:"schedule"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       time.Time       `json:"end_date"`
	Prerequisites []Course        `gorm:"many2many:course_prerequisites" json:"prerequisites"`
	Enrollments   []Enrollment    `gorm:"constraint:OnDelete:CASCADE" json:"enrollments"`
	Grades        []CourseGrade   `gorm:"constraint:OnDelete:CASCADE" json:"grades"`
	Comments      []CourseComment `gorm:"constraint:OnDelete:CASCADE" json:"comments"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Enrollment is a roster seat: one student enrolled in one course.
type Enrollment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CourseID   uint      `gorm:"uniqueIndex:idx_course_student;not null" json:"course_id"`
	StudentID  uint      `gorm:"uniqueIndex:idx_course_student;not null" json:"student_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// CourseGrade is the numeric grade a teacher records for a student in a
// course. The grade stays null until the teacher scores the student.
type CourseGrade struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CourseID   uint      `gorm:"uniqueIndex:idx_grade_course_student;not null" json:"course_id"`
	StudentID  uint      `gorm:"uniqueIndex:idx_grade_course_student;not null" json:"student_id"`
	Grade      *float64  `json:"grade"`
	RecordedAt time.Time `json:"recorded_at"`
}

// CourseComment is a remark a teacher leaves about a student in a course.
type CourseComment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CourseID   uint      `gorm:"index;not null" json:"course_id"`
	StudentID  uint      `gorm:"index;not null" json:"student_id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ValidCourseStatus reports whether the value is an accepted course status.
func ValidCourseStatus(status string) bool {
	switch status {
	case CourseStatusActive, CourseStatusInactive, CourseStatusCompleted:
		return true
	default:
		return false
	}
}

// ValidScheduleDay reports whether the value names a day of the week.
func ValidScheduleDay(day string) bool {
	switch day {
	case "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday":
		return true
	default:
		return false
	}
}
