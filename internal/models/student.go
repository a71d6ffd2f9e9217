package models

import (
	"time"

	"gorm.io/datatypes"
)

// Letter grades recorded on a student's transcript entries.
const (
	LetterGradeA          = "A"
	LetterGradeB          = "B"
	LetterGradeC          = "C"
	LetterGradeD          = "D"
	LetterGradeF          = "F"
	LetterGradeWithdrawn  = "W"
	LetterGradeIncomplete = "I"
)

// Goal statuses tracked on student goals.
const (
	GoalStatusPending    = "pending"
	GoalStatusInProgress = "in-progress"
	GoalStatusCompleted  = "completed"
)

// Student holds the academic profile attached to a user account.
type Student struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	User            User            `json:"user"`
	StudentNumber   string          `gorm:"size:64;uniqueIndex;not null" json:"student_number"`
	DateOfBirth     time.Time       `gorm:"not null" json:"date_of_birth"`
	Gender          string          `gorm:"size:16;not null" json:"gender"`
	Address         datatypes.JSON  `gorm:"type:json" json:"address"`
	ContactNumber   string          `gorm:"size:32;not null" json:"contact_number"`
	EnrollmentDate  time.Time       `json:"enrollment_date"`
	CurrentSemester int             `gorm:"default:1" json:"current_semester"`
	GPA             float64         `gorm:"default:0" json:"gpa"`
	Courses         []StudentCourse `json:"courses"`
	Goals           []StudentGoal   `json:"goals"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// StudentCourse is a transcript entry: a course the student has taken or is
// taking, with the letter grade awarded for it.
type StudentCourse struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StudentID uint      `gorm:"index;not null" json:"student_id"`
	CourseID  uint      `gorm:"index;not null" json:"course_id"`
	Course    Course    `json:"course"`
	Grade     *string   `gorm:"size:2" json:"grade"`
	Semester  int       `json:"semester"`
	Year      int       `json:"year"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StudentGoal is a self-improvement goal tracked on the student profile.
type StudentGoal struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StudentID   uint      `gorm:"index;not null" json:"student_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	TargetDate  time.Time `json:"target_date"`
	Status      string    `gorm:"size:32;not null;default:pending" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidLetterGrade reports whether the value is an accepted transcript grade.
func ValidLetterGrade(grade string) bool {
	switch grade {
	case LetterGradeA, LetterGradeB, LetterGradeC, LetterGradeD,
		LetterGradeF, LetterGradeWithdrawn, LetterGradeIncomplete:
		return true
	default:
		return false
	}
}

// ValidGoalStatus reports whether the value is an accepted goal status.
func ValidGoalStatus(status string) bool {
	switch status {
	case GoalStatusPending, GoalStatusInProgress, GoalStatusCompleted:
		return true
	default:
		return false
	}
}
