package models

import "time"

// Roles recognised by the API.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

// User represents an account that can authenticate against the API.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FirstName    string    `gorm:"size:255;not null" json:"first_name"`
	LastName     string    `gorm:"size:255;not null" json:"last_name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:32;not null" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsTeacher reports whether the account holds the teacher role.
func (u User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

// FullName returns the display name used in API responses.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// ValidRole reports whether the given role is one the API accepts at registration.
func ValidRole(role string) bool {
	return role == RoleStudent || role == RoleTeacher
}
