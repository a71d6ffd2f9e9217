package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/edupulse/studentsuccess-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Student{},
		&models.StudentCourse{},
		&models.StudentGoal{},
		&models.Course{},
		&models.Enrollment{},
		&models.CourseGrade{},
		&models.CourseComment{},
		&models.Performance{},
	))
	return db
}

func createTestCourse(t *testing.T, db *gorm.DB, code string, capacity int) models.Course {
	t.Helper()
	course := models.Course{
		Code:         code,
		Title:        "Course " + code,
		Description:  "test course",
		Credits:      3,
		InstructorID: 1,
		Semester:     1,
		Capacity:     capacity,
		Status:       models.CourseStatusActive,
	}
	require.NoError(t, db.Create(&course).Error)
	return course
}

func TestCourseRepositoryEnrollCapacity(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCourseRepository(db)
	course := createTestCourse(t, db, "CS101", 2)

	require.NoError(t, repo.Enroll(context.Background(), course.ID, 1, false))
	require.NoError(t, repo.Enroll(context.Background(), course.ID, 2, false))
	require.ErrorIs(t, repo.Enroll(context.Background(), course.ID, 3, false), ErrCourseFull)

	var count int64
	require.NoError(t, db.Model(&models.Enrollment{}).Where("course_id = ?", course.ID).Count(&count).Error)
	require.Equal(t, int64(2), count)
}

func TestCourseRepositoryEnrollDuplicate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCourseRepository(db)
	course := createTestCourse(t, db, "CS102", 10)

	require.NoError(t, repo.Enroll(context.Background(), course.ID, 1, false))
	require.ErrorIs(t, repo.Enroll(context.Background(), course.ID, 1, false), ErrAlreadyEnrolled)
}

func TestCourseRepositoryEnrollMissingCourse(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCourseRepository(db)

	require.ErrorIs(t, repo.Enroll(context.Background(), 9999, 1, false), gorm.ErrRecordNotFound)
}

func TestCourseRepositoryEnrollWithGradeRecord(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCourseRepository(db)
	course := createTestCourse(t, db, "CS103", 10)

	require.NoError(t, repo.Enroll(context.Background(), course.ID, 5, true))

	record, err := repo.GetGradeRecord(context.Background(), course.ID, 5)
	require.NoError(t, err)
	require.Nil(t, record.Grade)

	grade := 88.5
	record.Grade = &grade
	require.NoError(t, repo.UpdateGradeRecord(context.Background(), &record))

	records, err := repo.GradesByStudent(context.Background(), course.ID, 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, 88.5, *records[0].Grade)
}

func TestCourseRepositoryUnenrollFreesSeat(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCourseRepository(db)
	course := createTestCourse(t, db, "CS104", 1)

	require.NoError(t, repo.Enroll(context.Background(), course.ID, 1, false))
	require.ErrorIs(t, repo.Enroll(context.Background(), course.ID, 2, false), ErrCourseFull)

	require.NoError(t, repo.Unenroll(context.Background(), course.ID, 1))
	// unenrolling an absent student is not an error
	require.NoError(t, repo.Unenroll(context.Background(), course.ID, 1))

	require.NoError(t, repo.Enroll(context.Background(), course.ID, 2, false))
}

func TestCourseRepositoryDeleteRemovesChildRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCourseRepository(db)
	course := createTestCourse(t, db, "CS105", 10)

	require.NoError(t, repo.Enroll(context.Background(), course.ID, 1, true))
	require.NoError(t, repo.AddComment(context.Background(), &models.CourseComment{CourseID: course.ID, StudentID: 1, Text: "note"}))

	require.NoError(t, repo.Delete(context.Background(), course.ID))
	require.ErrorIs(t, repo.Delete(context.Background(), course.ID), gorm.ErrRecordNotFound)

	var enrollments, grades, comments int64
	require.NoError(t, db.Model(&models.Enrollment{}).Where("course_id = ?", course.ID).Count(&enrollments).Error)
	require.NoError(t, db.Model(&models.CourseGrade{}).Where("course_id = ?", course.ID).Count(&grades).Error)
	require.NoError(t, db.Model(&models.CourseComment{}).Where("course_id = ?", course.ID).Count(&comments).Error)
	require.Zero(t, enrollments)
	require.Zero(t, grades)
	require.Zero(t, comments)
}

func TestCourseRepositoryCodeExists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCourseRepository(db)
	createTestCourse(t, db, "CS106", 10)

	exists, err := repo.CodeExists(context.Background(), "CS106")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.CodeExists(context.Background(), "CS999")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestCourseRepositoryPrerequisites(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCourseRepository(db)
	intro := createTestCourse(t, db, "CS107", 10)
	advanced := createTestCourse(t, db, "CS207", 10)

	require.NoError(t, repo.ReplacePrerequisites(context.Background(), &advanced, []models.Course{{ID: intro.ID}}))

	loaded, err := repo.GetByID(context.Background(), advanced.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Prerequisites, 1)
	require.Equal(t, "CS107", loaded.Prerequisites[0].Code)

	require.NoError(t, repo.ReplacePrerequisites(context.Background(), &advanced, nil))
	loaded, err = repo.GetByID(context.Background(), advanced.ID)
	require.NoError(t, err)
	require.Empty(t, loaded.Prerequisites)
}

// Concurrent enrollments of different students must serialize on the course
// row, or two transactions can both pass the capacity count and overfill the
// roster on Postgres.
func TestCourseRepositoryEnrollLocksCourseRow(t *testing.T) {
	pg, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=ssa dbname=ssa"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	stmt := lockCourseRow(pg).Find(&models.Course{}, 1).Statement
	require.Contains(t, stmt.SQL.String(), "FOR UPDATE")

	// sqlite serializes writers itself and rejects the clause
	lite := setupTestDB(t).Session(&gorm.Session{DryRun: true})
	stmt = lockCourseRow(lite).Find(&models.Course{}, 1).Statement
	require.NotContains(t, stmt.SQL.String(), "FOR UPDATE")
}
