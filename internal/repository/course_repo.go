package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/edupulse/studentsuccess-api/internal/models"
)

// Roster errors surfaced by the enrollment transaction.
var (
	// ErrCourseFull indicates the roster already holds capacity students.
	ErrCourseFull = errors.New("course is full")
	// ErrAlreadyEnrolled indicates the student already holds a seat.
	ErrAlreadyEnrolled = errors.New("student already enrolled")
)

// CourseRepository provides access to courses, rosters, grade records and
// teacher comments.
type CourseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	ListByInstructor(ctx context.Context, instructorID uint) ([]models.Course, error)
	GetByID(ctx context.Context, id uint) (models.Course, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	ReplacePrerequisites(ctx context.Context, course *models.Course, prerequisites []models.Course) error
	Delete(ctx context.Context, id uint) error

	Enroll(ctx context.Context, courseID, studentID uint, withGradeRecord bool) error
	Unenroll(ctx context.Context, courseID, studentID uint) error

	GetGradeRecord(ctx context.Context, courseID, studentID uint) (models.CourseGrade, error)
	UpdateGradeRecord(ctx context.Context, record *models.CourseGrade) error
	GradesByStudent(ctx context.Context, courseID, studentID uint) ([]models.CourseGrade, error)

	AddComment(ctx context.Context, comment *models.CourseComment) error
	GetComment(ctx context.Context, courseID, commentID uint) (models.CourseComment, error)
	UpdateComment(ctx context.Context, comment *models.CourseComment) error
	CommentsByStudent(ctx context.Context, courseID, studentID uint) ([]models.CourseComment, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository constructs a GORM-backed course repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) List(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.WithContext(ctx).
		Preload("Instructor").
		Preload("Prerequisites").
		Preload("Enrollments").
		Order("code ASC").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *courseRepository) ListByInstructor(ctx context.Context, instructorID uint) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.WithContext(ctx).
		Preload("Instructor").
		Preload("Prerequisites").
		Preload("Enrollments").
		Where("instructor_id = ?", instructorID).
		Order("code ASC").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).
		Preload("Instructor").
		Preload("Prerequisites").
		Preload("Enrollments").
		Preload("Grades").
		Preload("Comments").
		First(&course, id).Error
	if err != nil {
		return models.Course{}, err
	}

	return course, nil
}

func (r *courseRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Course{}).
		Where("code = ?", code).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepository) Update(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).
		Omit("Instructor", "Prerequisites", "Enrollments", "Grades", "Comments").
		Save(course).Error
}

func (r *courseRepository) ReplacePrerequisites(ctx context.Context, course *models.Course, prerequisites []models.Course) error {
	return r.db.WithContext(ctx).
		Model(course).
		Association("Prerequisites").
		Replace(prerequisites)
}

func (r *courseRepository) Delete(ctx context.Context, id uint) error {
	// Transcript entries referencing the course are deliberately left in
	// place; only the course's own child rows go with it.
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&models.Enrollment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&models.CourseGrade{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&models.CourseComment{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM course_prerequisites WHERE course_id = ?", id).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Course{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Enroll seats a student. The course row is locked for the duration of the
// transaction, so two near-capacity enrollments serialize and cannot both
// pass the count check under READ COMMITTED.
func (r *courseRepository) Enroll(ctx context.Context, courseID, studentID uint, withGradeRecord bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course models.Course
		if err := lockCourseRow(tx).First(&course, courseID).Error; err != nil {
			return err
		}

		var enrolled int64
		if err := tx.Model(&models.Enrollment{}).Where("course_id = ?", courseID).Count(&enrolled).Error; err != nil {
			return err
		}
		if enrolled >= int64(course.Capacity) {
			return ErrCourseFull
		}

		var duplicate int64
		err := tx.Model(&models.Enrollment{}).
			Where("course_id = ? AND student_id = ?", courseID, studentID).
			Count(&duplicate).Error
		if err != nil {
			return err
		}
		if duplicate > 0 {
			return ErrAlreadyEnrolled
		}

		now := time.Now()
		enrollment := models.Enrollment{CourseID: courseID, StudentID: studentID, EnrolledAt: now}
		if err := tx.Create(&enrollment).Error; err != nil {
			return err
		}

		if withGradeRecord {
			record := models.CourseGrade{CourseID: courseID, StudentID: studentID, RecordedAt: now}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// lockCourseRow takes a SELECT ... FOR UPDATE on the course so concurrent
// enrollment transactions queue per course. sqlite has no row locks and
// serializes writers on its own, so the clause is skipped there.
func lockCourseRow(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// Unenroll removes the seat if present. Removing an absent student is not
// an error.
func (r *courseRepository) Unenroll(ctx context.Context, courseID, studentID uint) error {
	return r.db.WithContext(ctx).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Delete(&models.Enrollment{}).Error
}

func (r *courseRepository) GetGradeRecord(ctx context.Context, courseID, studentID uint) (models.CourseGrade, error) {
	var record models.CourseGrade
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		First(&record).Error
	if err != nil {
		return models.CourseGrade{}, err
	}

	return record, nil
}

func (r *courseRepository) UpdateGradeRecord(ctx context.Context, record *models.CourseGrade) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *courseRepository) GradesByStudent(ctx context.Context, courseID, studentID uint) ([]models.CourseGrade, error) {
	var records []models.CourseGrade
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Order("recorded_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *courseRepository) AddComment(ctx context.Context, comment *models.CourseComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *courseRepository) GetComment(ctx context.Context, courseID, commentID uint) (models.CourseComment, error) {
	var comment models.CourseComment
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		First(&comment, commentID).Error
	if err != nil {
		return models.CourseComment{}, err
	}

	return comment, nil
}

func (r *courseRepository) UpdateComment(ctx context.Context, comment *models.CourseComment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

func (r *courseRepository) CommentsByStudent(ctx context.Context, courseID, studentID uint) ([]models.CourseComment, error) {
	var comments []models.CourseComment
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Order("recorded_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	return comments, nil
}
