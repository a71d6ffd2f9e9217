package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/edupulse/studentsuccess-api/internal/models"
)

// StudentRepository provides access to student profiles and their transcript
// entries and goals.
type StudentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	GetByID(ctx context.Context, id uint) (models.Student, error)
	GetByUserID(ctx context.Context, userID uint) (models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id uint) error
	StudentNumberExists(ctx context.Context, number string) (bool, error)
	UserHasProfile(ctx context.Context, userID uint) (bool, error)

	AddCourseEntry(ctx context.Context, entry *models.StudentCourse) error
	GetCourseEntry(ctx context.Context, studentID, entryID uint) (models.StudentCourse, error)
	UpdateCourseEntry(ctx context.Context, entry *models.StudentCourse) error

	AddGoal(ctx context.Context, goal *models.StudentGoal) error
	GetGoal(ctx context.Context, studentID, goalID uint) (models.StudentGoal, error)
	UpdateGoal(ctx context.Context, goal *models.StudentGoal) error
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a GORM-backed student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) List(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Courses").
		Preload("Courses.Course").
		Preload("Goals").
		Order("student_number ASC").
		Find(&students).Error
	if err != nil {
		return nil, err
	}

	return students, nil
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Courses").
		Preload("Courses.Course").
		Preload("Goals").
		First(&student, id).Error
	if err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) GetByUserID(ctx context.Context, userID uint) (models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Courses").
		Preload("Courses.Course").
		Preload("Goals").
		Where("user_id = ?", userID).
		First(&student).Error
	if err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) Update(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Omit("User", "Courses", "Goals").Save(student).Error
}

func (r *studentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", id).Delete(&models.StudentCourse{}).Error; err != nil {
			return err
		}
		if err := tx.Where("student_id = ?", id).Delete(&models.StudentGoal{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Student{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *studentRepository) StudentNumberExists(ctx context.Context, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("student_number = ?", number).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *studentRepository) UserHasProfile(ctx context.Context, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *studentRepository) AddCourseEntry(ctx context.Context, entry *models.StudentCourse) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *studentRepository) GetCourseEntry(ctx context.Context, studentID, entryID uint) (models.StudentCourse, error) {
	var entry models.StudentCourse
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		First(&entry, entryID).Error
	if err != nil {
		return models.StudentCourse{}, err
	}

	return entry, nil
}

func (r *studentRepository) UpdateCourseEntry(ctx context.Context, entry *models.StudentCourse) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *studentRepository) AddGoal(ctx context.Context, goal *models.StudentGoal) error {
	return r.db.WithContext(ctx).Create(goal).Error
}

func (r *studentRepository) GetGoal(ctx context.Context, studentID, goalID uint) (models.StudentGoal, error) {
	var goal models.StudentGoal
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		First(&goal, goalID).Error
	if err != nil {
		return models.StudentGoal{}, err
	}

	return goal, nil
}

func (r *studentRepository) UpdateGoal(ctx context.Context, goal *models.StudentGoal) error {
	return r.db.WithContext(ctx).Save(goal).Error
}
