package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/edupulse/studentsuccess-api/internal/models"
)

// PerformanceRepository provides access to performance snapshots.
type PerformanceRepository interface {
	LatestByStudent(ctx context.Context, studentID uint) (models.Performance, error)
	HistoryByStudent(ctx context.Context, studentID uint) ([]models.Performance, error)
	Create(ctx context.Context, performance *models.Performance) error
	Update(ctx context.Context, performance *models.Performance) error
}

type performanceRepository struct {
	db *gorm.DB
}

// NewPerformanceRepository constructs a GORM-backed performance repository.
func NewPerformanceRepository(db *gorm.DB) PerformanceRepository {
	return &performanceRepository{db: db}
}

func (r *performanceRepository) LatestByStudent(ctx context.Context, studentID uint) (models.Performance, error) {
	var performance models.Performance
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Where("student_id = ?", studentID).
		Order("recorded_at DESC").
		First(&performance).Error
	if err != nil {
		return models.Performance{}, err
	}

	return performance, nil
}

func (r *performanceRepository) HistoryByStudent(ctx context.Context, studentID uint) ([]models.Performance, error) {
	var history []models.Performance
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Where("student_id = ?", studentID).
		Order("recorded_at DESC").
		Find(&history).Error
	if err != nil {
		return nil, err
	}

	return history, nil
}

func (r *performanceRepository) Create(ctx context.Context, performance *models.Performance) error {
	return r.db.WithContext(ctx).Create(performance).Error
}

func (r *performanceRepository) Update(ctx context.Context, performance *models.Performance) error {
	return r.db.WithContext(ctx).Omit("Student", "Teacher").Save(performance).Error
}
