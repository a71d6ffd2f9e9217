package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/edupulse/studentsuccess-api/internal/dto"
	"github.com/edupulse/studentsuccess-api/internal/models"
	"github.com/edupulse/studentsuccess-api/internal/repository"
)

// ErrPerformanceNotFound indicates no snapshot exists for the student.
var ErrPerformanceNotFound = errors.New("performance data not found")

// defaultSemester labels snapshots created without an explicit semester.
const defaultSemester = "Current"

// PerformanceService manages per-teacher performance snapshots. Get and
// Update address the most recent snapshot; older rows form the history.
type PerformanceService interface {
	Get(ctx context.Context, studentID uint) (dto.PerformanceResponse, error)
	Create(ctx context.Context, studentID uint, payload dto.PerformanceCreateRequest, actor Actor) (dto.PerformanceResponse, error)
	Update(ctx context.Context, studentID uint, payload dto.PerformanceUpdateRequest) (dto.PerformanceResponse, error)
	History(ctx context.Context, studentID uint) ([]dto.PerformanceResponse, error)
}

type performanceService struct {
	performances repository.PerformanceRepository
	validator    *validator.Validate
	sanitizer    *bluemonday.Policy
	logger       zerolog.Logger
	now          func() time.Time
}

// NewPerformanceService builds the performance service.
func NewPerformanceService(performances repository.PerformanceRepository, validate *validator.Validate, logger zerolog.Logger) PerformanceService {
	return &performanceService{
		performances: performances,
		validator:    validate,
		sanitizer:    bluemonday.StrictPolicy(),
		logger:       logger.With().Str("component", "performance_service").Logger(),
		now:          time.Now,
	}
}

func (s *performanceService) Get(ctx context.Context, studentID uint) (dto.PerformanceResponse, error) {
	performance, err := s.performances.LatestByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PerformanceResponse{}, ErrPerformanceNotFound
		}
		return dto.PerformanceResponse{}, err
	}

	return dto.NewPerformanceResponse(performance), nil
}

func (s *performanceService) Create(ctx context.Context, studentID uint, payload dto.PerformanceCreateRequest, actor Actor) (dto.PerformanceResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PerformanceResponse{}, err
	}

	semester := strings.TrimSpace(payload.Semester)
	if semester == "" {
		semester = defaultSemester
	}

	performance := models.Performance{
		StudentID:  studentID,
		TeacherID:  actor.ID,
		Subjects:   datatypes.NewJSONSlice(payload.Subjects),
		Grades:     datatypes.NewJSONSlice(payload.Grades),
		Comments:   s.sanitizer.Sanitize(payload.Comments),
		Semester:   semester,
		RecordedAt: s.now(),
	}

	if err := s.performances.Create(ctx, &performance); err != nil {
		return dto.PerformanceResponse{}, err
	}

	s.logger.Info().
		Uint("performance_id", performance.ID).
		Uint("student_id", studentID).
		Uint("teacher_id", actor.ID).
		Msg("performance snapshot created")

	latest, err := s.performances.LatestByStudent(ctx, studentID)
	if err != nil {
		return dto.PerformanceResponse{}, err
	}

	return dto.NewPerformanceResponse(latest), nil
}

func (s *performanceService) Update(ctx context.Context, studentID uint, payload dto.PerformanceUpdateRequest) (dto.PerformanceResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PerformanceResponse{}, err
	}

	performance, err := s.performances.LatestByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PerformanceResponse{}, ErrPerformanceNotFound
		}
		return dto.PerformanceResponse{}, err
	}

	if payload.Subjects != nil {
		performance.Subjects = datatypes.NewJSONSlice(*payload.Subjects)
	}
	if payload.Grades != nil {
		performance.Grades = datatypes.NewJSONSlice(*payload.Grades)
	}
	if payload.Comments != nil {
		performance.Comments = s.sanitizer.Sanitize(*payload.Comments)
	}
	if payload.Semester != nil {
		performance.Semester = strings.TrimSpace(*payload.Semester)
	}
	performance.RecordedAt = s.now()

	if err := s.performances.Update(ctx, &performance); err != nil {
		return dto.PerformanceResponse{}, err
	}

	s.logger.Info().Uint("performance_id", performance.ID).Uint("student_id", studentID).Msg("performance snapshot updated")

	return dto.NewPerformanceResponse(performance), nil
}

func (s *performanceService) History(ctx context.Context, studentID uint) ([]dto.PerformanceResponse, error) {
	history, err := s.performances.HistoryByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return dto.NewPerformanceResponseSlice(history), nil
}
