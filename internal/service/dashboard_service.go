package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edupulse/studentsuccess-api/internal/dto"
	"github.com/edupulse/studentsuccess-api/internal/models"
	"github.com/edupulse/studentsuccess-api/internal/repository"
)

// DashboardService produces the aggregated student landing-page payload,
// cached in redis for the configured TTL.
type DashboardService interface {
	GetDashboard(ctx context.Context, userID uint) (dto.StudentDashboardResponse, error)
	Invalidate(ctx context.Context, userID uint)
}

type dashboardService struct {
	students repository.StudentRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewDashboardService builds the dashboard aggregator. The redis client may
// be nil; caching is then skipped.
func NewDashboardService(students repository.StudentRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		students: students,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "dashboard_service").Logger(),
		now:      time.Now,
	}
}

func (s *dashboardService) GetDashboard(ctx context.Context, userID uint) (dto.StudentDashboardResponse, error) {
	cacheKey := dashboardCacheKey(userID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.StudentDashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("user_id", userID).Msg("dashboard cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
	}

	student, err := s.students.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentDashboardResponse{}, ErrStudentNotFound
		}
		return dto.StudentDashboardResponse{}, err
	}

	response := s.buildResponse(student)

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

// Invalidate drops the cached dashboard after a profile mutation.
func (s *dashboardService) Invalidate(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, dashboardCacheKey(userID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to invalidate dashboard cache")
	}
}

func (s *dashboardService) buildResponse(student models.Student) dto.StudentDashboardResponse {
	response := dto.StudentDashboardResponse{
		Student:     dto.NewStudentResponse(student),
		CourseCount: len(student.Courses),
		GeneratedAt: s.now(),
	}

	for _, goal := range student.Goals {
		switch goal.Status {
		case models.GoalStatusCompleted:
			response.CompletedGoals++
		case models.GoalStatusInProgress:
			response.InProgressGoals++
		default:
			response.PendingGoals++
		}
	}

	return response
}

func dashboardCacheKey(userID uint) string {
	return fmt.Sprintf("dashboard:student:%d", userID)
}
