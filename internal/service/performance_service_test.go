package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/edupulse/studentsuccess-api/internal/dto"
	"github.com/edupulse/studentsuccess-api/internal/models"
)

type memoryPerformanceRepo struct {
	snapshots []models.Performance
	nextID    uint
}

func newMemoryPerformanceRepo() *memoryPerformanceRepo {
	return &memoryPerformanceRepo{nextID: 1}
}

func (m *memoryPerformanceRepo) LatestByStudent(ctx context.Context, studentID uint) (models.Performance, error) {
	var latest *models.Performance
	for i := range m.snapshots {
		snapshot := &m.snapshots[i]
		if snapshot.StudentID != studentID {
			continue
		}
		if latest == nil || snapshot.RecordedAt.After(latest.RecordedAt) {
			latest = snapshot
		}
	}
	if latest == nil {
		return models.Performance{}, gorm.ErrRecordNotFound
	}
	return *latest, nil
}

func (m *memoryPerformanceRepo) HistoryByStudent(ctx context.Context, studentID uint) ([]models.Performance, error) {
	history := make([]models.Performance, 0)
	for _, snapshot := range m.snapshots {
		if snapshot.StudentID == studentID {
			history = append(history, snapshot)
		}
	}
	return history, nil
}

func (m *memoryPerformanceRepo) Create(ctx context.Context, performance *models.Performance) error {
	performance.ID = m.nextID
	m.nextID++
	m.snapshots = append(m.snapshots, *performance)
	return nil
}

func (m *memoryPerformanceRepo) Update(ctx context.Context, performance *models.Performance) error {
	for i, snapshot := range m.snapshots {
		if snapshot.ID == performance.ID {
			m.snapshots[i] = *performance
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func newPerformanceServiceForTest(repo *memoryPerformanceRepo) PerformanceService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewPerformanceService(repo, validate, testLogger())
}

func TestPerformanceServiceGetMissing(t *testing.T) {
	svc := newPerformanceServiceForTest(newMemoryPerformanceRepo())

	_, err := svc.Get(context.Background(), 1)
	require.ErrorIs(t, err, ErrPerformanceNotFound)
}

func TestPerformanceServiceCreateDefaultsSemester(t *testing.T) {
	repo := newMemoryPerformanceRepo()
	svc := newPerformanceServiceForTest(repo)

	created, err := svc.Create(context.Background(), 1, dto.PerformanceCreateRequest{
		Subjects: []string{"Math", "Physics"},
		Grades:   []string{"A", "B"},
		Comments: "<b>solid</b> term",
	}, Actor{ID: 7, Role: models.RoleTeacher})
	require.NoError(t, err)
	require.Equal(t, "Current", created.Semester)
	require.Equal(t, []string{"Math", "Physics"}, created.Subjects)
	// markup is stripped before storage
	require.Equal(t, "solid term", created.Comments)
	require.Equal(t, uint(1), created.StudentID)
}

func TestPerformanceServiceGetReturnsLatest(t *testing.T) {
	repo := newMemoryPerformanceRepo()
	svc := newPerformanceServiceForTest(repo)

	_, err := svc.Create(context.Background(), 1, dto.PerformanceCreateRequest{
		Subjects: []string{"Math"},
		Grades:   []string{"C"},
		Comments: "struggling",
		Semester: "Fall 2025",
	}, Actor{ID: 7, Role: models.RoleTeacher})
	require.NoError(t, err)

	latest, err := svc.Create(context.Background(), 1, dto.PerformanceCreateRequest{
		Subjects: []string{"Math"},
		Grades:   []string{"A"},
		Comments: "much improved",
		Semester: "Spring 2026",
	}, Actor{ID: 7, Role: models.RoleTeacher})
	require.NoError(t, err)

	current, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, latest.ID, current.ID)
	require.Equal(t, "Spring 2026", current.Semester)

	history, err := svc.History(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, history, 2)
}

func TestPerformanceServiceUpdatePatchesLatest(t *testing.T) {
	repo := newMemoryPerformanceRepo()
	svc := newPerformanceServiceForTest(repo)

	_, err := svc.Update(context.Background(), 1, dto.PerformanceUpdateRequest{Comments: ptrString("x")})
	require.ErrorIs(t, err, ErrPerformanceNotFound)

	created, err := svc.Create(context.Background(), 1, dto.PerformanceCreateRequest{
		Subjects: []string{"Math"},
		Grades:   []string{"B"},
		Comments: "ok",
	}, Actor{ID: 7, Role: models.RoleTeacher})
	require.NoError(t, err)

	grades := []string{"A"}
	updated, err := svc.Update(context.Background(), 1, dto.PerformanceUpdateRequest{Grades: &grades})
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, []string{"A"}, updated.Grades)
	require.Equal(t, []string{"Math"}, updated.Subjects)
	require.False(t, updated.RecordedAt.Before(created.RecordedAt))
}
