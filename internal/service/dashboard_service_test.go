package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/edupulse/studentsuccess-api/internal/models"
)

func seedDashboardStudent(t *testing.T, students *memoryStudentRepo) models.Student {
	t.Helper()

	student := models.Student{
		UserID:        1,
		StudentNumber: "S-2026-001",
		Gender:        "female",
		ContactNumber: "555-0101",
	}
	require.NoError(t, students.Create(context.Background(), &student))

	require.NoError(t, students.AddCourseEntry(context.Background(), &models.StudentCourse{StudentID: student.ID, CourseID: 1, Semester: 1, Year: 2026}))
	require.NoError(t, students.AddGoal(context.Background(), &models.StudentGoal{StudentID: student.ID, Title: "Pass calculus", Status: models.GoalStatusCompleted}))
	require.NoError(t, students.AddGoal(context.Background(), &models.StudentGoal{StudentID: student.ID, Title: "Join study group", Status: models.GoalStatusPending}))
	require.NoError(t, students.AddGoal(context.Background(), &models.StudentGoal{StudentID: student.ID, Title: "Read ahead", Status: models.GoalStatusInProgress}))

	return student
}

func TestDashboardServiceAggregates(t *testing.T) {
	students := newMemoryStudentRepo()
	seedDashboardStudent(t, students)

	svc := NewDashboardService(students, nil, time.Minute, testLogger())

	dashboard, err := svc.GetDashboard(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 1, dashboard.CourseCount)
	require.Equal(t, 1, dashboard.CompletedGoals)
	require.Equal(t, 1, dashboard.PendingGoals)
	require.Equal(t, 1, dashboard.InProgressGoals)
}

func TestDashboardServiceMissingProfile(t *testing.T) {
	svc := NewDashboardService(newMemoryStudentRepo(), nil, time.Minute, testLogger())

	_, err := svc.GetDashboard(context.Background(), 42)
	require.ErrorIs(t, err, ErrStudentNotFound)
}

func TestDashboardServiceCachesAndInvalidates(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer redisClient.Close()

	students := newMemoryStudentRepo()
	student := seedDashboardStudent(t, students)

	svc := NewDashboardService(students, redisClient, time.Minute, testLogger())

	first, err := svc.GetDashboard(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 1, first.CourseCount)

	// a mutation the cache does not yet see
	require.NoError(t, students.AddCourseEntry(context.Background(), &models.StudentCourse{StudentID: student.ID, CourseID: 2, Semester: 1, Year: 2026}))

	cached, err := svc.GetDashboard(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 1, cached.CourseCount)

	svc.Invalidate(context.Background(), 1)

	fresh, err := svc.GetDashboard(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 2, fresh.CourseCount)
}
