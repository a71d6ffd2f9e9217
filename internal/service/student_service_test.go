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

type memoryStudentRepo struct {
	students map[uint]models.Student
	entries  []models.StudentCourse
	goals    []models.StudentGoal
	nextID   uint
}

func newMemoryStudentRepo() *memoryStudentRepo {
	return &memoryStudentRepo{students: make(map[uint]models.Student), nextID: 1}
}

func (m *memoryStudentRepo) nextSequence() uint {
	id := m.nextID
	m.nextID++
	return id
}

func (m *memoryStudentRepo) List(ctx context.Context) ([]models.Student, error) {
	results := make([]models.Student, 0, len(m.students))
	for id := range m.students {
		student, _ := m.GetByID(ctx, id)
		results = append(results, student)
	}
	return results, nil
}

func (m *memoryStudentRepo) GetByID(ctx context.Context, id uint) (models.Student, error) {
	student, ok := m.students[id]
	if !ok {
		return models.Student{}, gorm.ErrRecordNotFound
	}

	student.Courses = nil
	student.Goals = nil
	for _, entry := range m.entries {
		if entry.StudentID == id {
			student.Courses = append(student.Courses, entry)
		}
	}
	for _, goal := range m.goals {
		if goal.StudentID == id {
			student.Goals = append(student.Goals, goal)
		}
	}

	return student, nil
}

func (m *memoryStudentRepo) GetByUserID(ctx context.Context, userID uint) (models.Student, error) {
	for id, student := range m.students {
		if student.UserID == userID {
			return m.GetByID(ctx, id)
		}
	}
	return models.Student{}, gorm.ErrRecordNotFound
}

func (m *memoryStudentRepo) Create(ctx context.Context, student *models.Student) error {
	student.ID = m.nextSequence()
	m.students[student.ID] = *student
	return nil
}

func (m *memoryStudentRepo) Update(ctx context.Context, student *models.Student) error {
	stored := *student
	stored.Courses = nil
	stored.Goals = nil
	m.students[student.ID] = stored
	return nil
}

func (m *memoryStudentRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := m.students[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.students, id)
	return nil
}

func (m *memoryStudentRepo) StudentNumberExists(ctx context.Context, number string) (bool, error) {
	for _, student := range m.students {
		if student.StudentNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStudentRepo) UserHasProfile(ctx context.Context, userID uint) (bool, error) {
	for _, student := range m.students {
		if student.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStudentRepo) AddCourseEntry(ctx context.Context, entry *models.StudentCourse) error {
	entry.ID = m.nextSequence()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryStudentRepo) GetCourseEntry(ctx context.Context, studentID, entryID uint) (models.StudentCourse, error) {
	for _, entry := range m.entries {
		if entry.StudentID == studentID && entry.ID == entryID {
			return entry, nil
		}
	}
	return models.StudentCourse{}, gorm.ErrRecordNotFound
}

func (m *memoryStudentRepo) UpdateCourseEntry(ctx context.Context, entry *models.StudentCourse) error {
	for i, stored := range m.entries {
		if stored.ID == entry.ID {
			m.entries[i] = *entry
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memoryStudentRepo) AddGoal(ctx context.Context, goal *models.StudentGoal) error {
	goal.ID = m.nextSequence()
	m.goals = append(m.goals, *goal)
	return nil
}

func (m *memoryStudentRepo) GetGoal(ctx context.Context, studentID, goalID uint) (models.StudentGoal, error) {
	for _, goal := range m.goals {
		if goal.StudentID == studentID && goal.ID == goalID {
			return goal, nil
		}
	}
	return models.StudentGoal{}, gorm.ErrRecordNotFound
}

func (m *memoryStudentRepo) UpdateGoal(ctx context.Context, goal *models.StudentGoal) error {
	for i, stored := range m.goals {
		if stored.ID == goal.ID {
			m.goals[i] = *goal
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func newStudentServiceForTest(students *memoryStudentRepo, users *memoryUserRepo, courses *memoryCourseRepo) StudentService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewStudentService(students, users, courses, validate, testLogger())
}

func seedStudentUser(t *testing.T, users *memoryUserRepo) models.User {
	t.Helper()
	user := models.User{FirstName: "Ana", LastName: "Reyes", Email: "ana@example.com", Role: models.RoleStudent}
	require.NoError(t, users.Create(context.Background(), &user))
	return user
}

func validStudentCreate(userID uint) dto.StudentCreateRequest {
	return dto.StudentCreateRequest{
		UserID:        userID,
		StudentNumber: "S-2026-001",
		DateOfBirth:   "2004-03-15T00:00:00Z",
		Gender:        "female",
		ContactNumber: "555-0101",
		Address: &dto.AddressRequest{
			Street:  "12 Elm St",
			City:    "Springfield",
			State:   "IL",
			ZipCode: "62701",
			Country: "USA",
		},
	}
}

func TestStudentServiceCreateProfile(t *testing.T) {
	students := newMemoryStudentRepo()
	users := newMemoryUserRepo()
	user := seedStudentUser(t, users)
	svc := newStudentServiceForTest(students, users, newMemoryCourseRepo())

	created, err := svc.Create(context.Background(), validStudentCreate(user.ID))
	require.NoError(t, err)
	require.Equal(t, "S-2026-001", created.StudentNumber)
	require.Equal(t, 1, created.CurrentSemester)
	require.NotNil(t, created.Address)
	require.Equal(t, "Springfield", created.Address.City)
}

func TestStudentServiceCreateRejectsDuplicates(t *testing.T) {
	students := newMemoryStudentRepo()
	users := newMemoryUserRepo()
	user := seedStudentUser(t, users)
	svc := newStudentServiceForTest(students, users, newMemoryCourseRepo())

	_, err := svc.Create(context.Background(), validStudentCreate(user.ID))
	require.NoError(t, err)

	// same user cannot hold two profiles
	second := validStudentCreate(user.ID)
	second.StudentNumber = "S-2026-002"
	_, err = svc.Create(context.Background(), second)
	require.ErrorIs(t, err, ErrProfileExists)

	// another user cannot reuse the student number
	other := models.User{FirstName: "Ben", LastName: "Cho", Email: "ben@example.com", Role: models.RoleStudent}
	require.NoError(t, users.Create(context.Background(), &other))
	third := validStudentCreate(other.ID)
	_, err = svc.Create(context.Background(), third)
	require.ErrorIs(t, err, ErrStudentNumberTaken)

	// unknown user id
	fourth := validStudentCreate(9999)
	fourth.StudentNumber = "S-2026-003"
	_, err = svc.Create(context.Background(), fourth)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestStudentServiceTranscript(t *testing.T) {
	students := newMemoryStudentRepo()
	users := newMemoryUserRepo()
	courses := newMemoryCourseRepo()
	user := seedStudentUser(t, users)
	course := seedCourse(courses, 1, 30)
	svc := newStudentServiceForTest(students, users, courses)

	created, err := svc.Create(context.Background(), validStudentCreate(user.ID))
	require.NoError(t, err)

	_, err = svc.AddCourse(context.Background(), created.ID, dto.AddTranscriptCourseRequest{CourseID: 9999, Semester: 1, Year: 2026})
	require.ErrorIs(t, err, ErrCourseNotFound)

	withCourse, err := svc.AddCourse(context.Background(), created.ID, dto.AddTranscriptCourseRequest{CourseID: course.ID, Semester: 1, Year: 2026})
	require.NoError(t, err)
	require.Len(t, withCourse.Courses, 1)
	require.Nil(t, withCourse.Courses[0].Grade)

	entryID := withCourse.Courses[0].ID

	_, err = svc.SetCourseGrade(context.Background(), created.ID, 9999, dto.SetTranscriptGradeRequest{Grade: models.LetterGradeA})
	require.ErrorIs(t, err, ErrTranscriptEntryNotFound)

	graded, err := svc.SetCourseGrade(context.Background(), created.ID, entryID, dto.SetTranscriptGradeRequest{Grade: models.LetterGradeB})
	require.NoError(t, err)
	require.Len(t, graded.Courses, 1)
	require.Equal(t, models.LetterGradeB, *graded.Courses[0].Grade)
}

func TestStudentServiceGoals(t *testing.T) {
	students := newMemoryStudentRepo()
	users := newMemoryUserRepo()
	user := seedStudentUser(t, users)
	svc := newStudentServiceForTest(students, users, newMemoryCourseRepo())

	created, err := svc.Create(context.Background(), validStudentCreate(user.ID))
	require.NoError(t, err)

	withGoal, err := svc.AddGoal(context.Background(), created.ID, dto.GoalCreateRequest{Title: "Raise GPA above 3.5"})
	require.NoError(t, err)
	require.Len(t, withGoal.Goals, 1)
	require.Equal(t, models.GoalStatusPending, withGoal.Goals[0].Status)

	goalID := withGoal.Goals[0].ID
	status := models.GoalStatusCompleted
	updated, err := svc.UpdateGoal(context.Background(), created.ID, goalID, dto.GoalUpdateRequest{Status: &status})
	require.NoError(t, err)
	require.Equal(t, models.GoalStatusCompleted, updated.Goals[0].Status)

	_, err = svc.UpdateGoal(context.Background(), created.ID, 9999, dto.GoalUpdateRequest{Status: &status})
	require.ErrorIs(t, err, ErrGoalNotFound)
}

func TestStudentServiceUpdatePatchesListedFieldsOnly(t *testing.T) {
	students := newMemoryStudentRepo()
	users := newMemoryUserRepo()
	user := seedStudentUser(t, users)
	svc := newStudentServiceForTest(students, users, newMemoryCourseRepo())

	created, err := svc.Create(context.Background(), validStudentCreate(user.ID))
	require.NoError(t, err)

	gpa := 3.8
	updated, err := svc.Update(context.Background(), created.ID, dto.StudentUpdateRequest{
		GPA:             &gpa,
		CurrentSemester: ptrInt(3),
	})
	require.NoError(t, err)
	require.Equal(t, 3.8, updated.GPA)
	require.Equal(t, 3, updated.CurrentSemester)
	require.Equal(t, created.StudentNumber, updated.StudentNumber)
	require.Equal(t, created.User.ID, updated.User.ID)
}

func TestStudentServiceDelete(t *testing.T) {
	students := newMemoryStudentRepo()
	users := newMemoryUserRepo()
	user := seedStudentUser(t, users)
	svc := newStudentServiceForTest(students, users, newMemoryCourseRepo())

	created, err := svc.Create(context.Background(), validStudentCreate(user.ID))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	require.ErrorIs(t, svc.Delete(context.Background(), created.ID), ErrStudentNotFound)

	_, err = svc.Get(context.Background(), created.ID)
	require.ErrorIs(t, err, ErrStudentNotFound)
}
