package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/edupulse/studentsuccess-api/internal/dto"
	"github.com/edupulse/studentsuccess-api/internal/models"
	"github.com/edupulse/studentsuccess-api/internal/repository"
)

// Student errors.
var (
	// ErrStudentNotFound indicates the profile does not exist.
	ErrStudentNotFound = errors.New("student not found")
	// ErrStudentNumberTaken indicates another profile already uses the number.
	ErrStudentNumberTaken = errors.New("student number already exists")
	// ErrProfileExists indicates the user already owns a student profile.
	ErrProfileExists = errors.New("user already has a student profile")
	// ErrTranscriptEntryNotFound indicates the transcript entry is missing.
	ErrTranscriptEntryNotFound = errors.New("transcript entry not found")
	// ErrGoalNotFound indicates the goal does not exist on the profile.
	ErrGoalNotFound = errors.New("goal not found")
)

// StudentService exposes the student profile use cases.
type StudentService interface {
	List(ctx context.Context) ([]dto.StudentResponse, error)
	Get(ctx context.Context, id uint) (dto.StudentResponse, error)
	GetByUser(ctx context.Context, userID uint) (dto.StudentResponse, error)
	Create(ctx context.Context, payload dto.StudentCreateRequest) (dto.StudentResponse, error)
	Update(ctx context.Context, id uint, payload dto.StudentUpdateRequest) (dto.StudentResponse, error)
	UpdateByUser(ctx context.Context, userID uint, payload dto.StudentUpdateRequest) (dto.StudentResponse, error)
	Delete(ctx context.Context, id uint) error

	AddCourse(ctx context.Context, studentID uint, payload dto.AddTranscriptCourseRequest) (dto.StudentResponse, error)
	SetCourseGrade(ctx context.Context, studentID, entryID uint, payload dto.SetTranscriptGradeRequest) (dto.StudentResponse, error)

	AddGoal(ctx context.Context, studentID uint, payload dto.GoalCreateRequest) (dto.StudentResponse, error)
	UpdateGoal(ctx context.Context, studentID, goalID uint, payload dto.GoalUpdateRequest) (dto.StudentResponse, error)
}

type studentService struct {
	students  repository.StudentRepository
	users     repository.UserRepository
	courses   repository.CourseRepository
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewStudentService builds the student service.
func NewStudentService(students repository.StudentRepository, users repository.UserRepository, courses repository.CourseRepository, validate *validator.Validate, logger zerolog.Logger) StudentService {
	return &studentService{
		students:  students,
		users:     users,
		courses:   courses,
		validator: validate,
		logger:    logger.With().Str("component", "student_service").Logger(),
		now:       time.Now,
	}
}

func (s *studentService) List(ctx context.Context) ([]dto.StudentResponse, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewStudentResponseSlice(students), nil
}

func (s *studentService) Get(ctx context.Context, id uint) (dto.StudentResponse, error) {
	student, err := s.loadStudent(ctx, id)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	return dto.NewStudentResponse(student), nil
}

func (s *studentService) GetByUser(ctx context.Context, userID uint) (dto.StudentResponse, error) {
	student, err := s.students.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		return dto.StudentResponse{}, err
	}

	return dto.NewStudentResponse(student), nil
}

func (s *studentService) Create(ctx context.Context, payload dto.StudentCreateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	if _, err := s.users.GetByID(ctx, payload.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrUserNotFound
		}
		return dto.StudentResponse{}, err
	}

	hasProfile, err := s.students.UserHasProfile(ctx, payload.UserID)
	if err != nil {
		return dto.StudentResponse{}, err
	}
	if hasProfile {
		return dto.StudentResponse{}, ErrProfileExists
	}

	number := strings.TrimSpace(payload.StudentNumber)
	taken, err := s.students.StudentNumberExists(ctx, number)
	if err != nil {
		return dto.StudentResponse{}, err
	}
	if taken {
		return dto.StudentResponse{}, ErrStudentNumberTaken
	}

	dateOfBirth, err := time.Parse(time.RFC3339, payload.DateOfBirth)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	student := models.Student{
		UserID:          payload.UserID,
		StudentNumber:   number,
		DateOfBirth:     dateOfBirth,
		Gender:          payload.Gender,
		ContactNumber:   payload.ContactNumber,
		EnrollmentDate:  s.now(),
		CurrentSemester: 1,
	}

	if payload.Address != nil {
		address, err := marshalAddress(*payload.Address)
		if err != nil {
			return dto.StudentResponse{}, err
		}
		student.Address = address
	}

	if err := s.students.Create(ctx, &student); err != nil {
		return dto.StudentResponse{}, err
	}

	s.logger.Info().Uint("student_id", student.ID).Str("student_number", number).Msg("student profile created")

	return s.Get(ctx, student.ID)
}

func (s *studentService) Update(ctx context.Context, id uint, payload dto.StudentUpdateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	student, err := s.loadStudent(ctx, id)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	return s.applyPatch(ctx, student, payload)
}

func (s *studentService) UpdateByUser(ctx context.Context, userID uint, payload dto.StudentUpdateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	student, err := s.students.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		return dto.StudentResponse{}, err
	}

	return s.applyPatch(ctx, student, payload)
}

func (s *studentService) Delete(ctx context.Context, id uint) error {
	if err := s.students.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}

	s.logger.Info().Uint("student_id", id).Msg("student profile deleted")
	return nil
}

// AddCourse appends a transcript entry. Duplicate entries for the same
// course are permitted; the roster on the course side is not touched.
func (s *studentService) AddCourse(ctx context.Context, studentID uint, payload dto.AddTranscriptCourseRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	if _, err := s.courses.GetByID(ctx, payload.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrCourseNotFound
		}
		return dto.StudentResponse{}, err
	}

	entry := models.StudentCourse{
		StudentID: student.ID,
		CourseID:  payload.CourseID,
		Semester:  payload.Semester,
		Year:      payload.Year,
	}

	if err := s.students.AddCourseEntry(ctx, &entry); err != nil {
		return dto.StudentResponse{}, err
	}

	s.logger.Info().Uint("student_id", student.ID).Uint("course_id", payload.CourseID).Msg("transcript entry added")

	return s.Get(ctx, student.ID)
}

func (s *studentService) SetCourseGrade(ctx context.Context, studentID, entryID uint, payload dto.SetTranscriptGradeRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	entry, err := s.students.GetCourseEntry(ctx, student.ID, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrTranscriptEntryNotFound
		}
		return dto.StudentResponse{}, err
	}

	grade := payload.Grade
	entry.Grade = &grade

	if err := s.students.UpdateCourseEntry(ctx, &entry); err != nil {
		return dto.StudentResponse{}, err
	}

	s.logger.Info().Uint("student_id", student.ID).Uint("entry_id", entry.ID).Str("grade", grade).Msg("transcript grade set")

	return s.Get(ctx, student.ID)
}

func (s *studentService) AddGoal(ctx context.Context, studentID uint, payload dto.GoalCreateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	goal := models.StudentGoal{
		StudentID:   student.ID,
		Title:       strings.TrimSpace(payload.Title),
		Description: payload.Description,
		Status:      models.GoalStatusPending,
	}

	if payload.TargetDate != "" {
		targetDate, err := time.Parse(time.RFC3339, payload.TargetDate)
		if err != nil {
			return dto.StudentResponse{}, err
		}
		goal.TargetDate = targetDate
	}

	if err := s.students.AddGoal(ctx, &goal); err != nil {
		return dto.StudentResponse{}, err
	}

	s.logger.Info().Uint("student_id", student.ID).Uint("goal_id", goal.ID).Msg("goal added")

	return s.Get(ctx, student.ID)
}

func (s *studentService) UpdateGoal(ctx context.Context, studentID, goalID uint, payload dto.GoalUpdateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	goal, err := s.students.GetGoal(ctx, student.ID, goalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrGoalNotFound
		}
		return dto.StudentResponse{}, err
	}

	if payload.Title != nil {
		goal.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Description != nil {
		goal.Description = *payload.Description
	}
	if payload.TargetDate != nil {
		targetDate, err := time.Parse(time.RFC3339, *payload.TargetDate)
		if err != nil {
			return dto.StudentResponse{}, err
		}
		goal.TargetDate = targetDate
	}
	if payload.Status != nil {
		goal.Status = *payload.Status
	}

	if err := s.students.UpdateGoal(ctx, &goal); err != nil {
		return dto.StudentResponse{}, err
	}

	s.logger.Info().Uint("student_id", student.ID).Uint("goal_id", goal.ID).Msg("goal updated")

	return s.Get(ctx, student.ID)
}

func (s *studentService) applyPatch(ctx context.Context, student models.Student, payload dto.StudentUpdateRequest) (dto.StudentResponse, error) {
	if payload.Gender != nil {
		student.Gender = *payload.Gender
	}
	if payload.Address != nil {
		address, err := marshalAddress(*payload.Address)
		if err != nil {
			return dto.StudentResponse{}, err
		}
		student.Address = address
	}
	if payload.ContactNumber != nil {
		student.ContactNumber = *payload.ContactNumber
	}
	if payload.CurrentSemester != nil {
		student.CurrentSemester = *payload.CurrentSemester
	}
	if payload.GPA != nil {
		student.GPA = *payload.GPA
	}

	student.Courses = nil
	student.Goals = nil

	if err := s.students.Update(ctx, &student); err != nil {
		return dto.StudentResponse{}, err
	}

	s.logger.Info().Uint("student_id", student.ID).Msg("student profile updated")

	return s.Get(ctx, student.ID)
}

func (s *studentService) loadStudent(ctx context.Context, id uint) (models.Student, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrStudentNotFound
		}
		return models.Student{}, err
	}

	return student, nil
}

func marshalAddress(address dto.AddressRequest) (datatypes.JSON, error) {
	payload, err := json.Marshal(address)
	if err != nil {
		return nil, err
	}

	return datatypes.JSON(payload), nil
}
