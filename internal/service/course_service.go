package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/edupulse/studentsuccess-api/internal/dto"
	"github.com/edupulse/studentsuccess-api/internal/models"
	"github.com/edupulse/studentsuccess-api/internal/observability"
	"github.com/edupulse/studentsuccess-api/internal/repository"
)

// Course errors.
var (
	// ErrCourseNotFound indicates the requested course does not exist.
	ErrCourseNotFound = errors.New("course not found")
	// ErrCourseCodeTaken indicates another course already uses the code.
	ErrCourseCodeTaken = errors.New("course code already exists")
	// ErrNotCourseOwner indicates the caller is not the instructor of record.
	ErrNotCourseOwner = errors.New("not the course instructor")
	// ErrCourseFull indicates the roster is at capacity.
	ErrCourseFull = errors.New("course is full")
	// ErrAlreadyEnrolled indicates the student already holds a seat.
	ErrAlreadyEnrolled = errors.New("student already enrolled")
	// ErrStudentNotInCourse indicates the student has no grade record in the course.
	ErrStudentNotInCourse = errors.New("student not found in course")
	// ErrCommentNotFound indicates the comment does not exist in the course.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrPrerequisiteNotFound indicates a referenced prerequisite course is missing.
	ErrPrerequisiteNotFound = errors.New("prerequisite course not found")
)

// Actor identifies the authenticated caller inside service operations.
type Actor struct {
	ID   uint
	Role string
}

// Course event subjects appended to the configured subject base.
const (
	courseEventEnrolled     = "course.enrolled"
	courseEventUnenrolled   = "course.unenrolled"
	courseEventStudentAdded = "course.student_added"
	courseEventGraded       = "course.graded"
	courseEventCommented    = "course.commented"
)

type courseEvent struct {
	Type      string    `json:"type"`
	CourseID  uint      `json:"course_id"`
	StudentID uint      `json:"student_id"`
	ActorID   uint      `json:"actor_id,omitempty"`
	SentAt    time.Time `json:"sent_at"`
}

// CourseService exposes the course domain use cases.
type CourseService interface {
	List(ctx context.Context) ([]dto.CourseResponse, error)
	ListByInstructor(ctx context.Context, instructorID uint) ([]dto.CourseResponse, error)
	Get(ctx context.Context, id uint) (dto.CourseResponse, error)
	Create(ctx context.Context, payload dto.CourseCreateRequest, actor Actor) (dto.CourseResponse, error)
	Update(ctx context.Context, id uint, payload dto.CourseUpdateRequest, actor Actor) (dto.CourseResponse, error)
	Delete(ctx context.Context, id uint, actor Actor) error

	Enroll(ctx context.Context, courseID uint, payload dto.EnrollRequest, actor Actor) (dto.CourseResponse, error)
	Unenroll(ctx context.Context, courseID, studentID uint, actor Actor) (dto.CourseResponse, error)
	AddStudent(ctx context.Context, courseID uint, payload dto.AddStudentRequest, actor Actor) (dto.CourseResponse, error)

	SetGrade(ctx context.Context, courseID, studentID uint, payload dto.SetGradeRequest, actor Actor) (dto.CourseGradeResponse, error)
	AddComment(ctx context.Context, courseID, studentID uint, payload dto.CommentCreateRequest, actor Actor) (dto.CourseCommentResponse, error)
	UpdateComment(ctx context.Context, courseID, commentID uint, payload dto.CommentUpdateRequest, actor Actor) (dto.CourseCommentResponse, error)

	StudentPerformance(ctx context.Context, courseID, studentID uint, actor Actor) (dto.StudentPerformanceResponse, error)
}

type courseService struct {
	courses   repository.CourseRepository
	users     repository.UserRepository
	validator *validator.Validate
	events    *nats.Conn
	subject   string
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewCourseService builds the course service. The NATS connection may be nil;
// events are then skipped.
func NewCourseService(courses repository.CourseRepository, users repository.UserRepository, validate *validator.Validate, events *nats.Conn, subjectBase string, logger zerolog.Logger) CourseService {
	subject := ""
	if subjectBase != "" {
		subject = strings.ReplaceAll(subjectBase, ":", ".") + ".courses"
	}

	return &courseService{
		courses:   courses,
		users:     users,
		validator: validate,
		events:    events,
		subject:   subject,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "course_service").Logger(),
		tracer:    otel.Tracer("github.com/edupulse/studentsuccess-api/internal/service/course"),
		now:       time.Now,
	}
}

func (s *courseService) List(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewCourseResponseSlice(courses), nil
}

func (s *courseService) ListByInstructor(ctx context.Context, instructorID uint) ([]dto.CourseResponse, error) {
	courses, err := s.courses.ListByInstructor(ctx, instructorID)
	if err != nil {
		return nil, err
	}

	return dto.NewCourseResponseSlice(courses), nil
}

func (s *courseService) Get(ctx context.Context, id uint) (dto.CourseResponse, error) {
	course, err := s.loadCourse(ctx, id)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Create(ctx context.Context, payload dto.CourseCreateRequest, actor Actor) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	code := strings.ToUpper(strings.TrimSpace(payload.Code))

	taken, err := s.courses.CodeExists(ctx, code)
	if err != nil {
		return dto.CourseResponse{}, err
	}
	if taken {
		return dto.CourseResponse{}, ErrCourseCodeTaken
	}

	startDate, err := time.Parse(time.RFC3339, payload.StartDate)
	if err != nil {
		return dto.CourseResponse{}, err
	}
	endDate, err := time.Parse(time.RFC3339, payload.EndDate)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	course := models.Course{
		Code:         code,
		Title:        strings.TrimSpace(payload.Title),
		Description:  payload.Description,
		Credits:      payload.Credits,
		InstructorID: actor.ID,
		Semester:     payload.Semester,
		Capacity:     payload.Capacity,
		Status:       models.CourseStatusActive,
		Schedule: models.Schedule{
			Day:       payload.Schedule.Day,
			StartTime: payload.Schedule.StartTime,
			EndTime:   payload.Schedule.EndTime,
			Room:      payload.Schedule.Room,
		},
		StartDate: startDate,
		EndDate:   endDate,
	}

	if err := s.courses.Create(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	if len(payload.Prerequisites) > 0 {
		prerequisites, err := s.resolvePrerequisites(ctx, payload.Prerequisites, course.ID)
		if err != nil {
			return dto.CourseResponse{}, err
		}
		if err := s.courses.ReplacePrerequisites(ctx, &course, prerequisites); err != nil {
			return dto.CourseResponse{}, err
		}
	}

	s.logger.Info().Uint("course_id", course.ID).Str("code", course.Code).Msg("course created")

	return s.Get(ctx, course.ID)
}

func (s *courseService) Update(ctx context.Context, id uint, payload dto.CourseUpdateRequest, actor Actor) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course, err := s.ownedCourse(ctx, id, actor)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	if payload.Title != nil {
		course.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Description != nil {
		course.Description = *payload.Description
	}
	if payload.Credits != nil {
		course.Credits = *payload.Credits
	}
	if payload.Semester != nil {
		course.Semester = *payload.Semester
	}
	if payload.Capacity != nil {
		course.Capacity = *payload.Capacity
	}
	if payload.Status != nil {
		course.Status = *payload.Status
	}
	if payload.Schedule != nil {
		course.Schedule = models.Schedule{
			Day:       payload.Schedule.Day,
			StartTime: payload.Schedule.StartTime,
			EndTime:   payload.Schedule.EndTime,
			Room:      payload.Schedule.Room,
		}
	}
	if payload.StartDate != nil {
		startDate, err := time.Parse(time.RFC3339, *payload.StartDate)
		if err != nil {
			return dto.CourseResponse{}, err
		}
		course.StartDate = startDate
	}
	if payload.EndDate != nil {
		endDate, err := time.Parse(time.RFC3339, *payload.EndDate)
		if err != nil {
			return dto.CourseResponse{}, err
		}
		course.EndDate = endDate
	}

	if err := s.courses.Update(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	if payload.Prerequisites != nil {
		prerequisites, err := s.resolvePrerequisites(ctx, *payload.Prerequisites, course.ID)
		if err != nil {
			return dto.CourseResponse{}, err
		}
		if err := s.courses.ReplacePrerequisites(ctx, &course, prerequisites); err != nil {
			return dto.CourseResponse{}, err
		}
	}

	s.logger.Info().Uint("course_id", course.ID).Msg("course updated")

	return s.Get(ctx, course.ID)
}

func (s *courseService) Delete(ctx context.Context, id uint, actor Actor) error {
	if _, err := s.ownedCourse(ctx, id, actor); err != nil {
		return err
	}

	if err := s.courses.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}

	s.logger.Info().Uint("course_id", id).Msg("course deleted")
	return nil
}

func (s *courseService) Enroll(ctx context.Context, courseID uint, payload dto.EnrollRequest, actor Actor) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	if err := s.courses.Enroll(ctx, courseID, payload.StudentID, false); err != nil {
		return dto.CourseResponse{}, s.mapEnrollError(err)
	}

	observability.Enrollments().WithLabelValues("enrolled").Inc()
	s.publishEvent(courseEventEnrolled, courseID, payload.StudentID, actor)
	s.logger.Info().Uint("course_id", courseID).Uint("student_id", payload.StudentID).Msg("student enrolled")

	return s.Get(ctx, courseID)
}

func (s *courseService) Unenroll(ctx context.Context, courseID, studentID uint, actor Actor) (dto.CourseResponse, error) {
	if _, err := s.loadCourse(ctx, courseID); err != nil {
		return dto.CourseResponse{}, err
	}

	if err := s.courses.Unenroll(ctx, courseID, studentID); err != nil {
		return dto.CourseResponse{}, err
	}

	s.publishEvent(courseEventUnenrolled, courseID, studentID, actor)
	s.logger.Info().Uint("course_id", courseID).Uint("student_id", studentID).Msg("student unenrolled")

	return s.Get(ctx, courseID)
}

// AddStudent is the teacher path: it resolves the student account by email,
// seats it and opens a null grade record in the same transaction.
func (s *courseService) AddStudent(ctx context.Context, courseID uint, payload dto.AddStudentRequest, actor Actor) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	if _, err := s.ownedCourse(ctx, courseID, actor); err != nil {
		return dto.CourseResponse{}, err
	}

	student, err := s.users.GetByEmail(ctx, payload.StudentEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrUserNotFound
		}
		return dto.CourseResponse{}, err
	}
	if student.Role != models.RoleStudent {
		return dto.CourseResponse{}, ErrUserNotFound
	}

	if err := s.courses.Enroll(ctx, courseID, student.ID, true); err != nil {
		return dto.CourseResponse{}, s.mapEnrollError(err)
	}

	observability.Enrollments().WithLabelValues("enrolled").Inc()
	s.publishEvent(courseEventStudentAdded, courseID, student.ID, actor)
	s.logger.Info().Uint("course_id", courseID).Uint("student_id", student.ID).Msg("student added by teacher")

	return s.Get(ctx, courseID)
}

func (s *courseService) SetGrade(ctx context.Context, courseID, studentID uint, payload dto.SetGradeRequest, actor Actor) (dto.CourseGradeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "course.set_grade")
	span.SetAttributes(
		attribute.Int64("course.id", int64(courseID)),
		attribute.Int64("course.student_id", int64(studentID)),
		attribute.Int64("course.actor_id", int64(actor.ID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return dto.CourseGradeResponse{}, err
	}

	if _, err := s.ownedCourse(ctx, courseID, actor); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return dto.CourseGradeResponse{}, err
	}

	record, err := s.courses.GetGradeRecord(ctx, courseID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, ErrStudentNotInCourse.Error())
			return dto.CourseGradeResponse{}, ErrStudentNotInCourse
		}
		span.SetStatus(codes.Error, err.Error())
		return dto.CourseGradeResponse{}, err
	}

	grade := payload.Grade
	record.Grade = &grade
	record.RecordedAt = s.now()

	if err := s.courses.UpdateGradeRecord(ctx, &record); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return dto.CourseGradeResponse{}, err
	}

	s.publishEvent(courseEventGraded, courseID, studentID, actor)
	s.logger.Info().
		Uint("course_id", courseID).
		Uint("student_id", studentID).
		Float64("grade", grade).
		Msg("grade recorded")

	return dto.NewCourseGradeResponse(record), nil
}

func (s *courseService) AddComment(ctx context.Context, courseID, studentID uint, payload dto.CommentCreateRequest, actor Actor) (dto.CourseCommentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseCommentResponse{}, err
	}

	if _, err := s.ownedCourse(ctx, courseID, actor); err != nil {
		return dto.CourseCommentResponse{}, err
	}

	comment := models.CourseComment{
		CourseID:   courseID,
		StudentID:  studentID,
		Text:       s.sanitizer.Sanitize(payload.Text),
		RecordedAt: s.now(),
	}

	if err := s.courses.AddComment(ctx, &comment); err != nil {
		return dto.CourseCommentResponse{}, err
	}

	s.publishEvent(courseEventCommented, courseID, studentID, actor)
	s.logger.Info().Uint("course_id", courseID).Uint("comment_id", comment.ID).Msg("comment added")

	return dto.NewCourseCommentResponse(comment), nil
}

func (s *courseService) UpdateComment(ctx context.Context, courseID, commentID uint, payload dto.CommentUpdateRequest, actor Actor) (dto.CourseCommentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseCommentResponse{}, err
	}

	if _, err := s.ownedCourse(ctx, courseID, actor); err != nil {
		return dto.CourseCommentResponse{}, err
	}

	comment, err := s.courses.GetComment(ctx, courseID, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseCommentResponse{}, ErrCommentNotFound
		}
		return dto.CourseCommentResponse{}, err
	}

	comment.Text = s.sanitizer.Sanitize(payload.Text)
	comment.RecordedAt = s.now()

	if err := s.courses.UpdateComment(ctx, &comment); err != nil {
		return dto.CourseCommentResponse{}, err
	}

	s.logger.Info().Uint("course_id", courseID).Uint("comment_id", comment.ID).Msg("comment updated")

	return dto.NewCourseCommentResponse(comment), nil
}

// StudentPerformance derives the per-student view from the course's grade
// and comment records.
func (s *courseService) StudentPerformance(ctx context.Context, courseID, studentID uint, actor Actor) (dto.StudentPerformanceResponse, error) {
	if _, err := s.ownedCourse(ctx, courseID, actor); err != nil {
		return dto.StudentPerformanceResponse{}, err
	}

	grades, err := s.courses.GradesByStudent(ctx, courseID, studentID)
	if err != nil {
		return dto.StudentPerformanceResponse{}, err
	}

	comments, err := s.courses.CommentsByStudent(ctx, courseID, studentID)
	if err != nil {
		return dto.StudentPerformanceResponse{}, err
	}

	response := dto.StudentPerformanceResponse{
		CourseID:  courseID,
		StudentID: studentID,
		Grades:    make([]dto.CourseGradeResponse, 0, len(grades)),
		Comments:  make([]dto.CourseCommentResponse, 0, len(comments)),
	}
	for _, grade := range grades {
		response.Grades = append(response.Grades, dto.NewCourseGradeResponse(grade))
	}
	for _, comment := range comments {
		response.Comments = append(response.Comments, dto.NewCourseCommentResponse(comment))
	}

	return response, nil
}

func (s *courseService) loadCourse(ctx context.Context, id uint) (models.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Course{}, ErrCourseNotFound
		}
		return models.Course{}, err
	}

	return course, nil
}

func (s *courseService) ownedCourse(ctx context.Context, id uint, actor Actor) (models.Course, error) {
	course, err := s.loadCourse(ctx, id)
	if err != nil {
		return models.Course{}, err
	}

	if course.InstructorID != actor.ID {
		return models.Course{}, ErrNotCourseOwner
	}

	return course, nil
}

func (s *courseService) resolvePrerequisites(ctx context.Context, ids []uint, selfID uint) ([]models.Course, error) {
	prerequisites := make([]models.Course, 0, len(ids))
	for _, id := range ids {
		if id == selfID {
			continue
		}
		prerequisite, err := s.courses.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrPrerequisiteNotFound
			}
			return nil, err
		}
		prerequisites = append(prerequisites, models.Course{ID: prerequisite.ID})
	}

	return prerequisites, nil
}

func (s *courseService) mapEnrollError(err error) error {
	switch {
	case errors.Is(err, repository.ErrCourseFull):
		observability.Enrollments().WithLabelValues("full").Inc()
		return ErrCourseFull
	case errors.Is(err, repository.ErrAlreadyEnrolled):
		observability.Enrollments().WithLabelValues("duplicate").Inc()
		return ErrAlreadyEnrolled
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrCourseNotFound
	default:
		return err
	}
}

func (s *courseService) publishEvent(eventType string, courseID, studentID uint, actor Actor) {
	if s.events == nil || s.subject == "" {
		return
	}

	payload, err := json.Marshal(courseEvent{
		Type:      eventType,
		CourseID:  courseID,
		StudentID: studentID,
		ActorID:   actor.ID,
		SentAt:    s.now(),
	})
	if err != nil {
		return
	}

	if err := s.events.Publish(s.subject, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("failed to publish course event")
	}
}
