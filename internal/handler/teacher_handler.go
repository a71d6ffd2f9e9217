package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edupulse/studentsuccess-api/internal/dto"
	"github.com/edupulse/studentsuccess-api/internal/service"
	"github.com/edupulse/studentsuccess-api/internal/utils"
)

// TeacherHandler wires the teacher self-service routes.
type TeacherHandler struct {
	auth    service.AuthService
	courses service.CourseService
	logger  zerolog.Logger
}

// NewTeacherHandler constructs the handler.
func NewTeacherHandler(auth service.AuthService, courses service.CourseService, logger zerolog.Logger) *TeacherHandler {
	return &TeacherHandler{
		auth:    auth,
		courses: courses,
		logger:  logger.With().Str("component", "teacher_handler").Logger(),
	}
}

// Register attaches teacher endpoints to the router group. The group is
// expected to already enforce the teacher role.
func (h *TeacherHandler) Register(router fiber.Router) {
	router.Get("/profile", h.profile)
	router.Put("/profile", h.updateProfile)
	router.Get("/courses", h.courseList)
}

func (h *TeacherHandler) profile(c *fiber.Ctx) error {
	profile, err := h.auth.Profile(c.Context(), userIDFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "profile retrieved", profile)
}

func (h *TeacherHandler) updateProfile(c *fiber.Ctx) error {
	var payload dto.ProfileUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	profile, err := h.auth.UpdateProfile(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			return h.internalError(c, err)
		}
	}

	return utils.SendSuccess(c, "profile updated", profile)
}

func (h *TeacherHandler) courseList(c *fiber.Ctx) error {
	courses, err := h.courses.ListByInstructor(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "courses retrieved", courses)
}

func (h *TeacherHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
