package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edupulse/studentsuccess-api/internal/dto"
	"github.com/edupulse/studentsuccess-api/internal/service"
	"github.com/edupulse/studentsuccess-api/internal/utils"
)

// PerformanceHandler wires performance snapshot HTTP routes.
type PerformanceHandler struct {
	service   service.PerformanceService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewPerformanceHandler constructs the handler.
func NewPerformanceHandler(service service.PerformanceService, validator *validator.Validate, logger zerolog.Logger) *PerformanceHandler {
	return &PerformanceHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "performance_handler").Logger(),
	}
}

// Register attaches performance endpoints to the router group. Reads are
// open to any authenticated user; writes are teacher-only.
func (h *PerformanceHandler) Register(router fiber.Router, teacherOnly fiber.Handler) {
	router.Get("/student/:id", h.get)
	router.Post("/student/:id", teacherOnly, h.create)
	router.Put("/student/:id", teacherOnly, h.update)
	router.Get("/history/:id", h.history)
}

func (h *PerformanceHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	performance, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "performance retrieved", performance)
}

func (h *PerformanceHandler) create(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.PerformanceCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	performance, err := h.service.Create(c.Context(), id, payload, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "performance recorded", performance)
}

func (h *PerformanceHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.PerformanceUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	performance, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "performance updated", performance)
}

func (h *PerformanceHandler) history(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	history, err := h.service.History(c.Context(), id)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "performance history retrieved", history)
}

func (h *PerformanceHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrPerformanceNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "performance data not found")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *PerformanceHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
