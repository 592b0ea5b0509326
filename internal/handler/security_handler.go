package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-code-advisor/internal/dto"
	"github.com/noah-isme/gema-code-advisor/internal/service"
	"github.com/noah-isme/gema-code-advisor/internal/utils"
)

// SecurityHandler exposes pattern administration and the security log.
type SecurityHandler struct {
	patterns  service.PatternService
	history   service.HistoryService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSecurityHandler constructs the handler.
func NewSecurityHandler(patterns service.PatternService, history service.HistoryService, validator *validator.Validate, logger zerolog.Logger) *SecurityHandler {
	return &SecurityHandler{
		patterns:  patterns,
		history:   history,
		validator: validator,
		logger:    logger.With().Str("component", "security_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group.
func (h *SecurityHandler) Register(router fiber.Router) {
	router.Get("/patterns", h.listPatterns)
	router.Post("/patterns", h.addPattern)
	router.Delete("/patterns", h.removePattern)
	router.Get("/logs", h.listLogs)
}

func (h *SecurityHandler) listPatterns(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "patterns retrieved", h.patterns.List(c.UserContext()))
}

func (h *SecurityHandler) addPattern(c *fiber.Ctx) error {
	var payload dto.PatternRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendValidationError(c, err)
	}

	response, err := h.patterns.Add(c.UserContext(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	requestLogger(h.logger, c).Info().Str("actor_id", userIDFromContext(c)).Uint64("version", response.Version).Msg("pattern added")
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "pattern added", response)
}

func (h *SecurityHandler) removePattern(c *fiber.Ctx) error {
	var payload dto.PatternRequest
	if err := c.BodyParser(&payload); err != nil {
		payload.Pattern = c.Query("pattern")
	}
	if payload.Pattern == "" {
		payload.Pattern = c.Query("pattern")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendValidationError(c, err)
	}

	response, err := h.patterns.Remove(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	requestLogger(h.logger, c).Info().Str("actor_id", userIDFromContext(c)).Uint64("version", response.Version).Msg("pattern removed")
	return utils.SendSuccess(c, "pattern removed", response)
}

func (h *SecurityHandler) listLogs(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	logs, err := h.history.SecurityLogs(c.UserContext(), dto.SecurityLogListRequest{
		UserID:    c.Query("userId"),
		EventType: c.Query("eventType"),
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "security logs retrieved", logs)
}

func (h *SecurityHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrPatternInvalid):
		return utils.SendValidationError(c, err)
	case errors.Is(err, service.ErrPatternExists):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrPatternNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case isValidationError(err):
		return utils.SendValidationError(c, err)
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("security operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
