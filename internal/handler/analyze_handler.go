package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-code-advisor/internal/dto"
	"github.com/noah-isme/gema-code-advisor/internal/service"
)

// Error bodies returned by the analyze endpoint.
const (
	msgMethodNotAllowed = "Method not allowed"
	msgProblemNotFound  = "Problem not found"
	msgInternalError    = "Internal server error"
)

// AnalyzeHandler exposes the code analysis endpoint.
type AnalyzeHandler struct {
	service service.AnalysisService
	logger  zerolog.Logger
}

// NewAnalyzeHandler constructs the handler.
func NewAnalyzeHandler(service service.AnalysisService, logger zerolog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		service: service,
		logger:  logger.With().Str("component", "analyze_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group. Extra middleware such as a
// rate limiter only guards the POST route.
func (h *AnalyzeHandler) Register(router fiber.Router, guards ...fiber.Handler) {
	router.Options("", h.preflight)
	router.Post("", append(guards, h.analyze)...)
	router.All("", h.methodNotAllowed)
}

func (h *AnalyzeHandler) preflight(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusOK)
}

func (h *AnalyzeHandler) methodNotAllowed(c *fiber.Ctx) error {
	return c.Status(fiber.StatusMethodNotAllowed).JSON(dto.ErrorResponse{Error: msgMethodNotAllowed})
}

func (h *AnalyzeHandler) analyze(c *fiber.Ctx) error {
	var payload dto.AnalyzeRequest
	if err := c.BodyParser(&payload); err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("invalid analyze request body")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: msgInternalError})
	}

	advice, err := h.service.Analyze(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(dto.AnalyzeResponse{Advice: advice})
}

func (h *AnalyzeHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrProblemNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: msgProblemNotFound})
	case isValidationError(err):
		requestLogger(h.logger, c).Warn().Err(err).Msg("analyze request missing problemId or userId")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: msgInternalError})
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("analysis failed")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: msgInternalError})
	}
}
