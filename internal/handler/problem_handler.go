package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-code-advisor/internal/dto"
	"github.com/noah-isme/gema-code-advisor/internal/service"
	"github.com/noah-isme/gema-code-advisor/internal/utils"
)

// ProblemHandler exposes the read-only problem catalog.
type ProblemHandler struct {
	service service.ProblemService
	logger  zerolog.Logger
}

// NewProblemHandler constructs the handler.
func NewProblemHandler(service service.ProblemService, logger zerolog.Logger) *ProblemHandler {
	return &ProblemHandler{
		service: service,
		logger:  logger.With().Str("component", "problem_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group.
func (h *ProblemHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
}

func (h *ProblemHandler) list(c *fiber.Ctx) error {
	req := dto.ProblemListRequest{Difficulty: strings.ToLower(strings.TrimSpace(c.Query("difficulty")))}

	problems, err := h.service.List(c.UserContext(), req)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "problems retrieved", problems)
}

func (h *ProblemHandler) get(c *fiber.Ctx) error {
	problem, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "problem retrieved", problem)
}

func (h *ProblemHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrProblemNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case isValidationError(err):
		return utils.SendValidationError(c, err)
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("problem operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
