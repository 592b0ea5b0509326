package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-code-advisor/internal/dto"
)

// ErrorHandler answers every error that escapes a handler, recovered panics included,
// with a JSON error body. Client errors raised by fiber keep their status and message;
// anything else becomes a generic 500 so internal details never reach the caller.
func ErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	base := logger.With().Str("component", "error_handler").Logger()

	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := msgInternalError

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) && fiberErr.Code < fiber.StatusInternalServerError {
			status = fiberErr.Code
			message = fiberErr.Message
		}

		event := requestLogger(base, c).Warn()
		if status >= fiber.StatusInternalServerError {
			event = requestLogger(base, c).Error()
		}
		event.Err(err).Str("method", c.Method()).Int("status", status).Msg("unhandled request error")

		return c.Status(status).JSON(dto.ErrorResponse{Error: message})
	}
}
