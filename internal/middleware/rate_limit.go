package middleware

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/gema-code-advisor/internal/dto"
)

// RateLimit creates a per-user rate limiter. The user is the token subject when present,
// otherwise the userId of a JSON body, otherwise the client IP.
func RateLimit(identifier string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return fmt.Sprintf("%s:%s", identifier, rateLimitSubject(c))
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{Error: "Too many requests"})
		},
	})
}

func rateLimitSubject(c *fiber.Ctx) string {
	if userID, ok := c.Locals("user_id").(string); ok && strings.TrimSpace(userID) != "" {
		return "user:" + strings.TrimSpace(userID)
	}

	var body struct {
		UserID string `json:"userId"`
	}
	if len(c.Body()) > 0 && json.Unmarshal(c.Body(), &body) == nil {
		if userID := strings.TrimSpace(body.UserID); userID != "" {
			return "user:" + userID
		}
	}

	return "ip:" + c.IP()
}
