package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-code-advisor/internal/config"
	"github.com/noah-isme/gema-code-advisor/internal/handler"
	"github.com/noah-isme/gema-code-advisor/internal/middleware"
	"github.com/noah-isme/gema-code-advisor/internal/observability"
	"github.com/noah-isme/gema-code-advisor/internal/service"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AnalyzeHandler    *handler.AnalyzeHandler
	ProblemHandler    *handler.ProblemHandler
	SubmissionHandler *handler.SubmissionHandler
	SecurityHandler   *handler.SecurityHandler
	Patterns          service.PatternSource
	JWTMiddleware     fiber.Handler
	RateLimiter       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.Patterns))

	if deps.AnalyzeHandler != nil {
		var guards []fiber.Handler
		if deps.RateLimiter != nil {
			guards = append(guards, deps.RateLimiter)
		}
		deps.AnalyzeHandler.Register(api.Group("/analyze"), guards...)
	}

	if deps.ProblemHandler != nil {
		deps.ProblemHandler.Register(api.Group("/problems"))
	}

	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(api.Group("/submissions"))
	}

	// Admin endpoints are only mounted behind a JWT middleware.
	if deps.SecurityHandler != nil && deps.JWTMiddleware != nil {
		admin := api.Group("/admin/security", deps.JWTMiddleware, middleware.RequireRole("admin", "teacher"))
		deps.SecurityHandler.Register(admin)
	}
}
