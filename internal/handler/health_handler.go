package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-code-advisor/internal/config"
	"github.com/noah-isme/gema-code-advisor/internal/service"
	"github.com/noah-isme/gema-code-advisor/internal/utils"
)

// HealthResponse reports liveness plus the pattern set this node is screening with.
type HealthResponse struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	Service        string    `json:"service"`
	Environment    string    `json:"environment"`
	PatternVersion uint64    `json:"pattern_version,omitempty"`
	PatternCount   int       `json:"pattern_count"`
}

// HealthCheck returns the health handler. patterns may be nil.
func HealthCheck(cfg config.Config, patterns service.PatternSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
		}
		if patterns != nil {
			snapshot := patterns.Snapshot()
			payload.PatternVersion = snapshot.Version
			payload.PatternCount = snapshot.Len()
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
