package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandlerExposesAdvisorCollectors(t *testing.T) {
	Analyses().WithLabelValues("warning").Inc()
	SecurityBlocks().Inc()
	PatternSetSize().Set(8)

	app := fiber.New()
	app.Get("/metrics", MetricsHandler())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `advisor_analyses_total{severity="warning"}`)
	require.Contains(t, string(body), "advisor_security_blocks_total")
	require.Contains(t, string(body), "advisor_pattern_set_size 8")
}
