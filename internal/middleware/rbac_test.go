package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestRequireRoleGuardsPatternAdministration(t *testing.T) {
	cases := []struct {
		name   string
		role   interface{}
		status int
	}{
		{name: "admin", role: "admin", status: fiber.StatusOK},
		{name: "teacher mixed case", role: " Teacher ", status: fiber.StatusOK},
		{name: "student", role: "student", status: fiber.StatusForbidden},
		{name: "missing role", role: nil, status: fiber.StatusForbidden},
		{name: "non string role", role: 7, status: fiber.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(func(c *fiber.Ctx) error {
				if tc.role != nil {
					c.Locals("user_role", tc.role)
				}
				return c.Next()
			})
			app.Use(RequireRole("admin", "teacher"))
			app.Get("/admin/security/patterns", func(c *fiber.Ctx) error {
				return c.SendStatus(fiber.StatusOK)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin/security/patterns", nil))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
