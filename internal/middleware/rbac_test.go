package middleware_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/edupulse/studentsuccess-api/internal/middleware"
	"github.com/edupulse/studentsuccess-api/internal/models"
)

func rbacApp(role interface{}) *fiber.App {
	app := fiber.New()
	app.Get("/restricted",
		func(c *fiber.Ctx) error {
			if role != nil {
				c.Locals("user_role", role)
			}
			return c.Next()
		},
		middleware.RequireRole(models.RoleTeacher),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) },
	)
	return app
}

func TestRequireRoleAllowsListedRole(t *testing.T) {
	app := rbacApp(models.RoleTeacher)

	resp, err := app.Test(httptest.NewRequest("GET", "/restricted", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRoleRejectsOtherRoles(t *testing.T) {
	app := rbacApp(models.RoleStudent)

	resp, err := app.Test(httptest.NewRequest("GET", "/restricted", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireRoleRejectsMissingRole(t *testing.T) {
	app := rbacApp(nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/restricted", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
