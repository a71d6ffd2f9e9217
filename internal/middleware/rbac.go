package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/edupulse/studentsuccess-api/internal/utils"
)

// RequireRole restricts a route to users carrying one of the given roles.
// It must run after Protected, which binds user_role to the request.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("user_role").(string)
		if !ok || role == "" {
			return utils.SendError(c, fiber.StatusForbidden, "access denied")
		}
		if _, ok := allowed[role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "access denied")
		}
		return c.Next()
	}
}
