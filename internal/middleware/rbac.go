package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/placement-cell/drive-api/internal/utils"
)

// RequireRole restricts a route group to callers holding one of the given
// roles. Role comparison is case-insensitive; an absent role claim is
// rejected.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		if role = strings.ToLower(strings.TrimSpace(role)); role != "" {
			allowed[role] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		role := normalizeRoleValue(c.Locals("user_role"))
		if _, ok := allowed[role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}
