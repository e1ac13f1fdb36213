package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/asmaagnf/Mental-Health-Platform-sub000/pkg/utils"
)

// RequireAuth validates the bearer token and exposes the caller's
// identity to handlers via locals.
func RequireAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
		}

		claims, err := utils.ValidateToken(strings.TrimPrefix(header, "Bearer "), secret)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("role", claims.Role)
		return c.Next()
	}
}
