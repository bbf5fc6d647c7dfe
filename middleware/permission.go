package middleware

import (
	"github.com/gofiber/fiber/v2"

	"capacitaciones/models"
)

// RequireAdmin lets through admins and superadmins. It must run after
// JWTMiddleware.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(int)
		if !ok {
			return ErrorResponse(c, fiber.StatusUnauthorized, "No autenticado")
		}
		if role != models.RoleAdmin && role != models.RoleSuperAdmin {
			return ErrorResponse(c, fiber.StatusForbidden, "Acceso solo para administradores")
		}
		return c.Next()
	}
}
