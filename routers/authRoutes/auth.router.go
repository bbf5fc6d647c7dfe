package authRoutes

import (
	"github.com/gofiber/fiber/v2"

	authControllers "capacitaciones/controllers/auth"
	authValidators "capacitaciones/validators/auth"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth")

	authGroup.Post("/login", authValidators.Login(), authControllers.Login)
}
