package authValidator

import (
	"github.com/gofiber/fiber/v2"

	"capacitaciones/middleware"
	"capacitaciones/utils"
)

// LoginRequest is the login body.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login validator middleware
func Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(LoginRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Cuerpo de la solicitud inválido")
		}
		if errs := utils.ValidateStruct(reqData); errs != nil {
			return middleware.ValidationErrorResponse(c, errs)
		}
		c.Locals("validatedLogin", reqData)
		return c.Next()
	}
}
