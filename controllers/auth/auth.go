package authController

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"capacitaciones/api"
	"capacitaciones/database"
	"capacitaciones/middleware"
	"capacitaciones/models"
	authValidator "capacitaciones/validators/auth"
)

func Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*authValidator.LoginRequest)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Datos de la solicitud inválidos")
	}

	db := database.Database.Db
	var user models.User
	if err := db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&user).Error; err != nil {
		trackLogin(c, 0, reqData.Email, false)
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "Credenciales inválidas")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		zap.L().Info("failed login", zap.String("email", reqData.Email), zap.String("ip", c.IP()))
		trackLogin(c, user.ID, reqData.Email, false)
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "Credenciales inválidas")
	}
	trackLogin(c, user.ID, reqData.Email, true)

	if err := db.Model(&user).Update("last_login", time.Now()).Error; err != nil {
		zap.L().Warn("saving last login", zap.Error(err))
	}

	token, err := middleware.GenerateJWT(user.ID, user.Email, user.Role)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "No se pudo generar el token")
	}
	return c.JSON(api.LoginResponse{Access: token, IsAdmin: user.Role})
}

func trackLogin(c *fiber.Ctx, userID uint, email string, success bool) {
	entry := models.LoginTracking{
		UserID:    userID,
		Email:     email,
		IPAddress: c.IP(),
		Device:    c.Get(fiber.HeaderUserAgent),
		Success:   success,
		Timestamp: time.Now(),
	}
	if err := database.Database.Db.Create(&entry).Error; err != nil {
		zap.L().Warn("saving login tracking", zap.Error(err))
	}
}
