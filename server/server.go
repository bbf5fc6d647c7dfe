// Package server assembles the development backend: a fiber app serving
// the authoring endpoints the client talks to.
package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"capacitaciones/config"
	"capacitaciones/middleware"
	"capacitaciones/routers/authRoutes"
	"capacitaciones/routers/trainingRoutes"
	"capacitaciones/utils"
)

// NewApp builds the app. Request logging is skipped when quiet is set.
func NewApp(cfg *config.Config, quiet bool) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "capacitaciones",
		BodyLimit: int(cfg.MaxUploadBytes) + 1<<20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var ferr *fiber.Error
			if errors.As(err, &ferr) {
				code = ferr.Code
			}
			return middleware.ErrorResponse(c, code, err.Error())
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))
	if !quiet {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
		}))
	}

	app.Static(utils.MediaPrefix, cfg.UploadDir)

	authRoutes.SetupAuthRoutes(app)
	trainingRoutes.SetupTrainingRoutes(app)
	return app
}
