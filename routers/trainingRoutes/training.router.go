package trainingRoutes

import (
	"github.com/gofiber/fiber/v2"

	controllers "capacitaciones/controllers/training"
	"capacitaciones/middleware"
	validators "capacitaciones/validators/training"
)

// SetupTrainingRoutes registers the authoring endpoints. Every route needs
// an admin token.
func SetupTrainingRoutes(app *fiber.App) {
	group := app.Group("/capacitaciones", middleware.JWTMiddleware, middleware.RequireAdmin())

	group.Get("/capacitaciones", controllers.ListTrainings)
	group.Put("/capacitaciones", validators.DeleteTraining(), controllers.DeleteTraining)

	group.Post("/crear-capacitacion", validators.CreateTraining(), controllers.CreateTraining)
	group.Get("/crear-capacitacion/:id", validators.GetTraining(), controllers.GetTraining)
	group.Patch("/crear-capacitacion/:id", validators.PatchTraining(), controllers.PatchTraining)
	group.Post("/crear-capacitacion/:id", validators.SyncCollaborators(), controllers.SyncCollaborators)

	group.Post("/subir-archivoImagen", validators.UploadFile(), controllers.UploadFile)
	group.Post("/cargar", validators.UploadCollaborators(), controllers.UploadCollaborators)
}
