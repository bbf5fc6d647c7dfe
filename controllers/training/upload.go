package trainingController

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"capacitaciones/api"
	"capacitaciones/config"
	"capacitaciones/database"
	"capacitaciones/middleware"
	"capacitaciones/models"
	"capacitaciones/utils"
	trainingValidator "capacitaciones/validators/training"
)

// UploadFile stores an attachment and returns where it can be fetched.
func UploadFile(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUpload").(*trainingValidator.UploadRequest)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Datos de la solicitud inválidos")
	}
	file, err := c.FormFile("archivo")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Debe enviar un archivo")
	}

	cfg := config.AppConfig
	stored, err := utils.SaveUploadedFile(file, cfg.UploadDir, cfg.MaxUploadBytes, reqData.Subtipo == "pdf")
	switch {
	case errors.Is(err, utils.ErrTooLarge):
		return middleware.ErrorResponse(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, utils.ErrExtension), errors.Is(err, utils.ErrContent):
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	case err != nil:
		zap.L().Error("store upload", zap.String("file", file.Filename), zap.Error(err))
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "No se pudo guardar el archivo")
	}

	upload := models.Upload{
		Filename:         stored.Filename,
		OriginalFilename: stored.OriginalFilename,
		Extension:        stored.Extension,
		MIME:             stored.MIME,
		Size:             stored.Size,
		Tipo:             reqData.Tipo,
		Subtipo:          reqData.Subtipo,
		URL:              utils.GetFileURL(stored.Filename),
	}
	if err := database.Database.Db.Create(&upload).Error; err != nil {
		zap.L().Error("record upload", zap.Error(err))
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "No se pudo registrar el archivo")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"url":               upload.URL,
		"filename":          upload.Filename,
		"original_filename": upload.OriginalFilename,
		"extension":         upload.Extension,
		"size":              upload.Size,
		"local":             true,
	})
}

// UploadCollaborators resolves the cedulas of a CSV file against the
// collaborator table.
func UploadCollaborators(c *fiber.Ctx) error {
	file, err := c.FormFile("archivo")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Debe enviar un archivo CSV")
	}
	src, err := file.Open()
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "No se pudo leer el archivo")
	}
	defer src.Close()

	cedulas, err := utils.ParseCedulas(src)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	var found []models.Collaborator
	if len(cedulas) > 0 {
		if err := database.Database.Db.Where("cedula IN ?", cedulas).Find(&found).Error; err != nil {
			return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "Error consultando colaboradores")
		}
	}
	byCedula := make(map[string]models.Collaborator, len(found))
	for _, col := range found {
		byCedula[col.Cedula] = col
	}

	result := api.CollaboratorCSVResult{Found: []api.Collaborator{}, NotFound: []string{}}
	for _, ced := range cedulas {
		if col, ok := byCedula[ced]; ok {
			result.Found = append(result.Found, toAPICollaborator(col))
		} else {
			result.NotFound = append(result.NotFound, ced)
		}
	}
	return c.JSON(result)
}
