package trainingController

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"capacitaciones/api"
	"capacitaciones/database"
	"capacitaciones/middleware"
	"capacitaciones/models"
	"capacitaciones/utils"
	trainingValidator "capacitaciones/validators/training"
)

// CreateTraining stores a complete training with its initial collaborators.
func CreateTraining(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedTraining").(*trainingValidator.TrainingRequest)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Datos de la solicitud inválidos")
	}
	db := database.Database.Db

	collaborators, missing, err := findCollaborators(db, reqData.Collaborators)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "Error consultando colaboradores")
	}
	if len(missing) > 0 {
		return notFoundCollaborators(c, missing)
	}

	training := models.Training{Collaborators: collaborators}
	if err := fill(&training, reqData); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}
	if userID, ok := c.Locals("userId").(uint); ok {
		training.CreatedBy = userID
	}
	if err := db.Create(&training).Error; err != nil {
		zap.L().Error("create training", zap.Error(err))
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "No se pudo crear la capacitación")
	}

	zap.L().Info("training created", zap.Uint("id", training.ID), zap.Int("collaborators", len(collaborators)))
	return c.Status(fiber.StatusCreated).JSON(api.CreatedTraining{ID: int(training.ID), Title: training.Title})
}

// GetTraining returns the editable document of a training.
func GetTraining(c *fiber.Ctx) error {
	training, err := loadTraining(c.Locals("trainingID").(int), true)
	if err != nil {
		return trainingLoadError(c, err)
	}

	detail := api.TrainingDetail{
		ID:          int(training.ID),
		Title:       training.Title,
		Description: training.Description,
		Type:        training.Type,
		Image:       training.Image,
		StartDate:   training.StartDate.UTC().Format(time.RFC3339),
		EndDate:     training.EndDate.UTC().Format(time.RFC3339),
		Modules:     []api.Module{},
	}
	if err := json.Unmarshal(training.Modules, &detail.Modules); err != nil {
		zap.L().Error("decode modules", zap.Uint("id", training.ID), zap.Error(err))
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "Módulos corruptos")
	}
	detail.Collaborators = make([]api.Collaborator, 0, len(training.Collaborators))
	for _, col := range training.Collaborators {
		detail.Collaborators = append(detail.Collaborators, toAPICollaborator(col))
	}
	return c.JSON(detail)
}

// PatchTraining replaces every field except the collaborator list.
func PatchTraining(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedTraining").(*trainingValidator.TrainingRequest)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Datos de la solicitud inválidos")
	}
	training, err := loadTraining(c.Locals("trainingID").(int), false)
	if err != nil {
		return trainingLoadError(c, err)
	}
	if err := fill(training, reqData); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	err = database.Database.Db.Model(training).Select(
		"Title", "Description", "Type", "Image", "StartDate", "EndDate", "Modules",
	).Updates(training).Error
	if err != nil {
		zap.L().Error("patch training", zap.Uint("id", training.ID), zap.Error(err))
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "No se pudo actualizar la capacitación")
	}
	return c.JSON(api.CreatedTraining{ID: int(training.ID), Title: training.Title})
}

// SyncCollaborators links and unlinks collaborators. Unknown ids in add
// reject the whole request.
func SyncCollaborators(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedSync").(*trainingValidator.SyncRequest)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Datos de la solicitud inválidos")
	}
	training, err := loadTraining(c.Locals("trainingID").(int), true)
	if err != nil {
		return trainingLoadError(c, err)
	}
	db := database.Database.Db

	toAdd, missing, err := findCollaborators(db, reqData.Add)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "Error consultando colaboradores")
	}
	if len(missing) > 0 {
		return notFoundCollaborators(c, missing)
	}

	linked := make(map[uint]bool, len(training.Collaborators))
	for _, col := range training.Collaborators {
		linked[col.ID] = true
	}
	result := api.SyncResult{Added: []int{}, Removed: []int{}}

	var adding []models.Collaborator
	for _, col := range toAdd {
		if !linked[col.ID] {
			adding = append(adding, col)
			result.Added = append(result.Added, int(col.ID))
		}
	}
	var removing []models.Collaborator
	for _, id := range reqData.Remove {
		if linked[uint(id)] {
			removing = append(removing, models.Collaborator{Model: gorm.Model{ID: uint(id)}})
			result.Removed = append(result.Removed, id)
		}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		assoc := tx.Model(training).Association("Collaborators")
		if len(adding) > 0 {
			if err := assoc.Append(adding); err != nil {
				return err
			}
		}
		if len(removing) > 0 {
			if err := assoc.Delete(removing); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		zap.L().Error("sync collaborators", zap.Uint("id", training.ID), zap.Error(err))
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "No se pudieron sincronizar los colaboradores")
	}
	return c.JSON(result)
}

// ListTrainings returns every live training, newest first.
func ListTrainings(c *fiber.Ctx) error {
	var trainings []models.Training
	if err := database.Database.Db.Where("is_deleted = ?", false).Order("id desc").Find(&trainings).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "Error listando capacitaciones")
	}
	out := make([]api.TrainingSummary, 0, len(trainings))
	for _, t := range trainings {
		out = append(out, api.TrainingSummary{
			ID:          int(t.ID),
			Title:       t.Title,
			Description: t.Description,
			Type:        t.Type,
			Image:       t.Image,
			StartDate:   t.StartDate.UTC().Format(time.RFC3339),
			EndDate:     t.EndDate.UTC().Format(time.RFC3339),
			Status:      t.Status,
		})
	}
	return c.JSON(out)
}

// DeleteTraining soft deletes a training.
func DeleteTraining(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedDelete").(*trainingValidator.DeleteRequest)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Datos de la solicitud inválidos")
	}
	training, err := loadTraining(reqData.ID, false)
	if err != nil {
		return trainingLoadError(c, err)
	}
	if err := database.Database.Db.Model(training).Update("is_deleted", true).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "No se pudo eliminar la capacitación")
	}
	return c.JSON(fiber.Map{"status": true, "message": "Capacitación eliminada"})
}

func loadTraining(id int, withCollaborators bool) (*models.Training, error) {
	q := database.Database.Db.Where("id = ? AND is_deleted = ?", id, false)
	if withCollaborators {
		q = q.Preload("Collaborators")
	}
	var training models.Training
	if err := q.First(&training).Error; err != nil {
		return nil, err
	}
	return &training, nil
}

func trainingLoadError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "Capacitación no encontrada")
	}
	zap.L().Error("load training", zap.Error(err))
	return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "Error cargando la capacitación")
}

func fill(t *models.Training, r *trainingValidator.TrainingRequest) error {
	start, err := utils.ParseDate(r.StartDate)
	if err != nil {
		return fmt.Errorf("fecha_inicio inválida: %w", err)
	}
	end, err := utils.ParseDate(r.EndDate)
	if err != nil {
		return fmt.Errorf("fecha_fin inválida: %w", err)
	}
	modules, err := json.Marshal(r.Modules)
	if err != nil {
		return err
	}
	t.Title = r.Title
	t.Description = r.Description
	t.Type = r.Type
	t.Image = r.Image
	t.StartDate = start
	t.EndDate = end
	t.Modules = modules
	return nil
}

// findCollaborators loads the collaborators with the given ids and reports
// the ids that do not exist.
func findCollaborators(db *gorm.DB, ids []int) ([]models.Collaborator, []int, error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}
	var found []models.Collaborator
	if err := db.Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, nil, err
	}
	exists := make(map[int]bool, len(found))
	for _, col := range found {
		exists[int(col.ID)] = true
	}
	var missing []int
	for _, id := range ids {
		if !exists[id] {
			missing = append(missing, id)
		}
	}
	sort.Ints(missing)
	return found, missing, nil
}

func notFoundCollaborators(c *fiber.Ctx, missing []int) error {
	ids := make([]string, len(missing))
	for i, id := range missing {
		ids[i] = fmt.Sprint(id)
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"status": false,
		"error":  "Colaboradores no encontrados",
		"detail": strings.Join(ids, ", "),
	})
}

func toAPICollaborator(col models.Collaborator) api.Collaborator {
	return api.Collaborator{
		ID:        int(col.ID),
		Cedula:    col.Cedula,
		FirstName: col.FirstName,
		LastName:  col.LastName,
		Email:     col.Email,
		Cargo:     col.Cargo,
	}
}
