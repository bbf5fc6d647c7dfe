package trainingValidator

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"capacitaciones/api"
	"capacitaciones/middleware"
	"capacitaciones/utils"
)

type AnswerRequest struct {
	Text     string   `json:"valor" validate:"required"`
	Correct  api.Flag `json:"es_correcto"`
	ImageURL string   `json:"url_imagen"`
}

type QuestionRequest struct {
	Text     string          `json:"pregunta" validate:"required"`
	Kind     string          `json:"tipo_pregunta" validate:"oneof=opcion_unica opcion_multiple"`
	MediaURL string          `json:"url_multimedia"`
	Answers  []AnswerRequest `json:"respuestas" validate:"min=1,dive"`
}

type LessonRequest struct {
	Title       string            `json:"titulo_leccion" validate:"required"`
	Description string            `json:"descripcion,omitempty"`
	Duration    string            `json:"duracion,omitempty"`
	Kind        string            `json:"tipo_leccion" validate:"oneof=video imagen pdf formulario"`
	URL         string            `json:"url" validate:"required_unless=Kind formulario"`
	Questions   []QuestionRequest `json:"preguntas" validate:"dive"`
}

type ModuleRequest struct {
	Name    string          `json:"nombre_modulo" validate:"required"`
	Lessons []LessonRequest `json:"lecciones" validate:"min=1,dive"`
}

// TrainingRequest is the body of create and patch. Collaborators are only
// read on create.
type TrainingRequest struct {
	Title         string          `json:"titulo" validate:"required"`
	Description   string          `json:"descripcion" validate:"required"`
	Type          string          `json:"tipo" validate:"required"`
	Image         string          `json:"imagen"`
	StartDate     string          `json:"fecha_inicio" validate:"required,fecha"`
	EndDate       string          `json:"fecha_fin" validate:"required,fecha"`
	Modules       []ModuleRequest `json:"modulos" validate:"min=1,dive"`
	Collaborators []int           `json:"colaboradores" validate:"dive,gt=0"`
}

// formErrors applies the quiz rules that struct tags cannot express.
func (r *TrainingRequest) formErrors() map[string]string {
	errs := make(map[string]string)
	start, _ := utils.ParseDate(r.StartDate)
	end, _ := utils.ParseDate(r.EndDate)
	if end.Before(start) {
		errs["fecha_fin"] = "no puede ser anterior a fecha_inicio"
	}
	for m, mod := range r.Modules {
		for l, les := range mod.Lessons {
			if les.Kind != "formulario" {
				continue
			}
			path := fmt.Sprintf("modulos[%d].lecciones[%d].preguntas", m, l)
			if len(les.Questions) == 0 {
				errs[path] = "debe tener al menos una pregunta"
			}
			for q, qs := range les.Questions {
				correct := 0
				for _, a := range qs.Answers {
					if a.Correct {
						correct++
					}
				}
				if correct == 0 {
					errs[fmt.Sprintf("%s[%d].respuestas", path, q)] = "debe tener una respuesta correcta"
				}
			}
		}
	}
	return errs
}

func trainingBody(c *fiber.Ctx) (*TrainingRequest, error) {
	reqData := new(TrainingRequest)
	if err := c.BodyParser(reqData); err != nil {
		return nil, middleware.ErrorResponse(c, fiber.StatusBadRequest, "Cuerpo de la solicitud inválido")
	}
	if errs := utils.ValidateStruct(reqData); errs != nil {
		return nil, middleware.ValidationErrorResponse(c, errs)
	}
	if errs := reqData.formErrors(); len(errs) > 0 {
		return nil, middleware.ValidationErrorResponse(c, errs)
	}
	return reqData, nil
}

func CreateTraining() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData, err := trainingBody(c)
		if reqData == nil {
			return err
		}
		c.Locals("validatedTraining", reqData)
		return c.Next()
	}
}

func PatchTraining() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ok, err := trainingID(c); !ok {
			return err
		}
		reqData, err := trainingBody(c)
		if reqData == nil {
			return err
		}
		reqData.Collaborators = nil
		c.Locals("validatedTraining", reqData)
		return c.Next()
	}
}

// SyncRequest adds and removes collaborators of a training.
type SyncRequest struct {
	Add    []int `json:"add" validate:"dive,gt=0"`
	Remove []int `json:"remove" validate:"dive,gt=0"`
}

func SyncCollaborators() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ok, err := trainingID(c); !ok {
			return err
		}
		reqData := new(SyncRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Cuerpo de la solicitud inválido")
		}
		if errs := utils.ValidateStruct(reqData); errs != nil {
			return middleware.ValidationErrorResponse(c, errs)
		}
		removing := make(map[int]bool, len(reqData.Remove))
		for _, id := range reqData.Remove {
			removing[id] = true
		}
		var both []string
		for _, id := range reqData.Add {
			if removing[id] {
				both = append(both, fmt.Sprint(id))
			}
		}
		if len(both) > 0 {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest,
				"Los mismos colaboradores no pueden agregarse y eliminarse: "+strings.Join(both, ", "))
		}
		c.Locals("validatedSync", reqData)
		return c.Next()
	}
}

func GetTraining() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ok, err := trainingID(c); !ok {
			return err
		}
		return c.Next()
	}
}

// DeleteRequest is the body of the delete call.
type DeleteRequest struct {
	ID int `json:"capacitacion_id" validate:"required,gt=0"`
}

func DeleteTraining() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(DeleteRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Cuerpo de la solicitud inválido")
		}
		if errs := utils.ValidateStruct(reqData); errs != nil {
			return middleware.ValidationErrorResponse(c, errs)
		}
		c.Locals("validatedDelete", reqData)
		return c.Next()
	}
}

// UploadRequest holds the form fields sent next to an uploaded file.
type UploadRequest struct {
	Tipo    string `form:"tipo" validate:"required,oneof=capacitacion leccion pregunta respuesta"`
	Subtipo string `form:"subtipo" validate:"required_if=Tipo leccion,omitempty,oneof=imagen pdf"`
}

func UploadFile() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UploadRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Formulario inválido")
		}
		if errs := utils.ValidateStruct(reqData); errs != nil {
			return middleware.ValidationErrorResponse(c, errs)
		}
		if _, err := c.FormFile("archivo"); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Debe enviar un archivo")
		}
		c.Locals("validatedUpload", reqData)
		return c.Next()
	}
}

func UploadCollaborators() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := c.FormFile("archivo"); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Debe enviar un archivo CSV")
		}
		return c.Next()
	}
}

// trainingID stores the :id param in Locals. When it reports false the
// error response has already been written.
func trainingID(c *fiber.Ctx) (bool, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return false, middleware.ErrorResponse(c, fiber.StatusBadRequest, "ID de capacitación inválido")
	}
	c.Locals("trainingID", id)
	return true, nil
}
