package api

import (
	"encoding/json"
	"fmt"
)

// Purpose says what an uploaded attachment is for. The backend stores
// lesson images and PDFs under the same "leccion" type with a subtype.
type Purpose string

const (
	PurposeTrainingImage Purpose = "capacitacion"
	PurposeLessonImage   Purpose = "leccion/imagen"
	PurposeLessonPDF     Purpose = "leccion/pdf"
	PurposeQuestionImage Purpose = "pregunta"
	PurposeAnswerImage   Purpose = "respuesta"
)

// FormFields returns the multipart tipo/subtipo pair for the purpose.
func (p Purpose) FormFields() (tipo, subtipo string) {
	switch p {
	case PurposeLessonImage:
		return "leccion", "imagen"
	case PurposeLessonPDF:
		return "leccion", "pdf"
	default:
		return string(p), ""
	}
}

// IsPDF reports whether the purpose expects a PDF rather than an image.
func (p Purpose) IsPDF() bool { return p == PurposeLessonPDF }

// Flag is a boolean the backend historically encodes as 0/1.
type Flag bool

func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

func (f *Flag) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case "1", "true", `"1"`, `"true"`:
		*f = true
	case "0", "false", "null", `"0"`, `"false"`, `""`:
		*f = false
	default:
		return fmt.Errorf("invalid flag value %s", b)
	}
	return nil
}

// Answer is one option of a quiz question.
type Answer struct {
	Text     string `json:"valor"`
	Correct  Flag   `json:"es_correcto"`
	ImageURL string `json:"url_imagen"`
}

// Question is a quiz question of a form lesson.
type Question struct {
	Text     string   `json:"pregunta"`
	Kind     string   `json:"tipo_pregunta"`
	MediaURL string   `json:"url_multimedia"`
	Answers  []Answer `json:"respuestas"`
}

// Lesson is the wire shape of a lesson. URL carries the video link or the
// uploaded image/pdf location depending on Kind.
type Lesson struct {
	Title       string     `json:"titulo_leccion"`
	Description string     `json:"descripcion,omitempty"`
	Duration    string     `json:"duracion,omitempty"`
	Kind        string     `json:"tipo_leccion"`
	URL         string     `json:"url"`
	Questions   []Question `json:"preguntas"`
}

// Module groups lessons.
type Module struct {
	Name    string   `json:"nombre_modulo"`
	Lessons []Lesson `json:"lecciones"`
}

// TrainingPayload is the fully resolved document sent on create and patch.
// Collaborators is omitted from patches.
type TrainingPayload struct {
	Title         string   `json:"titulo"`
	Description   string   `json:"descripcion"`
	Type          string   `json:"tipo"`
	Image         string   `json:"imagen"`
	StartDate     string   `json:"fecha_inicio"`
	EndDate       string   `json:"fecha_fin"`
	Modules       []Module `json:"modulos"`
	Collaborators []int    `json:"colaboradores,omitempty"`
}

// Collaborator is a person enrolled in a training.
type Collaborator struct {
	ID        int    `json:"id"`
	Cedula    string `json:"cc_colaborador,omitempty"`
	FirstName string `json:"nombre,omitempty"`
	LastName  string `json:"apellido,omitempty"`
	Email     string `json:"email,omitempty"`
	Cargo     string `json:"cargo,omitempty"`
}

// UnmarshalJSON accepts the legacy id_colaborador / *_colaborador aliases.
func (c *Collaborator) UnmarshalJSON(b []byte) error {
	type plain Collaborator
	var aux struct {
		plain
		LegacyID        *int   `json:"id_colaborador"`
		LegacyFirstName string `json:"nombre_colaborador"`
		LegacyLastName  string `json:"apellido_colaborador"`
		LegacyCedula    string `json:"cc"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*c = Collaborator(aux.plain)
	if c.ID == 0 && aux.LegacyID != nil {
		c.ID = *aux.LegacyID
	}
	if c.FirstName == "" {
		c.FirstName = aux.LegacyFirstName
	}
	if c.LastName == "" {
		c.LastName = aux.LegacyLastName
	}
	if c.Cedula == "" {
		c.Cedula = aux.LegacyCedula
	}
	return nil
}

// TrainingDetail is the edit-mode view of a training.
type TrainingDetail struct {
	ID            int            `json:"id"`
	Title         string         `json:"titulo"`
	Description   string         `json:"descripcion"`
	Type          string         `json:"tipo"`
	Image         string         `json:"imagen"`
	StartDate     string         `json:"fecha_inicio"`
	EndDate       string         `json:"fecha_fin"`
	Modules       []Module       `json:"modulos"`
	Collaborators []Collaborator `json:"colaboradores"`
}

// TrainingSummary is a row of the training list.
type TrainingSummary struct {
	ID          int    `json:"id"`
	Title       string `json:"titulo"`
	Description string `json:"descripcion"`
	Type        string `json:"tipo"`
	Image       string `json:"imagen"`
	StartDate   string `json:"fecha_inicio"`
	EndDate     string `json:"fecha_fin"`
	Status      int    `json:"estado"`
}

// CreatedTraining is returned by the create call.
type CreatedTraining struct {
	ID    int    `json:"id"`
	Title string `json:"titulo"`
}

// SyncRequest adds and removes collaborators of an existing training.
type SyncRequest struct {
	Add    []int `json:"add"`
	Remove []int `json:"remove"`
}

// SyncResult confirms which collaborators were actually added or removed.
type SyncResult struct {
	Added   []int `json:"added"`
	Removed []int `json:"removed"`
}

// UploadResult describes a stored attachment. Backends disagree on the
// field carrying the location; see ResolvedURL.
type UploadResult struct {
	URL              string `json:"url,omitempty"`
	FileURL          string `json:"file_url,omitempty"`
	DownloadURL      string `json:"download_url,omitempty"`
	Location         string `json:"location,omitempty"`
	Filename         string `json:"filename,omitempty"`
	OriginalFilename string `json:"original_filename,omitempty"`
	Extension        string `json:"extension,omitempty"`
	Size             int64  `json:"size,omitempty"`
}

// ResolvedURL returns the first non-empty location field.
func (u UploadResult) ResolvedURL() string {
	for _, s := range []string{u.URL, u.FileURL, u.DownloadURL, u.Location} {
		if s != "" {
			return s
		}
	}
	return ""
}

// CollaboratorCSVResult is the preview of a collaborator CSV upload.
type CollaboratorCSVResult struct {
	Found    []Collaborator `json:"colaboradores_encontrados"`
	NotFound []string       `json:"colaboradores_no_encontrados"`
}

// UnmarshalJSON also accepts the older "colaboradores" key for found rows.
func (r *CollaboratorCSVResult) UnmarshalJSON(b []byte) error {
	var aux struct {
		Found    []Collaborator `json:"colaboradores_encontrados"`
		Legacy   []Collaborator `json:"colaboradores"`
		NotFound []string       `json:"colaboradores_no_encontrados"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	r.Found = aux.Found
	if r.Found == nil {
		r.Found = aux.Legacy
	}
	r.NotFound = aux.NotFound
	return nil
}

// Attachment is a binary payload waiting to be uploaded.
type Attachment struct {
	Name string
	MIME string
	Data []byte
}

// LoginResponse carries the issued token and the numeric role.
type LoginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
	IsAdmin int    `json:"is_admin"`
}

// ErrorBody is the error envelope returned by the backend.
type ErrorBody struct {
	Error   string            `json:"error,omitempty"`
	Detail  string            `json:"detail,omitempty"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *ErrorBody) text() string {
	if e == nil {
		return ""
	}
	for _, s := range []string{e.Error, e.Detail, e.Message} {
		if s != "" {
			return s
		}
	}
	return ""
}
