package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// readyDraft returns a draft that passes validation: a video lesson, an
// image lesson with a pending file and a quiz with one pending image.
func readyDraft(t *testing.T, backend Backend) *Builder {
	t.Helper()
	b := New(backend, zaptest.NewLogger(t))
	b.SetTitle("Seguridad industrial")
	b.SetDescription("Normas básicas")
	require.NoError(t, b.SetStartDate("2024-03-01"))
	require.NoError(t, b.SetEndDate("2024-03-05"))
	require.NoError(t, b.AttachTrainingImage(png("cover.png")))

	m := b.AddModule("")
	require.NoError(t, addLesson(b, m, "Video", LessonVideo))
	require.NoError(t, b.SetLessonVideoURL(m, 0, "https://video.test/intro"))

	require.NoError(t, addLesson(b, m, "Afiche", LessonImage))
	require.NoError(t, b.AttachLessonFile(m, 1, png("afiche.png")))

	require.NoError(t, addLesson(b, m, "Quiz", LessonForm))
	q, err := b.AddQuestion(m, 2)
	require.NoError(t, err)
	require.NoError(t, b.SetQuestionText(m, 2, q, "¿Casco obligatorio?"))
	require.NoError(t, b.AttachQuestionMedia(m, 2, q, png("casco.png")))
	require.NoError(t, b.SetAnswerText(m, 2, q, 0, "Sí"))
	a, err := b.AddAnswer(m, 2, q)
	require.NoError(t, err)
	require.NoError(t, b.SetAnswerText(m, 2, q, a, "No"))
	require.NoError(t, b.ToggleAnswer(m, 2, q, 0))

	b.SetCollaborators([]int{1, 2})
	return b
}

func addLesson(b *Builder, m int, title string, kind LessonKind) error {
	l, err := b.AddLesson(m)
	if err != nil {
		return err
	}
	if err := b.SetLessonTitle(m, l, title); err != nil {
		return err
	}
	return b.SetLessonKind(m, l, kind)
}

func TestValidateReadyDraft(t *testing.T) {
	assert.NoError(t, readyDraft(t, nil).Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(t *testing.T, b *Builder)
		message string
		module  int
		lesson  int
	}{
		{
			name:    "title",
			mutate:  func(t *testing.T, b *Builder) { b.SetTitle("  ") },
			message: "El título de la capacitación es obligatorio",
			module:  -1, lesson: -1,
		},
		{
			name:    "description",
			mutate:  func(t *testing.T, b *Builder) { b.SetDescription("") },
			message: "La descripción es obligatoria",
			module:  -1, lesson: -1,
		},
		{
			name:    "dates",
			mutate:  func(t *testing.T, b *Builder) { require.NoError(t, b.SetEndDate("")) },
			message: "Las fechas de inicio y fin son obligatorias",
			module:  -1, lesson: -1,
		},
		{
			name:    "end before start",
			mutate:  func(t *testing.T, b *Builder) { require.NoError(t, b.SetEndDate("2024-02-28")) },
			message: "La fecha de fin no puede ser anterior a la fecha de inicio",
			module:  -1, lesson: -1,
		},
		{
			name:    "no modules",
			mutate:  func(t *testing.T, b *Builder) { require.NoError(t, b.RemoveModule(0)) },
			message: "Debe agregar al menos un módulo",
			module:  -1, lesson: -1,
		},
		{
			name:    "empty module",
			mutate:  func(t *testing.T, b *Builder) { b.AddModule("Cierre") },
			message: `El módulo 2 ("Cierre") debe tener al menos una lección`,
			module:  1, lesson: -1,
		},
		{
			name:    "lesson title",
			mutate:  func(t *testing.T, b *Builder) { require.NoError(t, b.SetLessonTitle(0, 1, "")) },
			message: "El título es obligatorio en el módulo 1, lección 2",
			module:  0, lesson: 1,
		},
		{
			name:    "video url",
			mutate:  func(t *testing.T, b *Builder) { require.NoError(t, b.SetLessonVideoURL(0, 0, "")) },
			message: "La URL del video es obligatoria en el módulo 1, lección 1",
			module:  0, lesson: 0,
		},
		{
			name:    "missing file",
			mutate:  func(t *testing.T, b *Builder) { require.NoError(t, b.ClearLessonFile(0, 1)) },
			message: "Debe adjuntar un archivo en el módulo 1, lección 2",
			module:  0, lesson: 1,
		},
		{
			name:    "no questions",
			mutate:  func(t *testing.T, b *Builder) { require.NoError(t, b.RemoveQuestion(0, 2, 0)) },
			message: "La lección 3 del módulo 1 debe tener al menos una pregunta",
			module:  0, lesson: 2,
		},
		{
			name:    "question text",
			mutate:  func(t *testing.T, b *Builder) { require.NoError(t, b.SetQuestionText(0, 2, 0, "")) },
			message: "La pregunta 1 del módulo 1, lección 3 está vacía",
			module:  0, lesson: 2,
		},
		{
			name:    "no correct answer",
			mutate:  func(t *testing.T, b *Builder) { require.NoError(t, b.SetAnswerCorrect(0, 2, 0, 0, false)) },
			message: "La pregunta 1 del módulo 1, lección 3 debe tener una respuesta correcta",
			module:  0, lesson: 2,
		},
		{
			name:    "empty answer",
			mutate:  func(t *testing.T, b *Builder) { require.NoError(t, b.SetAnswerText(0, 2, 0, 1, " ")) },
			message: "Hay respuestas vacías en la pregunta 1 del módulo 1, lección 3",
			module:  0, lesson: 2,
		},
		{
			name:    "collaborators with a quiz",
			mutate:  func(t *testing.T, b *Builder) { b.SetCollaborators(nil) },
			message: "Debe cargar al menos un colaborador para esta capacitación",
			module:  -1, lesson: -1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := readyDraft(t, nil)
			tt.mutate(t, b)
			err := b.Validate()
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.message, verr.Message)
			assert.Equal(t, tt.module, verr.Module)
			assert.Equal(t, tt.lesson, verr.Lesson)
		})
	}
}

func TestValidateCollaboratorsOnlyForQuizzes(t *testing.T) {
	b := readyDraft(t, nil)
	require.NoError(t, b.RemoveLesson(0, 2))
	b.SetCollaborators(nil)
	assert.NoError(t, b.Validate())
}
