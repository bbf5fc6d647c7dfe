package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lessonForm struct {
	Title string `json:"titulo" validate:"required"`
	Kind  string `json:"tipo" validate:"oneof=video pdf"`
}

type trainingForm struct {
	Title   string       `json:"titulo" validate:"required"`
	Email   string       `json:"email" validate:"omitempty,email"`
	Start   string       `json:"fecha_inicio" validate:"required,fecha"`
	Lessons []lessonForm `json:"lecciones" validate:"min=1,dive"`
}

func TestValidateStruct(t *testing.T) {
	ok := trainingForm{Title: "x", Start: "2024-03-01", Lessons: []lessonForm{{Title: "a", Kind: "video"}}}
	assert.Nil(t, ValidateStruct(&ok))

	bad := trainingForm{Email: "nope", Start: "01/03/2024", Lessons: []lessonForm{{Kind: "audio"}}}
	assert.Equal(t, map[string]string{
		"titulo":              "es obligatorio",
		"email":               "no es un correo válido",
		"fecha_inicio":        "no es una fecha válida",
		"lecciones[0].titulo": "es obligatorio",
		"lecciones[0].tipo":   "debe ser uno de: video pdf",
	}, ValidateStruct(&bad))

	empty := trainingForm{Title: "x", Start: "2024-03-01"}
	assert.Equal(t, map[string]string{"lecciones": "debe tener al menos 1 elemento(s)"}, ValidateStruct(&empty))
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-03-01T08:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), got)

	got, err = ParseDate("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("marzo")
	assert.Error(t, err)
}
