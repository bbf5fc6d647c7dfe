package utils

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capacitaciones/models"
)

func TestParseCedulas(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"semicolon", "nombre;cedula\nAna;1010\nLuis;2020\n", []string{"1010", "2020"}},
		{"comma with bom", "\xef\xbb\xbfCédula,Nombres\n1010,Ana\n", []string{"1010"}},
		{"duplicates and blanks", "cc\n1010\n\n1010\n3030\n", []string{"1010", "3030"}},
		{"alias column", "cc_colaborador;cargo\n 4040 ;Operario\n", []string{"4040"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCedulas(strings.NewReader(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCedulasNeedsColumn(t *testing.T) {
	_, err := ParseCedulas(strings.NewReader("nombre,correo\nAna,a@x.co\n"))
	assert.ErrorIs(t, err, ErrNoCedulaColumn)

	_, err = ParseCedulas(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoCedulaColumn)
}

func TestParseCollaborators(t *testing.T) {
	in := "cedula;nombres;apellidos;correo;cargo;sede\n1010;Ana;Gómez;ana@x.co;Supervisora;Norte\n2020;Luis\n"
	got, err := ParseCollaborators(strings.NewReader(in))
	require.NoError(t, err)

	want := []models.Collaborator{
		{Cedula: "1010", FirstName: "Ana", LastName: "Gómez", Email: "ana@x.co", Cargo: "Supervisora"},
		{Cedula: "2020", FirstName: "Luis"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("collaborators mismatch (-want +got):\n%s", diff)
	}
}
