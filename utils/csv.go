package utils

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"capacitaciones/models"
)

// ErrNoCedulaColumn is returned for CSV files without a cedula header.
var ErrNoCedulaColumn = errors.New(`el archivo debe tener una columna "cedula"`)

var columnAliases = map[string]string{
	"cedula":         "cedula",
	"cédula":         "cedula",
	"cc":             "cedula",
	"cc_colaborador": "cedula",
	"nombre":         "nombre",
	"nombres":        "nombre",
	"apellido":       "apellido",
	"apellidos":      "apellido",
	"email":          "email",
	"correo":         "email",
	"cargo":          "cargo",
}

// readTable parses a ';' or ',' separated file with a header row and returns
// each row keyed by canonical column name.
func readTable(r io.Reader) ([]map[string]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	header, _, _ := bytes.Cut(data, []byte("\n"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = ','
	if bytes.Count(header, []byte(";")) > bytes.Count(header, []byte(",")) {
		cr.Comma = ';'
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("leyendo CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoCedulaColumn
	}

	cols := make([]string, len(records[0]))
	hasCedula := false
	for i, h := range records[0] {
		cols[i] = columnAliases[strings.ToLower(strings.TrimSpace(h))]
		hasCedula = hasCedula || cols[i] == "cedula"
	}
	if !hasCedula {
		return nil, ErrNoCedulaColumn
	}

	var rows []map[string]string
	for _, rec := range records[1:] {
		row := make(map[string]string)
		for i, v := range rec {
			if i < len(cols) && cols[i] != "" {
				row[cols[i]] = strings.TrimSpace(v)
			}
		}
		if row["cedula"] != "" {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// ParseCedulas returns the distinct national ids of a collaborator CSV in
// file order.
func ParseCedulas(r io.Reader) ([]string, error) {
	rows, err := readTable(r)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(rows))
	var out []string
	for _, row := range rows {
		if c := row["cedula"]; !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out, nil
}

// ParseCollaborators reads a collaborator roster used to seed the database.
func ParseCollaborators(r io.Reader) ([]models.Collaborator, error) {
	rows, err := readTable(r)
	if err != nil {
		return nil, err
	}
	out := make([]models.Collaborator, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.Collaborator{
			Cedula:    row["cedula"],
			FirstName: row["nombre"],
			LastName:  row["apellido"],
			Email:     row["email"],
			Cargo:     row["cargo"],
		})
	}
	return out, nil
}
