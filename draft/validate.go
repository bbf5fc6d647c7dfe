package draft

import "strings"

// Validate checks the draft without touching the network. It stops at the
// first problem and returns it as a *ValidationError.
func (b *Builder) Validate() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := validate(b.doc); err != nil {
		return err
	}
	return nil
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func validate(t *Training) *ValidationError {
	if blank(t.Title) {
		return invalid("El título de la capacitación es obligatorio")
	}
	if blank(t.Description) {
		return invalid("La descripción es obligatoria")
	}
	if t.StartDate == "" || t.EndDate == "" {
		return invalid("Las fechas de inicio y fin son obligatorias")
	}
	start, err := parseDay(t.StartDate)
	if err != nil {
		return invalid("La fecha de inicio no es válida")
	}
	end, err := parseDay(t.EndDate)
	if err != nil {
		return invalid("La fecha de fin no es válida")
	}
	if end.Before(start) {
		return invalid("La fecha de fin no puede ser anterior a la fecha de inicio")
	}
	if len(t.Modules) == 0 {
		return invalid("Debe agregar al menos un módulo")
	}
	for i, m := range t.Modules {
		if len(m.Lessons) == 0 {
			return invalid("El módulo %d (%q) debe tener al menos una lección", i+1, m.Name).at(i, -1, -1, -1)
		}
	}

	hasForm := false
	for i, m := range t.Modules {
		for j, l := range m.Lessons {
			if err := validateLesson(i, j, l); err != nil {
				return err
			}
			hasForm = hasForm || l.Kind == LessonForm
		}
	}
	if hasForm && len(t.Collaborators) == 0 {
		return invalid("Debe cargar al menos un colaborador para esta capacitación")
	}
	return nil
}

func validateLesson(m, l int, les *Lesson) *ValidationError {
	if blank(les.Title) {
		return invalid("El título es obligatorio en el módulo %d, lección %d", m+1, l+1).at(m, l, -1, -1)
	}
	switch les.Kind {
	case LessonVideo:
		if blank(les.VideoURL) {
			return invalid("La URL del video es obligatoria en el módulo %d, lección %d", m+1, l+1).at(m, l, -1, -1)
		}
	case LessonImage, LessonPDF:
		if les.Media.Empty() {
			return invalid("Debe adjuntar un archivo en el módulo %d, lección %d", m+1, l+1).at(m, l, -1, -1)
		}
	case LessonForm:
		if len(les.Questions) == 0 {
			return invalid("La lección %d del módulo %d debe tener al menos una pregunta", l+1, m+1).at(m, l, -1, -1)
		}
		for k, q := range les.Questions {
			if blank(q.Text) {
				return invalid("La pregunta %d del módulo %d, lección %d está vacía", k+1, m+1, l+1).at(m, l, k, -1)
			}
			correct := false
			for _, a := range q.Answers {
				correct = correct || a.Correct
			}
			if !correct {
				return invalid("La pregunta %d del módulo %d, lección %d debe tener una respuesta correcta", k+1, m+1, l+1).at(m, l, k, -1)
			}
			for n, a := range q.Answers {
				if blank(a.Text) {
					return invalid("Hay respuestas vacías en la pregunta %d del módulo %d, lección %d", k+1, m+1, l+1).at(m, l, k, n)
				}
			}
		}
	default:
		return invalid("El tipo de contenido es obligatorio en el módulo %d, lección %d", m+1, l+1).at(m, l, -1, -1)
	}
	return nil
}
