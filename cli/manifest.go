package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"capacitaciones/draft"
	"capacitaciones/utils"
)

// Manifest is the YAML form of a training for the push command. File
// references are paths relative to the manifest; http(s) URLs and /media/
// paths are taken as already uploaded.
type Manifest struct {
	ID            int              `yaml:"id,omitempty"`
	Title         string           `yaml:"titulo"`
	Description   string           `yaml:"descripcion"`
	Type          string           `yaml:"tipo"`
	StartDate     string           `yaml:"fecha_inicio"`
	EndDate       string           `yaml:"fecha_fin"`
	Image         string           `yaml:"imagen,omitempty"`
	Collaborators []int            `yaml:"colaboradores,omitempty"`
	Modules       []ManifestModule `yaml:"modulos"`

	dir string
}

type ManifestModule struct {
	Name    string           `yaml:"nombre"`
	Lessons []ManifestLesson `yaml:"lecciones"`
}

type ManifestLesson struct {
	Title       string             `yaml:"titulo"`
	Description string             `yaml:"descripcion,omitempty"`
	Duration    string             `yaml:"duracion,omitempty"`
	Kind        string             `yaml:"tipo"`
	URL         string             `yaml:"url,omitempty"`
	File        string             `yaml:"archivo,omitempty"`
	Questions   []ManifestQuestion `yaml:"preguntas,omitempty"`
}

type ManifestQuestion struct {
	Text    string           `yaml:"texto"`
	Kind    string           `yaml:"tipo,omitempty"`
	Image   string           `yaml:"imagen,omitempty"`
	Answers []ManifestAnswer `yaml:"respuestas,omitempty"`
}

type ManifestAnswer struct {
	Text    string `yaml:"texto"`
	Correct bool   `yaml:"correcta"`
	Image   string `yaml:"imagen,omitempty"`
}

// LoadManifest reads and decodes path. Unknown keys are rejected.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("manifiesto %s: %w", path, err)
	}
	m.dir = filepath.Dir(path)
	return &m, nil
}

// Apply writes the manifest into b. Modules always replace what b holds;
// an empty image or a missing collaborator list keeps the loaded value.
func (m *Manifest) Apply(b *draft.Builder) error {
	b.SetTitle(m.Title)
	b.SetDescription(m.Description)
	if m.Type != "" {
		if err := b.SetType(m.Type); err != nil {
			return err
		}
	}
	if err := b.SetStartDate(m.StartDate); err != nil {
		return fmt.Errorf("fecha_inicio: %w", err)
	}
	if err := b.SetEndDate(m.EndDate); err != nil {
		return fmt.Errorf("fecha_fin: %w", err)
	}
	err := m.media(m.Image,
		func(url string) error { b.SetTrainingImageURL(url); return nil },
		b.AttachTrainingImage)
	if err != nil {
		return fmt.Errorf("imagen: %w", err)
	}
	if m.Collaborators != nil {
		b.SetCollaborators(m.Collaborators)
	}

	for n := len(b.Training().Modules); n > 0; n-- {
		if err := b.RemoveModule(n - 1); err != nil {
			return err
		}
	}
	for i, mod := range m.Modules {
		mi := b.AddModule(mod.Name)
		for j, les := range mod.Lessons {
			if err := m.applyLesson(b, mi, les); err != nil {
				return fmt.Errorf("modulos[%d].lecciones[%d]: %w", i, j, err)
			}
		}
	}
	return nil
}

func (m *Manifest) applyLesson(b *draft.Builder, mi int, les ManifestLesson) error {
	li, err := b.AddLesson(mi)
	if err != nil {
		return err
	}
	kind := draft.LessonKind(les.Kind)
	if kind == "" {
		kind = draft.LessonVideo
	}
	if err := b.SetLessonKind(mi, li, kind); err != nil {
		return err
	}
	if err := b.SetLessonTitle(mi, li, les.Title); err != nil {
		return err
	}
	if err := b.SetLessonDescription(mi, li, les.Description); err != nil {
		return err
	}
	if err := b.SetLessonDuration(mi, li, les.Duration); err != nil {
		return err
	}

	switch kind {
	case draft.LessonVideo:
		return b.SetLessonVideoURL(mi, li, les.URL)
	case draft.LessonImage, draft.LessonPDF:
		ref := les.File
		if ref == "" {
			ref = les.URL
		}
		return m.media(ref,
			func(url string) error { return b.SetLessonMediaURL(mi, li, url) },
			func(f *draft.PendingFile) error { return b.AttachLessonFile(mi, li, f) })
	}

	for k, q := range les.Questions {
		if err := m.applyQuestion(b, mi, li, q); err != nil {
			return fmt.Errorf("preguntas[%d]: %w", k, err)
		}
	}
	return nil
}

func (m *Manifest) applyQuestion(b *draft.Builder, mi, li int, q ManifestQuestion) error {
	qi, err := b.AddQuestion(mi, li)
	if err != nil {
		return err
	}
	if err := b.SetQuestionText(mi, li, qi, q.Text); err != nil {
		return err
	}
	err = m.media(q.Image,
		func(url string) error { return b.SetQuestionMediaURL(mi, li, qi, url) },
		func(f *draft.PendingFile) error { return b.AttachQuestionMedia(mi, li, qi, f) })
	if err != nil {
		return err
	}

	// AddQuestion starts with one empty answer.
	for ai, ans := range q.Answers {
		if ai > 0 {
			if _, err := b.AddAnswer(mi, li, qi); err != nil {
				return err
			}
		}
		if err := b.SetAnswerText(mi, li, qi, ai, ans.Text); err != nil {
			return err
		}
		if err := b.SetAnswerCorrect(mi, li, qi, ai, ans.Correct); err != nil {
			return err
		}
		err := m.media(ans.Image,
			func(url string) error { return b.SetAnswerMediaURL(mi, li, qi, ai, url) },
			func(f *draft.PendingFile) error { return b.AttachAnswerMedia(mi, li, qi, ai, f) })
		if err != nil {
			return fmt.Errorf("respuestas[%d]: %w", ai, err)
		}
	}
	if q.Kind != "" {
		kind := draft.QuestionKind(q.Kind)
		if !kind.Valid() {
			return fmt.Errorf("tipo de pregunta desconocido %q", q.Kind)
		}
		return b.SetQuestionKind(mi, li, qi, kind)
	}
	return nil
}

// ManifestFromTraining renders a document back into manifest form. Pending
// files are written by name.
func ManifestFromTraining(t *draft.Training) *Manifest {
	m := &Manifest{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Type:          t.Type,
		StartDate:     t.StartDate,
		EndDate:       t.EndDate,
		Image:         mediaRef(t.Image),
		Collaborators: t.Collaborators,
	}
	for _, mod := range t.Modules {
		mm := ManifestModule{Name: mod.Name}
		for _, les := range mod.Lessons {
			ml := ManifestLesson{
				Title:       les.Title,
				Description: les.Description,
				Duration:    les.Duration,
				Kind:        string(les.Kind),
			}
			switch les.Kind {
			case draft.LessonVideo:
				ml.URL = les.VideoURL
			case draft.LessonImage, draft.LessonPDF:
				ml.URL = mediaRef(les.Media)
			}
			for _, q := range les.Questions {
				mq := ManifestQuestion{Text: q.Text, Kind: string(q.Kind), Image: mediaRef(q.Media)}
				for _, a := range q.Answers {
					mq.Answers = append(mq.Answers, ManifestAnswer{Text: a.Text, Correct: a.Correct, Image: mediaRef(a.Media)})
				}
				ml.Questions = append(ml.Questions, mq)
			}
			mm.Lessons = append(mm.Lessons, ml)
		}
		m.Modules = append(m.Modules, mm)
	}
	return m
}

func mediaRef(m draft.Media) string {
	if m.Pending != nil {
		return m.Pending.Name
	}
	return m.URL
}

func (m *Manifest) media(ref string, setURL func(string) error, attach func(*draft.PendingFile) error) error {
	if ref == "" {
		return nil
	}
	if isRemote(ref) {
		return setURL(ref)
	}
	path := ref
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.dir, path)
	}
	f, err := draft.OpenPendingFile(path)
	if err != nil {
		return err
	}
	return attach(f)
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") ||
		strings.HasPrefix(ref, utils.MediaPrefix)
}
