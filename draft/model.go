package draft

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"capacitaciones/api"
)

// LessonKind selects which payload a lesson carries.
type LessonKind string

const (
	LessonVideo LessonKind = "video"
	LessonImage LessonKind = "imagen"
	LessonPDF   LessonKind = "pdf"
	LessonForm  LessonKind = "formulario"
)

func (k LessonKind) Valid() bool {
	switch k {
	case LessonVideo, LessonImage, LessonPDF, LessonForm:
		return true
	}
	return false
}

// QuestionKind is derived from the number of correct answers.
type QuestionKind string

const (
	SingleChoice QuestionKind = "opcion_unica"
	MultiChoice  QuestionKind = "opcion_multiple"
)

func (k QuestionKind) Valid() bool { return k == SingleChoice || k == MultiChoice }

// TrainingTypes is the fixed category list; the first entry is the default.
var TrainingTypes = []string{
	"CONOCIMIENTOS ORGANIZACIONALES",
	"CONOCIMIENTOS TÉCNICOS",
	"HABILIDADES BLANDAS",
	"HABILIDADES TECNICAS",
	"SOCIAL",
	"LEGAL",
}

func validType(t string) bool {
	for _, v := range TrainingTypes {
		if v == t {
			return true
		}
	}
	return false
}

// PendingFile is a local file chosen by the author and not yet uploaded.
// Its preview handle is only valid while the file is attached to a draft.
type PendingFile struct {
	Name    string
	MIME    string
	Data    []byte
	preview string
}

// NewPendingFile wraps in-memory bytes. An empty mime is sniffed from data.
func NewPendingFile(name, mime string, data []byte) *PendingFile {
	if mime == "" {
		mime = mimetype.Detect(data).String()
	}
	mime, _, _ = strings.Cut(mime, ";")
	return &PendingFile{Name: name, MIME: strings.TrimSpace(mime), Data: data}
}

// OpenPendingFile reads a file from disk.
func OpenPendingFile(path string) (*PendingFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewPendingFile(filepath.Base(path), "", data), nil
}

func (f *PendingFile) Size() int64 { return int64(len(f.Data)) }

// Preview returns the local preview handle, empty once released.
func (f *PendingFile) Preview() string { return f.preview }

// Media is either a remote URL or a pending file. At most one is set.
type Media struct {
	URL     string
	Pending *PendingFile
}

func (m Media) Empty() bool { return m.URL == "" && m.Pending == nil }

// Display returns what a preview would show: the pending file's handle when
// one is attached, the remote URL otherwise.
func (m Media) Display() string {
	if m.Pending != nil {
		return m.Pending.preview
	}
	return m.URL
}

type Answer struct {
	Key     uint64
	Text    string
	Correct bool
	Media   Media
}

type Question struct {
	Key     uint64
	Text    string
	Kind    QuestionKind
	Media   Media
	Answers []*Answer
}

// Lesson keeps the video URL apart from the image/pdf media; only the one
// matching Kind is sent.
type Lesson struct {
	Key         uint64
	Title       string
	Description string
	Duration    string
	Kind        LessonKind
	VideoURL    string
	Media       Media
	Questions   []*Question
}

type Module struct {
	Key     uint64
	Name    string
	Lessons []*Lesson
}

// Training is the authoring document. ID is zero until the training exists
// on the backend.
type Training struct {
	ID            int
	Title         string
	Description   string
	Type          string
	StartDate     string
	EndDate       string
	Image         Media
	Modules       []*Module
	Collaborators []int
}

func (t *Training) clone() *Training {
	c := *t
	c.Collaborators = append([]int(nil), t.Collaborators...)
	c.Modules = make([]*Module, len(t.Modules))
	for i, m := range t.Modules {
		mc := *m
		mc.Lessons = make([]*Lesson, len(m.Lessons))
		for j, l := range m.Lessons {
			lc := *l
			lc.Questions = make([]*Question, len(l.Questions))
			for k, q := range l.Questions {
				qc := *q
				qc.Answers = make([]*Answer, len(q.Answers))
				for n, a := range q.Answers {
					ac := *a
					qc.Answers[n] = &ac
				}
				lc.Questions[k] = &qc
			}
			mc.Lessons[j] = &lc
		}
		c.Modules[i] = &mc
	}
	return &c
}

// eachMedia visits every media slot that the lesson kinds make relevant, in
// document order.
func (t *Training) eachMedia(fn func(slot string, purpose api.Purpose, m *Media)) {
	fn(trainingSlot, api.PurposeTrainingImage, &t.Image)
	for i, m := range t.Modules {
		for j, l := range m.Lessons {
			switch l.Kind {
			case LessonImage:
				fn(lessonSlot(i, j), api.PurposeLessonImage, &l.Media)
			case LessonPDF:
				fn(lessonSlot(i, j), api.PurposeLessonPDF, &l.Media)
			case LessonForm:
				for k, q := range l.Questions {
					fn(questionSlot(i, j, k), api.PurposeQuestionImage, &q.Media)
					for n, a := range q.Answers {
						fn(answerSlot(i, j, k, n), api.PurposeAnswerImage, &a.Media)
					}
				}
			}
		}
	}
}

const trainingSlot = "imagen de la capacitación"

func lessonSlot(m, l int) string {
	return fmt.Sprintf("módulo %d, lección %d", m+1, l+1)
}

func questionSlot(m, l, q int) string {
	return fmt.Sprintf("pregunta %d del módulo %d, lección %d", q+1, m+1, l+1)
}

func answerSlot(m, l, q, a int) string {
	return fmt.Sprintf("respuesta %d de la pregunta %d del módulo %d, lección %d", a+1, q+1, m+1, l+1)
}
