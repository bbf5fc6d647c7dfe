package draft

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/now"
	"go.uber.org/zap"

	"capacitaciones/api"
)

// Builder owns one training draft: the document, its UI expansion state,
// the live preview handles of pending files and the submit state machine.
// All methods are safe for concurrent use.
type Builder struct {
	mu       sync.Mutex
	backend  Backend
	log      *zap.Logger
	doc      *Training
	original []int
	nextKey  uint64

	moduleOpen map[uint64]bool
	lessonOpen map[uint64]bool
	previews   map[string]*PendingFile

	state      State
	lastErr    error
	submitting bool
}

// New returns an empty create-mode draft.
func New(backend Backend, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		backend:    backend,
		log:        logger,
		doc:        &Training{Type: TrainingTypes[0]},
		moduleOpen: map[uint64]bool{},
		lessonOpen: map[uint64]bool{},
		previews:   map[string]*PendingFile{},
	}
}

// Training returns a copy of the current document. Pending files are
// shared with the draft and must not be modified.
func (b *Builder) Training() *Training {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.doc.clone()
}

// EditMode reports whether the draft targets an existing training.
func (b *Builder) EditMode() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.doc.ID != 0
}

// OriginalCollaborators is the collaborator set last known to the backend.
func (b *Builder) OriginalCollaborators() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]int(nil), b.original...)
}

// LivePreviews counts preview handles not yet released.
func (b *Builder) LivePreviews() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.previews)
}

func (b *Builder) key() uint64 {
	b.nextKey++
	return b.nextKey
}

func (b *Builder) edit(fn func() error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return fn()
}

func (b *Builder) SetTitle(title string) {
	_ = b.edit(func() error { b.doc.Title = title; return nil })
}

func (b *Builder) SetDescription(desc string) {
	_ = b.edit(func() error { b.doc.Description = desc; return nil })
}

// SetType accepts only one of TrainingTypes.
func (b *Builder) SetType(t string) error {
	if !validType(t) {
		return fmt.Errorf("tipo de capacitación desconocido: %q", t)
	}
	return b.edit(func() error { b.doc.Type = t; return nil })
}

// SetStartDate accepts YYYY-MM-DD or a timestamp whose date part is used.
// An empty value clears the date.
func (b *Builder) SetStartDate(date string) error {
	d, err := normalizeDate(date)
	if err != nil {
		return err
	}
	return b.edit(func() error { b.doc.StartDate = d; return nil })
}

func (b *Builder) SetEndDate(date string) error {
	d, err := normalizeDate(date)
	if err != nil {
		return err
	}
	return b.edit(func() error { b.doc.EndDate = d; return nil })
}

var dayParser = &now.Config{TimeLocation: time.UTC, TimeFormats: []string{dateLayout}}

const dateLayout = "2006-01-02"

func parseDay(date string) (time.Time, error) {
	t, err := dayParser.Parse(date)
	if err != nil {
		return time.Time{}, fmt.Errorf("fecha inválida %q: %w", date, err)
	}
	return now.With(t).BeginningOfDay(), nil
}

func normalizeDate(date string) (string, error) {
	if date == "" {
		return "", nil
	}
	day, _, _ := strings.Cut(date, "T")
	t, err := parseDay(day)
	if err != nil {
		return "", err
	}
	return t.Format(dateLayout), nil
}

// AttachTrainingImage replaces the cover image with a pending file.
func (b *Builder) AttachTrainingImage(f *PendingFile) error {
	return b.edit(func() error {
		return b.attach(trainingSlot, api.PurposeTrainingImage, &b.doc.Image, f)
	})
}

// SetTrainingImageURL points the cover at a remote URL, dropping any
// pending file.
func (b *Builder) SetTrainingImageURL(url string) {
	_ = b.edit(func() error {
		b.release(&b.doc.Image)
		b.doc.Image.URL = url
		return nil
	})
}

func (b *Builder) ClearTrainingImage() {
	_ = b.edit(func() error {
		b.release(&b.doc.Image)
		b.doc.Image.URL = ""
		return nil
	})
}

// AddModule appends a module. An empty name becomes "<n>. Módulo".
func (b *Builder) AddModule(name string) int {
	var idx int
	_ = b.edit(func() error {
		idx = len(b.doc.Modules)
		if name == "" {
			name = fmt.Sprintf("%d. Módulo", idx+1)
		}
		b.doc.Modules = append(b.doc.Modules, &Module{Key: b.key(), Name: name})
		return nil
	})
	return idx
}

// RemoveModule deletes module i together with its lessons. Expansion state
// of later modules moves down with them.
func (b *Builder) RemoveModule(i int) error {
	return b.edit(func() error {
		m, err := b.module(i)
		if err != nil {
			return err
		}
		for _, l := range m.Lessons {
			b.dropLesson(l)
		}
		delete(b.moduleOpen, m.Key)
		b.doc.Modules = append(b.doc.Modules[:i], b.doc.Modules[i+1:]...)
		return nil
	})
}

func (b *Builder) RenameModule(i int, name string) error {
	return b.edit(func() error {
		m, err := b.module(i)
		if err != nil {
			return err
		}
		m.Name = name
		return nil
	})
}

func (b *Builder) SetModuleExpanded(i int, open bool) error {
	return b.edit(func() error {
		m, err := b.module(i)
		if err != nil {
			return err
		}
		b.moduleOpen[m.Key] = open
		return nil
	})
}

func (b *Builder) ModuleExpanded(i int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, err := b.module(i)
	return err == nil && b.moduleOpen[m.Key]
}

// ModuleExpansion reports the explicit expansion flags by current position.
func (b *Builder) ModuleExpansion() map[int]bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[int]bool)
	for i, m := range b.doc.Modules {
		if open, ok := b.moduleOpen[m.Key]; ok {
			out[i] = open
		}
	}
	return out
}

func (b *Builder) SetLessonExpanded(m, l int, open bool) error {
	return b.edit(func() error {
		les, err := b.lesson(m, l)
		if err != nil {
			return err
		}
		b.lessonOpen[les.Key] = open
		return nil
	})
}

func (b *Builder) LessonExpanded(m, l int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	les, err := b.lesson(m, l)
	return err == nil && b.lessonOpen[les.Key]
}

func (b *Builder) module(i int) (*Module, error) {
	if i < 0 || i >= len(b.doc.Modules) {
		return nil, fmt.Errorf("módulo %d: %w", i+1, ErrPosition)
	}
	return b.doc.Modules[i], nil
}

func (b *Builder) lesson(m, l int) (*Lesson, error) {
	mod, err := b.module(m)
	if err != nil {
		return nil, err
	}
	if l < 0 || l >= len(mod.Lessons) {
		return nil, fmt.Errorf("módulo %d, lección %d: %w", m+1, l+1, ErrPosition)
	}
	return mod.Lessons[l], nil
}

func (b *Builder) question(m, l, q int) (*Question, error) {
	les, err := b.lesson(m, l)
	if err != nil {
		return nil, err
	}
	if q < 0 || q >= len(les.Questions) {
		return nil, fmt.Errorf("pregunta %d del módulo %d, lección %d: %w", q+1, m+1, l+1, ErrPosition)
	}
	return les.Questions[q], nil
}

func (b *Builder) answer(m, l, q, a int) (*Question, *Answer, error) {
	qs, err := b.question(m, l, q)
	if err != nil {
		return nil, nil, err
	}
	if a < 0 || a >= len(qs.Answers) {
		return nil, nil, fmt.Errorf("respuesta %d de la pregunta %d: %w", a+1, q+1, ErrPosition)
	}
	return qs, qs.Answers[a], nil
}

// attach validates f for the slot and, only if it is accepted, swaps it in
// and hands out a preview handle.
func (b *Builder) attach(slot string, purpose api.Purpose, m *Media, f *PendingFile) error {
	if f == nil {
		return &AttachmentRejectedError{Slot: slot, Reason: "no se seleccionó ningún archivo"}
	}
	if f.preview != "" {
		return &AttachmentRejectedError{Slot: slot, File: f.Name, Reason: "el archivo ya está adjunto en otro lugar"}
	}
	if err := api.CheckAttachment(purpose, f.Name, f.MIME); err != nil {
		return &AttachmentRejectedError{Slot: slot, File: f.Name, Reason: err.Error()}
	}
	if f.Size() > api.MaxAttachmentBytes {
		return &AttachmentRejectedError{Slot: slot, File: f.Name, Reason: "el archivo supera los 5MB"}
	}
	b.release(m)
	f.preview = "blob:" + uuid.NewString()
	b.previews[f.preview] = f
	m.Pending = f
	m.URL = ""
	return nil
}

func (b *Builder) release(m *Media) {
	if f := m.Pending; f != nil {
		delete(b.previews, f.preview)
		f.preview = ""
	}
	m.Pending = nil
}

func (b *Builder) dropLesson(l *Lesson) {
	b.release(&l.Media)
	for _, q := range l.Questions {
		b.dropQuestion(q)
	}
	delete(b.lessonOpen, l.Key)
}

func (b *Builder) dropQuestion(q *Question) {
	b.release(&q.Media)
	for _, a := range q.Answers {
		b.release(&a.Media)
	}
}
