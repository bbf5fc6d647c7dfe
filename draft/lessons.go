package draft

import (
	"fmt"

	"capacitaciones/api"
)

// AddLesson appends a video lesson to module m and expands it.
func (b *Builder) AddLesson(m int) (int, error) {
	var idx int
	err := b.edit(func() error {
		mod, err := b.module(m)
		if err != nil {
			return err
		}
		l := &Lesson{Key: b.key(), Kind: LessonVideo}
		idx = len(mod.Lessons)
		mod.Lessons = append(mod.Lessons, l)
		b.lessonOpen[l.Key] = true
		return nil
	})
	return idx, err
}

func (b *Builder) RemoveLesson(m, l int) error {
	return b.edit(func() error {
		les, err := b.lesson(m, l)
		if err != nil {
			return err
		}
		b.dropLesson(les)
		mod := b.doc.Modules[m]
		mod.Lessons = append(mod.Lessons[:l], mod.Lessons[l+1:]...)
		return nil
	})
}

func (b *Builder) SetLessonTitle(m, l int, title string) error {
	return b.withLesson(m, l, func(les *Lesson) error { les.Title = title; return nil })
}

func (b *Builder) SetLessonDescription(m, l int, desc string) error {
	return b.withLesson(m, l, func(les *Lesson) error { les.Description = desc; return nil })
}

func (b *Builder) SetLessonDuration(m, l int, duration string) error {
	return b.withLesson(m, l, func(les *Lesson) error { les.Duration = duration; return nil })
}

// SetLessonKind switches the lesson kind and drops whatever payload the new
// kind cannot carry. Pending files dropped this way lose their preview.
func (b *Builder) SetLessonKind(m, l int, kind LessonKind) error {
	if !kind.Valid() {
		return fmt.Errorf("tipo de lección desconocido: %q", kind)
	}
	return b.withLesson(m, l, func(les *Lesson) error {
		if les.Kind == kind {
			return nil
		}
		if kind != LessonVideo {
			les.VideoURL = ""
		}
		// image and pdf have different whitelists, so media never survives
		// a kind change.
		b.release(&les.Media)
		les.Media.URL = ""
		if kind != LessonForm {
			for _, q := range les.Questions {
				b.dropQuestion(q)
			}
			les.Questions = nil
		}
		les.Kind = kind
		return nil
	})
}

func (b *Builder) SetLessonVideoURL(m, l int, url string) error {
	return b.withLesson(m, l, func(les *Lesson) error {
		if les.Kind != LessonVideo {
			return fmt.Errorf("%s: la lección no es de video", lessonSlot(m, l))
		}
		les.VideoURL = url
		return nil
	})
}

// SetLessonMediaURL sets a remote URL on an image or pdf lesson, dropping a
// pending file.
func (b *Builder) SetLessonMediaURL(m, l int, url string) error {
	return b.withLesson(m, l, func(les *Lesson) error {
		if _, err := lessonPurpose(m, l, les); err != nil {
			return err
		}
		b.release(&les.Media)
		les.Media.URL = url
		return nil
	})
}

func (b *Builder) AttachLessonFile(m, l int, f *PendingFile) error {
	return b.withLesson(m, l, func(les *Lesson) error {
		purpose, err := lessonPurpose(m, l, les)
		if err != nil {
			return &AttachmentRejectedError{Slot: lessonSlot(m, l), File: fileName(f), Reason: err.Error()}
		}
		return b.attach(lessonSlot(m, l), purpose, &les.Media, f)
	})
}

func (b *Builder) ClearLessonFile(m, l int) error {
	return b.withLesson(m, l, func(les *Lesson) error {
		b.release(&les.Media)
		les.Media.URL = ""
		return nil
	})
}

func (b *Builder) withLesson(m, l int, fn func(*Lesson) error) error {
	return b.edit(func() error {
		les, err := b.lesson(m, l)
		if err != nil {
			return err
		}
		return fn(les)
	})
}

func lessonPurpose(m, l int, les *Lesson) (api.Purpose, error) {
	switch les.Kind {
	case LessonImage:
		return api.PurposeLessonImage, nil
	case LessonPDF:
		return api.PurposeLessonPDF, nil
	}
	return "", fmt.Errorf("%s: la lección de tipo %s no admite archivos", lessonSlot(m, l), les.Kind)
}

func fileName(f *PendingFile) string {
	if f == nil {
		return ""
	}
	return f.Name
}
