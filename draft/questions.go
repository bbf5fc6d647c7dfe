package draft

import (
	"fmt"

	"capacitaciones/api"
)

// DeriveKind is the single rule for question kinds: more than one correct
// answer makes a multi-choice question.
func DeriveKind(answers []*Answer) QuestionKind {
	n := 0
	for _, a := range answers {
		if a.Correct {
			n++
		}
	}
	if n > 1 {
		return MultiChoice
	}
	return SingleChoice
}

// AddQuestion appends a multi-choice question with one empty answer to a
// form lesson.
func (b *Builder) AddQuestion(m, l int) (int, error) {
	var idx int
	err := b.withLesson(m, l, func(les *Lesson) error {
		if les.Kind != LessonForm {
			return fmt.Errorf("%s: solo las lecciones de formulario tienen preguntas", lessonSlot(m, l))
		}
		q := &Question{Key: b.key(), Kind: MultiChoice, Answers: []*Answer{{Key: b.key()}}}
		idx = len(les.Questions)
		les.Questions = append(les.Questions, q)
		return nil
	})
	return idx, err
}

func (b *Builder) RemoveQuestion(m, l, q int) error {
	return b.edit(func() error {
		qs, err := b.question(m, l, q)
		if err != nil {
			return err
		}
		b.dropQuestion(qs)
		les := b.doc.Modules[m].Lessons[l]
		les.Questions = append(les.Questions[:q], les.Questions[q+1:]...)
		return nil
	})
}

func (b *Builder) SetQuestionText(m, l, q int, text string) error {
	return b.withQuestion(m, l, q, func(qs *Question) error { qs.Text = text; return nil })
}

// SetQuestionKind records an explicit kind. Choosing single-choice keeps
// only the first correct answer. The next correctness change re-derives
// the kind.
func (b *Builder) SetQuestionKind(m, l, q int, kind QuestionKind) error {
	if !kind.Valid() {
		return fmt.Errorf("tipo de pregunta desconocido: %q", kind)
	}
	return b.withQuestion(m, l, q, func(qs *Question) error {
		if kind == SingleChoice {
			seen := false
			for _, a := range qs.Answers {
				if a.Correct && seen {
					a.Correct = false
				}
				seen = seen || a.Correct
			}
		}
		qs.Kind = kind
		return nil
	})
}

func (b *Builder) AttachQuestionMedia(m, l, q int, f *PendingFile) error {
	return b.withQuestion(m, l, q, func(qs *Question) error {
		return b.attach(questionSlot(m, l, q), api.PurposeQuestionImage, &qs.Media, f)
	})
}

// SetQuestionMediaURL points the question image at a remote URL.
func (b *Builder) SetQuestionMediaURL(m, l, q int, url string) error {
	return b.withQuestion(m, l, q, func(qs *Question) error {
		b.release(&qs.Media)
		qs.Media.URL = url
		return nil
	})
}

func (b *Builder) ClearQuestionMedia(m, l, q int) error {
	return b.withQuestion(m, l, q, func(qs *Question) error {
		b.release(&qs.Media)
		qs.Media.URL = ""
		return nil
	})
}

func (b *Builder) AddAnswer(m, l, q int) (int, error) {
	var idx int
	err := b.withQuestion(m, l, q, func(qs *Question) error {
		idx = len(qs.Answers)
		qs.Answers = append(qs.Answers, &Answer{Key: b.key()})
		return nil
	})
	return idx, err
}

// RemoveAnswer deletes an answer and re-derives the question kind.
func (b *Builder) RemoveAnswer(m, l, q, a int) error {
	return b.edit(func() error {
		qs, ans, err := b.answer(m, l, q, a)
		if err != nil {
			return err
		}
		b.release(&ans.Media)
		qs.Answers = append(qs.Answers[:a], qs.Answers[a+1:]...)
		qs.Kind = DeriveKind(qs.Answers)
		return nil
	})
}

func (b *Builder) SetAnswerText(m, l, q, a int, text string) error {
	return b.withAnswer(m, l, q, a, func(_ *Question, ans *Answer) error { ans.Text = text; return nil })
}

// ToggleAnswer behaves like a radio button on single-choice questions and
// like a checkbox on multi-choice ones, then re-derives the kind.
func (b *Builder) ToggleAnswer(m, l, q, a int) error {
	return b.withAnswer(m, l, q, a, func(qs *Question, ans *Answer) error {
		if qs.Kind == SingleChoice {
			for _, other := range qs.Answers {
				other.Correct = other == ans
			}
		} else {
			ans.Correct = !ans.Correct
		}
		qs.Kind = DeriveKind(qs.Answers)
		return nil
	})
}

// SetAnswerCorrect assigns correctness directly, then re-derives the kind.
func (b *Builder) SetAnswerCorrect(m, l, q, a int, correct bool) error {
	return b.withAnswer(m, l, q, a, func(qs *Question, ans *Answer) error {
		ans.Correct = correct
		qs.Kind = DeriveKind(qs.Answers)
		return nil
	})
}

func (b *Builder) AttachAnswerMedia(m, l, q, a int, f *PendingFile) error {
	return b.withAnswer(m, l, q, a, func(_ *Question, ans *Answer) error {
		return b.attach(answerSlot(m, l, q, a), api.PurposeAnswerImage, &ans.Media, f)
	})
}

func (b *Builder) SetAnswerMediaURL(m, l, q, a int, url string) error {
	return b.withAnswer(m, l, q, a, func(_ *Question, ans *Answer) error {
		b.release(&ans.Media)
		ans.Media.URL = url
		return nil
	})
}

func (b *Builder) ClearAnswerMedia(m, l, q, a int) error {
	return b.withAnswer(m, l, q, a, func(_ *Question, ans *Answer) error {
		b.release(&ans.Media)
		ans.Media.URL = ""
		return nil
	})
}

func (b *Builder) withQuestion(m, l, q int, fn func(*Question) error) error {
	return b.edit(func() error {
		qs, err := b.question(m, l, q)
		if err != nil {
			return err
		}
		return fn(qs)
	})
}

func (b *Builder) withAnswer(m, l, q, a int, fn func(*Question, *Answer) error) error {
	return b.edit(func() error {
		qs, ans, err := b.answer(m, l, q, a)
		if err != nil {
			return err
		}
		return fn(qs, ans)
	})
}
