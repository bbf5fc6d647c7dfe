package draft

import (
	"time"

	"capacitaciones/api"
)

// Trainings run from 08:00 on the start day to 18:00 on the end day (UTC).
const (
	startHour = 8 * time.Hour
	endHour   = 18 * time.Hour
)

func dayBound(date string, offset time.Duration) string {
	t, err := parseDay(date)
	if err != nil {
		return date
	}
	return t.Add(offset).Format(time.RFC3339)
}

// payload renders a snapshot whose media has been resolved to URLs.
func payload(t *Training) *api.TrainingPayload {
	p := &api.TrainingPayload{
		Title:       t.Title,
		Description: t.Description,
		Type:        t.Type,
		Image:       t.Image.URL,
		StartDate:   dayBound(t.StartDate, startHour),
		EndDate:     dayBound(t.EndDate, endHour),
		Modules:     make([]api.Module, 0, len(t.Modules)),
	}
	if len(t.Collaborators) > 0 {
		p.Collaborators = append([]int(nil), t.Collaborators...)
	}
	for _, m := range t.Modules {
		wm := api.Module{Name: m.Name, Lessons: make([]api.Lesson, 0, len(m.Lessons))}
		for _, l := range m.Lessons {
			wl := api.Lesson{
				Title:       l.Title,
				Description: l.Description,
				Duration:    l.Duration,
				Kind:        string(l.Kind),
				Questions:   []api.Question{},
			}
			switch l.Kind {
			case LessonVideo:
				wl.URL = l.VideoURL
			case LessonImage, LessonPDF:
				wl.URL = l.Media.URL
			case LessonForm:
				for _, q := range l.Questions {
					wq := api.Question{Text: q.Text, Kind: string(q.Kind), MediaURL: q.Media.URL, Answers: make([]api.Answer, 0, len(q.Answers))}
					for _, a := range q.Answers {
						wq.Answers = append(wq.Answers, api.Answer{Text: a.Text, Correct: api.Flag(a.Correct), ImageURL: a.Media.URL})
					}
					wl.Questions = append(wl.Questions, wq)
				}
			}
			wm.Lessons = append(wm.Lessons, wl)
		}
		p.Modules = append(p.Modules, wm)
	}
	return p
}

// hydrate builds an edit-mode document from a fetched training.
func (b *Builder) hydrate(d *api.TrainingDetail) {
	t := &Training{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Type:        d.Type,
		Image:       Media{URL: d.Image},
	}
	if !validType(t.Type) {
		b.log.Sugar().Warnf("training %d has unknown type %q", d.ID, d.Type)
	}
	t.StartDate, _ = normalizeDate(d.StartDate)
	t.EndDate, _ = normalizeDate(d.EndDate)

	for _, wm := range d.Modules {
		m := &Module{Key: b.key(), Name: wm.Name}
		for _, wl := range wm.Lessons {
			l := &Lesson{
				Key:         b.key(),
				Title:       wl.Title,
				Description: wl.Description,
				Duration:    wl.Duration,
				Kind:        LessonKind(wl.Kind),
			}
			switch l.Kind {
			case LessonVideo:
				l.VideoURL = wl.URL
			case LessonImage, LessonPDF:
				l.Media.URL = wl.URL
			case LessonForm:
				for _, wq := range wl.Questions {
					q := &Question{Key: b.key(), Text: wq.Text, Media: Media{URL: wq.MediaURL}}
					for _, wa := range wq.Answers {
						q.Answers = append(q.Answers, &Answer{Key: b.key(), Text: wa.Text, Correct: bool(wa.Correct), Media: Media{URL: wa.ImageURL}})
					}
					q.Kind = QuestionKind(wq.Kind)
					if !q.Kind.Valid() {
						q.Kind = DeriveKind(q.Answers)
					}
					l.Questions = append(l.Questions, q)
				}
			}
			m.Lessons = append(m.Lessons, l)
		}
		t.Modules = append(t.Modules, m)
	}
	for _, c := range d.Collaborators {
		if c.ID > 0 {
			t.Collaborators = appendUnique(t.Collaborators, c.ID)
		}
	}
	b.doc = t
	b.original = append([]int(nil), t.Collaborators...)
}
