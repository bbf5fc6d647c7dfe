package draft

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"capacitaciones/api"
)

// Backend is the set of remote operations a submit needs. *api.Client
// satisfies it.
type Backend interface {
	UploadAttachment(ctx context.Context, purpose api.Purpose, file api.Attachment) (string, error)
	CreateTraining(ctx context.Context, payload *api.TrainingPayload) (*api.CreatedTraining, error)
	PatchTraining(ctx context.Context, id int, payload *api.TrainingPayload) error
	SyncCollaborators(ctx context.Context, id int, add, remove []int) (*api.SyncResult, error)
}

// Fetcher loads an existing training for editing.
type Fetcher interface {
	FetchTraining(ctx context.Context, id int) (*api.TrainingDetail, error)
}

// State is the phase of the current or last submit attempt.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateUploading
	StatePersisting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateUploading:
		return "uploading-attachments"
	case StatePersisting:
		return "persisting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// SubmitResult reports what a successful submit did.
type SubmitResult struct {
	ID       int
	Created  bool
	Uploaded int
	Added    []int
	Removed  []int
	Payload  *api.TrainingPayload
}

// Source is a backend that can also fetch trainings.
type Source interface {
	Backend
	Fetcher
}

// Load fetches training id and returns an edit-mode draft for it.
func Load(ctx context.Context, backend Source, id int, logger *zap.Logger) (*Builder, error) {
	d, err := backend.FetchTraining(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cargando capacitación %d: %w", id, err)
	}
	if d.ID == 0 {
		d.ID = id
	}
	b := New(backend, logger)
	b.hydrate(d)
	return b, nil
}

// State returns the phase of the current or last submit and the error that
// failed it, if any.
func (b *Builder) State() (State, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state, b.lastErr
}

func (b *Builder) setState(s State) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
}

// Submit validates the draft, uploads pending files concurrently and then
// creates or patches the training. A failed submit leaves the draft as it
// was, except that a successful collaborator sync is remembered.
func (b *Builder) Submit(ctx context.Context) (*SubmitResult, error) {
	b.mu.Lock()
	if b.submitting {
		b.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	b.submitting = true
	b.state = StateValidating
	b.lastErr = nil
	snap := b.doc.clone()
	original := append([]int(nil), b.original...)
	b.mu.Unlock()

	res, err := b.submit(ctx, snap, original)

	b.mu.Lock()
	b.submitting = false
	if err != nil {
		b.state, b.lastErr = StateFailed, err
	} else {
		b.state = StateSucceeded
	}
	b.mu.Unlock()
	return res, err
}

func (b *Builder) submit(ctx context.Context, snap *Training, original []int) (*SubmitResult, error) {
	log := b.log.With(zap.Int("training", snap.ID))
	if verr := validate(snap); verr != nil {
		log.Debug("draft rejected", zap.String("reason", verr.Message))
		return nil, verr
	}
	if b.backend == nil {
		return nil, errors.New("draft has no backend")
	}

	b.setState(StateUploading)
	uploaded, err := b.upload(ctx, snap)
	if err != nil {
		log.Warn("attachment upload failed", zap.Error(err))
		return nil, err
	}

	b.setState(StatePersisting)
	res := &SubmitResult{ID: snap.ID, Uploaded: len(uploaded), Payload: payload(snap)}
	if snap.ID == 0 {
		created, err := b.backend.CreateTraining(ctx, res.Payload)
		if err != nil {
			return nil, &PersistError{Stage: StageCreate, Err: err}
		}
		res.ID, res.Created = created.ID, true
	} else {
		add, remove := DiffCollaborators(original, snap.Collaborators)
		if len(add) > 0 || len(remove) > 0 {
			synced, err := b.backend.SyncCollaborators(ctx, snap.ID, add, remove)
			if err != nil {
				return nil, &PersistError{Stage: StageSync, Err: err}
			}
			b.mu.Lock()
			b.original = append([]int(nil), snap.Collaborators...)
			b.mu.Unlock()
			if synced != nil {
				res.Added, res.Removed = synced.Added, synced.Removed
			}
		}
		res.Payload.Collaborators = nil
		if err := b.backend.PatchTraining(ctx, snap.ID, res.Payload); err != nil {
			return nil, &PersistError{Stage: StagePatch, Err: err}
		}
	}

	b.commit(res.ID, snap.Collaborators, uploaded)
	log.Info("training saved", zap.Int("id", res.ID), zap.Bool("created", res.Created), zap.Int("uploads", res.Uploaded))
	return res, nil
}

type uploadJob struct {
	slot    string
	purpose api.Purpose
	media   *Media
	file    *PendingFile
}

// upload sends every pending file of snap at once and rewrites snap's media
// to the returned URLs. It returns the URL of each uploaded file.
func (b *Builder) upload(ctx context.Context, snap *Training) (map[*PendingFile]string, error) {
	var jobs []uploadJob
	snap.eachMedia(func(slot string, purpose api.Purpose, m *Media) {
		if m.Pending != nil {
			jobs = append(jobs, uploadJob{slot: slot, purpose: purpose, media: m, file: m.Pending})
		}
	})

	urls := make([]string, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			url, err := b.backend.UploadAttachment(gctx, job.purpose, api.Attachment{
				Name: job.file.Name,
				MIME: job.file.MIME,
				Data: job.file.Data,
			})
			if err == nil && url == "" {
				err = fmt.Errorf("no se obtuvo URL para %s", job.slot)
			}
			if err != nil {
				return &UploadError{Slot: job.slot, Err: err}
			}
			b.log.Debug("attachment uploaded", zap.String("slot", job.slot), zap.String("url", url))
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[*PendingFile]string, len(jobs))
	for i, job := range jobs {
		job.media.Pending = nil
		job.media.URL = urls[i]
		out[job.file] = urls[i]
	}
	return out, nil
}

// commit writes the outcome of a successful submit into the live draft.
// Files replaced while the submit ran keep their pending state.
func (b *Builder) commit(id int, collaborators []int, uploaded map[*PendingFile]string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.doc.ID == 0 {
		b.doc.ID = id
	}
	b.original = append([]int(nil), collaborators...)
	b.doc.eachMedia(func(_ string, _ api.Purpose, m *Media) {
		if m.Pending == nil {
			return
		}
		if url, ok := uploaded[m.Pending]; ok {
			b.release(m)
			m.URL = url
		}
	})
}
