package draft

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"capacitaciones/api"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// spyBackend records every call in order and serves canned results.
type spyBackend struct {
	mu    sync.Mutex
	calls []string

	failUpload map[string]error
	createErr  error
	syncErr    error
	patchErr   error
	detail     *api.TrainingDetail

	created   *api.TrainingPayload
	patched   *api.TrainingPayload
	syncAdd   []int
	syncDrop  []int
	syncDone  bool
	patchSync bool
}

func (s *spyBackend) record(call string) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
}

func (s *spyBackend) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *spyBackend) count(prefix string) int {
	n := 0
	for _, c := range s.Calls() {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (s *spyBackend) UploadAttachment(ctx context.Context, purpose api.Purpose, file api.Attachment) (string, error) {
	s.record("upload:" + file.Name)
	if err := s.failUpload[file.Name]; err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "https://cdn.test/" + string(purpose) + "/" + file.Name, nil
}

func (s *spyBackend) CreateTraining(_ context.Context, p *api.TrainingPayload) (*api.CreatedTraining, error) {
	s.record("create")
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.mu.Lock()
	s.created = p
	s.mu.Unlock()
	return &api.CreatedTraining{ID: 42, Title: p.Title}, nil
}

func (s *spyBackend) PatchTraining(_ context.Context, id int, p *api.TrainingPayload) error {
	s.record("patch")
	s.mu.Lock()
	s.patchSync = s.syncDone
	s.patched = p
	s.mu.Unlock()
	return s.patchErr
}

func (s *spyBackend) SyncCollaborators(_ context.Context, id int, add, remove []int) (*api.SyncResult, error) {
	s.record("sync")
	if s.syncErr != nil {
		return nil, s.syncErr
	}
	s.mu.Lock()
	s.syncAdd, s.syncDrop, s.syncDone = add, remove, true
	s.mu.Unlock()
	return &api.SyncResult{Added: add, Removed: remove}, nil
}

func (s *spyBackend) FetchTraining(_ context.Context, id int) (*api.TrainingDetail, error) {
	s.record("fetch")
	if s.detail == nil {
		return nil, errors.Join(api.ErrNotFound, errors.New("no detail"))
	}
	return s.detail, nil
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func png(name string) *PendingFile { return NewPendingFile(name, "image/png", pngBytes) }
