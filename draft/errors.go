package draft

import (
	"errors"
	"fmt"
)

// ErrSubmitInProgress is returned when Submit is called while another
// submit of the same draft has not finished.
var ErrSubmitInProgress = errors.New("submit already in progress")

// ValidationError is a local, user-facing problem found before any network
// call. Indices are zero-based and -1 when not applicable.
type ValidationError struct {
	Message  string
	Module   int
	Lesson   int
	Question int
	Answer   int
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...), Module: -1, Lesson: -1, Question: -1, Answer: -1}
}

func (e *ValidationError) at(m, l, q, a int) *ValidationError {
	e.Module, e.Lesson, e.Question, e.Answer = m, l, q, a
	return e
}

// AttachmentRejectedError is returned when a file does not match the slot's
// whitelist or size cap. The slot is left as it was.
type AttachmentRejectedError struct {
	Slot   string
	File   string
	Reason string
}

func (e *AttachmentRejectedError) Error() string {
	return fmt.Sprintf("%s: %s rechazado: %s", e.Slot, e.File, e.Reason)
}

// UploadError aborts a submit during the attachment phase. Uploads that
// already succeeded in the same attempt stay on the backend.
type UploadError struct {
	Slot string
	Err  error
}

func (e *UploadError) Error() string { return fmt.Sprintf("subiendo %s: %v", e.Slot, e.Err) }
func (e *UploadError) Unwrap() error { return e.Err }

// PersistStage names the persistence call that failed.
type PersistStage string

const (
	StageCreate PersistStage = "create"
	StageSync   PersistStage = "sync-collaborators"
	StagePatch  PersistStage = "patch"
)

// PersistError aborts a submit during the create, sync or patch call.
type PersistError struct {
	Stage PersistStage
	Err   error
}

func (e *PersistError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }
func (e *PersistError) Unwrap() error { return e.Err }

// ErrPosition is wrapped by every structural operation given an index that
// does not exist in the current document.
var ErrPosition = errors.New("posición fuera de rango")
