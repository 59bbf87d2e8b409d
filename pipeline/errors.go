package pipeline

import (
	"errors"
	"fmt"

	"github.com/pipedocs/docpipe/document"
)

// CreationError wraps a failure to create the remote resource. No deletion
// is attempted for it: nothing was created.
type CreationError struct {
	Err error
}

func (e *CreationError) Error() string { return fmt.Sprintf("pipeline: create resource: %v", e.Err) }
func (e *CreationError) Unwrap() error { return e.Err }

// StageError wraps a failure raised by a configured stage. Remaining stages
// are skipped; deletion still runs.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline: stage %q: %v", e.Stage, e.Err)
}
func (e *StageError) Unwrap() error { return e.Err }

// DeletionError wraps a failure to delete the remote resource. Deletion is
// not retried.
type DeletionError struct {
	Err error
}

func (e *DeletionError) Error() string { return fmt.Sprintf("pipeline: delete resource: %v", e.Err) }
func (e *DeletionError) Unwrap() error { return e.Err }

// PipelineFault is an executor-level failure (the source stream failing,
// the worker pool rejecting work). It is the only error kind that
// terminates the whole run.
type PipelineFault struct {
	Err error
}

func (e *PipelineFault) Error() string { return fmt.Sprintf("pipeline: fault: %v", e.Err) }
func (e *PipelineFault) Unwrap() error { return e.Err }

// DocumentError is an immutable per-document failure report delivered to
// the error handlers. It never aborts processing of other documents.
type DocumentError struct {
	Document document.Document
	Err      error
}

func (e DocumentError) Error() string {
	return fmt.Sprintf("pipeline: document %s: %v", e.Document.SourceID, e.Err)
}

func (e DocumentError) Unwrap() error { return e.Err }

// IsFault reports whether err is an executor-level fault.
func IsFault(err error) bool {
	var e *PipelineFault
	return errors.As(err, &e)
}
