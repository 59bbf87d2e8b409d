package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/pipedocs/docpipe/document"
	"github.com/pipedocs/docpipe/logger"
)

// processor states, in the order a document moves through them.
type procState int

const (
	stateReceived procState = iota
	stateCreating
	stateStaging
	stateDeleting
	stateDone
)

func (s procState) String() string {
	switch s {
	case stateReceived:
		return "received"
	case stateCreating:
		return "creating"
	case stateStaging:
		return "staging"
	case stateDeleting:
		return "deleting"
	case stateDone:
		return "done"
	default:
		return "unknown"
	}
}

// processor drives one document through creation, the stage chain, and
// guaranteed deletion. Each run owns its item exclusively.
type processor struct {
	client        Client
	stages        []Stage
	deleteTimeout time.Duration
	log           *logger.Logger
}

// run processes a single document. It returns at most one DocumentError;
// a stage failure followed by a deletion failure is joined into one.
func (p *processor) run(ctx context.Context, doc document.Document) *DocumentError {
	log := p.log.WithFields(logger.Fields(logger.FieldSourceID, doc.SourceID))
	enter := func(s procState) {
		log.Trace("state change", logger.Fields("state", s.String()))
	}
	enter(stateReceived)

	enter(stateCreating)
	res, err := p.client.Create(ctx, doc)
	if err != nil {
		// Nothing was created, so nothing is deleted.
		enter(stateDone)
		return &DocumentError{Document: doc, Err: &CreationError{Err: err}}
	}
	log = log.WithFields(logger.Fields(logger.FieldResource, res.ID))

	enter(stateStaging)
	item := &Item{Document: doc, Resource: res}
	var stageErr error
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			stageErr = &StageError{Stage: stage.Name, Err: err}
			break
		}
		if err := stage.Run(ctx, item); err != nil {
			log.Debug("stage failed", logger.Fields(logger.FieldStage, stage.Name, logger.FieldError, err.Error()))
			stageErr = &StageError{Stage: stage.Name, Err: err}
			break
		}
		log.Debug("stage completed", logger.Fields(logger.FieldStage, stage.Name))
	}

	// Deletion always runs once creation succeeded, even when the run
	// context has been cancelled: cleanup happens on a detached context
	// bounded by the delete timeout.
	enter(stateDeleting)
	delCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.deleteTimeout)
	defer cancel()

	var delErr error
	if err := p.client.Delete(delCtx, res); err != nil {
		log.Warn("deletion failed", logger.Fields(logger.FieldError, err.Error()))
		delErr = &DeletionError{Err: err}
	}
	enter(stateDone)

	switch {
	case stageErr != nil && delErr != nil:
		return &DocumentError{Document: doc, Err: errors.Join(stageErr, delErr)}
	case stageErr != nil:
		return &DocumentError{Document: doc, Err: stageErr}
	case delErr != nil:
		return &DocumentError{Document: doc, Err: delErr}
	}
	return nil
}
