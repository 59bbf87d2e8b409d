package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/pipedocs/docpipe/document"
	"github.com/pipedocs/docpipe/logger"
	"github.com/pipedocs/docpipe/resilience"
)

// executor consumes the document source as its single long-lived consumer
// and runs one processor per admitted document on the worker pool, under
// the admission controller's bound.
type executor struct {
	proc        *processor
	slots       *resilience.Slots
	onError     []func(DocumentError)
	onCompleted func()
	log         *logger.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
	wg       sync.WaitGroup
}

func newExecutor(proc *processor, slots *resilience.Slots, onError []func(DocumentError), onCompleted func(), log *logger.Logger) *executor {
	return &executor{
		proc:        proc,
		slots:       slots,
		onError:     onError,
		onCompleted: onCompleted,
		log:         log,
		inFlight:    make(map[string]struct{}),
	}
}

// run consumes the source until exhaustion, fault, or cancellation, then
// waits for every started processor to reach done. The completed callback
// fires exactly once, only on normal completion.
func (e *executor) run(ctx context.Context, source document.Source) error {
	pool, err := ants.NewPool(e.slots.Capacity())
	if err != nil {
		return &PipelineFault{Err: fmt.Errorf("create worker pool: %w", err)}
	}
	defer pool.Release()

	var fault *PipelineFault

admit:
	for {
		doc, ok, err := source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				// Cancellation: stop admitting, drain in-flight work.
				break admit
			}
			fault = &PipelineFault{Err: fmt.Errorf("document source: %w", err)}
			break admit
		}
		if !ok {
			break admit
		}

		// The slot is held until this document's processor reaches done,
		// so source consumption is paced by the concurrency bound.
		if err := e.slots.Acquire(ctx); err != nil {
			break admit
		}

		e.track(doc.SourceID)
		e.wg.Add(1)
		submit := pool.Submit(func() {
			defer e.wg.Done()
			defer e.slots.Release()
			defer e.untrack(doc.SourceID)

			if derr := e.proc.run(ctx, doc); derr != nil {
				e.deliver(*derr)
			}
		})
		if submit != nil {
			e.untrack(doc.SourceID)
			e.wg.Done()
			e.slots.Release()
			fault = &PipelineFault{Err: fmt.Errorf("submit work: %w", submit)}
			break admit
		}
	}

	e.wg.Wait()

	if fault != nil {
		e.log.Error("run aborted", logger.Fields(logger.FieldError, fault.Error()))
		return fault
	}
	if err := ctx.Err(); err != nil {
		e.log.Info("run cancelled")
		return err
	}

	e.log.Info("run completed")
	if e.onCompleted != nil {
		e.onCompleted()
	}
	return nil
}

// deliver routes one DocumentError to every configured handler, exactly
// once per failing document.
func (e *executor) deliver(derr DocumentError) {
	e.log.Warn("document failed", logger.Fields(
		logger.FieldSourceID, derr.Document.SourceID,
		logger.FieldError, derr.Err.Error(),
	))
	for _, handler := range e.onError {
		handler(derr)
	}
}

func (e *executor) track(sourceID string) {
	e.mu.Lock()
	e.inFlight[sourceID] = struct{}{}
	e.mu.Unlock()
}

func (e *executor) untrack(sourceID string) {
	e.mu.Lock()
	delete(e.inFlight, sourceID)
	e.mu.Unlock()
}

// InFlight returns the source ids of documents currently being processed.
func (e *executor) InFlight() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]string, 0, len(e.inFlight))
	for id := range e.inFlight {
		ids = append(ids, id)
	}
	return ids
}
