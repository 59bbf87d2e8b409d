package pipeline

import (
	"context"

	"github.com/pipedocs/docpipe/api"
	"github.com/pipedocs/docpipe/document"
)

// Client is the remote-service surface the engine depends on. api.Service
// satisfies it; tests substitute fakes.
type Client interface {
	// Create uploads the document content and returns the remote resource.
	Create(ctx context.Context, doc document.Document) (*api.Resource, error)
	// Delete removes the remote resource.
	Delete(ctx context.Context, res *api.Resource) error
	// Do invokes a named operation on the resource with a parameter.
	Do(ctx context.Context, res *api.Resource, op, param string) (*api.OperationResult, error)
}

// Item is the working context of one document run: the document, the remote
// resource created for it, and the accumulated stage results. It is owned
// exclusively by its processor run and mutated one stage at a time.
type Item struct {
	Document document.Document
	Resource *api.Resource
	results  map[string]*api.OperationResult
}

// Result returns the stored result of a previously executed operation.
func (it *Item) Result(name string) (*api.OperationResult, bool) {
	r, ok := it.results[name]
	return r, ok
}

// SetResult stores an operation result under the given name.
func (it *Item) SetResult(name string, r *api.OperationResult) {
	if it.results == nil {
		it.results = make(map[string]*api.OperationResult)
	}
	it.results[name] = r
}

// Stage is one configured processing step. Stages run strictly in the
// configured order for each document; no ordering holds across documents.
type Stage struct {
	// Name identifies the stage in errors and logs.
	Name string
	// Run applies the stage to the item. A returned error stops the
	// remaining stages for this document and triggers resource deletion.
	Run func(ctx context.Context, item *Item) error
}

// OperationStage creates a stage that invokes a named remote operation with
// the given parameter and stores its result on the item.
func OperationStage(client Client, op, param string) Stage {
	return Stage{
		Name: op,
		Run: func(ctx context.Context, item *Item) error {
			result, err := client.Do(ctx, item.Resource, op, param)
			if err != nil {
				return err
			}
			item.SetResult(op, result)
			return nil
		},
	}
}
