package api

import (
	"encoding/json"
	"fmt"
)

// Resource is the service-side representation created from a document's
// content: an identifier plus the named operation endpoints discovered from
// the creation response. It is owned by the processor run that created it
// and must be deleted exactly once.
type Resource struct {
	// ID is the service-assigned resource identifier.
	ID string
	// Self is the endpoint for the resource itself (used for deletion).
	Self string
	// Operations maps operation names (classify, extract, redact) to their
	// endpoints. An endpoint may carry a "{name}" placeholder for the
	// operation parameter.
	Operations map[string]string
}

// Operation returns the endpoint for a named operation.
func (r *Resource) Operation(name string) (string, error) {
	target, ok := r.Operations[name]
	if !ok {
		return "", fmt.Errorf("api: resource %s has no %q operation", r.ID, name)
	}
	return target, nil
}

// OperationResult is the outcome of one remote operation on a resource.
type OperationResult struct {
	// Name is the operation that produced this result.
	Name string
	// Data is the raw result payload.
	Data json.RawMessage
}

// createResponse is the creation envelope returned by the service.
type createResponse struct {
	ID    string            `json:"id"`
	Links map[string]string `json:"links"`
}

// Well-known operation names.
const (
	OpClassify = "classify"
	OpExtract  = "extract"
	OpRedact   = "redact"
)
