package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pipedocs/docpipe/document"
	"github.com/pipedocs/docpipe/transport"
)

const documentsPath = "/documents"

// Service talks to the remote document service through the dispatch chain.
type Service struct {
	client *transport.Client
}

// NewService creates a service client on top of a dispatch-chain client.
func NewService(client *transport.Client) *Service {
	return &Service{client: client}
}

// Create uploads the document's raw content and returns the remote resource
// with its discovered operation endpoints.
func (s *Service) Create(ctx context.Context, doc document.Document) (*Resource, error) {
	rc, err := doc.Open()
	if err != nil {
		return nil, fmt.Errorf("api: open document %s: %w", doc.SourceID, err)
	}
	defer func() { _ = rc.Close() }()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("api: read document %s: %w", doc.SourceID, err)
	}

	headers := map[string]string{"X-Source-Id": doc.SourceID}
	if doc.Name != "" {
		headers["X-Document-Name"] = doc.Name
	}
	if doc.ContentType != "" {
		headers["Content-Type"] = doc.ContentType
	}

	resp, err := s.client.Do(ctx, transport.Request{
		Method:  http.MethodPost,
		Target:  documentsPath,
		Headers: headers,
		Body:    content,
	})
	if err != nil {
		return nil, err
	}

	var created createResponse
	if err := json.Unmarshal(resp.Body, &created); err != nil {
		return nil, fmt.Errorf("api: decode creation response: %w", err)
	}
	if created.ID == "" {
		return nil, fmt.Errorf("api: creation response missing id")
	}

	res := &Resource{ID: created.ID, Operations: make(map[string]string, len(created.Links))}
	for name, target := range created.Links {
		if name == "self" {
			res.Self = target
			continue
		}
		res.Operations[name] = target
	}
	if res.Self == "" {
		res.Self = fmt.Sprintf("%s/%s", documentsPath, created.ID)
	}
	return res, nil
}

// Delete removes the remote resource.
func (s *Service) Delete(ctx context.Context, res *Resource) error {
	_, err := s.client.Do(ctx, transport.Request{
		Method: http.MethodDelete,
		Target: res.Self,
	})
	return err
}

// Do invokes a named operation on the resource. A non-empty param selects
// the operation variant and is expanded into the discovered endpoint:
// a "{name}" placeholder in the endpoint is substituted, otherwise the
// param is appended as a "name" query parameter.
func (s *Service) Do(ctx context.Context, res *Resource, op, param string) (*OperationResult, error) {
	target, err := res.Operation(op)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Target: expandOperation(target, param),
	})
	if err != nil {
		return nil, err
	}

	return &OperationResult{Name: op, Data: append(json.RawMessage(nil), resp.Body...)}, nil
}

// expandOperation fills a possibly-parameterized operation endpoint.
func expandOperation(target, param string) string {
	if strings.Contains(target, "{name}") {
		return strings.ReplaceAll(target, "{name}", url.PathEscape(param))
	}
	if param == "" {
		return target
	}
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + "name=" + url.QueryEscape(param)
}

// Classify runs the classification operation with the named classifier.
func (s *Service) Classify(ctx context.Context, res *Resource, name string) (*OperationResult, error) {
	return s.Do(ctx, res, OpClassify, name)
}

// Extract runs the extraction operation with the named extractor.
func (s *Service) Extract(ctx context.Context, res *Resource, name string) (*OperationResult, error) {
	return s.Do(ctx, res, OpExtract, name)
}

// Redact runs the redaction operation with the named redaction profile.
func (s *Service) Redact(ctx context.Context, res *Resource, name string) (*OperationResult, error) {
	return s.Do(ctx, res, OpRedact, name)
}
