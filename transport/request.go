package transport

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Request describes an outbound call.
type Request struct {
	// Method is the HTTP method (GET, POST, DELETE, etc).
	Method string
	// Target is the request URL. A relative target is resolved against the
	// client's BaseURL; an absolute one is used as-is (operation endpoints
	// discovered from creation responses are absolute).
	Target string
	// Headers are request-specific headers (merged with client defaults).
	Headers map[string]string
	// Query are URL query parameters.
	Query map[string]string
	// Body is the request body. Accepts io.Reader, []byte, string, or any
	// value that will be JSON-encoded. A reader body is drained into bytes
	// by the retry and auth layers so a reattempt re-sends the same content.
	Body any
}

// bufferBody drains a reader body into bytes so the request can be sent
// more than once. Non-reader bodies pass through unchanged.
func bufferBody(req Request) (Request, error) {
	r, ok := req.Body.(io.Reader)
	if !ok {
		return req, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return req, &ConnectionError{Err: fmt.Errorf("read request body: %w", err)}
	}
	req.Body = data
	return req, nil
}

// Response is the result of a call.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Reason is the status reason phrase.
	Reason string
	// Headers are the response headers.
	Headers map[string]string
	// Body is the raw response body.
	Body []byte
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ContentType returns the response content type without parameters.
func (r *Response) ContentType() string {
	ct := r.Headers["Content-Type"]
	if idx := strings.IndexByte(ct, ';'); idx != -1 {
		ct = ct[:idx]
	}
	return strings.TrimSpace(ct)
}

// Caller performs one call. Every layer of the dispatch chain has this shape.
type Caller func(ctx context.Context, req Request) (*Response, error)

// Middleware wraps a Caller with one resilience concern.
type Middleware func(Caller) Caller

// Chain composes middlewares into one. The first middleware is outermost:
// Chain(a, b, c)(caller) is equivalent to a(b(c(caller))).
func Chain(middlewares ...Middleware) Middleware {
	return func(inner Caller) Caller {
		for i := len(middlewares) - 1; i >= 0; i-- {
			inner = middlewares[i](inner)
		}
		return inner
	}
}
