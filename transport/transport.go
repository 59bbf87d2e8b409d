package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPTransport returns the innermost Caller: it performs the actual network
// call with a per-request timeout. On expiry it produces a TimeoutError;
// cancellation requested by the caller produces a CancelledError instead,
// keeping the two distinguishable.
func HTTPTransport(client *http.Client, timeout time.Duration) Caller {
	if client == nil {
		client = &http.Client{}
	}
	return func(ctx context.Context, req Request) (*Response, error) {
		callCtx := ctx
		cancel := func() {}
		if timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, timeout)
		}
		defer cancel()

		httpReq, err := buildRequest(callCtx, req)
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(httpReq)
		if err != nil {
			return nil, classifyTransportError(ctx, callCtx, req, err)
		}
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, classifyTransportError(ctx, callCtx, req, err)
		}

		return &Response{
			StatusCode: resp.StatusCode,
			Reason:     reasonPhrase(resp),
			Headers:    flattenHeaders(resp.Header),
			Body:       body,
		}, nil
	}
}

// classifyTransportError separates caller cancellation from timeout expiry
// from plain connection failures. net/http wraps both context signals into
// a *url.Error, so the contexts themselves are consulted.
func classifyTransportError(parent, callCtx context.Context, req Request, err error) error {
	if errors.Is(parent.Err(), context.Canceled) {
		return &CancelledError{Method: req.Method, Target: req.Target, Err: parent.Err()}
	}
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Method: req.Method, Target: req.Target, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &CancelledError{Method: req.Method, Target: req.Target, Err: err}
	}
	return &ConnectionError{Err: err}
}

func buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, &ConnectionError{Err: fmt.Errorf("encode body: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.Target, body)
	if err != nil {
		return nil, &ConnectionError{Err: fmt.Errorf("create request: %w", err)}
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if body != nil && httpReq.Header.Get("Content-Type") == "" && contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	return httpReq, nil
}

// encodeBody converts a body value into an io.Reader and content type.
func encodeBody(body any) (io.Reader, string, error) {
	if body == nil {
		return nil, "", nil
	}
	switch v := body.(type) {
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "application/octet-stream", nil
	case string:
		return strings.NewReader(v), "text/plain", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

// reasonPhrase extracts the reason phrase from "200 OK"-style status lines.
func reasonPhrase(resp *http.Response) string {
	if _, phrase, found := strings.Cut(resp.Status, " "); found {
		return phrase
	}
	return http.StatusText(resp.StatusCode)
}

// flattenHeaders converts multi-value headers to single-value.
func flattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[k] = v[0]
		}
	}
	return result
}
