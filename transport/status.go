package transport

import (
	"context"
	"encoding/json"
)

// errorBody is the structured error envelope the service returns.
type errorBody struct {
	Message string `json:"message"`
}

// StatusMapping converts non-success responses into typed errors. A JSON
// error body is parsed into an APIError carrying the service's message; any
// other content type yields a StatusError with the numeric status and
// reason phrase. Success responses pass through unchanged.
func StatusMapping() Middleware {
	return func(next Caller) Caller {
		return func(ctx context.Context, req Request) (*Response, error) {
			resp, err := next(ctx, req)
			if err != nil {
				return resp, err
			}
			if resp.IsSuccess() {
				return resp, nil
			}

			if resp.ContentType() == "application/json" {
				var body errorBody
				if jsonErr := json.Unmarshal(resp.Body, &body); jsonErr == nil && body.Message != "" {
					return resp, &APIError{Status: resp.StatusCode, Message: body.Message}
				}
			}
			return resp, &StatusError{Status: resp.StatusCode, Reason: resp.Reason}
		}
	}
}
