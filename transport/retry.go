package transport

import (
	"context"

	"github.com/pipedocs/docpipe/resilience"
)

// DefaultRetryConfig returns a retry config suitable for the dispatch
// chain: transient failures only, never 4xx client errors or cancellation.
func DefaultRetryConfig() *resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.RetryIf = IsRetryable
	return &cfg
}

// WithRetry reattempts recoverable failures with bounded attempts and
// backoff. Retries are invisible to outer layers except as added latency:
// once exhausted, the final error is returned unchanged.
func WithRetry(cfg resilience.RetryConfig) Middleware {
	if cfg.RetryIf == nil {
		cfg.RetryIf = IsRetryable
	}
	return func(next Caller) Caller {
		return func(ctx context.Context, req Request) (*Response, error) {
			// A reader body would be consumed by the first attempt.
			req, err := bufferBody(req)
			if err != nil {
				return nil, err
			}
			return resilience.Retry(ctx, cfg, func() (*Response, error) {
				return next(ctx, req)
			})
		}
	}
}
