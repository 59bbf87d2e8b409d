// Package transport implements the resilient request-dispatch chain every
// remote call passes through.
//
// A call is a Caller function; each resilience concern is a single-purpose
// Middleware that wraps a Caller. The Client composes them in a fixed,
// documented order (outermost first):
//
//	logging → auth → retry → status mapping → HTTP transport
//
// Failures are classified into a closed taxonomy: TimeoutError,
// CancelledError, APIError (structured service error), StatusError
// (unstructured non-2xx), and ConnectionError. No layer swallows a failure;
// each either maps it to a narrower kind or passes it through unchanged.
//
//	client, err := transport.New(transport.Config{
//	    BaseURL: "https://api.example.com",
//	    Timeout: 120 * time.Second,
//	    Token:   transport.StaticToken("my-token"),
//	    Retry:   transport.DefaultRetryConfig(),
//	})
//
//	resp, err := client.Do(ctx, transport.Request{
//	    Method: http.MethodPost,
//	    Target: "/documents",
//	    Body:   payload,
//	})
package transport
