package transport

import (
	"context"
	"strings"
)

// Client dispatches requests through the composed middleware chain.
type Client struct {
	call   Caller
	config Config
}

// New assembles the dispatch chain from the configuration. Layers whose
// configuration is absent are omitted; the remaining ones always compose in
// the same order: logging → auth → retry → status mapping → transport.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var middlewares []Middleware
	if cfg.Logger != nil {
		middlewares = append(middlewares, WithLogging(cfg.Logger))
	}
	if cfg.Token != nil {
		middlewares = append(middlewares, WithAuth(cfg.Token))
	}
	if cfg.Retry != nil {
		middlewares = append(middlewares, WithRetry(*cfg.Retry))
	}
	middlewares = append(middlewares, StatusMapping())

	return &Client{
		call:   Chain(middlewares...)(HTTPTransport(cfg.HTTPClient, cfg.Timeout)),
		config: cfg,
	}, nil
}

// Do resolves the request target against the base URL, applies default
// headers, and dispatches the request through the chain.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	req.Target = c.resolveTarget(req.Target)

	if len(c.config.Headers) > 0 {
		headers := make(map[string]string, len(c.config.Headers)+len(req.Headers))
		for k, v := range c.config.Headers {
			headers[k] = v
		}
		for k, v := range req.Headers {
			headers[k] = v
		}
		req.Headers = headers
	}

	return c.call(ctx, req)
}

func (c *Client) resolveTarget(target string) string {
	if c.config.BaseURL == "" || strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target
	}
	return strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.TrimLeft(target, "/")
}
