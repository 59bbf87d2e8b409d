package transport

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pipedocs/docpipe/logger"
	"github.com/pipedocs/docpipe/resilience"
	"github.com/pipedocs/docpipe/version"
)

const defaultTimeout = 120 * time.Second

// Config configures a dispatch-chain client.
type Config struct {
	// BaseURL is prepended to relative request targets.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout is the per-request timeout. Defaults to 120s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// Token supplies bearer credentials. Nil disables the auth layer.
	Token TokenSource `yaml:"-" mapstructure:"-"`

	// Retry configures the retry layer. Nil disables retry.
	Retry *resilience.RetryConfig `yaml:"-" mapstructure:"-"`

	// Logger receives per-call logs. Nil disables the logging layer.
	Logger *logger.Logger `yaml:"-" mapstructure:"-"`

	// HTTPClient overrides the underlying HTTP client.
	HTTPClient *http.Client `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if _, ok := c.Headers["User-Agent"]; !ok {
		if c.Headers == nil {
			c.Headers = make(map[string]string, 1)
		}
		c.Headers["User-Agent"] = version.UserAgent()
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("transport: timeout must be positive")
	}
	return nil
}
