package config

import (
	"fmt"
	"time"

	"github.com/pipedocs/docpipe/api"
	"github.com/pipedocs/docpipe/logger"
	"github.com/pipedocs/docpipe/pipeline"
	"github.com/pipedocs/docpipe/resilience"
	"github.com/pipedocs/docpipe/transport"
)

// Config is the top-level docpipe configuration.
type Config struct {
	Name        string          `yaml:"name" mapstructure:"name"`
	Logging     logger.Config   `yaml:"logging" mapstructure:"logging"`
	Remote      RemoteConfig    `yaml:"remote" mapstructure:"remote"`
	Credentials Credentials     `yaml:"credentials" mapstructure:"credentials"`
	Pipeline    pipeline.Config `yaml:"pipeline" mapstructure:"pipeline"`
}

// RemoteConfig describes the remote document service and the resilience
// parameters of calls against it.
type RemoteConfig struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	RetryAttempts       int           `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	RetryInitialBackoff time.Duration `yaml:"retry_initial_backoff" mapstructure:"retry_initial_backoff"`
	RetryMaxBackoff     time.Duration `yaml:"retry_max_backoff" mapstructure:"retry_max_backoff"`
}

// Credentials configures the bearer-credential source. Token wins if set;
// otherwise the client-credentials exchange is used.
type Credentials struct {
	Token        string `yaml:"token" mapstructure:"token"`
	TokenURL     string `yaml:"token_url" mapstructure:"token_url"`
	ClientID     string `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "docpipe"
	}
	c.Logging.ApplyDefaults()
	if c.Remote.Timeout <= 0 {
		c.Remote.Timeout = 120 * time.Second
	}
	if c.Remote.RetryAttempts <= 0 {
		c.Remote.RetryAttempts = 3
	}
	c.Pipeline.ApplyDefaults()
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Remote.BaseURL == "" {
		return fmt.Errorf("config: remote.base_url is required")
	}
	if c.Credentials.Token == "" && c.Credentials.ClientID != "" && c.Credentials.TokenURL == "" {
		return fmt.Errorf("config: credentials.token_url is required with client credentials")
	}
	if err := c.Pipeline.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// BuildLogger creates the configured logger.
func (c *Config) BuildLogger() *logger.Logger {
	return logger.New(&c.Logging, c.Name)
}

// tokenSource builds the credential source, or nil when no credentials are
// configured.
func (c *Config) tokenSource() transport.TokenSource {
	switch {
	case c.Credentials.Token != "":
		return transport.StaticToken(c.Credentials.Token)
	case c.Credentials.ClientID != "":
		return &transport.ClientCredentials{
			TokenURL:     c.Credentials.TokenURL,
			ClientID:     c.Credentials.ClientID,
			ClientSecret: c.Credentials.ClientSecret,
		}
	default:
		return nil
	}
}

// BuildTransport assembles the dispatch-chain client.
func (c *Config) BuildTransport(log *logger.Logger) (*transport.Client, error) {
	return transport.New(transport.Config{
		BaseURL: c.Remote.BaseURL,
		Timeout: c.Remote.Timeout,
		Token:   c.tokenSource(),
		Retry:   c.Remote.RetryConfig(),
		Logger:  log,
	})
}

// BuildService assembles the remote document service client.
func (c *Config) BuildService(log *logger.Logger) (*api.Service, error) {
	tc, err := c.BuildTransport(log)
	if err != nil {
		return nil, err
	}
	return api.NewService(tc), nil
}

// BuildPipeline assembles a ready-to-configure pipeline.
func (c *Config) BuildPipeline() (*pipeline.Pipeline, error) {
	log := c.BuildLogger()
	svc, err := c.BuildService(log.WithComponent("transport"))
	if err != nil {
		return nil, err
	}
	cfg := c.Pipeline
	cfg.Logger = log
	return pipeline.New(svc, cfg)
}

// RetryConfig converts the flat retry fields into a resilience config.
func (c *RemoteConfig) RetryConfig() *resilience.RetryConfig {
	cfg := transport.DefaultRetryConfig()
	if c.RetryAttempts > 0 {
		cfg.MaxAttempts = c.RetryAttempts
	}
	if c.RetryInitialBackoff > 0 {
		cfg.InitialBackoff = c.RetryInitialBackoff
	}
	if c.RetryMaxBackoff > 0 {
		cfg.MaxBackoff = c.RetryMaxBackoff
	}
	return cfg
}
