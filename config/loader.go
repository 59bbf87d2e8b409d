package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "DOCPIPE"

// LoaderOption customizes Load.
type LoaderOption func(*loaderConfig)

type loaderConfig struct {
	configFile string
	envFile    string
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *loaderConfig) { lc.configFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *loaderConfig) { lc.envFile = path }
}

// Load reads configuration from the YAML config file, a .env file, and
// DOCPIPE_-prefixed environment variables, applies defaults, and validates
// the result.
func Load(opts ...LoaderOption) (*Config, error) {
	var lc loaderConfig
	for _, opt := range opts {
		opt(&lc)
	}

	if lc.envFile == "" {
		lc.envFile = findFirst(".env")
	}
	if lc.envFile != "" && exists(lc.envFile) {
		if err := godotenv.Load(lc.envFile); err != nil {
			return nil, fmt.Errorf("config: load env file %s: %w", lc.envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if lc.configFile == "" {
		lc.configFile = findFirst("docpipe.yml", "config/docpipe.yml")
	}
	if lc.configFile != "" {
		v.SetConfigFile(lc.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", lc.configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it even when
// no config file is present.
func setDefaults(v *viper.Viper) {
	v.SetDefault("name", "")
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.output", "")
	v.SetDefault("remote.base_url", "")
	v.SetDefault("remote.timeout", "0s")
	v.SetDefault("remote.retry_attempts", 0)
	v.SetDefault("remote.retry_initial_backoff", "0s")
	v.SetDefault("remote.retry_max_backoff", "0s")
	v.SetDefault("credentials.token", "")
	v.SetDefault("credentials.token_url", "")
	v.SetDefault("credentials.client_id", "")
	v.SetDefault("credentials.client_secret", "")
	v.SetDefault("pipeline.concurrency", 0)
	v.SetDefault("pipeline.delete_timeout", "0s")
}

func findFirst(paths ...string) string {
	for _, path := range paths {
		if exists(path) {
			return path
		}
	}
	return ""
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
