// Package config loads docpipe configuration from YAML files and the
// environment.
//
// Precedence, lowest to highest: struct defaults, the YAML config file, a
// .env file, process environment variables prefixed with DOCPIPE_.
//
//	cfg, err := config.Load(config.WithConfigFile("docpipe.yml"))
//	if err != nil {
//	    return err
//	}
//	p, err := cfg.BuildPipeline()
package config
