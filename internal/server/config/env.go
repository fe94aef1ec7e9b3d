package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv overlays the ACCOUNTKEEPER_* variables that are set. A nil
// environ reads the process environment.
func parseEnv(config *Config, environ map[string]string) error {
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(config, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
