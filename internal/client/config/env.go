package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every variable name read by parseEnv.
const EnvPrefix = "TODO_"

// parseEnv overlays cfg with the TODO_* variables found in environ. Unset
// variables keep the value already in cfg.
func parseEnv(cfg *Config, environ []string) error {
	opts := env.Options{
		Prefix:      EnvPrefix,
		Environment: env.ToMap(environ),
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
