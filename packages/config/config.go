// Package config resolves environment-variable defaults for flags, so
// a shell profile can pin a preferred backend or jar location once.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the SWELL_* environment defaults. Command-line flags
// override every field.
type Config struct {
	Client  string        `env:"SWELL_CLIENT" envDefault:"std"`
	Jar     string        `env:"SWELL_JAR"`
	Timeout time.Duration `env:"SWELL_TIMEOUT" envDefault:"30s"`
	NoColor bool          `env:"SWELL_NO_COLOR"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("error getting env configs: %w", err)
	}
	return cfg, nil
}
