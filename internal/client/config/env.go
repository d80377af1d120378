package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv overlays GENZES_* variables. Unset variables leave fields as they
// are; malformed values panic like a broken JSON file does.
func parseEnv(config *Config) {
	if err := env.Parse(config); err != nil {
		panic(fmt.Errorf("parse env: %w", err))
	}
}
