package config

import (
	"fmt"

	"github.com/rezkam/taskflow/internal/env"
)

// CLIConfig holds configuration for the taskflowctl admin binary.
type CLIConfig struct {
	Database DatabaseConfig
	Clock    ClockConfig
}

// LoadCLIConfig loads and validates admin CLI configuration from environment.
func LoadCLIConfig() (*CLIConfig, error) {
	cfg := &CLIConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load cli config: %w", err)
	}

	return cfg, nil
}
