package config

import (
	"fmt"

	"github.com/rezkam/taskflow/internal/env"
)

// TestConfig holds configuration for PostgreSQL integration tests.
type TestConfig struct {
	PostgresDSN string `env:"TASKFLOW_DB_DSN"`
}

// Validate requires a DSN so integration tests can skip when none is set.
func (c *TestConfig) Validate() error {
	if c.PostgresDSN == "" {
		return ErrDSNRequired
	}
	return nil
}

// LoadTestConfig loads and validates test configuration from environment.
func LoadTestConfig() (*TestConfig, error) {
	cfg := &TestConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load test config: %w", err)
	}

	return cfg, nil
}
