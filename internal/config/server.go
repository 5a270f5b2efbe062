package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/rezkam/taskflow/internal/env"
)

// ServerConfig holds all configuration for the server binary.
type ServerConfig struct {
	Database        DatabaseConfig
	HTTP            HTTPConfig
	Auth            AuthConfig
	Clock           ClockConfig
	GenAI           GenAIConfig
	Recording       RecordingConfig
	Observability   ObservabilityConfig
	ShutdownTimeout time.Duration `env:"TASKFLOW_SHUTDOWN_TIMEOUT" default:"10s"`
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Host              string        `env:"TASKFLOW_HTTP_HOST"`
	Port              string        `env:"TASKFLOW_HTTP_PORT" default:"8080"`
	ReadTimeout       time.Duration `env:"TASKFLOW_HTTP_READ_TIMEOUT" default:"30s"`
	WriteTimeout      time.Duration `env:"TASKFLOW_HTTP_WRITE_TIMEOUT" default:"90s"`
	IdleTimeout       time.Duration `env:"TASKFLOW_HTTP_IDLE_TIMEOUT" default:"120s"`
	ReadHeaderTimeout time.Duration `env:"TASKFLOW_HTTP_READ_HEADER_TIMEOUT" default:"5s"`
	MaxHeaderBytes    int           `env:"TASKFLOW_HTTP_MAX_HEADER_BYTES" default:"1048576"`
	// Meeting audio is uploaded inline as base64, so the body limit is generous.
	MaxBodyBytes int64 `env:"TASKFLOW_HTTP_MAX_BODY_BYTES" default:"33554432"`

	// TLS configuration for HTTPS
	TLSEnabled  bool   `env:"TASKFLOW_TLS_ENABLED"`
	TLSCertFile string `env:"TASKFLOW_TLS_CERT_FILE"`
	TLSKeyFile  string `env:"TASKFLOW_TLS_KEY_FILE"`
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	if c.TLSEnabled && (c.TLSCertFile == "" || c.TLSKeyFile == "") {
		return errors.New("TASKFLOW_TLS_CERT_FILE and TASKFLOW_TLS_KEY_FILE are required when TLS is enabled")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("TASKFLOW_HTTP_MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes)
	}
	return nil
}

// AuthConfig holds session and authenticator configuration.
type AuthConfig struct {
	SessionTTL       time.Duration `env:"TASKFLOW_SESSION_TTL" default:"168h"` // 0 = never expires
	OperationTimeout time.Duration `env:"TASKFLOW_AUTH_OPERATION_TIMEOUT" default:"5s"`
	UpdateQueueSize  int           `env:"TASKFLOW_AUTH_UPDATE_QUEUE_SIZE" default:"1000"`
}

// GenAIConfig holds configuration for the meeting extractor.
// An empty APIKey disables meeting analysis.
type GenAIConfig struct {
	APIKey   string        `env:"TASKFLOW_GENAI_API_KEY"`
	Model    string        `env:"TASKFLOW_GENAI_MODEL" default:"gemini-2.5-flash"`
	Endpoint string        `env:"TASKFLOW_GENAI_ENDPOINT"`
	Timeout  time.Duration `env:"TASKFLOW_GENAI_TIMEOUT" default:"60s"`
}

// Enabled reports whether an extractor can be constructed.
func (c *GenAIConfig) Enabled() bool {
	return c.APIKey != ""
}

// ObservabilityConfig holds observability configuration.
type ObservabilityConfig struct {
	OTelEnabled bool   `env:"TASKFLOW_OTEL_ENABLED"`
	ServiceName string `env:"OTEL_SERVICE_NAME" default:"taskflow"`
}

// LoadServerConfig loads and validates server configuration from environment.
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	return cfg, nil
}
