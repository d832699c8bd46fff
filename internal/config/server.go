package config

import (
	"fmt"
	"time"

	"github.com/rostam/opsdesk/internal/env"
)

// ServerConfig holds all configuration for the server binary.
type ServerConfig struct {
	Database      DatabaseConfig
	HTTP          HTTPConfig
	Auth          AuthConfig
	Attachments   AttachmentsConfig
	Notify        NotifyConfig
	Observability ObservabilityConfig

	ShutdownTimeout time.Duration `env:"OPSDESK_SHUTDOWN_TIMEOUT" default:"30s"`
}

// HTTPConfig holds HTTP server configuration. Zero values fall back to
// the HTTP package defaults.
type HTTPConfig struct {
	Host              string        `env:"OPSDESK_HTTP_HOST"`
	Port              string        `env:"OPSDESK_HTTP_PORT"`
	ReadTimeout       time.Duration `env:"OPSDESK_HTTP_READ_TIMEOUT"`
	WriteTimeout      time.Duration `env:"OPSDESK_HTTP_WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `env:"OPSDESK_HTTP_IDLE_TIMEOUT"`
	ReadHeaderTimeout time.Duration `env:"OPSDESK_HTTP_READ_HEADER_TIMEOUT"`
	MaxHeaderBytes    int           `env:"OPSDESK_HTTP_MAX_HEADER_BYTES"`
	MaxBodyBytes      int64         `env:"OPSDESK_HTTP_MAX_BODY_BYTES"`
}

// AuthConfig holds authenticator configuration.
type AuthConfig struct {
	OperationTimeout time.Duration `env:"OPSDESK_AUTH_OPERATION_TIMEOUT"`
	UpdateQueueSize  int           `env:"OPSDESK_AUTH_UPDATE_QUEUE_SIZE"`
}

// NotifyConfig holds notification dispatcher configuration. Zero values
// fall back to the dispatcher defaults.
type NotifyConfig struct {
	PollInterval     time.Duration `env:"OPSDESK_NOTIFY_POLL_INTERVAL"`
	OperationTimeout time.Duration `env:"OPSDESK_NOTIFY_OPERATION_TIMEOUT"`
	BatchSize        int           `env:"OPSDESK_NOTIFY_BATCH_SIZE"`
	MaxAttempts      int           `env:"OPSDESK_NOTIFY_MAX_ATTEMPTS"`
}

// ObservabilityConfig holds observability configuration.
type ObservabilityConfig struct {
	OTelEnabled bool   `env:"OPSDESK_OTEL_ENABLED"`
	ServiceName string `env:"OTEL_SERVICE_NAME" default:"opsdesk"`
}

// LoadServerConfig loads and validates server configuration from environment.
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	return cfg, nil
}
