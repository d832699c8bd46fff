package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerConfigDefaults(t *testing.T) {
	t.Setenv("OPSDESK_DB_DSN", "postgres://localhost/opsdesk")

	cfg, err := LoadServerConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, AttachmentsFS, cfg.Attachments.Backend)
	assert.Equal(t, "./opsdesk-data", cfg.Attachments.FSDir)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "opsdesk", cfg.Observability.ServiceName)
}

func TestLoadServerConfigPostgresRequiresDSN(t *testing.T) {
	t.Setenv("OPSDESK_DB_DSN", "")

	_, err := LoadServerConfig()
	assert.ErrorIs(t, err, ErrDSNRequired)
}

func TestLoadServerConfigSQLite(t *testing.T) {
	t.Setenv("OPSDESK_DB_DRIVER", "sqlite")
	t.Setenv("OPSDESK_DB_SQLITE_PATH", "/tmp/opsdesk.db")

	cfg, err := LoadServerConfig()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/tmp/opsdesk.db", cfg.Database.SQLitePath)
}

func TestLoadServerConfigSQLiteRequiresPath(t *testing.T) {
	t.Setenv("OPSDESK_DB_DRIVER", "sqlite")

	_, err := LoadServerConfig()
	assert.ErrorIs(t, err, ErrSQLitePathRequired)
}

func TestLoadServerConfigUnknownDriver(t *testing.T) {
	t.Setenv("OPSDESK_DB_DRIVER", "oracle")

	_, err := LoadServerConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown OPSDESK_DB_DRIVER")
}

func TestLoadServerConfigGCSRequiresBucket(t *testing.T) {
	t.Setenv("OPSDESK_DB_DSN", "postgres://localhost/opsdesk")
	t.Setenv("OPSDESK_ATTACHMENTS_BACKEND", "gcs")

	_, err := LoadServerConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPSDESK_ATTACHMENTS_GCS_BUCKET")
}

func TestLoadServerConfigOverrides(t *testing.T) {
	t.Setenv("OPSDESK_DB_DSN", "postgres://localhost/opsdesk")
	t.Setenv("OPSDESK_HTTP_PORT", "9090")
	t.Setenv("OPSDESK_NOTIFY_POLL_INTERVAL", "3s")
	t.Setenv("OPSDESK_OTEL_ENABLED", "true")

	cfg, err := LoadServerConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, 3*time.Second, cfg.Notify.PollInterval)
	assert.True(t, cfg.Observability.OTelEnabled)
}

func TestLoadAPIKeyGenConfigValidation(t *testing.T) {
	t.Setenv("OPSDESK_DB_DSN", "postgres://localhost/opsdesk")

	_, err := LoadAPIKeyGenConfig("", "ava@example.com", "staff", "ci-key", 0)
	assert.ErrorContains(t, err, "staff name is required")

	_, err = LoadAPIKeyGenConfig("Ava", "ava@example.com", "staff", "", 0)
	assert.ErrorContains(t, err, "key name is required")

	_, err = LoadAPIKeyGenConfig("Ava", "ava@example.com", "staff", "ci-key", -1)
	assert.ErrorContains(t, err, "days must be >= 0")

	cfg, err := LoadAPIKeyGenConfig("Ava", "ava@example.com", "admin", "ci-key", 30)
	require.NoError(t, err)
	assert.Equal(t, "admin", cfg.StaffRole)
	assert.Equal(t, 30, cfg.DaysValid)
}
