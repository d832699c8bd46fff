package env

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type leafConfig struct {
	Name    string        `env:"TEST_LEAF_NAME" default:"fallback"`
	Count   int           `env:"TEST_LEAF_COUNT"`
	Enabled bool          `env:"TEST_LEAF_ENABLED"`
	Timeout time.Duration `env:"TEST_LEAF_TIMEOUT" default:"5s"`
}

type nestedConfig struct {
	Leaf leafConfig
	Root string `env:"TEST_ROOT"`
}

func TestLoadBasicTypes(t *testing.T) {
	t.Setenv("TEST_LEAF_NAME", "from-env")
	t.Setenv("TEST_LEAF_COUNT", "42")
	t.Setenv("TEST_LEAF_ENABLED", "true")
	t.Setenv("TEST_LEAF_TIMEOUT", "1m30s")

	var cfg leafConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "from-env", cfg.Name)
	assert.Equal(t, 42, cfg.Count)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
}

func TestLoadDefaultsApplyWhenUnset(t *testing.T) {
	var cfg leafConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "fallback", cfg.Name)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Zero(t, cfg.Count)
}

func TestLoadDefaultsDoNotOverridePreset(t *testing.T) {
	cfg := leafConfig{Name: "preset", Timeout: time.Second}
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "preset", cfg.Name)
	assert.Equal(t, time.Second, cfg.Timeout)
}

func TestLoadNestedStruct(t *testing.T) {
	t.Setenv("TEST_ROOT", "top")
	t.Setenv("TEST_LEAF_COUNT", "7")

	var cfg nestedConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "top", cfg.Root)
	assert.Equal(t, 7, cfg.Leaf.Count)
	assert.Equal(t, "fallback", cfg.Leaf.Name)
}

func TestLoadInvalidValue(t *testing.T) {
	t.Setenv("TEST_LEAF_COUNT", "not-a-number")

	var cfg leafConfig
	err := Load(&cfg)
	require.Error(t, err)

	var invalid ErrInvalidValue
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "TEST_LEAF_COUNT", invalid.EnvVar)
}

func TestLoadRejectsNonStructPointer(t *testing.T) {
	var s string
	assert.Error(t, Load(&s))
	assert.Error(t, Load(leafConfig{}))
}

type validatedConfig struct {
	Port int `env:"TEST_VALIDATED_PORT"`
}

func (c *validatedConfig) Validate() error {
	if c.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

type wrapperConfig struct {
	Inner validatedConfig
}

func TestLoadRunsNestedValidators(t *testing.T) {
	var cfg wrapperConfig
	err := Load(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port must be positive")

	t.Setenv("TEST_VALIDATED_PORT", "8081")
	require.NoError(t, Load(&cfg))
	assert.Equal(t, 8081, cfg.Inner.Port)
}
