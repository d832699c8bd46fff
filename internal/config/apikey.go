package config

import (
	"fmt"

	"github.com/rostam/opsdesk/internal/env"
)

// APIKeyGenConfig holds all configuration for the apikey binary.
type APIKeyGenConfig struct {
	Database DatabaseConfig

	StaffName  string
	StaffEmail string
	StaffRole  string
	KeyName    string
	DaysValid  int
}

// LoadAPIKeyGenConfig loads and validates apikey generation configuration.
// The staff and key fields come from CLI flags, not environment.
func LoadAPIKeyGenConfig(staffName, staffEmail, staffRole, keyName string, daysValid int) (*APIKeyGenConfig, error) {
	cfg := &APIKeyGenConfig{
		StaffName:  staffName,
		StaffEmail: staffEmail,
		StaffRole:  staffRole,
		KeyName:    keyName,
		DaysValid:  daysValid,
	}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load apikey config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *APIKeyGenConfig) validate() error {
	if c.StaffName == "" {
		return fmt.Errorf("staff name is required (use -staff-name flag)")
	}
	if c.StaffEmail == "" {
		return fmt.Errorf("staff email is required (use -staff-email flag)")
	}
	if c.KeyName == "" {
		return fmt.Errorf("key name is required (use -key-name flag)")
	}
	if c.DaysValid < 0 {
		return fmt.Errorf("days must be >= 0 (0 = never expires)")
	}
	return nil
}
