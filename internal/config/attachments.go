package config

import "fmt"

// Supported attachment backends.
const (
	AttachmentsFS  = "fs"
	AttachmentsGCS = "gcs"
)

// AttachmentsConfig holds blob store configuration for uploaded images.
type AttachmentsConfig struct {
	// Backend selects the blob store: "fs" or "gcs".
	Backend string `env:"OPSDESK_ATTACHMENTS_BACKEND" default:"fs"`

	// FSDir is the base directory for the fs backend.
	FSDir string `env:"OPSDESK_ATTACHMENTS_FS_DIR" default:"./opsdesk-data"`

	// GCSBucket is the bucket name for the gcs backend.
	GCSBucket string `env:"OPSDESK_ATTACHMENTS_GCS_BUCKET"`
}

// Validate validates the attachments configuration.
func (c *AttachmentsConfig) Validate() error {
	switch c.Backend {
	case AttachmentsFS:
		if c.FSDir == "" {
			return fmt.Errorf("OPSDESK_ATTACHMENTS_FS_DIR is required for the fs backend")
		}
	case AttachmentsGCS:
		if c.GCSBucket == "" {
			return fmt.Errorf("OPSDESK_ATTACHMENTS_GCS_BUCKET is required for the gcs backend")
		}
	default:
		return fmt.Errorf("unknown OPSDESK_ATTACHMENTS_BACKEND: %s", c.Backend)
	}
	return nil
}
