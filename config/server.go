package config

import (
	"fmt"

	"github.com/kilianp07/timetable/core/scheduler"
)

// ServerConfig defines settings of the web UI.
type ServerConfig struct {
	// Address is the HTTP listen address.
	Address string `json:"address"`
	// MaxUploadMB bounds the size of an uploaded spreadsheet.
	MaxUploadMB int `json:"max_upload_mb"`
	// DefaultYear pre-fills the year input. Zero means the current year.
	DefaultYear int `json:"default_year"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
	if c.MaxUploadMB == 0 {
		c.MaxUploadMB = 10
	}
}

// Validate checks mandatory fields.
func (c ServerConfig) Validate() error {
	if c.MaxUploadMB < 0 {
		return fmt.Errorf("max_upload_mb must be positive")
	}
	if c.DefaultYear != 0 && (c.DefaultYear < scheduler.MinYear || c.DefaultYear > scheduler.MaxYear) {
		return fmt.Errorf("default_year must be between %d and %d", scheduler.MinYear, scheduler.MaxYear)
	}
	return nil
}

// MaxUploadBytes returns the upload limit in bytes.
func (c ServerConfig) MaxUploadBytes() int64 { return int64(c.MaxUploadMB) << 20 }
