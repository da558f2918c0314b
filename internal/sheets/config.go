// Package sheets reads the watch-list from and publishes snapshots to Google
// Sheets.
package sheets

import (
	"errors"
	"fmt"
	"os"
)

// Default tab names of the management spreadsheet.
const (
	DefaultManageSheet = "종목관리"
	DefaultResultSheet = "수수료결과"
)

// ErrNoAuth is returned when no credentials are configured.
var ErrNoAuth = errors.New("no authentication method configured")

// Config holds the configuration for the Google Sheets adapters.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	ManageSheet        string
	ResultSheet        string
	BatchSize          int
	EnableFormatting   bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ManageSheet:      DefaultManageSheet,
		ResultSheet:      DefaultResultSheet,
		BatchSize:        1000,
		EnableFormatting: true,
	}
}

// LoadFromEnv overlays credentials and the spreadsheet ID from the
// environment. Unset variables leave the current value alone.
func (c *Config) LoadFromEnv() {
	for env, dst := range map[string]*string{
		"GOOGLE_SHEETS_CLIENT_ID":            &c.ClientID,
		"GOOGLE_SHEETS_CLIENT_SECRET":        &c.ClientSecret,
		"GOOGLE_SHEETS_REFRESH_TOKEN":        &c.RefreshToken,
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH": &c.ServiceAccountPath,
		"GOOGLE_SHEETS_SPREADSHEET_ID":       &c.SpreadsheetID,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
}

// Enabled reports whether a spreadsheet is configured at all.
func (c *Config) Enabled() bool {
	return c.SpreadsheetID != ""
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	hasOAuth := c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
	hasServiceAccount := c.ServiceAccountPath != ""

	if !hasOAuth && !hasServiceAccount {
		return ErrNoAuth
	}

	if hasOAuth && hasServiceAccount {
		return fmt.Errorf("multiple authentication methods configured; use either OAuth2 or service account")
	}

	if c.SpreadsheetID == "" {
		return fmt.Errorf("spreadsheet ID is required")
	}

	if c.ManageSheet == "" || c.ResultSheet == "" {
		return fmt.Errorf("sheet names cannot be empty")
	}

	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}

	return nil
}
