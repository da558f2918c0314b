package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidation(t *testing.T) {
	valid := func(mutate func(*Config)) Config {
		c := DefaultConfig()
		c.ServiceAccountPath = "/path/to/key.json"
		c.SpreadsheetID = "sheet-id"
		mutate(&c)
		return c
	}

	tests := []struct {
		name    string
		errMsg  string
		config  Config
		wantErr bool
	}{
		{
			name:   "service account",
			config: valid(func(*Config) {}),
		},
		{
			name: "oauth credentials",
			config: valid(func(c *Config) {
				c.ServiceAccountPath = ""
				c.ClientID = "test-client"
				c.ClientSecret = "secret"
				c.RefreshToken = "test-token"
			}),
		},
		{
			name: "partial oauth credentials",
			config: valid(func(c *Config) {
				c.ServiceAccountPath = ""
				c.ClientID = "test-client"
				c.RefreshToken = "test-token"
			}),
			wantErr: true,
			errMsg:  "no authentication method configured",
		},
		{
			name: "both auth methods",
			config: valid(func(c *Config) {
				c.ClientID = "test-client"
				c.ClientSecret = "secret"
				c.RefreshToken = "test-token"
			}),
			wantErr: true,
			errMsg:  "multiple authentication methods",
		},
		{
			name:    "missing spreadsheet",
			config:  valid(func(c *Config) { c.SpreadsheetID = "" }),
			wantErr: true,
			errMsg:  "spreadsheet ID is required",
		},
		{
			name:    "blank sheet name",
			config:  valid(func(c *Config) { c.ResultSheet = "" }),
			wantErr: true,
			errMsg:  "sheet names cannot be empty",
		},
		{
			name:    "zero batch size",
			config:  valid(func(c *Config) { c.BatchSize = 0 }),
			wantErr: true,
			errMsg:  "batch size must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "from-env")
	t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "")

	c := DefaultConfig()
	c.ServiceAccountPath = "/from/config.json"
	c.LoadFromEnv()

	assert.Equal(t, "from-env", c.SpreadsheetID)
	assert.Equal(t, "/from/config.json", c.ServiceAccountPath)
	assert.True(t, c.Enabled())
	assert.False(t, (&Config{}).Enabled())
}
