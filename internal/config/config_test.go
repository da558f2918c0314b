package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/etfsave/internal/common"
	"github.com/Veraticus/etfsave/internal/sheets"
)

func clearSheetsEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{
		"GOOGLE_SHEETS_CLIENT_ID",
		"GOOGLE_SHEETS_CLIENT_SECRET",
		"GOOGLE_SHEETS_REFRESH_TOKEN",
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH",
		"GOOGLE_SHEETS_SPREADSHEET_ID",
	} {
		t.Setenv(env, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearSheetsEnv(t)

	c, err := Load(viper.New())
	require.NoError(t, err)

	d := Defaults()
	assert.Equal(t, d.DataPath, c.DataPath)
	assert.Equal(t, d.ChangelogPath, c.ChangelogPath)
	assert.Equal(t, d.WatchlistPath, c.WatchlistPath)
	assert.Equal(t, 15*time.Second, c.Timeout)
	assert.Equal(t, PreviousFromGit, c.PreviousSource)
	assert.Equal(t, WatchlistAuto, c.WatchlistSource)
	assert.True(t, c.Forward)
	assert.Empty(t, c.ChangelogURLs)
	assert.Equal(t, sheets.DefaultManageSheet, c.Sheets.ManageSheet)
	assert.False(t, c.SheetsUsable())
}

func TestLoad_ConfigFile(t *testing.T) {
	clearSheetsEnv(t)

	yaml := `
remote_url: https://script.google.com/macros/s/abc/exec
timeout: 30s
data_path: site/data.json
database_path: $ETFSAVE_TEST_DIR/history.db
previous_source: History
changelog:
  urls:
    - https://mirror.example/changelog.json
  stage: true
  allow_stale: true
sheets:
  service_account_path: /keys/sa.json
  spreadsheet_id: sheet-123
  batch_size: 50
`
	t.Setenv("ETFSAVE_TEST_DIR", "/var/lib/etfsave")

	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))

	c, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "https://script.google.com/macros/s/abc/exec", c.RemoteURL)
	assert.Equal(t, 30*time.Second, c.Timeout)
	assert.Equal(t, "site/data.json", c.DataPath)
	assert.Equal(t, "/var/lib/etfsave/history.db", c.DatabasePath)
	assert.Equal(t, PreviousFromHistory, c.PreviousSource)
	assert.Equal(t, []string{"https://mirror.example/changelog.json"}, c.ChangelogURLs)
	assert.True(t, c.StageAfterSync)
	assert.True(t, c.AllowStale)
	assert.Equal(t, "sheet-123", c.Sheets.SpreadsheetID)
	assert.Equal(t, 50, c.Sheets.BatchSize)
	assert.Equal(t, sheets.DefaultResultSheet, c.Sheets.ResultSheet)
	assert.True(t, c.SheetsUsable())
}

func TestLoad_SheetsEnvOverride(t *testing.T) {
	clearSheetsEnv(t)
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "from-env")

	v := viper.New()
	v.Set("sheets.spreadsheet_id", "from-config")

	c, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.Sheets.SpreadsheetID)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		mutate  func(*Config)
		wantErr error
		name    string
	}{
		{
			name:   "defaults",
			mutate: func(*Config) {},
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Timeout = 0 },
			wantErr: common.ErrInvalidConfig,
		},
		{
			name:    "missing data path",
			mutate:  func(c *Config) { c.DataPath = "" },
			wantErr: common.ErrMissingConfig,
		},
		{
			name:    "history without database",
			mutate:  func(c *Config) { c.PreviousSource = PreviousFromHistory },
			wantErr: common.ErrMissingConfig,
		},
		{
			name: "history with database",
			mutate: func(c *Config) {
				c.PreviousSource = PreviousFromHistory
				c.DatabasePath = "history.db"
			},
		},
		{
			name:    "unknown previous source",
			mutate:  func(c *Config) { c.PreviousSource = "svn" },
			wantErr: common.ErrInvalidConfig,
		},
		{
			name:    "gas without url",
			mutate:  func(c *Config) { c.WatchlistSource = WatchlistGAS },
			wantErr: common.ErrMissingConfig,
		},
		{
			name:    "sheets without credentials",
			mutate:  func(c *Config) { c.WatchlistSource = WatchlistSheets },
			wantErr: common.ErrInvalidConfig,
		},
		{
			name:    "unknown watch-list source",
			mutate:  func(c *Config) { c.WatchlistSource = "ftp" },
			wantErr: common.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Defaults()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("ETFSAVE_TEST_VAR", "expanded")

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"~", home},
		{"~/data.json", filepath.Join(home, "data.json")},
		{"$ETFSAVE_TEST_VAR/data.json", "expanded/data.json"},
		{"/abs/path", "/abs/path"},
		{"relative~/path", "relative~/path"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.input))
		})
	}
}
