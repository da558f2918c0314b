// Package config provides configuration for the pipeline and its adapters.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/etfsave/internal/common"
	"github.com/Veraticus/etfsave/internal/sheets"
)

// Where the previous snapshot comes from.
const (
	PreviousFromGit     = "git"
	PreviousFromHistory = "history"
	PreviousFromFile    = "file"
)

// Where the watch-list comes from. Auto prefers a remote source and falls back
// to the local file.
const (
	WatchlistAuto   = "auto"
	WatchlistFile   = "file"
	WatchlistGAS    = "gas"
	WatchlistSheets = "sheets"
)

// DefaultTimeout bounds every HTTP call.
const DefaultTimeout = 15 * time.Second

// Config is the explicit configuration passed into the pipeline.
type Config struct {
	Sheets          sheets.Config
	RemoteURL       string
	DataPath        string
	ChangelogPath   string
	WatchlistPath   string
	DatabasePath    string
	PreviousSource  string
	WatchlistSource string
	ChangelogURLs   []string
	Timeout         time.Duration
	StageAfterSync  bool
	AllowStale      bool
	Forward         bool
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Sheets:          sheets.DefaultConfig(),
		DataPath:        "data.json",
		ChangelogPath:   "changelog.json",
		WatchlistPath:   "list.txt",
		PreviousSource:  PreviousFromGit,
		WatchlistSource: WatchlistAuto,
		Timeout:         DefaultTimeout,
		Forward:         true,
	}
}

// SetDefaults registers Defaults with v so unset keys resolve to them.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("remote_url", d.RemoteURL)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("data_path", d.DataPath)
	v.SetDefault("changelog_path", d.ChangelogPath)
	v.SetDefault("watchlist_path", d.WatchlistPath)
	v.SetDefault("database_path", d.DatabasePath)
	v.SetDefault("previous_source", d.PreviousSource)
	v.SetDefault("watchlist_source", d.WatchlistSource)
	v.SetDefault("forward", d.Forward)
	v.SetDefault("changelog.urls", []string{})
	v.SetDefault("changelog.stage", false)
	v.SetDefault("changelog.allow_stale", false)
	v.SetDefault("sheets.manage_sheet", d.Sheets.ManageSheet)
	v.SetDefault("sheets.result_sheet", d.Sheets.ResultSheet)
	v.SetDefault("sheets.batch_size", d.Sheets.BatchSize)
	v.SetDefault("sheets.enable_formatting", d.Sheets.EnableFormatting)
}

// Load builds a Config from v. Google credentials fall back to the
// GOOGLE_SHEETS_* variables when v leaves them unset.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	c := Config{
		RemoteURL:       strings.TrimSpace(v.GetString("remote_url")),
		Timeout:         v.GetDuration("timeout"),
		DataPath:        ExpandPath(v.GetString("data_path")),
		ChangelogPath:   ExpandPath(v.GetString("changelog_path")),
		WatchlistPath:   ExpandPath(v.GetString("watchlist_path")),
		DatabasePath:    ExpandPath(v.GetString("database_path")),
		PreviousSource:  strings.ToLower(v.GetString("previous_source")),
		WatchlistSource: strings.ToLower(v.GetString("watchlist_source")),
		Forward:         v.GetBool("forward"),
		ChangelogURLs:   v.GetStringSlice("changelog.urls"),
		StageAfterSync:  v.GetBool("changelog.stage"),
		AllowStale:      v.GetBool("changelog.allow_stale"),
	}

	c.Sheets = loadSheets(v)

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// loadSheets reads the sheets.* keys. Direct GOOGLE_SHEETS_* variables win
// over the config file.
func loadSheets(v *viper.Viper) sheets.Config {
	sc := sheets.Config{
		ClientID:           v.GetString("sheets.client_id"),
		ClientSecret:       v.GetString("sheets.client_secret"),
		RefreshToken:       v.GetString("sheets.refresh_token"),
		ServiceAccountPath: v.GetString("sheets.service_account_path"),
		SpreadsheetID:      v.GetString("sheets.spreadsheet_id"),
		ManageSheet:        v.GetString("sheets.manage_sheet"),
		ResultSheet:        v.GetString("sheets.result_sheet"),
		BatchSize:          v.GetInt("sheets.batch_size"),
		EnableFormatting:   v.GetBool("sheets.enable_formatting"),
	}
	sc.LoadFromEnv()
	sc.ServiceAccountPath = ExpandPath(sc.ServiceAccountPath)
	return sc
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", common.ErrInvalidConfig)
	}
	if c.DataPath == "" || c.ChangelogPath == "" {
		return fmt.Errorf("%w: data and changelog paths are required", common.ErrMissingConfig)
	}

	switch c.PreviousSource {
	case PreviousFromGit, PreviousFromFile:
	case PreviousFromHistory:
		if c.DatabasePath == "" {
			return fmt.Errorf("%w: previous_source %q needs database_path", common.ErrMissingConfig, c.PreviousSource)
		}
	default:
		return fmt.Errorf("%w: unknown previous_source %q", common.ErrInvalidConfig, c.PreviousSource)
	}

	switch c.WatchlistSource {
	case WatchlistAuto, WatchlistFile:
	case WatchlistGAS:
		if c.RemoteURL == "" {
			return fmt.Errorf("%w: watchlist_source %q needs remote_url", common.ErrMissingConfig, c.WatchlistSource)
		}
	case WatchlistSheets:
		if err := c.Sheets.Validate(); err != nil {
			return fmt.Errorf("%w: sheets: %w", common.ErrInvalidConfig, err)
		}
	default:
		return fmt.Errorf("%w: unknown watchlist_source %q", common.ErrInvalidConfig, c.WatchlistSource)
	}

	return nil
}

// SheetsUsable reports whether the Sheets adapters can be built.
func (c *Config) SheetsUsable() bool {
	return c.Sheets.Enabled() && c.Sheets.Validate() == nil
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}
