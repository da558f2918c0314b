package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/etfsave/internal/common"
	"github.com/Veraticus/etfsave/internal/config"
	"github.com/Veraticus/etfsave/internal/storage"
)

// loadConfig builds the run configuration from viper.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Config{}, common.NewUserError("invalid configuration", err)
	}
	return cfg, nil
}

// overrideSources applies the source flags of cmd to cfg. watchlistFlag names
// the flag carrying the watch-list source; "previous" is read when defined.
func overrideSources(cmd *cobra.Command, cfg *config.Config, watchlistFlag string) error {
	if f := cmd.Flags().Lookup(watchlistFlag); f != nil && f.Changed {
		cfg.WatchlistSource = strings.ToLower(f.Value.String())
	}
	if f := cmd.Flags().Lookup("previous"); f != nil && f.Changed {
		cfg.PreviousSource = strings.ToLower(f.Value.String())
	}
	if err := cfg.Validate(); err != nil {
		return common.NewUserError("invalid flag value", err)
	}
	return nil
}

// openHistory opens the run history database named in cfg.
func openHistory(ctx context.Context, cfg config.Config) (*storage.SQLiteStorage, error) {
	if cfg.DatabasePath == "" {
		return nil, common.NewUserError("run history is disabled; set database_path",
			fmt.Errorf("%w: database_path", common.ErrMissingConfig))
	}

	store, err := storage.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return store, nil
}

// printOut writes s and a newline to the command's output.
func printOut(cmd *cobra.Command, s string) {
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), s); err != nil {
		slog.Warn("Failed to write output", "error", err)
	}
}

func closeQuietly(c io.Closer) {
	if err := c.Close(); err != nil {
		slog.Warn("Failed to close", "error", err)
	}
}
