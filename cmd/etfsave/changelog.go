package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/etfsave/internal/changelog"
	"github.com/Veraticus/etfsave/internal/cli"
	"github.com/Veraticus/etfsave/internal/config"
	"github.com/Veraticus/etfsave/internal/jsonfile"
	"github.com/Veraticus/etfsave/internal/model"
	"github.com/Veraticus/etfsave/internal/snapshot"
	"github.com/Veraticus/etfsave/internal/vcs"
)

func changelogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "changelog",
		Short: "Build, inspect, and sync the fee changelog",
	}

	cmd.AddCommand(changelogBuildCmd())
	cmd.AddCommand(changelogShowCmd())
	cmd.AddCommand(changelogSyncCmd())

	return cmd
}

func changelogBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Record fee changes between two snapshots",
		Long: `Compare the current snapshot with a previous one and record the fee changes
in the changelog. Without --previous the snapshot committed at HEAD is used.`,
		Args: cobra.NoArgs,
		RunE: runChangelogBuild,
	}

	cmd.Flags().String("previous", "", "previous snapshot file (default: data.json at git HEAD)")
	cmd.Flags().String("current", "", "current snapshot file (default: data_path)")
	cmd.Flags().String("date", "", "batch date as YYYY-MM-DD (default: today)")

	return cmd
}

func runChangelogBuild(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	currentPath, _ := cmd.Flags().GetString("current")
	if currentPath == "" {
		currentPath = cfg.DataPath
	}
	current, exists, err := jsonfile.ReadArray(currentPath)
	if err != nil {
		return fmt.Errorf("failed to read current snapshot: %w", err)
	}
	if !exists {
		return fmt.Errorf("current snapshot %s does not exist", currentPath)
	}

	var provider snapshot.Provider = &snapshot.GitProvider{Git: vcs.Git{}, Path: currentPath}
	if previousPath, _ := cmd.Flags().GetString("previous"); previousPath != "" {
		provider = &snapshot.FileProvider{Path: config.ExpandPath(previousPath)}
	}
	previous, err := provider.Previous(ctx)
	if err != nil {
		return err
	}

	date, err := parseDate(cmd)
	if err != nil {
		return err
	}

	result, err := changelog.Build(ctx, changelog.NewFileStore(cfg.ChangelogPath), previous, current, date)
	if err != nil {
		return err
	}

	printOut(cmd, cli.RenderChanges(result.Changes))
	printOut(cmd, cli.FormatSuccess(fmt.Sprintf("Changelog %s (%d batches)", result.Action, len(result.Changelog))))
	return nil
}

func parseDate(cmd *cobra.Command) (time.Time, error) {
	raw, _ := cmd.Flags().GetString("date")
	if raw == "" {
		return time.Now(), nil
	}
	date, err := time.ParseInLocation(model.DateLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: %w", raw, err)
	}
	return date, nil
}

func changelogShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show recent changelog batches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			cl, exists, err := changelog.NewFileStore(cfg.ChangelogPath).Load()
			if err != nil {
				return err
			}
			if !exists {
				printOut(cmd, cli.FormatInfo("No changelog at "+cfg.ChangelogPath))
				return nil
			}

			limit, _ := cmd.Flags().GetInt("limit")
			printOut(cmd, cli.RenderChangelog(cl, limit))
			return nil
		},
	}

	cmd.Flags().IntP("limit", "n", 5, "number of batches to show (0 for all)")

	return cmd
}

func changelogSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Replace the local changelog with the published one",
		Long: `Download the changelog served by production and write it locally when it
differs. URLs are tried in order: --url flags (or changelog.urls), then
` + changelog.RemoteURLEnv + `, then the production defaults.

With --allow-fail (or ` + changelog.AllowStaleEnv + `=1) a failed download keeps the local
file and exits successfully.`,
		Args: cobra.NoArgs,
		RunE: runChangelogSync,
	}

	cmd.Flags().StringArray("url", nil, "remote changelog URL (repeatable)")
	cmd.Flags().Duration("timeout", changelog.DefaultSyncTimeout, "HTTP timeout per URL")
	cmd.Flags().Bool("stage", false, "git add the changelog after writing")
	cmd.Flags().Bool("allow-fail", false, "keep the local changelog if every URL fails")

	return cmd
}

func runChangelogSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	explicit, _ := cmd.Flags().GetStringArray("url")
	if len(explicit) == 0 {
		explicit = cfg.ChangelogURLs
	}
	urls := changelog.CandidateURLs(explicit, os.Getenv(changelog.RemoteURLEnv), changelog.DefaultRemoteURLs)

	timeout, _ := cmd.Flags().GetDuration("timeout")
	syncer := changelog.NewSyncer(cfg.ChangelogPath, urls, timeout)
	syncer.Logger = slog.Default()

	stage, _ := cmd.Flags().GetBool("stage")
	if stage || cfg.StageAfterSync {
		syncer.Stager = vcs.Git{}
	}

	allowFail, _ := cmd.Flags().GetBool("allow-fail")
	allowFail = allowFail || cfg.AllowStale || changelog.AllowStaleFromEnv()

	result, err := syncer.Sync(ctx)
	if err != nil {
		if allowFail && ctx.Err() == nil {
			printOut(cmd, cli.FormatWarning("Changelog sync failed; keeping local copy: "+err.Error()))
			return nil
		}
		return err
	}

	if result.Changed {
		printOut(cmd, cli.FormatSuccess(fmt.Sprintf("Updated %s from %s (%d batches)", cfg.ChangelogPath, result.URL, result.Batches)))
	} else {
		printOut(cmd, cli.FormatInfo(fmt.Sprintf("%s already matches %s", cfg.ChangelogPath, result.URL)))
	}
	return nil
}
