package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/etfsave/internal/cli"
	"github.com/Veraticus/etfsave/internal/pipeline"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <report-file>",
		Short: "Reconcile a fee report against the watch-list",
		Long: `Reconcile the KOFIA fee comparison report against the watch-list.

The report may be an .xlsx workbook, a legacy .xls workbook, an HTML table saved
with an .xls extension, or a CSV/TSV export. Matched funds are written to data.json,
fee changes since the previous snapshot are recorded in changelog.json, and the
snapshot is then forwarded to the configured Google Sheets destinations.`,
		Args: cobra.ExactArgs(1),
		RunE: runRun,
	}

	cmd.Flags().String("watchlist-source", "", "watch-list source (auto, file, gas, sheets)")
	cmd.Flags().String("previous", "", "previous snapshot source (git, history, file)")
	cmd.Flags().Bool("no-forward", false, "skip forwarding the snapshot")
	cmd.Flags().Bool("progress", false, "show a progress bar while reconciling")
	cmd.Flags().Bool("show-records", false, "print the reconciled records")

	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := overrideSources(cmd, &cfg, "watchlist-source"); err != nil {
		return err
	}
	if noForward, _ := cmd.Flags().GetBool("no-forward"); noForward {
		cfg.Forward = false
	}

	built, err := pipeline.FromConfig(ctx, cfg, args[0], nil)
	if err != nil {
		return err
	}
	defer closeQuietly(built)

	if progress, _ := cmd.Flags().GetBool("progress"); progress {
		built.Progress = cli.NewProgress(cmd.ErrOrStderr(), "Reconciling funds").Update
	}

	printOut(cmd, cli.FormatTitle("Reconciling "+args[0]))

	report, err := built.Run(ctx)
	if err != nil {
		return err
	}

	if show, _ := cmd.Flags().GetBool("show-records"); show && len(report.Records) > 0 {
		printOut(cmd, cli.RenderRecords(report.Records))
	}
	if len(report.Changes) > 0 {
		printOut(cmd, cli.RenderChanges(report.Changes))
	}
	printOut(cmd, cli.RenderRunSummary(report))

	return nil
}
