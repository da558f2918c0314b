package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/etfsave/internal/cli"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect archived runs",
		Long: `Inspect the runs archived in the history database (database_path).
Every successful run stores its snapshot there with a run ID.`,
	}

	cmd.AddCommand(historyListCmd())
	cmd.AddCommand(historyShowCmd())
	cmd.AddCommand(historyFundCmd())
	cmd.AddCommand(historyMigrateCmd())

	return cmd
}

func historyListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openHistory(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeQuietly(store)

			limit, _ := cmd.Flags().GetInt("limit")
			runs, err := store.ListRuns(ctx, limit)
			if err != nil {
				return err
			}

			printOut(cmd, cli.RenderRuns(runs))
			return nil
		},
	}

	cmd.Flags().IntP("limit", "n", 20, "number of runs to show (0 for all)")

	return cmd
}

func historyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [run-id]",
		Short: "Show the snapshot of a run (default: latest)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openHistory(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeQuietly(store)

			run, err := store.LatestRun(ctx)
			if len(args) == 1 {
				run, err = store.GetRun(ctx, args[0])
			}
			if err != nil {
				return err
			}

			printOut(cmd, cli.FormatTitle(fmt.Sprintf("Run %s (%s)", run.ID, run.CreatedAt.Local().Format("2006-01-02 15:04"))))
			printOut(cmd, cli.RenderRecords(run.Snapshot))
			return nil
		},
	}
}

func historyFundCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fund <ticker>",
		Short: "Show one fund's recorded costs across runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openHistory(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeQuietly(store)

			obs, err := store.FundHistory(ctx, args[0])
			if err != nil {
				return err
			}

			if len(obs) > 0 {
				printOut(cmd, cli.FormatTitle(fmt.Sprintf("%s %s", obs[0].Record.TickerCode, obs[0].Record.TickerName)))
			}
			printOut(cmd, cli.RenderFundHistory(obs))
			return nil
		},
	}
}

func historyMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the history database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openHistory(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeQuietly(store)

			version, err := store.SchemaVersion(ctx)
			if err != nil {
				return err
			}

			printOut(cmd, cli.FormatSuccess(fmt.Sprintf("%s is at schema version %d", store.Path(), version)))
			return nil
		},
	}
}
