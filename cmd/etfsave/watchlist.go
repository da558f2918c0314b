package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/etfsave/internal/cli"
	"github.com/Veraticus/etfsave/internal/common"
	"github.com/Veraticus/etfsave/internal/gas"
	"github.com/Veraticus/etfsave/internal/grid"
	"github.com/Veraticus/etfsave/internal/header"
	"github.com/Veraticus/etfsave/internal/matcher"
	"github.com/Veraticus/etfsave/internal/pipeline"
)

func watchlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watchlist",
		Short: "Inspect and maintain the watch-list",
	}

	cmd.PersistentFlags().String("source", "", "watch-list source (auto, file, gas, sheets)")

	cmd.AddCommand(watchlistShowCmd())
	cmd.AddCommand(watchlistPushCmd())

	return cmd
}

func watchlistShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the watch-list as the pipeline would read it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := overrideSources(cmd, &cfg, "source"); err != nil {
				return err
			}
			adapters, err := pipeline.NewAdapters(ctx, cfg, slog.Default())
			if err != nil {
				return err
			}
			source, err := adapters.Watchlist(cfg, slog.Default())
			if err != nil {
				return err
			}

			entries, err := source.Entries(ctx)
			if err != nil {
				return err
			}

			printOut(cmd, cli.RenderWatchlist(entries))
			printOut(cmd, cli.FormatInfo(fmt.Sprintf("%d entries", len(entries))))
			return nil
		},
	}
}

func watchlistPushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push <report-file>",
		Short: "Fill missing standard codes and fund names on the management tab",
		Long: `Look up every watch-list entry that lacks a standard code or fund name in the
fee report by its ticker, and send the values found to the web app, which writes them
into the management tab. Existing values are never overwritten.`,
		Args: cobra.ExactArgs(1),
		RunE: runWatchlistPush,
	}

	cmd.Flags().BoolP("yes", "y", false, "push without asking for confirmation")

	return cmd
}

func runWatchlistPush(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := overrideSources(cmd, &cfg, "source"); err != nil {
		return err
	}
	adapters, err := pipeline.NewAdapters(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}
	if adapters.GAS == nil {
		return common.NewUserError("watchlist push needs remote_url", common.ErrMissingConfig)
	}
	source, err := adapters.Watchlist(cfg, slog.Default())
	if err != nil {
		return err
	}

	g, err := grid.Load(args[0])
	if err != nil {
		return err
	}
	entries, err := source.Entries(ctx)
	if err != nil {
		return err
	}

	suggestions := matcher.Suggest(header.Resolve(g), entries)
	if len(suggestions) == 0 {
		printOut(cmd, cli.FormatInfo("Nothing to fill in"))
		return nil
	}

	updates := make([]gas.ManageUpdate, 0, len(suggestions))
	for _, s := range suggestions {
		updates = append(updates, gas.ManageUpdate{
			Code:         s.Entry.TickerCode,
			StandardCode: s.StandardCode,
			FundName:     s.FundName,
		})
		printOut(cmd, fmt.Sprintf("  %s %s: %s %s", s.Entry.TickerCode, s.Entry.TickerName, s.StandardCode, s.FundName))
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		ok, err := cli.Confirm(ctx, cli.NewNonBlockingReader(os.Stdin), cmd.OutOrStdout(),
			fmt.Sprintf("Push %d updates?", len(updates)))
		if err != nil {
			return err
		}
		if !ok {
			printOut(cmd, cli.FormatWarning("Aborted"))
			return nil
		}
	}

	reply, err := adapters.GAS.UpdateManage(ctx, updates)
	if err != nil {
		return err
	}

	printOut(cmd, cli.FormatSuccess(fmt.Sprintf("Pushed %d updates: %s", len(updates), reply)))
	return nil
}
