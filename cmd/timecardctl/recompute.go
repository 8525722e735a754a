package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/warp/timecard-engine/config"
	"github.com/warp/timecard-engine/factory"
	"github.com/warp/timecard-engine/store/sqlite"
	"github.com/warp/timecard-engine/timecard"
)

func newRecomputeCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "recompute <timecard-id>",
		Short: "Recompute a timecard's totals from its daily entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, closeFn, err := openEngine(dbPath)
			if err != nil {
				return err
			}
			defer closeFn()

			totals, err := engine.RecomputeHeaderTotals(cmd.Context(), timecard.HeaderID(args[0]))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-16s%s\n", "Total hours", totals.TotalHours.StringFixed(timecard.HoursPlaces))
			fmt.Fprintf(out, "%-16s%s\n", "Total break", totals.TotalBreakDuration.StringFixed(timecard.HoursPlaces))
			fmt.Fprintf(out, "%-16s%s\n", "Total pay", totals.TotalPay.StringFixed(timecard.MoneyPlaces))
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", config.FromEnv().DBPath, "SQLite database path")
	return cmd
}

// openEngine opens the store at dbPath and wires an engine over it.
// Logs are discarded; commands print their own results.
func openEngine(dbPath string) (*timecard.Engine, func(), error) {
	store, err := sqlite.New(dbPath)
	if err != nil {
		return nil, nil, err
	}
	cfg := config.FromEnv()
	defaults := factory.Defaults{DefaultBreak: cfg.DefaultBreak, GracePeriod: cfg.GracePeriod}
	engine := timecard.NewEngine(store,
		timecard.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		timecard.WithConfigProvider(factory.NewProjectConfigProvider(store, defaults)),
	)
	return engine, func() { store.Close() }, nil
}
