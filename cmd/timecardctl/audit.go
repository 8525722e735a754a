package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/timecard-engine/config"
	"github.com/warp/timecard-engine/timecard"
)

func newAuditCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "audit <timecard-id>",
		Short: "Print a timecard's audit trail, one block per change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, closeFn, err := openEngine(dbPath)
			if err != nil {
				return err
			}
			defer closeFn()

			groups, err := engine.AuditTrail(cmd.Context(), timecard.HeaderID(args[0]))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(groups) == 0 {
				fmt.Fprintln(out, "No changes recorded.")
				return nil
			}
			for _, g := range groups {
				fmt.Fprintf(out, "%s  %s by %s  [%s]\n",
					g.ChangedAt.UTC().Format(time.RFC3339), g.ActionType, g.ChangedBy, g.ChangeID)
				if g.Reason != "" {
					fmt.Fprintf(out, "  reason: %s\n", g.Reason)
				}
				for _, e := range g.Entries {
					day := "-"
					if e.WorkDate != nil {
						day = e.WorkDate.String()
					}
					fmt.Fprintf(out, "  %-10s %-12s %s -> %s\n", day, e.Field, orEmpty(e.OldValue), orEmpty(e.NewValue))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", config.FromEnv().DBPath, "SQLite database path")
	return cmd
}

func orEmpty(s *string) string {
	if s == nil {
		return "(empty)"
	}
	return *s
}
