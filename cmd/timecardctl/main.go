// Command timecardctl calculates timecard days and inspects stored timecards.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "timecardctl",
		Short: "Timecard calculation and audit tool",
		Long: `timecardctl prices single days from raw punches and inspects timecards
stored in a SQLite database: recompute header totals or print the audit trail.`,
		SilenceUsage: true,
	}
	root.AddCommand(newCalcCmd())
	root.AddCommand(newRecomputeCmd())
	root.AddCommand(newAuditCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
