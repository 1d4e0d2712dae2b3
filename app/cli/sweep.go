package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	flagAsOf  string
	flagRetry bool
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the overdue sweep once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		asOf := time.Now().UTC()
		if flagAsOf != "" {
			t, err := time.Parse(time.DateOnly, flagAsOf)
			if err != nil {
				return fmt.Errorf("--as-of must be YYYY-MM-DD: %w", err)
			}
			asOf = t
		}

		ctx := cmd.Context()
		d, err := wire(ctx)
		if err != nil {
			return err
		}
		defer d.db.Close()

		n, err := d.sweep.Run(ctx, asOf)
		if err != nil {
			return err
		}
		if flagRetry {
			attached, err := d.payments.RetryPendingSessions(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("payment sessions attached: %d\n", attached)
		}

		dctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		d.dispatcher.Drain(dctx)

		if n == 0 {
			fmt.Println(color.GreenString("no overdue borrows"), "as of", asOf.Format(time.DateOnly))
			return nil
		}
		fmt.Println(color.YellowString("%d overdue borrow(s)", n), "as of", asOf.Format(time.DateOnly))
		return nil
	},
}

func init() {
	sweepCmd.Flags().StringVar(&flagAsOf, "as-of", "", "Sweep date, YYYY-MM-DD (default: today, UTC)")
	sweepCmd.Flags().BoolVar(&flagRetry, "retry-sessions", false, "Also retry payment sessions that are still missing")
}
