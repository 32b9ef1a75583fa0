package cmd

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/roster/app"
	"github.com/kilianp07/roster/core/runlog"
)

var (
	historyStatus string
	historyRunID  string
	historySince  time.Duration
	historyLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded solve runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withService(func(ctx context.Context, svc *app.Service) error {
			q := runlog.Query{Status: historyStatus, RunID: historyRunID, Limit: historyLimit}
			if historySince > 0 {
				q.Start = time.Now().Add(-historySince)
			}
			recs, err := svc.History(ctx, q)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, r := range recs {
				if err := enc.Encode(r); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyStatus, "status", "", "only runs with this status")
	historyCmd.Flags().StringVar(&historyRunID, "run", "", "only the run with this id")
	historyCmd.Flags().DurationVar(&historySince, "since", 0, "only runs newer than this")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "most recent runs to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}
