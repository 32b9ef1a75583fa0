package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kilianp07/roster/app"
	"github.com/kilianp07/roster/pkg/export"
)

var shiftsFormat string

var shiftsCmd = &cobra.Command{
	Use:   "shifts <input>",
	Short: "Expand the operating_hours section of an input file into shifts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(shiftsFormat); err != nil {
			return err
		}
		oh, err := app.LoadOperatingHours(args[0])
		if err != nil {
			return err
		}
		return withService(func(_ context.Context, svc *app.Service) error {
			shifts, err := svc.GenerateShifts(oh)
			if err != nil {
				return err
			}
			if shiftsFormat == "csv" {
				return export.WriteShiftsCSV(cmd.OutOrStdout(), shifts)
			}
			return export.WriteShiftsJSON(cmd.OutOrStdout(), shifts)
		})
	},
}

func init() {
	shiftsCmd.Flags().StringVar(&shiftsFormat, "format", "json", "output format: json or csv")
	rootCmd.AddCommand(shiftsCmd)
}
