package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/roster/app"
	"github.com/kilianp07/roster/infra/logger"
	"github.com/kilianp07/roster/pkg/export"
)

var (
	solveOutput string
	solveFormat string
	solveHours  bool
)

var solveCmd = &cobra.Command{
	Use:   "solve <input>...",
	Short: "Build and solve a roster for each input file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(solveFormat); err != nil {
			return err
		}
		return withService(func(ctx context.Context, svc *app.Service) error {
			return runSolve(ctx, svc, cmd.OutOrStdout(), args)
		})
	},
}

func init() {
	solveCmd.Flags().StringVarP(&solveOutput, "output", "o", "", "output file, or directory when several inputs are given (default stdout)")
	solveCmd.Flags().StringVar(&solveFormat, "format", "json", "output format: json or csv")
	solveCmd.Flags().BoolVar(&solveHours, "hours", false, "with csv, write per-assistant hours instead of assignments")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(ctx context.Context, svc *app.Service, stdout io.Writer, paths []string) error {
	log := logger.New("solve")
	items, batchErr := svc.SolveBatch(ctx, paths)
	for _, it := range items {
		if it.Err != nil {
			log.Errorf("%s: %v", it.Path, it.Err)
			continue
		}
		res := it.Outcome.Result
		log.Infof("%s: run %s status=%s fairness=%.1f", it.Path, it.Outcome.RunID, res.Status, it.Outcome.Fairness.Score)
		if err := writeOutcome(stdout, it, len(items) > 1); err != nil {
			return err
		}
	}
	return batchErr
}

func writeOutcome(stdout io.Writer, it app.BatchItem, many bool) error {
	w := stdout
	if solveOutput != "" {
		path := solveOutput
		if many {
			if err := os.MkdirAll(solveOutput, 0o755); err != nil {
				return err
			}
			base := strings.TrimSuffix(filepath.Base(it.Path), filepath.Ext(it.Path))
			path = filepath.Join(solveOutput, base+"."+solveFormat)
		}
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	res := it.Outcome.Result
	switch {
	case solveFormat == "json":
		return export.WriteResultJSON(w, res)
	case solveHours:
		return export.WriteHoursCSV(w, res)
	default:
		return export.WriteResultCSV(w, res, it.Outcome.Shifts)
	}
}

func checkFormat(f string) error {
	if f != "json" && f != "csv" {
		return fmt.Errorf("unsupported format %q", f)
	}
	return nil
}
