package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/promptlab/promptlab/internal/report"
	"github.com/promptlab/promptlab/internal/runner"
)

func newReportCmd() *cobra.Command {
	var (
		outputDir string
		noCharts  bool
	)

	cmd := &cobra.Command{
		Use:   "report [run-id]",
		Short: "Render the comparison table and charts for a stored run",
		Long: `Regenerate the report artifacts for a past run. With no run ID, the most
recent run is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var runID string
			if len(args) > 0 {
				runID = args[0]
			} else {
				ids, err := runner.ListRuns(outputDir)
				if err != nil {
					return err
				}
				if len(ids) == 0 {
					return fmt.Errorf("no runs found in %s", outputDir)
				}
				runID = ids[0]
			}

			run, err := runner.LoadRun(outputDir, runID)
			if err != nil {
				return err
			}

			table := report.Aggregate(run)
			table.Render(os.Stdout)

			csvPath := filepath.Join(run.OutputPath, "summary.csv")
			if err := report.WriteCSV(table, csvPath); err != nil {
				return fmt.Errorf("failed to write summary: %w", err)
			}
			fmt.Printf("\nSummary: %s\n", csvPath)

			if !noCharts {
				paths, err := report.WriteCharts(table, run.OutputPath)
				if err != nil {
					slog.Warn("skipping charts", "error", err)
					return nil
				}
				fmt.Printf("Charts:\n")
				for _, p := range paths {
					fmt.Printf("  - %s\n", p)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outputDir, "output-dir", "results", "Directory for run output")
	cmd.Flags().BoolVar(&noCharts, "no-charts", false, "Skip chart generation")

	return cmd
}
