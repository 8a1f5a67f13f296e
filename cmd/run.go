package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/promptlab/promptlab/internal/experiment"
	"github.com/promptlab/promptlab/internal/report"
	"github.com/promptlab/promptlab/internal/runner"
)

func newRunCmd() *cobra.Command {
	var (
		model          string
		endpoint       string
		apiKey         string
		temperature    float64
		outputDir      string
		experimentsDir string
		timeout        time.Duration
		noCharts       bool
	)

	cmd := &cobra.Command{
		Use:   "run [experiment]",
		Short: "Run a prompt experiment against the Gemini API",
		Long: `Execute every prompt variant of an experiment, evaluate each response, and
print the comparison table.

Results are written to the output directory as JSON files, together with a
CSV summary and HTML chart artifacts.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			expName := experiment.DefaultName
			if len(args) > 0 {
				expName = args[0]
			}

			exp, err := experiment.Load(expName, experimentsDir)
			if err != nil {
				return fmt.Errorf("failed to load experiment: %w", err)
			}

			// Override model settings if specified via flags.
			if model != "" {
				exp.Model.Name = model
			}
			if cmd.Flags().Changed("temperature") {
				exp.Model.Temperature = temperature
			}

			client, err := newLLMClientFromFlags(endpoint, apiKey)
			if err != nil {
				return err
			}

			r := runner.NewRunner(client, outputDir)
			r.SetProgressFunc(func(variantID string, idx, total int) {
				fmt.Printf("\r  [%d/%d] Running variant %s...", idx, total, variantID)
			})

			fmt.Printf("Experiment: %s\n", exp.Name)
			fmt.Printf("Description: %s\n", exp.Description)
			fmt.Printf("Model: %s (temperature: %.1f)\n", exp.Model.Name, exp.Model.Temperature)
			fmt.Printf("Variants: %d\n", len(exp.Variants))
			for i, v := range exp.Variants {
				fmt.Printf("  %d. %s: %s\n", i+1, v.ID, v.Design)
			}
			fmt.Println()

			run, err := r.Run(ctx, exp)
			if err != nil {
				return err
			}

			fmt.Printf("\n\n")
			table := report.Aggregate(run)
			table.Render(os.Stdout)

			csvPath := filepath.Join(run.OutputPath, "summary.csv")
			if err := report.WriteCSV(table, csvPath); err != nil {
				return fmt.Errorf("failed to write summary: %w", err)
			}

			fmt.Printf("\nRun ID: %s\n", run.ID)
			fmt.Printf("Duration: %s\n", run.Duration.Round(time.Millisecond))
			fmt.Printf("Output: %s\n", run.OutputPath)

			if !noCharts {
				paths, err := report.WriteCharts(table, run.OutputPath)
				if err != nil {
					// Charts need at least one scored variant.
					slog.Warn("skipping charts", "error", err)
				} else {
					fmt.Printf("Charts:\n")
					for _, p := range paths {
						fmt.Printf("  - %s\n", p)
					}
				}
			}

			slog.Info("experiment complete", "run_id", run.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "Model name (overrides experiment config)")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "OpenAI-compatible API endpoint URL")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (or set GEMINI_API_KEY)")
	cmd.Flags().Float64Var(&temperature, "temperature", 0.7, "Temperature for generation")
	cmd.Flags().StringVar(&outputDir, "output-dir", "results", "Directory for run output")
	cmd.Flags().StringVar(&experimentsDir, "experiments-dir", "", "External experiments directory")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Overall timeout for the run (e.g. 10m). 0 means no timeout")
	cmd.Flags().BoolVar(&noCharts, "no-charts", false, "Skip chart generation")

	return cmd
}
