package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/promptlab/promptlab/internal/evaluator"
	"github.com/promptlab/promptlab/internal/experiment"
	"github.com/promptlab/promptlab/internal/report"
	"github.com/promptlab/promptlab/internal/runner"
)

func newScoreCmd() *cobra.Command {
	var (
		expName        string
		accuracy       int
		outputDir      string
		experimentsDir string
	)

	cmd := &cobra.Command{
		Use:   "score <run-id>",
		Short: "Re-evaluate a completed run offline",
		Long: `Recompute the heuristic evaluation for a stored run without calling the
LLM again. Useful after tuning the completeness checklist or to apply a
manually judged accuracy score with --accuracy.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := args[0]

			run, err := runner.LoadRun(outputDir, runID)
			if err != nil {
				return err
			}

			if expName == "" {
				expName = run.Experiment
			}
			exp, err := experiment.Load(expName, experimentsDir)
			if err != nil {
				return fmt.Errorf("failed to load experiment: %w", err)
			}

			ev := evaluator.New()
			if cmd.Flags().Changed("accuracy") {
				if accuracy < 0 || accuracy > 2 {
					return fmt.Errorf("accuracy must be between 0 and 2, got %d", accuracy)
				}
				ev = evaluator.New(evaluator.WithScorer(evaluator.FixedScorer(accuracy)))
			}

			fmt.Printf("Re-evaluating run: %s\n", runID)
			fmt.Printf("Experiment: %s\n\n", exp.Name)

			runner.Reevaluate(run, exp, ev)
			if err := runner.WriteEvaluations(run); err != nil {
				return err
			}

			report.Aggregate(run).Render(os.Stdout)
			fmt.Printf("\nEvaluations written to: %s\n", run.OutputPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&expName, "experiment", "", "Experiment name (default: derived from the run)")
	cmd.Flags().IntVar(&accuracy, "accuracy", 0, "Manual accuracy score 0-2 to apply to every variant")
	cmd.Flags().StringVar(&outputDir, "output-dir", "results", "Directory for run output")
	cmd.Flags().StringVar(&experimentsDir, "experiments-dir", "", "External experiments directory")

	return cmd
}
