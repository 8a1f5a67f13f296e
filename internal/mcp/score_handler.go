package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/promptlab/promptlab/internal/evaluator"
	"github.com/promptlab/promptlab/internal/experiment"
	"github.com/promptlab/promptlab/internal/runner"
	"github.com/promptlab/promptlab/internal/server"
)

func handleScoreRun(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	runID, _ := args["run_id"].(string)
	if _, err := resolveRunPath(sc.OutputDir, runID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	run, err := runner.LoadRun(sc.OutputDir, runID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load run: %v", err)), nil
	}

	expName, _ := args["experiment"].(string)
	if expName == "" {
		expName = run.Experiment
	}
	exp, err := experiment.Load(expName, sc.ExperimentsDir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load experiment: %v", err)), nil
	}

	ev := evaluator.New()
	if acc, ok := args["accuracy"].(float64); ok {
		if acc < 0 || acc > 2 {
			return mcp.NewToolResultError("accuracy must be between 0 and 2"), nil
		}
		ev = evaluator.New(evaluator.WithScorer(evaluator.FixedScorer(int(acc))))
	}

	runner.Reevaluate(run, exp, ev)
	if err := runner.WriteEvaluations(run); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to write evaluations: %v", err)), nil
	}

	variants := make([]map[string]interface{}, 0, len(run.Outcomes))
	for _, o := range run.Outcomes {
		entry := map[string]interface{}{
			"variant": o.VariantID,
			"status":  string(o.Status),
		}
		if o.Evaluation != nil {
			entry["accuracy"] = o.Evaluation.Accuracy
			entry["completeness"] = o.Evaluation.Completeness
			entry["issues"] = o.Evaluation.Issues
		}
		variants = append(variants, entry)
	}

	result := map[string]interface{}{
		"run_id":     run.ID,
		"experiment": run.Experiment,
		"variants":   variants,
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
