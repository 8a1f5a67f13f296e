package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/promptlab/promptlab/internal/report"
	"github.com/promptlab/promptlab/internal/runner"
	"github.com/promptlab/promptlab/internal/server"
)

func handleGetResults(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	runID, _ := args["run_id"].(string)

	if runID != "" {
		return getSpecificRun(sc.OutputDir, runID)
	}
	return listRuns(sc.OutputDir)
}

func listRuns(outputDir string) (*mcp.CallToolResult, error) {
	ids, err := runner.ListRuns(outputDir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list runs: %v", err)), nil
	}
	if len(ids) == 0 {
		return mcp.NewToolResultText("[]"), nil
	}

	var runs []map[string]interface{}
	for _, id := range ids {
		run, err := runner.LoadRun(outputDir, id)
		if err != nil {
			continue
		}

		failed := 0
		for _, o := range run.Outcomes {
			if o.Status == runner.StatusFailed {
				failed++
			}
		}
		runs = append(runs, map[string]interface{}{
			"run_id":     run.ID,
			"experiment": run.Experiment,
			"model":      run.Model,
			"timestamp":  run.Timestamp,
			"variants":   len(run.Outcomes),
			"failed":     failed,
		})
	}

	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal runs: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func getSpecificRun(outputDir, runID string) (*mcp.CallToolResult, error) {
	if _, err := resolveRunPath(outputDir, runID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	run, err := runner.LoadRun(outputDir, runID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("run %q not found: %v", runID, err)), nil
	}

	table := report.Aggregate(run)
	result := map[string]interface{}{
		"run_id":     table.RunID,
		"experiment": table.Experiment,
		"model":      table.Model,
		"rows":       table.Rows,
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
