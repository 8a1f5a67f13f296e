package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/promptlab/promptlab/internal/experiment"
	"github.com/promptlab/promptlab/internal/server"
)

func registerExperimentTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// list_experiments
	listTool := mcp.NewTool("list_experiments",
		mcp.WithDescription("List available prompt experiments with metadata"),
	)
	s.AddTool(listTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListExperiments(ctx, request, sc)
	})

	// run_experiment
	runTool := mcp.NewTool("run_experiment",
		mcp.WithDescription("Execute every prompt variant of an experiment against the configured model and evaluate the responses"),
		mcp.WithString("experiment",
			mcp.Required(),
			mcp.Description("Name of the experiment to run (e.g. 'supply-chain')"),
		),
		mcp.WithString("model",
			mcp.Description("Model name to use (overrides experiment config)"),
		),
		mcp.WithString("endpoint",
			mcp.Description("OpenAI-compatible endpoint URL (overrides the default Gemini endpoint)"),
		),
		mcp.WithNumber("temperature",
			mcp.Description("Temperature for generation (default: from experiment config)"),
		),
	)
	s.AddTool(runTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleRunExperiment(ctx, request, sc)
	})

	// score_run
	scoreTool := mcp.NewTool("score_run",
		mcp.WithDescription("Re-evaluate a completed run offline with the heuristic evaluator, optionally applying a manually judged accuracy score"),
		mcp.WithString("run_id",
			mcp.Required(),
			mcp.Description("ID of the run to re-evaluate"),
		),
		mcp.WithString("experiment",
			mcp.Description("Experiment name (default: derived from the run)"),
		),
		mcp.WithNumber("accuracy",
			mcp.Description("Manual accuracy score 0-2 to apply to every variant (optional)"),
		),
	)
	s.AddTool(scoreTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleScoreRun(ctx, request, sc)
	})

	// get_results
	getResultsTool := mcp.NewTool("get_results",
		mcp.WithDescription("Retrieve the comparison table for past runs"),
		mcp.WithString("run_id",
			mcp.Description("Specific run ID to retrieve (optional, lists all if omitted)"),
		),
	)
	s.AddTool(getResultsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetResults(ctx, request, sc)
	})

	return nil
}

func handleListExperiments(_ context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	names, err := experiment.List(sc.ExperimentsDir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list experiments: %v", err)), nil
	}

	type experimentInfo struct {
		Name         string `json:"name"`
		Description  string `json:"description"`
		Version      string `json:"version"`
		Model        string `json:"model"`
		VariantCount int    `json:"variant_count"`
	}

	var experiments []experimentInfo
	for _, name := range names {
		exp, err := experiment.Load(name, sc.ExperimentsDir)
		if err != nil {
			continue
		}
		experiments = append(experiments, experimentInfo{
			Name:         exp.Name,
			Description:  exp.Description,
			Version:      exp.Version,
			Model:        exp.Model.Name,
			VariantCount: len(exp.Variants),
		})
	}

	data, err := json.MarshalIndent(experiments, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal experiments: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
