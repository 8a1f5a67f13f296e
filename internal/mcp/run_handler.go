package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/promptlab/promptlab/internal/experiment"
	"github.com/promptlab/promptlab/internal/llm"
	"github.com/promptlab/promptlab/internal/runner"
	"github.com/promptlab/promptlab/internal/server"
)

func handleRunExperiment(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	expName, ok := args["experiment"].(string)
	if !ok || expName == "" {
		return mcp.NewToolResultError("experiment is required"), nil
	}

	exp, err := experiment.Load(expName, sc.ExperimentsDir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load experiment: %v", err)), nil
	}

	// Overrides from parameters.
	if model, ok := args["model"].(string); ok && model != "" {
		exp.Model.Name = model
	}
	if temp, ok := args["temperature"].(float64); ok {
		exp.Model.Temperature = temp
	}

	// Determine the LLM client to use.
	client := sc.LLMClient
	if endpoint, ok := args["endpoint"].(string); ok && endpoint != "" {
		opts := []llm.Option{llm.WithBaseURL(endpoint)}
		if settings, err := llm.LoadSettings(); err == nil {
			opts = append(settings.Options(), llm.WithBaseURL(endpoint))
		}
		client = llm.NewGeminiClient(opts...)
	}
	if client == nil {
		return mcp.NewToolResultError("LLM client is not configured"), nil
	}

	r := runner.NewRunner(client, sc.OutputDir)
	run, err := r.Run(ctx, exp)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("experiment run failed: %v", err)), nil
	}

	// Return summary.
	variants := make([]map[string]interface{}, 0, len(run.Outcomes))
	for _, o := range run.Outcomes {
		entry := map[string]interface{}{
			"variant": o.VariantID,
			"status":  string(o.Status),
		}
		if o.Status == runner.StatusFailed {
			entry["error"] = o.Error
			entry["error_kind"] = o.ErrorKind
		}
		if o.Evaluation != nil {
			entry["accuracy"] = o.Evaluation.Accuracy
			entry["completeness"] = o.Evaluation.Completeness
			entry["issues"] = o.Evaluation.Issues
		}
		variants = append(variants, entry)
	}

	summary := map[string]interface{}{
		"run_id":     run.ID,
		"experiment": run.Experiment,
		"model":      run.Model,
		"duration":   run.Duration.String(),
		"variants":   variants,
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal summary: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
