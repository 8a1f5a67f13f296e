package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptlab/promptlab/internal/server"
	"github.com/promptlab/promptlab/internal/testutil"
)

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	content, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return content.Text
}

func TestHandleListExperiments(t *testing.T) {
	sc := &server.ServerContext{
		ExperimentsDir: "",
	}

	result, err := handleListExperiments(context.Background(), mcp.CallToolRequest{}, sc)
	require.NoError(t, err)
	require.NotNil(t, result)

	// Should return at least the embedded supply-chain experiment.
	text := textContent(t, result)
	assert.Contains(t, text, "supply-chain")

	var experiments []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text), &experiments))
	require.GreaterOrEqual(t, len(experiments), 1)

	e := experiments[0]
	assert.Contains(t, e, "name")
	assert.Contains(t, e, "description")
	assert.Contains(t, e, "model")
	assert.Contains(t, e, "variant_count")
}

func TestHandleRunExperimentMissingRequired(t *testing.T) {
	sc := &server.ServerContext{}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{}

	result, err := handleRunExperiment(context.Background(), request, sc)
	require.NoError(t, err)
	assert.Contains(t, textContent(t, result), "experiment is required")
}

func TestHandleRunExperimentUnknownExperiment(t *testing.T) {
	sc := &server.ServerContext{}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{
		"experiment": "nonexistent-experiment",
	}

	result, err := handleRunExperiment(context.Background(), request, sc)
	require.NoError(t, err)
	assert.Contains(t, textContent(t, result), "failed to load experiment")
}

func TestHandleRunExperimentNoClient(t *testing.T) {
	sc := &server.ServerContext{
		LLMClient: nil,
		OutputDir: t.TempDir(),
	}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{
		"experiment": "supply-chain",
	}

	result, err := handleRunExperiment(context.Background(), request, sc)
	require.NoError(t, err)
	assert.Contains(t, textContent(t, result), "LLM client is not configured")
}

func TestHandleRunExperimentSummary(t *testing.T) {
	sc := &server.ServerContext{
		LLMClient: &testutil.MockLLMClient{DefaultResponse: "safety stock covers lead time variability"},
		OutputDir: t.TempDir(),
	}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{
		"experiment": "supply-chain",
	}

	result, err := handleRunExperiment(context.Background(), request, sc)
	require.NoError(t, err)

	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &summary))

	assert.Contains(t, summary, "run_id")
	assert.Equal(t, "supply-chain", summary["experiment"])

	variants, ok := summary["variants"].([]interface{})
	require.True(t, ok)
	assert.Len(t, variants, 5)
}

func TestHandleScoreRunMissingRunID(t *testing.T) {
	sc := &server.ServerContext{OutputDir: t.TempDir()}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{}

	result, err := handleScoreRun(context.Background(), request, sc)
	require.NoError(t, err)
	assert.Contains(t, textContent(t, result), "run_id is required")
}

func TestHandleScoreRunRejectsPathTraversal(t *testing.T) {
	sc := &server.ServerContext{OutputDir: t.TempDir()}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{
		"run_id": "../escape",
	}

	result, err := handleScoreRun(context.Background(), request, sc)
	require.NoError(t, err)
	assert.Contains(t, textContent(t, result), "path separators are not allowed")
}

func TestHandleScoreRunWithManualAccuracy(t *testing.T) {
	outputDir := t.TempDir()
	sc := &server.ServerContext{
		LLMClient: &testutil.MockLLMClient{DefaultResponse: "an answer about nothing relevant"},
		OutputDir: outputDir,
	}

	// Produce a run first.
	runReq := mcp.CallToolRequest{}
	runReq.Params.Arguments = map[string]interface{}{"experiment": "supply-chain"}
	runResult, err := handleRunExperiment(context.Background(), runReq, sc)
	require.NoError(t, err)

	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(textContent(t, runResult)), &summary))
	runID := summary["run_id"].(string)

	scoreReq := mcp.CallToolRequest{}
	scoreReq.Params.Arguments = map[string]interface{}{
		"run_id":   runID,
		"accuracy": 2.0,
	}

	scoreResult, err := handleScoreRun(context.Background(), scoreReq, sc)
	require.NoError(t, err)

	var scored map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(textContent(t, scoreResult)), &scored))

	variants := scored["variants"].([]interface{})
	require.Len(t, variants, 5)
	first := variants[0].(map[string]interface{})
	assert.Equal(t, float64(2), first["accuracy"])
}

func TestHandleScoreRunRejectsOutOfRangeAccuracy(t *testing.T) {
	outputDir := t.TempDir()
	sc := &server.ServerContext{
		LLMClient: &testutil.MockLLMClient{DefaultResponse: "answer"},
		OutputDir: outputDir,
	}

	runReq := mcp.CallToolRequest{}
	runReq.Params.Arguments = map[string]interface{}{"experiment": "supply-chain"}
	runResult, err := handleRunExperiment(context.Background(), runReq, sc)
	require.NoError(t, err)

	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(textContent(t, runResult)), &summary))

	scoreReq := mcp.CallToolRequest{}
	scoreReq.Params.Arguments = map[string]interface{}{
		"run_id":   summary["run_id"].(string),
		"accuracy": 5.0,
	}

	result, err := handleScoreRun(context.Background(), scoreReq, sc)
	require.NoError(t, err)
	assert.Contains(t, textContent(t, result), "accuracy must be between 0 and 2")
}

func TestHandleGetResultsEmptyDir(t *testing.T) {
	sc := &server.ServerContext{OutputDir: t.TempDir()}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{}

	result, err := handleGetResults(context.Background(), request, sc)
	require.NoError(t, err)
	assert.Equal(t, "[]", textContent(t, result))
}

func TestHandleGetResultsNonexistentDir(t *testing.T) {
	sc := &server.ServerContext{OutputDir: "/nonexistent/directory"}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{}

	result, err := handleGetResults(context.Background(), request, sc)
	require.NoError(t, err)
	assert.Equal(t, "[]", textContent(t, result))
}

func TestHandleGetResultsSpecificRun(t *testing.T) {
	outputDir := t.TempDir()
	sc := &server.ServerContext{
		LLMClient: &testutil.MockLLMClient{DefaultResponse: "safety stock and lead time"},
		OutputDir: outputDir,
	}

	runReq := mcp.CallToolRequest{}
	runReq.Params.Arguments = map[string]interface{}{"experiment": "supply-chain"}
	runResult, err := handleRunExperiment(context.Background(), runReq, sc)
	require.NoError(t, err)

	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(textContent(t, runResult)), &summary))
	runID := summary["run_id"].(string)

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{"run_id": runID}

	result, err := handleGetResults(context.Background(), request, sc)
	require.NoError(t, err)

	text := textContent(t, result)
	assert.Contains(t, text, runID)
	assert.Contains(t, text, "P1_direct")
}

func TestHandleGetResultsUnknownRun(t *testing.T) {
	sc := &server.ServerContext{OutputDir: t.TempDir()}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{"run_id": "no-such-run"}

	result, err := handleGetResults(context.Background(), request, sc)
	require.NoError(t, err)
	assert.Contains(t, textContent(t, result), "not found")
}
