package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptlab/promptlab/internal/evaluator"
	"github.com/promptlab/promptlab/internal/llm"
	"github.com/promptlab/promptlab/internal/runner"
)

func testRun() *runner.Run {
	return &runner.Run{
		ID:         "supply-chain_20250101-120000",
		Experiment: "supply-chain",
		Model:      "gemini-1.5-flash",
		Timestamp:  time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		Outcomes: []runner.VariantOutcome{
			{
				VariantID: "P1_direct",
				Name:      "Direct",
				Status:    runner.StatusOK,
				Response: &llm.GenerateResult{
					Text:       "safety stock covers lead time",
					TokenCount: 150,
					LatencyMs:  820.5,
				},
				Evaluation: &evaluator.Result{
					Accuracy:         2,
					Completeness:     100,
					TokenCount:       150,
					EfficiencyRating: "Concise",
					Issues:           []evaluator.Issue{},
				},
			},
			{
				VariantID: "P2_role",
				Name:      "Role",
				Status:    runner.StatusOK,
				Response: &llm.GenerateResult{
					Text:       "a long answer",
					TokenCount: 620,
					LatencyMs:  1410.0,
				},
				Evaluation: &evaluator.Result{
					Accuracy:         1,
					Completeness:     66.7,
					TokenCount:       620,
					EfficiencyRating: "Verbose",
					Issues: []evaluator.Issue{
						evaluator.IssueOverconfidence,
						evaluator.IssueMissingUncertainty,
					},
				},
			},
			{
				VariantID: "P3_reasoning",
				Name:      "Reasoning",
				Status:    runner.StatusFailed,
				Error:     "rate limit exceeded",
				ErrorKind: "RateLimited",
			},
		},
	}
}

func TestAggregate(t *testing.T) {
	table := Aggregate(testRun())

	assert.Equal(t, "supply-chain", table.Experiment)
	assert.Equal(t, "gemini-1.5-flash", table.Model)
	require.Len(t, table.Rows, 3)

	first := table.Rows[0]
	assert.Equal(t, "P1_direct", first.VariantID)
	assert.Equal(t, runner.StatusOK, first.Status)
	assert.Equal(t, 2, first.Accuracy)
	assert.InDelta(t, 100.0, first.Completeness, 0.01)
	assert.Equal(t, 150, first.TokenCount)
	assert.InDelta(t, 820.5, first.LatencyMs, 0.01)
	assert.Equal(t, 0, first.IssueCount)
	assert.Equal(t, "Concise", first.Rating)

	second := table.Rows[1]
	assert.Equal(t, 2, second.IssueCount)
	assert.Contains(t, second.Issues, "OVERCONFIDENCE")

	// Failed variants keep their row.
	failed := table.Rows[2]
	assert.Equal(t, runner.StatusFailed, failed.Status)
	assert.Equal(t, "rate limit exceeded", failed.Error)
}

func TestRenderTable(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	Aggregate(testRun()).Render(&buf)
	out := buf.String()

	assert.Contains(t, out, "Experiment: supply-chain")
	assert.Contains(t, out, "P1_direct")
	assert.Contains(t, out, "2/2")
	assert.Contains(t, out, "66.7%")
	assert.Contains(t, out, "Verbose")
	assert.Contains(t, out, "rate limit exceeded")
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.csv")
	require.NoError(t, WriteCSV(Aggregate(testRun()), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "variant,name,status,accuracy,completeness_pct,token_count,latency_ms,issue_count,rating", lines[0])
	assert.Contains(t, lines[1], "P1_direct,Direct,ok,2,100.0,150")
	assert.Contains(t, lines[3], "P3_reasoning,Reasoning,failed")
}

func TestWriteCharts(t *testing.T) {
	dir := t.TempDir()

	paths, err := WriteCharts(Aggregate(testRun()), dir)
	require.NoError(t, err)
	require.Len(t, paths, 3)

	for _, name := range []string{AccuracyChartFile, RadarChartFile, HeatmapChartFile} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestWriteChartsNoScoredRows(t *testing.T) {
	run := testRun()
	for i := range run.Outcomes {
		run.Outcomes[i].Status = runner.StatusFailed
	}

	_, err := WriteCharts(Aggregate(run), t.TempDir())
	assert.Error(t, err)
}
