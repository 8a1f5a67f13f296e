package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/promptlab/promptlab/internal/evaluator"
)

const (
	runFileName         = "run.json"
	resultsFileName     = "results.json"
	evaluationsFileName = "evaluations.json"
)

// runFile is the serialized form of a Run.
type runFile struct {
	ID              string           `json:"id"`
	Experiment      string           `json:"experiment"`
	Model           string           `json:"model"`
	Timestamp       time.Time        `json:"timestamp"`
	DurationSeconds float64          `json:"duration_seconds"`
	Outcomes        []VariantOutcome `json:"outcomes"`
}

// resultRecord is one entry of results.json: the raw response and metadata
// for a variant, including failures.
type resultRecord struct {
	Status    Status  `json:"status"`
	Error     string  `json:"error,omitempty"`
	ErrorKind string  `json:"error_kind,omitempty"`
	Text      string  `json:"text,omitempty"`
	Tokens    int     `json:"token_count,omitempty"`
	LatencyMs float64 `json:"latency_ms,omitempty"`
	Model     string  `json:"model,omitempty"`
	Finish    string  `json:"finish_reason,omitempty"`
}

// evaluationRecord is one entry of evaluations.json.
type evaluationRecord struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
	*evaluator.Result
}

// WriteRun persists a run directory: the full run manifest plus the
// results and evaluations files. Returns the run directory path.
func WriteRun(outputDir string, run *Run) (string, error) {
	runPath := filepath.Join(outputDir, run.ID)
	if err := os.MkdirAll(runPath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create run directory: %w", err)
	}

	if err := writeJSON(filepath.Join(runPath, runFileName), toRunFile(run)); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runPath, resultsFileName), resultsMap(run)); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runPath, evaluationsFileName), evaluationsMap(run)); err != nil {
		return "", err
	}

	return runPath, nil
}

// WriteEvaluations rewrites the evaluation artifacts of an existing run,
// used after Reevaluate.
func WriteEvaluations(run *Run) error {
	if run.OutputPath == "" {
		return fmt.Errorf("run has no output path")
	}
	if err := writeJSON(filepath.Join(run.OutputPath, runFileName), toRunFile(run)); err != nil {
		return err
	}
	return writeJSON(filepath.Join(run.OutputPath, evaluationsFileName), evaluationsMap(run))
}

// LoadRun reads a run directory written by WriteRun.
func LoadRun(outputDir, runID string) (*Run, error) {
	runPath := filepath.Join(outputDir, runID)
	data, err := os.ReadFile(filepath.Join(runPath, runFileName))
	if err != nil {
		return nil, fmt.Errorf("run %q not found: %w", runID, err)
	}

	var rf runFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse run manifest for %q: %w", runID, err)
	}

	return &Run{
		ID:         rf.ID,
		Experiment: rf.Experiment,
		Model:      rf.Model,
		Timestamp:  rf.Timestamp,
		Duration:   time.Duration(rf.DurationSeconds * float64(time.Second)),
		Outcomes:   rf.Outcomes,
		OutputPath: runPath,
	}, nil
}

// ListRuns returns the run IDs under outputDir, newest first by name.
func ListRuns(outputDir string) ([]string, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(outputDir, e.Name(), runFileName)); err == nil {
			ids = append(ids, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}

func toRunFile(run *Run) runFile {
	return runFile{
		ID:              run.ID,
		Experiment:      run.Experiment,
		Model:           run.Model,
		Timestamp:       run.Timestamp,
		DurationSeconds: run.Duration.Seconds(),
		Outcomes:        run.Outcomes,
	}
}

func resultsMap(run *Run) map[string]resultRecord {
	records := make(map[string]resultRecord, len(run.Outcomes))
	for _, o := range run.Outcomes {
		rec := resultRecord{
			Status:    o.Status,
			Error:     o.Error,
			ErrorKind: o.ErrorKind,
		}
		if o.Response != nil {
			rec.Text = o.Response.Text
			rec.Tokens = o.Response.TokenCount
			rec.LatencyMs = o.Response.LatencyMs
			rec.Model = o.Response.Model
			rec.Finish = o.Response.FinishReason
		}
		records[o.VariantID] = rec
	}
	return records
}

func evaluationsMap(run *Run) map[string]evaluationRecord {
	records := make(map[string]evaluationRecord, len(run.Outcomes))
	for _, o := range run.Outcomes {
		records[o.VariantID] = evaluationRecord{
			Status: o.Status,
			Error:  o.Error,
			Result: o.Evaluation,
		}
	}
	return records
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
