// Package runner orchestrates a prompt experiment: it renders each variant,
// sends it to the LLM, evaluates the response, and persists the results.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/promptlab/promptlab/internal/evaluator"
	"github.com/promptlab/promptlab/internal/experiment"
	"github.com/promptlab/promptlab/internal/llm"
)

// Status records whether a variant produced a scorable response.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// VariantOutcome is the complete record for one prompt variant within a run.
type VariantOutcome struct {
	VariantID string `json:"variant_id"`
	Name      string `json:"name"`
	Design    string `json:"design,omitempty"`
	Status    Status `json:"status"`
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`

	Response   *llm.GenerateResult `json:"response,omitempty"`
	Evaluation *evaluator.Result   `json:"evaluation,omitempty"`
}

// Run holds the results of a complete experiment execution.
type Run struct {
	ID         string           `json:"id"`
	Experiment string           `json:"experiment"`
	Model      string           `json:"model"`
	Timestamp  time.Time        `json:"timestamp"`
	Duration   time.Duration    `json:"duration"`
	Outcomes   []VariantOutcome `json:"outcomes"`

	// OutputPath is the directory the run's files were written to.
	OutputPath string `json:"-"`
}

// ProgressFunc is called before each variant is executed.
type ProgressFunc func(variantID string, index, total int)

// Runner executes experiments sequentially, one blocking call per variant.
type Runner struct {
	client    llm.Client
	eval      *evaluator.Evaluator
	outputDir string
	progress  ProgressFunc
}

// NewRunner creates a runner that writes run output under outputDir.
func NewRunner(client llm.Client, outputDir string) *Runner {
	return &Runner{
		client:    client,
		eval:      evaluator.New(),
		outputDir: outputDir,
	}
}

// SetProgressFunc sets the progress callback.
func (r *Runner) SetProgressFunc(fn ProgressFunc) {
	r.progress = fn
}

// SetEvaluator replaces the default evaluator, e.g. to inject a manual
// accuracy scorer.
func (r *Runner) SetEvaluator(ev *evaluator.Evaluator) {
	r.eval = ev
}

// Run executes every variant of the experiment in declared order and writes
// the run directory. Provider failures for a single variant are recorded
// with a failed status and do not abort the run; only the inability to
// persist output is fatal.
func (r *Runner) Run(ctx context.Context, exp *experiment.Experiment) (*Run, error) {
	if len(exp.Variants) == 0 {
		return nil, fmt.Errorf("experiment %q has no variants", exp.Name)
	}

	timestamp := time.Now()
	runID := fmt.Sprintf("%s_%s",
		strings.ReplaceAll(exp.Name, " ", "_"),
		timestamp.Format("20060102-150405"),
	)

	run := &Run{
		ID:         runID,
		Experiment: exp.Name,
		Model:      exp.Model.Name,
		Timestamp:  timestamp,
		Outcomes:   make([]VariantOutcome, 0, len(exp.Variants)),
	}

	checklist := ChecklistFrom(exp)
	thresholds := ThresholdsFrom(exp)

	for i, variant := range exp.Variants {
		// Check for context cancellation between variants.
		if err := ctx.Err(); err != nil {
			slog.Warn("run cancelled", "completed", i, "total", len(exp.Variants))
			break
		}

		if r.progress != nil {
			r.progress(variant.ID, i+1, len(exp.Variants))
		}

		run.Outcomes = append(run.Outcomes, r.runVariant(ctx, exp, variant, checklist, thresholds))
	}

	run.Duration = time.Since(timestamp)

	outputPath, err := WriteRun(r.outputDir, run)
	if err != nil {
		return nil, fmt.Errorf("failed to write run output: %w", err)
	}
	run.OutputPath = outputPath

	return run, nil
}

func (r *Runner) runVariant(ctx context.Context, exp *experiment.Experiment, variant experiment.Variant, checklist evaluator.Checklist, thresholds evaluator.Thresholds) VariantOutcome {
	outcome := VariantOutcome{
		VariantID: variant.ID,
		Name:      variant.Name,
		Design:    variant.Design,
	}

	prompt := variant.Render(exp.Query)

	callCtx := ctx
	if timeout := exp.Model.CallTimeout.Std(); timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	slog.Info("running variant",
		"variant", variant.ID,
		"model", exp.Model.Name,
		"temperature", exp.Model.Temperature,
	)

	resp, err := r.client.Generate(callCtx, llm.GenerateRequest{
		Prompt:      prompt,
		Model:       exp.Model.Name,
		Temperature: exp.Model.Temperature,
		MaxTokens:   exp.Model.MaxOutputTokens,
	})
	if err != nil {
		// A failed variant is recorded, not fatal; the run continues.
		outcome.Status = StatusFailed
		outcome.Error = err.Error()
		outcome.ErrorKind = errorKind(err)
		slog.Error("variant failed", "variant", variant.ID, "kind", outcome.ErrorKind, "error", err)
		return outcome
	}

	result := r.eval.Evaluate(resp.Text, checklist, thresholds).WithTokenCount(resp.TokenCount)

	outcome.Status = StatusOK
	outcome.Response = resp
	outcome.Evaluation = &result

	slog.Info("variant evaluated",
		"variant", variant.ID,
		"accuracy", result.Accuracy,
		"completeness", result.Completeness,
		"issues", len(result.Issues),
	)
	return outcome
}

// Reevaluate recomputes the evaluation for every successful outcome, e.g.
// after checklist changes or to replay manual accuracy scores. Failed
// outcomes are left untouched.
func Reevaluate(run *Run, exp *experiment.Experiment, ev *evaluator.Evaluator) {
	checklist := ChecklistFrom(exp)
	thresholds := ThresholdsFrom(exp)

	for i := range run.Outcomes {
		outcome := &run.Outcomes[i]
		if outcome.Status != StatusOK || outcome.Response == nil {
			continue
		}
		result := ev.Evaluate(outcome.Response.Text, checklist, thresholds).
			WithTokenCount(outcome.Response.TokenCount)
		outcome.Evaluation = &result
	}
}

// ChecklistFrom builds the evaluator checklist from experiment config.
func ChecklistFrom(exp *experiment.Experiment) evaluator.Checklist {
	return evaluator.Checklist{
		Topics:           exp.Evaluation.CompletenessChecklist,
		AccuracyCriteria: exp.Evaluation.AccuracyCriteria,
		ReferenceContext: exp.Query.Context,
	}
}

// ThresholdsFrom builds the evaluator thresholds from experiment config.
func ThresholdsFrom(exp *experiment.Experiment) evaluator.Thresholds {
	return evaluator.Thresholds{
		WordLimit:       exp.Evaluation.WordLimit,
		HedgePhrases:    exp.Evaluation.HedgePhrases,
		AbsolutePhrases: exp.Evaluation.AbsolutePhrases,
		StatThreshold:   exp.Evaluation.StatThreshold,
	}
}

// errorKind extracts the provider error classification for the report.
func errorKind(err error) string {
	var pe *llm.ProviderError
	if errors.As(err, &pe) {
		return pe.Kind.String()
	}
	return llm.KindUnknown.String()
}
