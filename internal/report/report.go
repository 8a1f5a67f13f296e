// Package report aggregates per-variant evaluation results into a comparison
// table and renders chart artifacts.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/promptlab/promptlab/internal/runner"
)

// Row is one line of the comparison table.
type Row struct {
	VariantID    string
	Name         string
	Status       runner.Status
	Accuracy     int
	Completeness float64
	TokenCount   int
	LatencyMs    float64
	IssueCount   int
	Issues       []string
	Rating       string
	Error        string
}

// Table is the aggregated view of a run. Purely presentational: rows mirror
// the outcomes one-to-one, in variant order.
type Table struct {
	Experiment string
	Model      string
	RunID      string
	Rows       []Row
}

// Aggregate builds the comparison table for a run. Failed variants keep
// their row with an explicit failed status rather than being omitted.
func Aggregate(run *runner.Run) Table {
	table := Table{
		Experiment: run.Experiment,
		Model:      run.Model,
		RunID:      run.ID,
		Rows:       make([]Row, 0, len(run.Outcomes)),
	}

	for _, o := range run.Outcomes {
		row := Row{
			VariantID: o.VariantID,
			Name:      o.Name,
			Status:    o.Status,
			Error:     o.Error,
		}
		if o.Evaluation != nil {
			row.Accuracy = o.Evaluation.Accuracy
			row.Completeness = o.Evaluation.Completeness
			row.TokenCount = o.Evaluation.TokenCount
			row.IssueCount = len(o.Evaluation.Issues)
			row.Rating = o.Evaluation.EfficiencyRating
			for _, issue := range o.Evaluation.Issues {
				row.Issues = append(row.Issues, string(issue))
			}
		}
		if o.Response != nil {
			row.LatencyMs = o.Response.LatencyMs
		}
		table.Rows = append(table.Rows, row)
	}

	return table
}

var (
	okColor     = color.New(color.FgGreen)
	failColor   = color.New(color.FgRed)
	headerColor = color.New(color.Bold)
)

// Render writes the table in aligned text form.
func (t Table) Render(w io.Writer) {
	fmt.Fprintf(w, "Experiment: %s (model: %s)\n", t.Experiment, t.Model)
	fmt.Fprintf(w, "Run: %s\n\n", t.RunID)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = headerColor.Fprintln(tw, "VARIANT\tSTATUS\tACCURACY\tCOMPLETENESS\tTOKENS\tLATENCY\tISSUES\tRATING")

	for _, row := range t.Rows {
		if row.Status != runner.StatusOK {
			fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t-\t-\t%s\n",
				row.VariantID, failColor.Sprint(string(row.Status)), row.Error)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%d/2\t%.1f%%\t%d\t%.0fms\t%d\t%s\n",
			row.VariantID,
			okColor.Sprint(string(row.Status)),
			row.Accuracy,
			row.Completeness,
			row.TokenCount,
			row.LatencyMs,
			row.IssueCount,
			row.Rating,
		)
	}
	_ = tw.Flush()
}

// WriteCSV writes the table as a CSV summary.
func WriteCSV(t Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"variant", "name", "status", "accuracy", "completeness_pct", "token_count", "latency_ms", "issue_count", "rating"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, row := range t.Rows {
		record := []string{
			row.VariantID,
			row.Name,
			string(row.Status),
			strconv.Itoa(row.Accuracy),
			strconv.FormatFloat(row.Completeness, 'f', 1, 64),
			strconv.Itoa(row.TokenCount),
			strconv.FormatFloat(row.LatencyMs, 'f', 2, 64),
			strconv.Itoa(row.IssueCount),
			row.Rating,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// scoredRows returns the rows eligible for chart series.
func (t Table) scoredRows() []Row {
	rows := make([]Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		if row.Status == runner.StatusOK {
			rows = append(rows, row)
		}
	}
	return rows
}
