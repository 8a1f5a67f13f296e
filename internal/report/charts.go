package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/promptlab/promptlab/internal/evaluator"
)

// Chart artifact file names within a run directory.
const (
	AccuracyChartFile = "accuracy_bar.html"
	RadarChartFile    = "metrics_radar.html"
	HeatmapChartFile  = "issues_heatmap.html"
)

// WriteCharts renders the comparison charts into dir and returns the paths
// written. Failed variants are excluded from the chart series.
func WriteCharts(t Table, dir string) ([]string, error) {
	rows := t.scoredRows()
	if len(rows) == 0 {
		return nil, fmt.Errorf("no successful variants to chart")
	}

	writers := []struct {
		file   string
		render func(Table, []Row, string) error
	}{
		{AccuracyChartFile, writeAccuracyBar},
		{RadarChartFile, writeMetricsRadar},
		{HeatmapChartFile, writeIssuesHeatmap},
	}

	var paths []string
	for _, wr := range writers {
		path := filepath.Join(dir, wr.file)
		if err := wr.render(t, rows, path); err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", wr.file, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// writeAccuracyBar renders the accuracy-by-variant bar chart.
func writeAccuracyBar(t Table, rows []Row, path string) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Accuracy by prompt variant",
			Subtitle: fmt.Sprintf("%s / %s", t.Experiment, t.Model),
		}),
	)

	xs := make([]string, 0, len(rows))
	data := make([]opts.BarData, 0, len(rows))
	for _, row := range rows {
		xs = append(xs, row.VariantID)
		data = append(data, opts.BarData{Value: row.Accuracy})
	}
	bar.SetXAxis(xs).AddSeries("accuracy (0-2)", data)

	return renderTo(bar, path)
}

// writeMetricsRadar renders one radar polygon per variant over four
// normalized axes.
func writeMetricsRadar(t Table, rows []Row, path string) error {
	radar := charts.NewRadar()
	radar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Variant metric profile"}),
		charts.WithRadarComponentOpts(opts.RadarComponent{
			Indicator: []*opts.Indicator{
				{Name: "Accuracy", Max: 2},
				{Name: "Completeness", Max: 100},
				{Name: "Conciseness", Max: 100},
				{Name: "Caution", Max: 100},
			},
		}),
	)

	for _, row := range rows {
		radar.AddSeries(row.VariantID, []opts.RadarData{{
			Name: row.VariantID,
			Value: []float32{
				float32(row.Accuracy),
				float32(row.Completeness),
				concisenessScore(row.TokenCount),
				cautionScore(row.IssueCount),
			},
		}})
	}

	return renderTo(radar, path)
}

// writeIssuesHeatmap renders the issue-flag × variant grid.
func writeIssuesHeatmap(t Table, rows []Row, path string) error {
	hm := charts.NewHeatMap()

	issueNames := make([]string, 0, len(evaluator.AllIssues))
	for _, issue := range evaluator.AllIssues {
		issueNames = append(issueNames, string(issue))
	}

	xs := make([]string, 0, len(rows))
	for _, row := range rows {
		xs = append(xs, row.VariantID)
	}

	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Issue flags by variant"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: xs}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: issueNames}),
		charts.WithVisualMapOpts(opts.VisualMap{Min: 0, Max: 1}),
	)

	data := make([]opts.HeatMapData, 0, len(rows)*len(evaluator.AllIssues))
	for x, row := range rows {
		flagged := make(map[string]bool, len(row.Issues))
		for _, issue := range row.Issues {
			flagged[issue] = true
		}
		for y, issue := range issueNames {
			v := 0
			if flagged[issue] {
				v = 1
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{x, y, v}})
		}
	}
	hm.SetXAxis(xs).AddSeries("issues", data)

	return renderTo(hm, path)
}

type renderer interface {
	Render(w io.Writer) error
}

func renderTo(chart renderer, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return chart.Render(f)
}

// concisenessScore maps token count to a 0-100 axis, aligned with the
// Concise/Moderate/Verbose efficiency buckets.
func concisenessScore(tokens int) float32 {
	switch {
	case tokens < 200:
		return 100
	case tokens < 500:
		return 60
	default:
		return 30
	}
}

// cautionScore penalizes each detected issue flag.
func cautionScore(issueCount int) float32 {
	score := 100 - 25*issueCount
	if score < 0 {
		score = 0
	}
	return float32(score)
}
