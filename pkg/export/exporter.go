package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lirany1/html-screenshot-reporter/pkg/analytics"
	"github.com/lirany1/html-screenshot-reporter/pkg/config"
	"github.com/lirany1/html-screenshot-reporter/pkg/renderer"
)

// Exporter writes a report in formats other than HTML
type Exporter struct {
	config *config.Config
}

// NewExporter creates a new exporter
func NewExporter(cfg *config.Config) *Exporter {
	return &Exporter{config: cfg}
}

// Export writes the report next to htmlPath in the given format and returns the written path.
// html is already produced by the renderer and is skipped.
func (e *Exporter) Export(report *renderer.Report, htmlPath, format string) (string, error) {
	switch strings.ToLower(format) {
	case "html":
		return "", nil
	case "json":
		return e.exportJSON(report, htmlPath)
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}
}

type jsonReport struct {
	Title          string        `json:"title"`
	Elapsed        string        `json:"elapsed"`
	Total          int           `json:"total"`
	Passed         int           `json:"passed"`
	Failed         int           `json:"failed"`
	Skipped        int           `json:"skipped"`
	PassPercentage int           `json:"passPercentage"`
	Features       []jsonFeature `json:"features"`
}

type jsonFeature struct {
	Name      string         `json:"name"`
	Scenarios []jsonScenario `json:"scenarios"`
}

type jsonScenario struct {
	Index int       `json:"index"`
	Name  string    `json:"name"`
	Runs  []jsonRun `json:"runs"`
}

type jsonRun struct {
	Browser    string   `json:"browser"`
	Status     string   `json:"status"`
	Duration   int64    `json:"durationMs"`
	Took       string   `json:"took"`
	Screenshot string   `json:"screenshot"`
	StackTrace []string `json:"stackTrace,omitempty"`
}

func (e *Exporter) exportJSON(report *renderer.Report, htmlPath string) (string, error) {
	out := jsonReport{
		Title:          report.Title,
		Elapsed:        report.Elapsed,
		Total:          report.Summary.Total,
		Passed:         report.Summary.Passed,
		Failed:         report.Summary.Failed,
		Skipped:        report.Summary.Skipped,
		PassPercentage: report.Summary.PassPercentage,
		Features:       make([]jsonFeature, 0, len(report.Features)),
	}

	for _, table := range report.Features {
		feature := jsonFeature{Name: table.Name, Scenarios: make([]jsonScenario, 0, len(table.Rows))}
		for _, row := range table.Rows {
			feature.Scenarios = append(feature.Scenarios, toJSONScenario(table.Browsers, row))
		}
		out.Features = append(out.Features, feature)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode json report: %w", err)
	}

	path := strings.TrimSuffix(htmlPath, filepath.Ext(htmlPath)) + ".json"
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write json report: %w", err)
	}
	return path, nil
}

func toJSONScenario(browsers []string, row renderer.ScenarioRow) jsonScenario {
	traces := make(map[string]renderer.StackTrace, len(row.Details))
	for _, d := range row.Details {
		traces[d.ID] = d
	}

	scenario := jsonScenario{Index: row.Index, Name: row.Label, Runs: make([]jsonRun, 0, len(row.Cells))}
	for i, cell := range row.Cells {
		if cell.Kind == renderer.CellEmpty {
			continue
		}
		run := jsonRun{
			Browser:    browsers[i],
			Status:     statusName(cell.Kind),
			Duration:   cell.Duration,
			Took:       analytics.HumanizeDuration(time.Duration(cell.Duration) * time.Millisecond),
			Screenshot: cell.Screenshot,
		}
		if trace, ok := traces[cell.ID]; ok {
			run.StackTrace = append([]string{trace.Primary}, trace.Lines...)
		}
		scenario.Runs = append(scenario.Runs, run)
	}
	return scenario
}

func statusName(kind string) string {
	switch kind {
	case renderer.CellPass:
		return "passed"
	case renderer.CellFail:
		return "failed"
	default:
		return "skipped"
	}
}
