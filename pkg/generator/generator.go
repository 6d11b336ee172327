package generator

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lirany1/html-screenshot-reporter/pkg/analytics"
	"github.com/lirany1/html-screenshot-reporter/pkg/assets"
	"github.com/lirany1/html-screenshot-reporter/pkg/config"
	"github.com/lirany1/html-screenshot-reporter/pkg/export"
	"github.com/lirany1/html-screenshot-reporter/pkg/gauge"
	"github.com/lirany1/html-screenshot-reporter/pkg/grouping"
	"github.com/lirany1/html-screenshot-reporter/pkg/logger"
	"github.com/lirany1/html-screenshot-reporter/pkg/models"
	"github.com/lirany1/html-screenshot-reporter/pkg/renderer"
	"github.com/lirany1/html-screenshot-reporter/pkg/results"
	"github.com/lirany1/html-screenshot-reporter/pkg/storage"
)

// Generator turns raw results into the HTML report and its side outputs
type Generator struct {
	config   *config.Config
	accessor results.Accessor
	renderer *renderer.Renderer
	exporter *export.Exporter
	now      func() time.Time
}

// Output describes what one generation produced
type Output struct {
	ReportPath  string
	ReportID    string
	Exports     []string
	Mirrored    int
	Summary     analytics.Summary
	Runs        int
	HistoryPath string
}

// NewGenerator creates a new report generator
func NewGenerator(cfg *config.Config) *Generator {
	return &Generator{
		config:   cfg,
		accessor: results.DefaultAccessor{},
		renderer: renderer.NewRenderer(cfg),
		exporter: export.NewExporter(cfg),
		now:      time.Now,
	}
}

// GenerateFromFile reads a results file in the configured input format and generates the report
func (g *Generator) GenerateFromFile(inputFile string, elapsed time.Duration) (*Output, error) {
	logger.Infof("Reading test results from %s", inputFile)

	var raw []*models.RawResult
	var err error
	switch g.config.InputFormat {
	case config.FormatGauge:
		raw, err = gauge.LoadFile(inputFile, g.config.Browser)
	default:
		raw, err = results.Load(inputFile)
	}
	if err != nil {
		return nil, err
	}

	return g.Generate(raw, elapsed)
}

// Generate renders the report for raw and writes it to the configured destination.
// Exports, history and screenshot mirroring are best effort.
func (g *Generator) Generate(raw []*models.RawResult, elapsed time.Duration) (*Output, error) {
	startTime := g.now()
	logger.Info("Starting report generation...")

	records := results.ExtractAll(g.accessor, raw)
	grouped, err := grouping.Group(records, results.UniqueBrowserNames(g.accessor, raw))
	if err != nil {
		return nil, fmt.Errorf("failed to group results: %w", err)
	}

	summary := analytics.Summarize(results.Statuses(records))
	report := g.renderer.BuildReport(g.config.Title, analytics.FormatElapsed(elapsed), summary, grouped)

	dest := g.config.HTMLReportDestPath
	logger.Infof("Rendering %d runs across %d browsers...", grouped.Len(), len(grouped.Browsers()))
	if err := g.renderer.RenderFile(report, dest); err != nil {
		return nil, err
	}

	out := &Output{ReportPath: dest, Summary: summary, Runs: grouped.Len()}

	for _, format := range config.SupportedExports {
		if !g.config.HasExport(format) {
			continue
		}
		path, err := g.exporter.Export(report, dest, format)
		if err != nil {
			logger.Warnf("Failed to export to %s: %v", format, err)
			continue
		}
		if path != "" {
			logger.Infof("Exported %s report to %s", format, path)
			out.Exports = append(out.Exports, path)
		}
	}

	if g.config.HistoryEnabled {
		if err := g.saveHistory(out, records, elapsed); err != nil {
			logger.Warnf("Failed to save report history: %v", err)
		}
	}

	if g.config.MirrorScreenshots {
		files, err := assets.MirrorScreenshots(g.config.ScreenshotPath(), dest, g.config.ScreenshotsDir)
		if err != nil {
			logger.Warnf("Failed to mirror screenshots: %v", err)
		}
		out.Mirrored = len(files)
	}

	logger.Infof("Report generated in %v", g.now().Sub(startTime))
	logger.Infof("Open: file://%s", dest)
	return out, nil
}

func (g *Generator) saveHistory(out *Output, records []*models.FlatRecord, elapsed time.Duration) error {
	db, err := storage.NewDatabase(g.config.ReportsDir)
	if err != nil {
		return err
	}
	defer db.Close()

	report := &storage.ReportRecord{
		ID:             uuid.New().String(),
		Timestamp:      g.now(),
		Title:          g.config.Title,
		ElapsedMs:      elapsed.Milliseconds(),
		Total:          out.Summary.Total,
		Passed:         out.Summary.Passed,
		Failed:         out.Summary.Failed,
		Skipped:        out.Summary.Skipped,
		PassPercentage: out.Summary.PassPercentage,
		ReportPath:     out.ReportPath,
	}

	runs := make([]*storage.RunRecord, 0, len(records))
	for _, rec := range records {
		// names were validated by Group
		feature, _ := grouping.FeatureName(rec.TestName)
		run := &storage.RunRecord{
			Feature:  feature,
			Scenario: rec.TestName,
			Browser:  rec.Browser,
			Status:   rec.Status.String(),
			Duration: rec.Duration,
		}
		if rec.HasStackTrace() {
			run.ErrorMessage = rec.StackTrace[0]
		}
		runs = append(runs, run)
	}

	if err := db.SaveReport(report, runs); err != nil {
		return err
	}

	out.ReportID = report.ID
	out.HistoryPath = db.Path()
	logger.Infof("Saved report history with ID: %s", report.ID)
	return nil
}
