package reporter

import (
	"context"
	"strings"
	"time"

	"github.com/lirany1/html-screenshot-reporter/pkg/config"
	"github.com/lirany1/html-screenshot-reporter/pkg/generator"
	"github.com/lirany1/html-screenshot-reporter/pkg/logger"
	"github.com/lirany1/html-screenshot-reporter/pkg/models"
	"github.com/lirany1/html-screenshot-reporter/pkg/screenshot"
)

// SuiteInfo is passed when the whole run starts
type SuiteInfo struct {
	TotalSpecsDefined int
}

// Suite is a describe block
type Suite struct {
	Description string
	FullName    string
}

// Spec is a single test case. FullName is the enclosing suite names followed by Description.
type Spec struct {
	Description string
	FullName    string
}

// HTMLScreenshotReporter captures a screenshot after every spec and renders
// the grouped HTML report from the framework's results file
type HTMLScreenshotReporter struct {
	options models.Options
	config  *config.Config
	browser screenshot.Browser
	sink    *screenshot.Sink

	tsStart time.Time
	now     func() time.Time
	specs   int
}

// New creates a reporter with the configuration found in the working directory
func New(options models.Options, browser screenshot.Browser) *HTMLScreenshotReporter {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Warnf("Failed to load config, using defaults: %v", err)
		cfg = config.DefaultConfig()
	}
	return NewWithConfig(options, cfg, browser)
}

// NewWithConfig creates a reporter; the elapsed time of the report is measured from here
func NewWithConfig(options models.Options, cfg *config.Config, browser screenshot.Browser) *HTMLScreenshotReporter {
	if options.Title != "" {
		cfg.Title = options.Title
	}
	if options.HTMLReportDestPath != "" {
		cfg.HTMLReportDestPath = options.HTMLReportDestPath
	}

	return &HTMLScreenshotReporter{
		options: options,
		config:  cfg,
		browser: browser,
		sink:    screenshot.NewSink(cfg.ScreenshotPath(), cfg.ScreenshotTimeout),
		tsStart: time.Now(),
		now:     time.Now,
	}
}

// Options returns the options the reporter was created with
func (r *HTMLScreenshotReporter) Options() models.Options {
	return r.options
}

// Sink returns the screenshot sink
func (r *HTMLScreenshotReporter) Sink() *screenshot.Sink {
	return r.sink
}

// JasmineStarted is called once before any suite runs
func (r *HTMLScreenshotReporter) JasmineStarted(info SuiteInfo) {
	logger.Debugf("Run started with %d specs", info.TotalSpecsDefined)
}

// SuiteStarted is called when a describe block starts
func (r *HTMLScreenshotReporter) SuiteStarted(suite *Suite) {}

// SpecStarted rewrites the spec description into the composite
// "Feature: <suite> - Scenario: <spec>|<browser>-<version>" form the report groups by
func (r *HTMLScreenshotReporter) SpecStarted(spec *Spec) {
	feature := strings.TrimSpace(strings.Replace(spec.FullName, spec.Description, "", 1))
	spec.Description = models.ComposeTestName(feature, spec.Description, r.browser.BrowserName(), r.browser.Version())
}

// SpecDone captures the end-of-spec screenshot in the background
func (r *HTMLScreenshotReporter) SpecDone(ctx context.Context, spec *Spec) {
	r.specs++
	testName := spec.Description
	if i := strings.LastIndex(testName, models.BrowserSeparator); i >= 0 {
		testName = testName[:i]
	}
	r.sink.Capture(ctx, r.browser, testName)
}

// SuiteDone is called when a describe block finishes
func (r *HTMLScreenshotReporter) SuiteDone(suite *Suite) {}

// JasmineDone waits for outstanding screenshot captures
func (r *HTMLScreenshotReporter) JasmineDone() {
	r.sink.Wait()
	logger.Infof("Captured %d screenshots for %d specs (%d failed)", r.sink.Written(), r.specs, r.sink.Failures())
}

// GenerateHTMLReport renders the report from the results file the framework wrote
func (r *HTMLScreenshotReporter) GenerateHTMLReport(inputFile string) (*generator.Output, error) {
	elapsed := r.now().Sub(r.tsStart)
	return generator.NewGenerator(r.config).GenerateFromFile(inputFile, elapsed)
}
