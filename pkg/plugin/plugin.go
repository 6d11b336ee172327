package plugin

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/getgauge/gauge-proto/go/gauge_messages"
	"github.com/lirany1/html-screenshot-reporter/pkg/config"
	"github.com/lirany1/html-screenshot-reporter/pkg/gauge"
	"github.com/lirany1/html-screenshot-reporter/pkg/generator"
	"github.com/lirany1/html-screenshot-reporter/pkg/logger"
	"google.golang.org/grpc"
)

// reportDirName is the directory under the Gauge reports dir the report is written to
const reportDirName = "html-screenshot-report"

// Plugin is a Gauge reporter that renders the screenshot report when the suite finishes
type Plugin struct {
	gauge_messages.UnimplementedReporterServer
	config   *config.Config
	server   *grpc.Server
	stopChan chan struct{}
	started  time.Time
}

// NewPlugin creates a plugin that writes under the Gauge project's reports directory
func NewPlugin(cfg *config.Config) *Plugin {
	reportsDir := ReportsDir()
	cfg.ReportsDir = reportsDir
	if os.Getenv("HTML_REPORT_DEST") == "" {
		cfg.HTMLReportDestPath = filepath.Join(reportsDir, reportDirName, "report.html")
	}

	return &Plugin{
		config:   cfg,
		stopChan: make(chan struct{}),
	}
}

// ReportsDir resolves the reports directory from the variables Gauge sets
func ReportsDir() string {
	projectRoot := os.Getenv("GAUGE_PROJECT_ROOT")
	if projectRoot == "" {
		projectRoot = "."
	}

	reportsDir := os.Getenv("gauge_reports_dir")
	if reportsDir == "" {
		return filepath.Join(projectRoot, "reports")
	}
	if !filepath.IsAbs(reportsDir) {
		return filepath.Join(projectRoot, reportsDir)
	}
	return reportsDir
}

// Start serves the reporter over gRPC until Kill is called
func (p *Plugin) Start() error {
	address, err := net.ResolveTCPAddr("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to resolve TCP address: %w", err)
	}

	listener, err := net.ListenTCP("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	p.server = grpc.NewServer(grpc.MaxRecvMsgSize(1024 * 1024 * 1024))
	gauge_messages.RegisterReporterServer(p.server, p)

	port := listener.Addr().(*net.TCPAddr).Port

	go func() {
		if err := p.server.Serve(listener); err != nil {
			logger.Errorf("gRPC server error: %v", err)
		}
		p.stop()
	}()

	// Gauge reads the port from this exact line on stdout
	fmt.Fprintf(os.Stdout, "Listening on port:%d\n", port)
	_ = os.Stdout.Sync()

	logger.Infof("gRPC server ready on port %d", port)

	<-p.stopChan
	logger.Info("Plugin shutdown complete")
	return nil
}

func (p *Plugin) stop() {
	select {
	case <-p.stopChan:
	default:
		close(p.stopChan)
	}
}

// NotifyExecutionStarting marks the start of the run
func (p *Plugin) NotifyExecutionStarting(ctx context.Context, info *gauge_messages.ExecutionStartingRequest) (*gauge_messages.Empty, error) {
	logger.Info("Execution starting...")
	p.started = time.Now()
	return &gauge_messages.Empty{}, nil
}

func (p *Plugin) NotifyExecutionEnding(ctx context.Context, result *gauge_messages.ExecutionEndingRequest) (*gauge_messages.Empty, error) {
	return &gauge_messages.Empty{}, nil
}

func (p *Plugin) NotifySpecExecutionStarting(ctx context.Context, info *gauge_messages.SpecExecutionStartingRequest) (*gauge_messages.Empty, error) {
	return &gauge_messages.Empty{}, nil
}

func (p *Plugin) NotifySpecExecutionEnding(ctx context.Context, result *gauge_messages.SpecExecutionEndingRequest) (*gauge_messages.Empty, error) {
	return &gauge_messages.Empty{}, nil
}

func (p *Plugin) NotifyScenarioExecutionStarting(ctx context.Context, info *gauge_messages.ScenarioExecutionStartingRequest) (*gauge_messages.Empty, error) {
	return &gauge_messages.Empty{}, nil
}

func (p *Plugin) NotifyScenarioExecutionEnding(ctx context.Context, result *gauge_messages.ScenarioExecutionEndingRequest) (*gauge_messages.Empty, error) {
	return &gauge_messages.Empty{}, nil
}

func (p *Plugin) NotifyStepExecutionStarting(ctx context.Context, info *gauge_messages.StepExecutionStartingRequest) (*gauge_messages.Empty, error) {
	return &gauge_messages.Empty{}, nil
}

func (p *Plugin) NotifyStepExecutionEnding(ctx context.Context, result *gauge_messages.StepExecutionEndingRequest) (*gauge_messages.Empty, error) {
	return &gauge_messages.Empty{}, nil
}

func (p *Plugin) NotifyConceptExecutionStarting(ctx context.Context, info *gauge_messages.ConceptExecutionStartingRequest) (*gauge_messages.Empty, error) {
	return &gauge_messages.Empty{}, nil
}

func (p *Plugin) NotifyConceptExecutionEnding(ctx context.Context, result *gauge_messages.ConceptExecutionEndingRequest) (*gauge_messages.Empty, error) {
	return &gauge_messages.Empty{}, nil
}

// NotifySuiteResult converts the suite result and generates the report
func (p *Plugin) NotifySuiteResult(ctx context.Context, result *gauge_messages.SuiteExecutionResult) (*gauge_messages.Empty, error) {
	suite := result.GetSuiteResult()
	if suite == nil {
		logger.Warn("Suite result is empty, no report generated")
		return &gauge_messages.Empty{}, nil
	}

	logger.Info("Suite execution complete, generating report...")
	raw := gauge.Convert(suite, p.config.Browser)

	out, err := generator.NewGenerator(p.config).Generate(raw, p.elapsed(suite))
	if err != nil {
		logger.Errorf("Failed to generate report: %v", err)
		return &gauge_messages.Empty{}, err
	}

	logger.Infof("Successfully generated html report to => %s", out.ReportPath)
	return &gauge_messages.Empty{}, nil
}

func (p *Plugin) elapsed(suite *gauge_messages.ProtoSuiteResult) time.Duration {
	if ms := suite.GetExecutionTime(); ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	if !p.started.IsZero() {
		return time.Since(p.started)
	}
	return 0
}

// Kill stops the plugin
func (p *Plugin) Kill(ctx context.Context, request *gauge_messages.KillProcessRequest) (*gauge_messages.Empty, error) {
	logger.Info("Shutting down plugin...")
	if p.server != nil {
		go p.server.GracefulStop()
	}
	p.stop()
	return &gauge_messages.Empty{}, nil
}
