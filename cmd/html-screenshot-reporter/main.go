package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/lirany1/html-screenshot-reporter/pkg/analytics"
	"github.com/lirany1/html-screenshot-reporter/pkg/config"
	"github.com/lirany1/html-screenshot-reporter/pkg/generator"
	"github.com/lirany1/html-screenshot-reporter/pkg/logger"
	"github.com/lirany1/html-screenshot-reporter/pkg/plugin"
	"github.com/lirany1/html-screenshot-reporter/pkg/screenshot"
	"github.com/lirany1/html-screenshot-reporter/pkg/server"
	"github.com/lirany1/html-screenshot-reporter/pkg/storage"
	"github.com/spf13/cobra"
)

var (
	version = "1.0.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	// Gauge starts reporter plugins with <plugin id>_action=execution
	if os.Getenv("html-screenshot-reporter_action") == "execution" {
		runAsGaugePlugin()
		return
	}

	if err := newRootCmd().Execute(); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "html-screenshot-reporter",
		Short: "Grouped HTML test report with per-browser screenshots",
		Long: `HTML Screenshot Reporter

Renders one table per feature with a row per scenario and a column per browser.
Each cell links to the screenshot taken at the end of that run.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	var generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Generate the HTML report from a results file",
		RunE:  runGenerate,
	}
	generateCmd.Flags().StringP("input", "i", "", "Results file (required)")
	generateCmd.Flags().StringP("output", "o", "", "Destination of the HTML report")
	generateCmd.Flags().StringP("title", "t", "", "Report title")
	generateCmd.Flags().String("format", "", "Input format (json, gauge)")
	generateCmd.Flags().StringSliceP("formats", "f", nil, "Export formats (html, json)")
	generateCmd.Flags().Duration("elapsed", 0, "Elapsed run time shown in the report")
	generateCmd.Flags().Bool("history", false, "Record the report in the run history")
	_ = generateCmd.MarkFlagRequired("input")

	var screenshotCmd = &cobra.Command{
		Use:   "screenshot",
		Short: "Write base64 PNG data as the screenshot of a run",
		Long:  "Writes base64 image data from --data or stdin under the run id of the scenario and browser.",
		RunE:  runScreenshot,
	}
	screenshotCmd.Flags().StringP("scenario", "s", "", "Composite test name without the browser (required)")
	screenshotCmd.Flags().StringP("browser", "b", "", "Browser label, such as chrome-99 (required)")
	screenshotCmd.Flags().String("data", "", "Base64 image data; read from stdin when empty")
	_ = screenshotCmd.MarkFlagRequired("scenario")
	_ = screenshotCmd.MarkFlagRequired("browser")

	var serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the report, its screenshots and the run history API",
		RunE:  runServe,
	}
	serveCmd.Flags().IntP("port", "p", 8080, "Port to run server on")
	serveCmd.Flags().StringP("host", "H", "localhost", "Host to bind server to")
	serveCmd.Flags().StringP("dir", "d", "", "Directory to serve (defaults to the report's directory)")

	var historyCmd = &cobra.Command{
		Use:   "history",
		Short: "List recent reports from the run history",
		RunE:  runHistory,
	}
	historyCmd.Flags().IntP("limit", "n", 0, "Number of reports to list")
	historyCmd.Flags().StringP("scenario", "s", "", "Show the flaky score and recent runs of this scenario")
	historyCmd.Flags().StringP("browser", "b", "", "Browser of the scenario")

	var initCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the default settings",
		RunE:  runInit,
	}
	initCmd.Flags().StringP("output", "o", "report-config.yml", "Configuration file to write (yml, json or toml)")
	initCmd.Flags().StringP("title", "t", "", "Report title")
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")

	var pluginCmd = &cobra.Command{
		Use:   "plugin",
		Short: "Run as Gauge reporter plugin",
		Long:  "Start the plugin in Gauge plugin mode (used internally by Gauge).",
		Run:   func(cmd *cobra.Command, args []string) { runAsGaugePlugin() },
	}

	rootCmd.AddCommand(generateCmd, screenshotCmd, serveCmd, historyCmd, initCmd, pluginCmd)
	return rootCmd
}

// loadConfig reads the --config file if given, otherwise the default config files, then the environment
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	if configFile != "" {
		cfg = config.NewConfig()
		if err := cfg.LoadFromFile(configFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg.LoadFromEnv()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	} else {
		var err error
		if cfg, err = config.LoadConfig(); err != nil {
			return nil, err
		}
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	logger.SetLevel(cfg.LogLevel)
	return cfg, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	inputFile, _ := cmd.Flags().GetString("input")
	elapsed, _ := cmd.Flags().GetDuration("elapsed")

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		cfg.HTMLReportDestPath = output
	}
	if title, _ := cmd.Flags().GetString("title"); title != "" {
		cfg.Title = title
	}
	if format, _ := cmd.Flags().GetString("format"); format != "" {
		cfg.InputFormat = format
	}
	if formats, _ := cmd.Flags().GetStringSlice("formats"); len(formats) > 0 {
		cfg.ExportFormats = formats
	}
	if history, _ := cmd.Flags().GetBool("history"); history {
		cfg.HistoryEnabled = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Infof("Input: %s", inputFile)
	logger.Infof("Output: %s", cfg.HTMLReportDestPath)

	out, err := generator.NewGenerator(cfg).GenerateFromFile(inputFile, elapsed)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d passed, %d failed, %d skipped (%d%%)\n",
		out.ReportPath, out.Summary.Passed, out.Summary.Failed, out.Summary.Skipped, out.Summary.PassPercentage)
	return nil
}

func runScreenshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	scenario, _ := cmd.Flags().GetString("scenario")
	browser, _ := cmd.Flags().GetString("browser")
	data, _ := cmd.Flags().GetString("data")

	if data == "" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read screenshot data: %w", err)
		}
		data = strings.TrimSpace(string(raw))
	}

	sink := screenshot.NewSink(cfg.ScreenshotPath(), cfg.ScreenshotTimeout)
	path, err := sink.Write(screenshot.RunID(scenario, browser), data)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	port, _ := cmd.Flags().GetInt("port")
	host, _ := cmd.Flags().GetString("host")
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = reportDir(cfg)
	}

	var history *storage.Database
	if cfg.HistoryEnabled {
		history, err = storage.NewDatabase(cfg.ReportsDir)
		if err != nil {
			logger.Warnf("Failed to open run history: %v", err)
		} else {
			defer history.Close()
		}
	}

	logger.Infof("Serving reports from: %s", dir)
	srv := server.NewServer(&server.Config{
		Host:         host,
		Port:         port,
		ReportDir:    dir,
		HistoryLimit: cfg.HistoryLimit,
	}, history)

	return srv.Start()
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = cfg.HistoryLimit
	}
	scenario, _ := cmd.Flags().GetString("scenario")
	browser, _ := cmd.Flags().GetString("browser")

	db, err := storage.NewDatabase(cfg.ReportsDir)
	if err != nil {
		return err
	}
	defer db.Close()

	w := cmd.OutOrStdout()
	if scenario != "" {
		score, err := db.CalculateFlakyScore(scenario, browser, limit)
		if err != nil {
			return fmt.Errorf("failed to calculate flaky score: %w", err)
		}
		fmt.Fprintf(w, "%s on %s: flaky score %.2f\n", scenario, browser, score)

		runs, err := db.GetScenarioHistory(scenario, browser, limit)
		if err != nil {
			return fmt.Errorf("failed to load scenario history: %w", err)
		}
		return printRuns(w, runs)
	}

	reports, err := db.GetRecentReports(limit)
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}
	return printReports(w, reports)
}

func printReports(w io.Writer, reports []storage.ReportRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tTITLE\tPASSED\tFAILED\tSKIPPED\tPASS %\tELAPSED")
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			r.ID,
			r.Timestamp.Local().Format(time.DateTime),
			r.Title,
			r.Passed,
			r.Failed,
			r.Skipped,
			r.PassPercentage,
			analytics.HumanizeDuration(time.Duration(r.ElapsedMs)*time.Millisecond),
		)
	}
	return tw.Flush()
}

func printRuns(w io.Writer, runs []storage.RunRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "REPORT\tSTATUS\tDURATION\tERROR")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			r.ReportID,
			r.Status,
			analytics.HumanizeDuration(time.Duration(r.Duration)*time.Millisecond),
			r.ErrorMessage,
		)
	}
	return tw.Flush()
}

func runInit(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}

	cfg := config.NewConfig()
	if title, _ := cmd.Flags().GetString("title"); title != "" {
		cfg.Title = title
	}
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func reportDir(cfg *config.Config) string {
	return filepath.Dir(cfg.HTMLReportDestPath)
}

func runAsGaugePlugin() {
	logger.Info("Starting HTML screenshot reporter plugin")

	cfg := config.NewConfig()
	cfg.InputFormat = config.FormatGauge
	cfg.LoadFromEnv()
	logger.SetLevel(cfg.LogLevel)

	p := plugin.NewPlugin(cfg)
	if err := p.Start(); err != nil {
		logger.Fatalf("Failed to start plugin: %v", err)
	}
}
