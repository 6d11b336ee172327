package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Input formats accepted by the generator
const (
	FormatJSON  = "json"
	FormatGauge = "gauge"
)

// Export formats. html is always written by the renderer.
const (
	ExportHTML = "html"
	ExportJSON = "json"
)

// SupportedExports lists every export format, in the order they are written
var SupportedExports = []string{ExportHTML, ExportJSON}

// Config holds the configuration for report generation and screenshot capture
type Config struct {
	// Report settings
	Title              string   `mapstructure:"title"`
	SavePath           string   `mapstructure:"save_path"`
	HTMLReportDestPath string   `mapstructure:"html_report_dest_path"`
	InputFormat        string   `mapstructure:"input_format"`
	ExportFormats      []string `mapstructure:"export_formats"`

	// Screenshot settings
	OutputRoot        string        `mapstructure:"output_root"`
	ScreenshotsDir    string        `mapstructure:"screenshots_dir"`
	ScreenshotTimeout time.Duration `mapstructure:"screenshot_timeout"`
	MirrorScreenshots bool          `mapstructure:"mirror_screenshots"`

	// History settings
	HistoryEnabled bool   `mapstructure:"history_enabled"`
	ReportsDir     string `mapstructure:"reports_dir"`
	HistoryLimit   int    `mapstructure:"history_limit"`

	// Gauge input: browser label used for every converted run
	Browser string `mapstructure:"browser"`

	LogLevel string `mapstructure:"log_level"`
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Title:              getProjectName() + " Test Report",
		HTMLReportDestPath: filepath.Join("target", "report.html"),
		InputFormat:        FormatJSON,
		ExportFormats:      []string{ExportHTML},
		OutputRoot:         "target",
		ScreenshotsDir:     "screenshots",
		ScreenshotTimeout:  30 * time.Second,
		MirrorScreenshots:  true,
		HistoryEnabled:     false,
		ReportsDir:         "reports",
		HistoryLimit:       20,
		Browser:            "default",
		LogLevel:           "info",
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return NewConfig()
}

// LoadConfig loads the first config file found in the working directory, then the environment
func LoadConfig() (*Config, error) {
	cfg := NewConfig()

	configPaths := []string{
		"report-config.yml",
		"report-config.yaml",
		"report-config.json",
		"report-config.toml",
	}

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := cfg.LoadFromFile(path); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", path, err)
			}
			break
		}
	}

	cfg.LoadFromEnv()
	return cfg, cfg.Validate()
}

// LoadFromFile loads configuration from a file (YAML, JSON, or TOML)
func (c *Config) LoadFromFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return err
	}

	return v.Unmarshal(c)
}

// LoadFromEnv applies environment overrides. A .env file in the working directory is read first if present.
func (c *Config) LoadFromEnv() {
	_ = godotenv.Load()

	if title := os.Getenv("REPORT_TITLE"); title != "" {
		c.Title = title
	}

	if dest := os.Getenv("HTML_REPORT_DEST"); dest != "" {
		c.HTMLReportDestPath = dest
	}

	if root := os.Getenv("REPORT_OUTPUT_ROOT"); root != "" {
		c.OutputRoot = root
	}

	if history := os.Getenv("REPORT_HISTORY"); history == "true" {
		c.HistoryEnabled = true
	}

	if dir := os.Getenv("REPORT_HISTORY_DIR"); dir != "" {
		c.ReportsDir = dir
	}

	if level := os.Getenv("REPORT_LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}

	if browser := os.Getenv("REPORT_BROWSER"); browser != "" {
		c.Browser = browser
	}
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	v := viper.New()
	v.SetConfigFile(path)

	v.Set("title", c.Title)
	v.Set("save_path", c.SavePath)
	v.Set("html_report_dest_path", c.HTMLReportDestPath)
	v.Set("input_format", c.InputFormat)
	v.Set("export_formats", c.ExportFormats)
	v.Set("output_root", c.OutputRoot)
	v.Set("screenshots_dir", c.ScreenshotsDir)
	v.Set("screenshot_timeout", c.ScreenshotTimeout.String())
	v.Set("mirror_screenshots", c.MirrorScreenshots)
	v.Set("history_enabled", c.HistoryEnabled)
	v.Set("reports_dir", c.ReportsDir)
	v.Set("history_limit", c.HistoryLimit)
	v.Set("browser", c.Browser)
	v.Set("log_level", c.LogLevel)

	return v.WriteConfig()
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.HTMLReportDestPath == "" {
		return errors.New("html report destination path is required")
	}
	if c.ScreenshotsDir == "" || filepath.IsAbs(c.ScreenshotsDir) {
		return fmt.Errorf("screenshots dir must be a relative path, got %q", c.ScreenshotsDir)
	}
	switch c.InputFormat {
	case FormatJSON, FormatGauge:
	default:
		return fmt.Errorf("unsupported input format %q", c.InputFormat)
	}
	for _, format := range c.ExportFormats {
		if !isSupportedExport(format) {
			return fmt.Errorf("unsupported export format %q", format)
		}
	}
	if c.ScreenshotTimeout < 0 {
		return errors.New("screenshot timeout must not be negative")
	}
	return nil
}

func isSupportedExport(format string) bool {
	for _, f := range SupportedExports {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}

// ScreenshotPath returns the directory the screenshot sink writes into
func (c *Config) ScreenshotPath() string {
	return filepath.Join(c.OutputRoot, c.ScreenshotsDir)
}

// HasExport reports whether the given export format is enabled
func (c *Config) HasExport(format string) bool {
	for _, f := range c.ExportFormats {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}

// getProjectName tries to get project name from current directory
func getProjectName() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "Automation"
	}
	return filepath.Base(cwd)
}
