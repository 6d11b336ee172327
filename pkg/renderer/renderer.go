package renderer

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/lirany1/html-screenshot-reporter/pkg/analytics"
	"github.com/lirany1/html-screenshot-reporter/pkg/config"
	"github.com/lirany1/html-screenshot-reporter/pkg/grouping"
)

// compatibilityComment precedes the doctype so local files open without IE's local-zone prompt.
// html/template drops comments, so it is written ahead of the template output.
const compatibilityComment = `<!-- saved from url=(0014)about:internet -->`

// Report is the view model of a complete document
type Report struct {
	Title    string
	Elapsed  string
	Summary  analytics.Summary
	Features []FeatureTable
}

// Renderer handles HTML template rendering
type Renderer struct {
	config *config.Config
	tmpl   *template.Template
}

// NewRenderer creates a new renderer
func NewRenderer(cfg *config.Config) *Renderer {
	return &Renderer{
		config: cfg,
		tmpl:   template.Must(template.New("report").Parse(documentTemplate)),
	}
}

// BuildReport assembles the view model from a grouping and its summary
func (r *Renderer) BuildReport(title, elapsed string, summary analytics.Summary, g *grouping.Grouping) *Report {
	return &Report{
		Title:    title,
		Elapsed:  elapsed,
		Summary:  summary,
		Features: BuildFeatureTables(g, r.config.ScreenshotsDir),
	}
}

// Render writes the complete document
func (r *Renderer) Render(w io.Writer, report *Report) error {
	if _, err := io.WriteString(w, compatibilityComment); err != nil {
		return err
	}
	return r.tmpl.Execute(w, report)
}

// RenderString renders the complete document into a string
func (r *Renderer) RenderString(report *Report) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, report); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderFile renders the document and writes it to outputPath. Nothing is
// written when rendering fails.
func (r *Renderer) RenderFile(report *Report, outputPath string) error {
	var buf bytes.Buffer
	if err := r.Render(&buf, report); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", outputPath, err)
	}
	return nil
}
