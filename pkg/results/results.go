package results

import (
	"encoding/json"
	"fmt"
	"html"
	"os"
	"sort"
	"strings"

	"github.com/lirany1/html-screenshot-reporter/pkg/logger"
	"github.com/lirany1/html-screenshot-reporter/pkg/models"
)

// Accessor reads the format-specific fields of a raw result
type Accessor interface {
	BrowserName(r *models.RawResult) string
	TestName(r *models.RawResult) string
	Status(r *models.RawResult) models.Status
}

// DefaultAccessor reads results whose description has the form
// "Feature: X - Scenario: Y|browser-version"
type DefaultAccessor struct{}

// BrowserName returns the description suffix after the last separator, which is
// the label screenshots are written under. The browser field is used only when
// the description has no suffix.
func (DefaultAccessor) BrowserName(r *models.RawResult) string {
	if i := strings.LastIndex(r.Description, models.BrowserSeparator); i >= 0 {
		return r.Description[i+len(models.BrowserSeparator):]
	}
	return r.Browser
}

// TestName returns the description without its browser suffix
func (DefaultAccessor) TestName(r *models.RawResult) string {
	if i := strings.LastIndex(r.Description, models.BrowserSeparator); i >= 0 {
		return r.Description[:i]
	}
	return r.Description
}

// Status treats skipped/pending/disabled as skipped, otherwise requires every assertion to pass
func (DefaultAccessor) Status(r *models.RawResult) models.Status {
	switch strings.ToLower(r.Status) {
	case "skipped", "pending", "disabled", "excluded":
		return models.StatusSkipped
	}
	for _, a := range r.Assertions {
		if !a.Passed {
			return models.StatusFail
		}
	}
	return models.StatusPass
}

// Load reads a JSON array of raw results
func Load(path string) ([]*models.RawResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}

	var raw []*models.RawResult
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode results file %s: %w", path, err)
	}

	logger.Debugf("Loaded %d results from %s", len(raw), path)
	return raw, nil
}

// Extract converts one raw result into a flat record
func Extract(acc Accessor, r *models.RawResult) *models.FlatRecord {
	return &models.FlatRecord{
		TestName:   acc.TestName(r),
		Browser:    acc.BrowserName(r),
		Status:     acc.Status(r),
		Duration:   r.Duration,
		StackTrace: ConsolidateStackTraces(r.Assertions),
	}
}

// ExtractAll extracts every raw result, preserving input order
func ExtractAll(acc Accessor, raw []*models.RawResult) []*models.FlatRecord {
	records := make([]*models.FlatRecord, 0, len(raw))
	for _, r := range raw {
		records = append(records, Extract(acc, r))
	}
	return records
}

// ConsolidateStackTraces flattens the messages and traces of failed assertions.
// Within an assertion the message comes before its trace lines.
func ConsolidateStackTraces(assertions []models.Assertion) []string {
	lines := make([]string, 0)
	for _, a := range assertions {
		if a.Passed {
			continue
		}
		if a.ErrorMsg != "" {
			lines = append(lines, a.ErrorMsg)
		}
		if a.StackTrace != "" {
			lines = append(lines, strings.Split(a.StackTrace, "\n")...)
		}
	}
	return lines
}

// UniqueBrowserNames returns the distinct browser names, sorted
func UniqueBrowserNames(acc Accessor, raw []*models.RawResult) []string {
	seen := make(map[string]bool)
	browsers := make([]string, 0)
	for _, r := range raw {
		name := acc.BrowserName(r)
		if !seen[name] {
			seen[name] = true
			browsers = append(browsers, name)
		}
	}
	sort.Strings(browsers)
	return browsers
}

// Statuses returns the status of every record
func Statuses(records []*models.FlatRecord) []models.Status {
	statuses := make([]models.Status, len(records))
	for i, r := range records {
		statuses[i] = r.Status
	}
	return statuses
}

// CountPassed counts passed statuses
func CountPassed(statuses []models.Status) int {
	return count(statuses, models.StatusPass)
}

// CountFailed counts failed statuses
func CountFailed(statuses []models.Status) int {
	return count(statuses, models.StatusFail)
}

// CountSkipped counts skipped statuses
func CountSkipped(statuses []models.Status) int {
	return count(statuses, models.StatusSkipped)
}

func count(statuses []models.Status, want models.Status) int {
	n := 0
	for _, s := range statuses {
		if s == want {
			n++
		}
	}
	return n
}

// EncodeEntities escapes text from test output for inclusion in HTML
func EncodeEntities(s string) string {
	return html.EscapeString(s)
}
