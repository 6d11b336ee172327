package models

import "strings"

// Status is the outcome of a single run
type Status int

const (
	StatusPass Status = iota
	StatusFail
	StatusSkipped
)

// String returns the status string used in exports and history
func (s Status) String() string {
	switch s {
	case StatusPass:
		return "passed"
	case StatusFail:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Assertion is one pass/fail check within a run
type Assertion struct {
	Passed     bool   `json:"passed"`
	ErrorMsg   string `json:"errorMsg,omitempty"`
	StackTrace string `json:"stackTrace,omitempty"`
}

// RawResult is one test execution against one browser, as read from the results file
type RawResult struct {
	Description string      `json:"description"`
	Browser     string      `json:"browser,omitempty"`
	Status      string      `json:"status,omitempty"`
	Duration    int64       `json:"duration"`
	Assertions  []Assertion `json:"assertions"`
}

// FlatRecord is a run after extraction
type FlatRecord struct {
	TestName   string
	Browser    string
	Status     Status
	Duration   int64
	StackTrace []string
}

// HasStackTrace reports whether the record carries any failure lines
func (r *FlatRecord) HasStackTrace() bool {
	return len(r.StackTrace) > 0
}

// RunKey identifies a run inside a grouping
type RunKey struct {
	Feature  string
	Scenario string
	Browser  string
}

// Options are the reporter options
type Options struct {
	Title              string
	SavePath           string // not read; kept for callers that pass it
	HTMLReportDestPath string
}

// FeaturePrefix and ScenarioDelimiter frame the feature name inside a composite test name
const (
	FeaturePrefix     = "Feature: "
	ScenarioDelimiter = " - Scenario: "
	BrowserSeparator  = "|"
)

// ComposeTestName builds the composite description used by the reporter
func ComposeTestName(feature, scenario, browserName, version string) string {
	var b strings.Builder
	b.WriteString(FeaturePrefix)
	b.WriteString(feature)
	b.WriteString(ScenarioDelimiter)
	b.WriteString(scenario)
	b.WriteString(BrowserSeparator)
	b.WriteString(browserName)
	if version != "" {
		b.WriteString("-")
		b.WriteString(version)
	}
	return b.String()
}
