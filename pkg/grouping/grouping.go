package grouping

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lirany1/html-screenshot-reporter/pkg/models"
)

// ErrMalformedTestName is returned when a test name lacks the feature or scenario marker
var ErrMalformedTestName = errors.New("malformed test name")

// FeatureName extracts the feature from "Feature: <feature> - Scenario: <scenario>"
func FeatureName(testName string) (string, error) {
	if !strings.HasPrefix(testName, models.FeaturePrefix) {
		return "", fmt.Errorf("%w: %q does not start with %q", ErrMalformedTestName, testName, models.FeaturePrefix)
	}

	rest := testName[len(models.FeaturePrefix):]
	end := strings.Index(rest, models.ScenarioDelimiter)
	if end < 0 {
		return "", fmt.Errorf("%w: %q has no %q delimiter", ErrMalformedTestName, testName, strings.TrimSpace(models.ScenarioDelimiter))
	}

	return rest[:end], nil
}

// Grouping holds runs keyed by (feature, scenario, browser) with
// first-seen ordering of features and scenarios
type Grouping struct {
	runs      map[models.RunKey]*models.FlatRecord
	features  []string
	scenarios map[string][]string
	seen      map[string]bool
	browsers  []string
}

// Group folds the flat records into a grouping. browsers is the column set in
// display order, as returned by results.UniqueBrowserNames. A later record for
// the same (scenario, browser) replaces the earlier one.
func Group(records []*models.FlatRecord, browsers []string) (*Grouping, error) {
	g := &Grouping{
		runs:      make(map[models.RunKey]*models.FlatRecord),
		features:  make([]string, 0),
		scenarios: make(map[string][]string),
		seen:      make(map[string]bool),
		browsers:  append(make([]string, 0, len(browsers)), browsers...),
	}

	for _, rec := range records {
		feature, err := FeatureName(rec.TestName)
		if err != nil {
			return nil, err
		}

		if _, ok := g.scenarios[feature]; !ok {
			g.features = append(g.features, feature)
			g.scenarios[feature] = make([]string, 0)
		}

		if !g.seen[rec.TestName] {
			g.seen[rec.TestName] = true
			g.scenarios[feature] = append(g.scenarios[feature], rec.TestName)
		}

		g.runs[models.RunKey{Feature: feature, Scenario: rec.TestName, Browser: rec.Browser}] = rec
	}

	return g, nil
}

// Features returns feature names in first-seen order
func (g *Grouping) Features() []string {
	return g.features
}

// Scenarios returns the scenarios of a feature in first-seen order
func (g *Grouping) Scenarios(feature string) []string {
	return g.scenarios[feature]
}

// Browsers returns the browser columns the grouping was built with
func (g *Grouping) Browsers() []string {
	return g.browsers
}

// Lookup returns the run for a scenario on a browser, if one exists
func (g *Grouping) Lookup(feature, scenario, browser string) (*models.FlatRecord, bool) {
	rec, ok := g.runs[models.RunKey{Feature: feature, Scenario: scenario, Browser: browser}]
	return rec, ok
}

// Len returns the number of distinct runs
func (g *Grouping) Len() int {
	return len(g.runs)
}
