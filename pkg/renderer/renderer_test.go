package renderer

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lirany1/html-screenshot-reporter/pkg/analytics"
	"github.com/lirany1/html-screenshot-reporter/pkg/config"
	"github.com/lirany1/html-screenshot-reporter/pkg/grouping"
	"github.com/lirany1/html-screenshot-reporter/pkg/models"
	"github.com/lirany1/html-screenshot-reporter/pkg/results"
)

const loginScenario = "Feature: Login - Scenario: Valid user"

func loginRecords() []*models.FlatRecord {
	return []*models.FlatRecord{
		{TestName: loginScenario, Browser: "Chrome", Status: models.StatusPass, Duration: 10},
		{
			TestName:   loginScenario,
			Browser:    "Firefox",
			Status:     models.StatusFail,
			Duration:   20,
			StackTrace: []string{"Error: mismatch", "at line 5"},
		},
	}
}

func browsersOf(records []*models.FlatRecord) []string {
	set := make(map[string]bool)
	for _, r := range records {
		set[r.Browser] = true
	}
	browsers := make([]string, 0, len(set))
	for b := range set {
		browsers = append(browsers, b)
	}
	sort.Strings(browsers)
	return browsers
}

func render(t *testing.T, records []*models.FlatRecord) string {
	t.Helper()
	g, err := grouping.Group(records, browsersOf(records))
	require.NoError(t, err)

	r := NewRenderer(config.NewConfig())
	report := r.BuildReport("Automation Results", "1 mins. 30 secs.", analytics.Summarize(results.Statuses(records)), g)
	out, err := r.RenderString(report)
	require.NoError(t, err)
	return out
}

func TestRender_LoginScenario(t *testing.T) {
	out := render(t, loginRecords())

	assert.Equal(t, 1, strings.Count(out, `<table class="testlist">`))
	assert.Contains(t, out, `<tr><th>Test#</th><th>Login</th><th>Chrome</th><th>Firefox</th></tr>`)
	assert.Contains(t, out, `<tr><td>1</td><td class="testname">Feature: Login - Scenario: Valid user</td>`)

	assert.Contains(t, out,
		`<td class="pass"><a href="screenshots/Feature-Login---Scenario-Valid-userChrome.png">PASS</a></td>`)
	assert.Contains(t, out,
		`<td class="fail">FAIL <a href="screenshots/Feature-Login---Scenario-Valid-userFirefox.png">screen shot</a> `+
			`<a href="#" onclick="showhide('Feature-Login---Scenario-Valid-userFirefox')">stack trace</a></td>`)

	assert.Contains(t, out,
		`<tr class="stack" style="display:none" id="Feature-Login---Scenario-Valid-userFirefox">`+
			`<td colspan="4" style="background-color: #FFBBBB"><table class="stacker">`+
			`<tr><td class="error">Error: mismatch</td></tr><tr><td>at line 5</td></tr></table></td></tr>`)
	assert.Equal(t, 1, strings.Count(out, `<td class="error">`))
	assert.Equal(t, 1, strings.Count(out, `<tr class="stack"`))
}

func TestRender_DocumentOrder(t *testing.T) {
	out := render(t, loginRecords())

	require.True(t, strings.HasPrefix(out, `<!-- saved from url=(0014)about:internet --><!DOCTYPE html><html><head>`))
	assert.True(t, strings.HasSuffix(out, `</body></html>`))

	sections := []string{
		`<meta http-equiv="Content-Type" content="text/html" />`,
		`<style type="text/css">`,
		`function showhide(id)`,
		`<body>`,
		`<div class="header">Automation Results</div>`,
		`<table class="runInfo"><tr><td>Elapsed time</td><td>1 mins. 30 secs.</td></tr></table>`,
		`<table class="summary">`,
		`<table class="testlist">`,
	}
	last := -1
	for _, s := range sections {
		i := strings.Index(out, s)
		require.GreaterOrEqual(t, i, 0, "missing section %q", s)
		assert.Greater(t, i, last, "section %q out of order", s)
		last = i
	}
}

func TestRender_SummaryWithoutPending(t *testing.T) {
	out := render(t, loginRecords())

	assert.Contains(t, out,
		`<table class="summary"><tr><th>Total</th><th>Pass</th><th>Fail</th><th>Pass%</th></tr>`+
			`<tr><td>2</td><td>1</td><td>1</td><td>50</td></tr></table>`)
	assert.NotContains(t, out, `<th>Pending</th>`)
}

func TestRender_SkippedAndPending(t *testing.T) {
	records := append(loginRecords(), &models.FlatRecord{
		TestName: "Feature: Login - Scenario: Locked out",
		Browser:  "Chrome",
		Status:   models.StatusSkipped,
		Duration: 1500,
	})
	out := render(t, records)

	assert.Contains(t, out, `<td class="skip">Skipped (test duration 1500ms)</td>`)
	assert.Contains(t, out,
		`<tr><th>Total</th><th>Executed</th><th>Pending</th><th>Pass</th><th>Fail</th><th>Pass%</th></tr>`+
			`<tr><td>3</td><td>2</td><td>1</td><td>1</td><td>1</td><td>50</td></tr>`)
	// no run on Firefox for the skipped scenario
	assert.Contains(t, out, `<td class="skip">Skipped (test duration 1500ms)</td><td></td></tr>`)
}

func TestRender_EscapesUntrustedText(t *testing.T) {
	records := []*models.FlatRecord{{
		TestName:   "Feature: <b>Bold</b> - Scenario: uses <script>",
		Browser:    "Chrome",
		Status:     models.StatusFail,
		StackTrace: []string{`Expected "<div>" & more`, "at <anonymous>"},
	}}
	out := render(t, records)

	assert.NotContains(t, out, "<b>Bold</b>")
	assert.NotContains(t, out, "uses <script>")
	assert.Contains(t, out, "<th>&lt;b&gt;Bold&lt;/b&gt;</th>")
	assert.Contains(t, out, `<td class="error">Expected &#34;&lt;div&gt;&#34; &amp; more</td>`)
	assert.Contains(t, out, `<tr><td>at &lt;anonymous&gt;</td></tr>`)
	// encoded once, not twice
	assert.NotContains(t, out, "&amp;lt;")
}

func TestRender_FailWithoutStackTrace(t *testing.T) {
	records := []*models.FlatRecord{{TestName: loginScenario, Browser: "Chrome", Status: models.StatusFail}}
	out := render(t, records)

	assert.Contains(t, out,
		`<td class="fail">FAIL <a href="screenshots/Feature-Login---Scenario-Valid-userChrome.png">screen shot</a></td>`)
	assert.NotContains(t, out, `<tr class="stack"`)
	assert.NotContains(t, out, "stack trace</a>")
	assert.NotContains(t, out, `onclick="showhide(`)
	assert.Contains(t, out, `var e = document.getElementById(id);if (!e) return;`)
}

func TestBuildFeatureTables_CounterSpansFeatures(t *testing.T) {
	records := []*models.FlatRecord{
		{TestName: "Feature: A - Scenario: one", Browser: "chrome", Status: models.StatusPass},
		{TestName: "Feature: A - Scenario: two", Browser: "chrome", Status: models.StatusPass},
		{TestName: "Feature: B - Scenario: three", Browser: "firefox", Status: models.StatusFail, StackTrace: []string{"boom"}},
		{TestName: "Feature: A - Scenario: one", Browser: "firefox", Status: models.StatusPass},
	}
	g, err := grouping.Group(records, []string{"chrome", "firefox"})
	require.NoError(t, err)

	tables := BuildFeatureTables(g, "screenshots")

	require.Len(t, tables, 2)
	assert.Equal(t, "A", tables[0].Name)
	assert.Equal(t, "B", tables[1].Name)
	assert.Equal(t, []string{"chrome", "firefox"}, tables[0].Browsers)

	require.Len(t, tables[0].Rows, 2)
	require.Len(t, tables[1].Rows, 1)
	assert.Equal(t, 1, tables[0].Rows[0].Index)
	assert.Equal(t, 2, tables[0].Rows[1].Index)
	assert.Equal(t, 3, tables[1].Rows[0].Index)

	three := tables[1].Rows[0]
	assert.Equal(t, CellEmpty, three.Cells[0].Kind)
	assert.Equal(t, CellFail, three.Cells[1].Kind)
	assert.True(t, three.Cells[1].HasTrace)
	assert.False(t, tables[0].Rows[0].Cells[0].HasTrace)
	require.Len(t, three.Details, 1)
	assert.Equal(t, "boom", three.Details[0].Primary)
	assert.Empty(t, three.Details[0].Lines)
	assert.Equal(t, 4, three.Details[0].Colspan)
}

func TestRenderFile(t *testing.T) {
	g, err := grouping.Group(loginRecords(), []string{"Chrome", "Firefox"})
	require.NoError(t, err)

	r := NewRenderer(config.NewConfig())
	report := r.BuildReport("Title", "1 secs.", analytics.Summarize(results.Statuses(loginRecords())), g)

	path := filepath.Join(t.TempDir(), "nested", "report.html")
	require.NoError(t, r.RenderFile(report, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<div class="header">Title</div>`)
}

func TestRenderFile_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	r := NewRenderer(config.NewConfig())
	err := r.RenderFile(&Report{}, filepath.Join(blocker, "report.html"))
	assert.Error(t, err)
}
