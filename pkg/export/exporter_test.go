package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lirany1/html-screenshot-reporter/pkg/analytics"
	"github.com/lirany1/html-screenshot-reporter/pkg/config"
	"github.com/lirany1/html-screenshot-reporter/pkg/renderer"
)

func sampleReport() *renderer.Report {
	return &renderer.Report{
		Title:   "Nightly",
		Elapsed: "5 secs.",
		Summary: analytics.Summary{Total: 2, Passed: 1, Failed: 1, Executed: 2, PassPercentage: 50},
		Features: []renderer.FeatureTable{{
			Name:     "Login",
			Browsers: []string{"Chrome", "Firefox", "Safari"},
			Rows: []renderer.ScenarioRow{{
				Index: 1,
				Label: "Feature: Login - Scenario: Valid user",
				Cells: []renderer.Cell{
					{Kind: renderer.CellPass, ID: "idChrome", Screenshot: "screenshots/idChrome.png", Duration: 10},
					{Kind: renderer.CellFail, ID: "idFirefox", Screenshot: "screenshots/idFirefox.png", Duration: 1540},
					{Kind: renderer.CellEmpty},
				},
				Details: []renderer.StackTrace{{ID: "idFirefox", Primary: "Error: mismatch", Lines: []string{"at line 5"}}},
			}},
		}},
	}
}

func TestExporter_JSON(t *testing.T) {
	dir := t.TempDir()
	htmlPath := filepath.Join(dir, "report.html")

	path, err := NewExporter(config.NewConfig()).Export(sampleReport(), htmlPath, "json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded jsonReport
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 50, decoded.PassPercentage)
	require.Len(t, decoded.Features, 1)
	runs := decoded.Features[0].Scenarios[0].Runs
	require.Len(t, runs, 2)
	assert.Equal(t, "Chrome", runs[0].Browser)
	assert.Equal(t, "passed", runs[0].Status)
	assert.Empty(t, runs[0].StackTrace)
	assert.Equal(t, int64(10), runs[0].Duration)
	assert.Equal(t, "10ms", runs[0].Took)
	assert.Equal(t, "Firefox", runs[1].Browser)
	assert.Equal(t, "1.5s", runs[1].Took)
	assert.Equal(t, []string{"Error: mismatch", "at line 5"}, runs[1].StackTrace)
}

func TestExporter_Formats(t *testing.T) {
	e := NewExporter(config.NewConfig())

	path, err := e.Export(sampleReport(), "report.html", "HTML")
	assert.NoError(t, err)
	assert.Empty(t, path)

	_, err = e.Export(sampleReport(), "report.html", "pdf")
	assert.Error(t, err)
}
