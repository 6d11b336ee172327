package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lirany1/html-screenshot-reporter/pkg/storage"
)

func newTestServer(t *testing.T, withHistory bool) (*Server, string) {
	t.Helper()
	reportDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(reportDir, "report.html"), []byte("<html></html>"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(reportDir, "screenshots"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(reportDir, "screenshots", "aChrome.png"), []byte("png"), 0644))

	var db *storage.Database
	if withHistory {
		var err error
		db, err = storage.NewDatabase(t.TempDir())
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		ts := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
		for i, id := range []string{"first", "second"} {
			report := &storage.ReportRecord{ID: id, Timestamp: ts.Add(time.Duration(i) * time.Hour), Title: "Nightly", Total: 1, Passed: 1}
			runs := []*storage.RunRecord{{Feature: "Login", Scenario: "Feature: Login - Scenario: Valid user", Browser: "chrome", Status: "passed"}}
			require.NoError(t, db.SaveReport(report, runs))
		}
	}

	return NewServer(&Config{Host: "127.0.0.1", Port: 0, ReportDir: reportDir, HistoryLimit: 20}, db), reportDir
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestServer_StaticFiles(t *testing.T) {
	s, _ := newTestServer(t, false)

	rec := get(t, s, "/report.html")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<html>")

	rec = get(t, s, "/screenshots/aChrome.png")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png", rec.Body.String())
}

func TestServer_ListRuns(t *testing.T) {
	s, _ := newTestServer(t, true)

	rec := get(t, s, "/api/runs")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Runs []storage.ReportRecord `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Runs, 2)
	assert.Equal(t, "second", body.Runs[0].ID)

	rec = get(t, s, "/api/runs?limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Runs, 1)

	rec = get(t, s, "/api/runs?limit=zero")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_GetRun(t *testing.T) {
	s, _ := newTestServer(t, true)

	rec := get(t, s, "/api/runs/first")
	require.Equal(t, http.StatusOK, rec.Code)

	var body runDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "first", body.Report.ID)
	require.Len(t, body.Runs, 1)
	assert.Equal(t, "chrome", body.Runs[0].Browser)

	rec = get(t, s, "/api/runs/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_NoHistory(t *testing.T) {
	s, _ := newTestServer(t, false)

	assert.Equal(t, http.StatusServiceUnavailable, get(t, s, "/api/runs").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, s, "/api/runs/first").Code)
}
