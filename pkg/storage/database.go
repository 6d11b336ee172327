package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lirany1/html-screenshot-reporter/pkg/logger"
	_ "github.com/mattn/go-sqlite3"
)

// timestampLayout is fixed width so stored timestamps sort lexically
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Database stores the summary and per-run results of generated reports
type Database struct {
	db   *sql.DB
	path string
}

// ReportRecord is one generated report
type ReportRecord struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	Title          string    `json:"title"`
	ElapsedMs      int64     `json:"elapsedMs"`
	Total          int       `json:"total"`
	Passed         int       `json:"passed"`
	Failed         int       `json:"failed"`
	Skipped        int       `json:"skipped"`
	PassPercentage int       `json:"passPercentage"`
	ReportPath     string    `json:"reportPath"`
}

// RunRecord is one scenario run on one browser within a report
type RunRecord struct {
	ReportID     string `json:"reportId"`
	Feature      string `json:"feature"`
	Scenario     string `json:"scenario"`
	Browser      string `json:"browser"`
	Status       string `json:"status"`
	Duration     int64  `json:"duration"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// NewDatabase creates or opens the history database under reportsDir
func NewDatabase(reportsDir string) (*Database, error) {
	historyDir := filepath.Join(reportsDir, ".report-history")
	if err := os.MkdirAll(historyDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	dbPath := filepath.Join(historyDir, "history.db")
	logger.Debugf("Opening database at: %s", dbPath)

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	database := &Database{
		db:   db,
		path: dbPath,
	}

	if err := database.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return database, nil
}

// Path returns the database file path
func (d *Database) Path() string {
	return d.path
}

// migrate creates or updates the database schema
func (d *Database) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			timestamp TEXT NOT NULL,
			title TEXT,
			elapsed_ms INTEGER,
			total INTEGER,
			passed INTEGER,
			failed INTEGER,
			skipped INTEGER,
			pass_percentage INTEGER,
			report_path TEXT,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_report_timestamp
		 ON reports(timestamp DESC)`,

		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			report_id TEXT NOT NULL,
			feature TEXT NOT NULL,
			scenario TEXT NOT NULL,
			browser TEXT NOT NULL,
			status TEXT NOT NULL,
			duration INTEGER,
			error_message TEXT,
			FOREIGN KEY (report_id) REFERENCES reports(id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_run_scenario
		 ON runs(scenario, browser)`,

		`CREATE INDEX IF NOT EXISTS idx_run_report
		 ON runs(report_id)`,
	}

	for i, migration := range migrations {
		if _, err := d.db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}

	return nil
}

// SaveReport stores a report and its runs in one transaction
func (d *Database) SaveReport(report *ReportRecord, runs []*RunRecord) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO reports (
			id, timestamp, title, elapsed_ms, total,
			passed, failed, skipped, pass_percentage, report_path
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.ID,
		report.Timestamp.UTC().Format(timestampLayout),
		report.Title,
		report.ElapsedMs,
		report.Total,
		report.Passed,
		report.Failed,
		report.Skipped,
		report.PassPercentage,
		report.ReportPath,
	)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO runs (
			report_id, feature, scenario, browser,
			status, duration, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare run insert: %w", err)
	}
	defer stmt.Close()

	for _, run := range runs {
		if _, err := stmt.Exec(
			report.ID,
			run.Feature,
			run.Scenario,
			run.Browser,
			run.Status,
			run.Duration,
			run.ErrorMessage,
		); err != nil {
			return fmt.Errorf("failed to save run %s on %s: %w", run.Scenario, run.Browser, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report: %w", err)
	}

	logger.Debugf("Saved report record %s with %d runs", report.ID, len(runs))
	return nil
}

// GetRecentReports retrieves the last N reports, newest first
func (d *Database) GetRecentReports(limit int) ([]ReportRecord, error) {
	rows, err := d.db.Query(`
		SELECT
			id, timestamp, title, elapsed_ms, total,
			passed, failed, skipped, pass_percentage, report_path
		FROM reports
		ORDER BY timestamp DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := make([]ReportRecord, 0)
	for rows.Next() {
		var rec ReportRecord
		var timestamp string

		if err := rows.Scan(
			&rec.ID,
			&timestamp,
			&rec.Title,
			&rec.ElapsedMs,
			&rec.Total,
			&rec.Passed,
			&rec.Failed,
			&rec.Skipped,
			&rec.PassPercentage,
			&rec.ReportPath,
		); err != nil {
			return nil, err
		}

		rec.Timestamp, _ = time.Parse(timestampLayout, timestamp)
		reports = append(reports, rec)
	}

	return reports, rows.Err()
}

// GetReport retrieves one report by id
func (d *Database) GetReport(id string) (*ReportRecord, error) {
	var rec ReportRecord
	var timestamp string

	err := d.db.QueryRow(`
		SELECT
			id, timestamp, title, elapsed_ms, total,
			passed, failed, skipped, pass_percentage, report_path
		FROM reports
		WHERE id = ?
	`, id).Scan(
		&rec.ID,
		&timestamp,
		&rec.Title,
		&rec.ElapsedMs,
		&rec.Total,
		&rec.Passed,
		&rec.Failed,
		&rec.Skipped,
		&rec.PassPercentage,
		&rec.ReportPath,
	)
	if err != nil {
		return nil, err
	}

	rec.Timestamp, _ = time.Parse(timestampLayout, timestamp)
	return &rec, nil
}

// GetRuns retrieves the runs of one report in insertion order
func (d *Database) GetRuns(reportID string) ([]RunRecord, error) {
	rows, err := d.db.Query(`
		SELECT report_id, feature, scenario, browser, status, duration, error_message
		FROM runs
		WHERE report_id = ?
		ORDER BY id ASC
	`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRuns(rows)
}

// GetScenarioHistory retrieves the latest runs of a scenario on a browser, newest first
func (d *Database) GetScenarioHistory(scenario, browser string, limit int) ([]RunRecord, error) {
	rows, err := d.db.Query(`
		SELECT r.report_id, r.feature, r.scenario, r.browser, r.status, r.duration, r.error_message
		FROM runs r
		JOIN reports rep ON r.report_id = rep.id
		WHERE r.scenario = ? AND r.browser = ?
		ORDER BY rep.timestamp DESC
		LIMIT ?
	`, scenario, browser, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRuns(rows)
}

func scanRuns(rows *sql.Rows) ([]RunRecord, error) {
	runs := make([]RunRecord, 0)
	for rows.Next() {
		var run RunRecord
		var errorMessage sql.NullString
		if err := rows.Scan(
			&run.ReportID,
			&run.Feature,
			&run.Scenario,
			&run.Browser,
			&run.Status,
			&run.Duration,
			&errorMessage,
		); err != nil {
			return nil, err
		}
		run.ErrorMessage = errorMessage.String
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// CalculateFlakyScore rates how flaky a scenario is on a browser over its last
// executed runs (0.0 = stable, 1.0 = alternating). Skipped runs are ignored.
func (d *Database) CalculateFlakyScore(scenario, browser string, limit int) (float64, error) {
	var totalRuns, failedRuns int
	err := d.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0)
		FROM (
			SELECT r.status
			FROM runs r
			JOIN reports rep ON r.report_id = rep.id
			WHERE r.scenario = ? AND r.browser = ? AND r.status != 'skipped'
			ORDER BY rep.timestamp DESC
			LIMIT ?
		)
	`, scenario, browser, limit).Scan(&totalRuns, &failedRuns)
	if err != nil {
		return 0.0, err
	}

	if totalRuns < 3 {
		return 0.0, nil // Not enough data
	}

	failureRate := float64(failedRuns) / float64(totalRuns)

	// highest when the failure rate is around 50%
	return 1.0 - (2.0 * abs(failureRate-0.5)), nil
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// Close closes the database connection
func (d *Database) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
