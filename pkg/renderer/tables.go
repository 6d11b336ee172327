package renderer

import (
	"github.com/lirany1/html-screenshot-reporter/pkg/grouping"
	"github.com/lirany1/html-screenshot-reporter/pkg/models"
	"github.com/lirany1/html-screenshot-reporter/pkg/screenshot"
)

// Cell kinds
const (
	CellPass  = "pass"
	CellFail  = "fail"
	CellSkip  = "skip"
	CellEmpty = "empty"
)

// FeatureTable is one feature's results table
type FeatureTable struct {
	Name     string
	Browsers []string
	Rows     []ScenarioRow
}

// ScenarioRow is one scenario with a cell per browser and the stack trace rows of its failures
type ScenarioRow struct {
	Index   int
	Label   string
	Cells   []Cell
	Details []StackTrace
}

// Cell is the result of a scenario on one browser
type Cell struct {
	Kind       string
	ID         string
	Screenshot string
	Duration   int64
	// HasTrace is set on fail cells that have a stack trace row to toggle
	HasTrace bool
}

// StackTrace is the hidden detail row toggled from a fail cell
type StackTrace struct {
	ID      string
	Colspan int
	Primary string
	Lines   []string
}

// BuildFeatureTables lays out the grouping as one table per feature. Row
// numbering continues across features.
func BuildFeatureTables(g *grouping.Grouping, screenshotsDir string) []FeatureTable {
	browsers := g.Browsers()
	tables := make([]FeatureTable, 0, len(g.Features()))

	index := 0
	for _, feature := range g.Features() {
		table := FeatureTable{Name: feature, Browsers: browsers}
		table.Rows, index = buildRows(g, feature, browsers, screenshotsDir, index)
		tables = append(tables, table)
	}
	return tables
}

func buildRows(g *grouping.Grouping, feature string, browsers []string, screenshotsDir string, index int) ([]ScenarioRow, int) {
	scenarios := g.Scenarios(feature)
	rows := make([]ScenarioRow, 0, len(scenarios))

	for _, scenario := range scenarios {
		index++
		row := ScenarioRow{Index: index, Label: scenario, Cells: make([]Cell, 0, len(browsers))}

		for _, browser := range browsers {
			run, ok := g.Lookup(feature, scenario, browser)
			if !ok {
				row.Cells = append(row.Cells, Cell{Kind: CellEmpty})
				continue
			}

			cell := buildCell(run, scenario, browser, screenshotsDir)
			cell.HasTrace = cell.Kind == CellFail && run.HasStackTrace()
			row.Cells = append(row.Cells, cell)

			if cell.HasTrace {
				row.Details = append(row.Details, StackTrace{
					ID:      cell.ID,
					Colspan: len(browsers) + 2,
					Primary: run.StackTrace[0],
					Lines:   run.StackTrace[1:],
				})
			}
		}
		rows = append(rows, row)
	}
	return rows, index
}

func buildCell(run *models.FlatRecord, scenario, browser, screenshotsDir string) Cell {
	cell := Cell{
		ID:         screenshot.RunID(scenario, browser),
		Screenshot: screenshot.RelativePath(screenshotsDir, scenario, browser),
		Duration:   run.Duration,
	}

	switch run.Status {
	case models.StatusPass:
		cell.Kind = CellPass
	case models.StatusFail:
		cell.Kind = CellFail
	default:
		cell.Kind = CellSkip
	}
	return cell
}
