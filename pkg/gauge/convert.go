package gauge

import (
	"fmt"
	"os"
	"strings"

	"github.com/getgauge/gauge-proto/go/gauge_messages"
	"github.com/lirany1/html-screenshot-reporter/pkg/logger"
	"github.com/lirany1/html-screenshot-reporter/pkg/models"
	"google.golang.org/protobuf/proto"
)

// LoadFile reads a serialized Gauge suite result and converts it for the given browser label
func LoadFile(path, browser string) ([]*models.RawResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	suite := &gauge_messages.ProtoSuiteResult{}
	if err := proto.Unmarshal(data, suite); err != nil {
		return nil, fmt.Errorf("failed to unmarshal proto data: %w", err)
	}

	return Convert(suite, browser), nil
}

// Convert maps every scenario of a Gauge suite result to one raw result.
// Spec headings become features; the browser label is fixed for the whole suite.
func Convert(suite *gauge_messages.ProtoSuiteResult, browser string) []*models.RawResult {
	raw := make([]*models.RawResult, 0)

	for _, spec := range suite.GetSpecResults() {
		feature := strings.TrimSpace(spec.GetProtoSpec().GetSpecHeading())
		for _, item := range spec.GetProtoSpec().GetItems() {
			if item.GetItemType() != gauge_messages.ProtoItem_Scenario {
				continue
			}
			raw = append(raw, convertScenario(feature, item.GetScenario(), browser))
		}
	}

	logger.Debugf("Converted %d Gauge scenarios", len(raw))
	return raw
}

func convertScenario(feature string, scenario *gauge_messages.ProtoScenario, browser string) *models.RawResult {
	heading := strings.TrimSpace(scenario.GetScenarioHeading())

	r := &models.RawResult{
		Description: models.ComposeTestName(feature, heading, browser, ""),
		Browser:     browser,
		Duration:    scenario.GetExecutionTime(),
		Assertions:  make([]models.Assertion, 0),
	}

	//nolint:staticcheck // Using deprecated Gauge proto method until framework provides alternative
	if scenario.GetSkipped() {
		r.Status = "skipped"
	}

	for _, item := range scenario.GetScenarioItems() {
		if item.GetItemType() != gauge_messages.ProtoItem_Step {
			continue
		}
		execResult := item.GetStep().GetStepExecutionResult().GetExecutionResult()
		if execResult == nil {
			continue
		}
		r.Assertions = append(r.Assertions, models.Assertion{
			Passed:     !execResult.GetFailed(),
			ErrorMsg:   execResult.GetErrorMessage(),
			StackTrace: execResult.GetStackTrace(),
		})
	}

	// a scenario can fail in hooks with every step passing
	//nolint:staticcheck // Using deprecated Gauge proto method until framework provides alternative
	if scenario.GetFailed() && !hasFailure(r.Assertions) {
		r.Assertions = append(r.Assertions, models.Assertion{Passed: false, ErrorMsg: "Scenario failed"})
	}

	return r
}

func hasFailure(assertions []models.Assertion) bool {
	for _, a := range assertions {
		if !a.Passed {
			return true
		}
	}
	return false
}
