package analytics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lirany1/html-screenshot-reporter/pkg/models"
	"github.com/lirany1/html-screenshot-reporter/pkg/results"
)

// Summary holds the run totals shown at the top of the report
type Summary struct {
	Passed         int
	Failed         int
	Skipped        int
	Total          int
	Executed       int
	PassPercentage int
}

// HasPending reports whether any run was skipped
func (s Summary) HasPending() bool {
	return s.Skipped > 0
}

// Summarize counts the statuses of all runs
func Summarize(statuses []models.Status) Summary {
	s := Summary{
		Passed:  results.CountPassed(statuses),
		Failed:  results.CountFailed(statuses),
		Skipped: results.CountSkipped(statuses),
	}
	s.Executed = s.Passed + s.Failed
	s.Total = s.Executed + s.Skipped
	s.PassPercentage = CalculatePassPercentage(s.Passed, s.Failed)
	return s
}

// CalculatePassPercentage returns floor(100*pass/(pass+fail)), or 0 when nothing was executed
func CalculatePassPercentage(pass, fail int) int {
	executed := pass + fail
	if executed <= 0 {
		return 0
	}
	return pass * 100 / executed
}

// FormatElapsed renders a duration as "D days H hs. M mins. S secs.",
// leaving out leading units that are zero
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	total := int64(d.Round(time.Second) / time.Second)
	seconds := total % 60
	total /= 60
	minutes := total % 60
	total /= 60
	hours := total % 24
	days := total / 24

	var b strings.Builder
	if days > 0 {
		fmt.Fprintf(&b, "%d days ", days)
	}
	if days > 0 || hours > 0 {
		fmt.Fprintf(&b, "%d hs. ", hours)
	}
	if days > 0 || hours > 0 || minutes > 0 {
		fmt.Fprintf(&b, "%d mins. ", minutes)
	}
	fmt.Fprintf(&b, "%d secs.", seconds)
	return b.String()
}

// HumanizeDuration renders a duration as milliseconds below one second,
// otherwise rounded to a tenth of a second ("1.5s", "2m5s")
func HumanizeDuration(d time.Duration) string {
	if d < time.Second {
		return strconv.FormatInt(d.Milliseconds(), 10) + "ms"
	}
	return d.Round(100 * time.Millisecond).String()
}
