package screenshot

import (
	"path"
	"regexp"
)

// Extension is the file extension of every screenshot
const Extension = ".png"

var (
	// \s plus vertical tab and the Unicode space characters
	whitespaceRun = regexp.MustCompile(`[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]+`)
	disallowed    = regexp.MustCompile(`[^0-9a-zA-Z\-]`)
)

// Sanitize replaces whitespace runs with a dash and strips every character
// that is not alphanumeric or a dash
func Sanitize(name string) string {
	name = whitespaceRun.ReplaceAllString(name, "-")
	return disallowed.ReplaceAllString(name, "")
}

// RunID is the id shared by a run's screenshot file, its report link and its stack trace row
func RunID(scenario, browser string) string {
	return Sanitize(scenario) + Sanitize(browser)
}

// FileName returns the screenshot file name for a run
func FileName(scenario, browser string) string {
	return RunID(scenario, browser) + Extension
}

// RelativePath returns the link target used by the report, relative to the report file
func RelativePath(dir, scenario, browser string) string {
	return path.Join(dir, FileName(scenario, browser))
}
