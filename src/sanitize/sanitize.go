// Package sanitize cleans Azure Pipelines log lines for display and MCP
// output: ANSI escape codes, the per-line ISO timestamp prefix the log
// endpoint emits, and ##[...] formatting markers.
package sanitize

import "regexp"

var (
	// ANSI escape codes: \x1b[...m (SGR sequences)
	ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

	// Leading per-line timestamp, e.g. "2023-06-01T12:34:56.7890123Z ".
	timestampPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d+Z `)

	// Azure Pipelines formatting commands, e.g. ##[section], ##[error],
	// ##[debug]. The marker goes; the message after it stays.
	vsoMarker = regexp.MustCompile(`##\[[a-z]+\]`)
)

// CleanLine strips ANSI codes, the timestamp prefix and ##[...] markers from
// one log line.
func CleanLine(s string) string {
	s = timestampPrefix.ReplaceAllString(s, "")
	s = ansiPattern.ReplaceAllString(s, "")
	s = vsoMarker.ReplaceAllString(s, "")
	return s
}

// CleanLines applies CleanLine to every line.
func CleanLines(lines []string) []string {
	cleaned := make([]string, len(lines))
	for i, line := range lines {
		cleaned[i] = CleanLine(line)
	}
	return cleaned
}
