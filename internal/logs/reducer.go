// Package logs reduces raw job logs to a bounded tail before they are embedded in a prompt.
package logs

import (
	"regexp"
	"strings"
)

// EmptyLog replaces a log with no meaningful content in the rendered prompt.
const EmptyLog = "Log is empty."

var lineBreak = regexp.MustCompile(`\r?\n`)

// Lines splits raw log text on "\n" or "\r\n". A single trailing line break does
// not start a new line. Only empty text has no lines; blank lines still count.
func Lines(raw string) []string {
	if raw == "" {
		return nil
	}
	raw = strings.TrimSuffix(raw, "\n")
	raw = strings.TrimSuffix(raw, "\r")
	return lineBreak.Split(raw, -1)
}

// Trim keeps the last maxLines lines of raw, rejoined with "\n", and returns them
// with the line count before trimming. maxLines must be positive; callers validate it.
func Trim(raw string, maxLines int) (string, int) {
	lines := Lines(raw)
	total := len(lines)
	if total > maxLines {
		lines = lines[total-maxLines:]
	}
	return strings.Join(lines, "\n"), total
}

// ForPrompt returns the text to substitute for {{LOG}}, using EmptyLog when the
// trimmed log has no content.
func ForPrompt(trimmed string) string {
	if strings.TrimSpace(trimmed) == "" {
		return EmptyLog
	}
	return trimmed
}
