package lox

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatCodeFrame renders the source line a diagnostic points at with a
// gutter, for CLI output. It returns "" when the line is out of range.
func FormatCodeFrame(source string, line int) string {
	if source == "" || line <= 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}

	lineText := strings.TrimRight(lines[line-1], "\r")
	lineLabel := strconv.Itoa(line)

	return fmt.Sprintf(
		"  --> line %d\n %s | %s",
		line,
		lineLabel,
		lineText,
	)
}
