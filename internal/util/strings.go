package util

import "strings"

// OneLine collapses a multi-line documentation string into a single line:
// surrounding whitespace is trimmed and every run of line breaks (with the
// indentation around it) becomes one space.
func OneLine(s string) string {
	lines := strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' })
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}
