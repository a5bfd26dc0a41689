package util

import (
	"strings"
	"unicode"
)

// ToSnakeCase converts PascalCase or camelCase to snake_case.
// Handles acronyms properly (e.g., "HTTPSConnection" -> "https_connection").
// Any character that is neither a letter nor a digit acts as a word
// separator, so the result is idempotent: ToSnakeCase(ToSnakeCase(s)) == ToSnakeCase(s).
//
// This is the single naming function of the generator: module file names,
// cross-service qualified references and parameter identifiers all go
// through it so that they agree.
func ToSnakeCase(s string) string {
	var result strings.Builder
	runes := []rune(s)
	separate := false

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			separate = result.Len() > 0
			continue
		}

		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			// Word starts after a lowercase letter or digit, or at the last
			// capital of an acronym followed by lowercase ("HTTPSConnection")
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				separate = true
			}
		}

		if separate && result.Len() > 0 {
			result.WriteRune('_')
		}
		separate = false
		result.WriteRune(unicode.ToLower(r))
	}

	return result.String()
}
