package ledger

import (
	"strings"
	"unicode"
)

// Capitalize normalizes free-text names (suppliers, drug names) before validation and
// save: first rune upper, the rest lower.
func Capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
