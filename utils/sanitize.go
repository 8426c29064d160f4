package utils

import (
	"strings"
	"unicode"

	"github.com/gosimple/unidecode"
)

// SanitizeText prepares user-supplied free text (names, emails, colleges)
// for the PDF renderer: folds it to ASCII and strips control characters so
// nothing in it can be interpreted by the layout engine.
func SanitizeText(s string) string {
	folded := unidecode.Unidecode(s)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r == '\n' || r == '\t' {
			b.WriteRune(' ')
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// Truncate cuts s to at most n runes, appending an ellipsis when it was cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
