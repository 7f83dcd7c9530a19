// Package normalize canonicalizes user-supplied values before storage
// so that lookups and uniqueness checks see one representation.
package normalize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict strips all markup from free-text fields. Profiles and site
// names are rendered back into an SPA, so nothing tag-shaped survives
// storage.
var strict = bluemonday.StrictPolicy()

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and strips markup, preserving case.
// The sanitizer entity-escapes quotes in what it keeps, so the result
// is unescaped back to plain text ("O'Brien" stays "O'Brien").
func Name(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// FreeText sanitizes an arbitrary short text field (cert level etc.).
func FreeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// Phone reduces a phone number to digits and a leading plus, dropping
// spaces, hyphens and parentheses. Validation and canonical 04… form
// are handled by the validate package; this only removes formatting.
func Phone(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
