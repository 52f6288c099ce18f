package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes text for accent- and case-insensitive comparison:
// decompose, drop combining marks, uppercase, collapse whitespace and trim.
// It is the only key function for city lookups.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToUpper(StripAccents(s))), " ")
}

// StripAccents removes combining marks after canonical decomposition and
// leaves case and spacing alone.
func StripAccents(s string) string {
	// A fresh transformer per call: transform.Chain keeps internal buffers.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(t, s)
	if err != nil {
		// Only invalid UTF-8 can fail here; fall back to the raw input.
		return s
	}
	return stripped
}
