// Package naming composes filenames from extracted metadata.
package naming

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxComponentLen is the rune limit applied by Sanitize.
const MaxComponentLen = 50

var (
	reIllegal     = regexp.MustCompile(`[<>:"|?*\x00-\x1F\x7F]`)
	reWhitespace  = regexp.MustCompile(`[\s\p{Z}]+`)
	reSeparators  = regexp.MustCompile(`[\\/]`)
	reUnderscores = regexp.MustCompile(`_+`)
)

// Sanitize makes s safe as a filename or filename component.
// It is idempotent: Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	// control characters go before whitespace is collapsed, so a line
	// break joins its neighbours instead of separating them
	s = reIllegal.ReplaceAllString(s, "")
	s = reWhitespace.ReplaceAllString(s, "_")
	s = norm.NFC.String(s)
	s = reSeparators.ReplaceAllString(s, "-")
	s = reUnderscores.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if utf8.RuneCountInString(s) > MaxComponentLen {
		s = string([]rune(s)[:MaxComponentLen])
		// truncation may expose a trailing separator
		s = strings.TrimRight(s, "_")
	}
	return s
}

// Len counts runes, the unit every length rule in this package uses.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}
