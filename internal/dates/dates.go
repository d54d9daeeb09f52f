// Package dates finds letter-date candidates in document text and picks the
// authored date among several, optionally with help from the remote model.
package dates

import (
	"regexp"
	"time"
)

const (
	// Layout is the German DD.MM.YYYY form used in letterheads.
	Layout = "02.01.2006"
	// ISOLayout is the filename form.
	ISOLayout = "2006-01-02"

	// MaxCandidates bounds what is sent to the model.
	MaxCandidates = 10
)

var (
	reToken = regexp.MustCompile(`\b\d{2}\.\d{2}\.\d{4}\b`)
	reExact = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)
)

// Valid reports whether s is a DD.MM.YYYY token naming a real calendar day.
func Valid(s string) bool {
	if !reExact.MatchString(s) {
		return false
	}
	_, err := time.Parse(Layout, s)
	return err == nil
}

// Candidates returns the distinct valid DD.MM.YYYY tokens of text in order
// of first appearance, at most MaxCandidates.
func Candidates(text string) []string {
	out := make([]string, 0, 4)
	seen := map[string]struct{}{}
	for _, tok := range reToken.FindAllString(text, -1) {
		if _, dup := seen[tok]; dup || !Valid(tok) {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
		if len(out) == MaxCandidates {
			break
		}
	}
	return out
}

// ToISO converts DD.MM.YYYY into YYYY-MM-DD.
func ToISO(s string) (string, bool) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return "", false
	}
	return t.Format(ISOLayout), true
}
