package constants

import (
	"strings"
)

// Category is the label the remote model picks for a document.
type Category string

const (
	Telekommunikation Category = "Telekommunikation"
	Versicherung      Category = "Versicherung"
	Gesundheit        Category = "Gesundheit"
	Finanzen          Category = "Finanzen"
	Logistik          Category = "Logistik"
	Online            Category = "Online"
	Reisen            Category = "Reisen"
	Auto              Category = "Auto"
	Beruf             Category = "Beruf"
	Bildung           Category = "Bildung"
	Wohnen            Category = "Wohnen"
	Steuern           Category = "Steuern"
	Sonstiges         Category = "Sonstiges"
)

// allCategories is the fixed enumeration offered in the analysis prompt.
// Sonstiges is the fallback and is listed last.
var allCategories = []Category{
	Telekommunikation,
	Versicherung,
	Gesundheit,
	Finanzen,
	Logistik,
	Online,
	Reisen,
	Auto,
	Beruf,
	Bildung,
	Wohnen,
	Steuern,
	Sonstiges,
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// Canonicalize maps input onto the enumeration, ignoring case and surrounding space.
// Unknown labels return Sonstiges and false.
func Canonicalize(input string) (Category, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return Sonstiges, false
	}

	synonyms := map[string]Category{
		"telekom":      Telekommunikation,
		"mobilfunk":    Telekommunikation,
		"versicherung": Versicherung,
		"bank":         Finanzen,
		"steuer":       Steuern,
		"mobilität":    Auto,
		"kfz":          Auto,
		"versand":      Logistik,
		"other":        Sonstiges,
	}
	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}
	return Sonstiges, false
}
