package naming

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/docnamer/internal/metadata"
)

const (
	// Separator joins filename components.
	Separator = "_"

	// MinCompanyConfidence gates the company component on the AI path.
	MinCompanyConfidence = 0.5
	// MaxExtraKeywords is how many keywords the AI path appends.
	MaxExtraKeywords = 3
	// MaxReferenceLen drops reference numbers longer than this.
	MaxReferenceLen = 30
)

// Components is the ordered list of fragments assembled before joining.
type Components []string

// Join drops empty components and joins the rest with Separator.
func (c Components) Join() string {
	parts := make([]string, 0, len(c))
	for _, p := range c {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, Separator)
}

// Empty reports whether no non-empty component exists.
func (c Components) Empty() bool {
	for _, p := range c {
		if p != "" {
			return false
		}
	}
	return true
}

// FromAI composes timestamp, company (when confident), document type, up to
// three further keywords and a short reference number, then appends ext.
func FromAI(m metadata.DocumentMetadata, timestamp, ext string) string {
	company := Sanitize(m.Company)
	docType := Sanitize(m.DocumentType)

	comps := Components{Sanitize(timestamp)}
	if company != "" && m.Confidence >= MinCompanyConfidence {
		comps = append(comps, company)
	}
	comps = append(comps, docType)

	added := 0
	for _, kw := range m.Keywords {
		if added == MaxExtraKeywords {
			break
		}
		kw = Sanitize(kw)
		// A keyword repeating the company is skipped even when the company
		// itself was left out for low confidence.
		if kw == "" || kw == company || kw == docType {
			continue
		}
		comps = append(comps, kw)
		added++
	}

	if ref := Sanitize(m.ReferenceNumber); ref != "" && Len(ref) <= MaxReferenceLen {
		comps = append(comps, ref)
	}

	return comps.Join() + ext
}

// FromComponents builds the heuristic filename. Each component is sanitized
// on its own, so the 50 rune limit applies per component. With no usable
// component the original name is returned unchanged.
func FromComponents(comps Components, originalName string) string {
	clean := make(Components, 0, len(comps))
	for _, c := range comps {
		clean = append(clean, Sanitize(c))
	}
	if clean.Empty() {
		return originalName
	}
	return clean.Join() + filepath.Ext(originalName)
}
