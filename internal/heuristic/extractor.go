// Package heuristic derives filename components from document text by
// matching the ordered catalog tables. It makes no network calls.
package heuristic

import (
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joseph-ayodele/docnamer/internal/catalog"
	"github.com/joseph-ayodele/docnamer/internal/dates"
	"github.com/joseph-ayodele/docnamer/internal/naming"
)

const (
	// LetterheadRunes is the leading part of the text searched for the letter date.
	LetterheadRunes = 1000
	// MinReferenceLen rejects captured reference values shorter than this.
	MinReferenceLen = 3
)

var (
	reScannerStamp = regexp.MustCompile(`\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}`)
	reGermanDate   = regexp.MustCompile(`\d{2}\.\d{2}\.\d{4}`)
	reISODate      = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
)

type TimestampSource string

const (
	TimestampNone    TimestampSource = ""
	TimestampScanner TimestampSource = "scanner"
	TimestampCreated TimestampSource = "created"
)

// Result lists what was found, in the order the components are assembled.
type Result struct {
	Timestamp       string
	TimestampSource TimestampSource
	// LetterheadDate is ISO formatted and replaces Timestamp when set.
	LetterheadDate string
	Company        string
	DocumentType   string
	Reference      string

	Components naming.Components
	Filename   string
	// Signal is false when only a timestamp was found; Filename is then the original name.
	Signal bool
}

// DateComponent is the single date that leads the filename.
func (r Result) DateComponent() string {
	if r.LetterheadDate != "" {
		return r.LetterheadDate
	}
	return r.Timestamp
}

type Extractor struct {
	cat    *catalog.Catalog
	logger *slog.Logger
}

// NewExtractor uses catalog.Default() when cat is nil.
func NewExtractor(cat *catalog.Catalog, logger *slog.Logger) *Extractor {
	if cat == nil {
		cat = catalog.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{cat: cat, logger: logger}
}

// Extract matches text against the catalog. created is the file creation
// time and is only used when originalName carries no scanner timestamp; a
// zero time means unknown.
func (e *Extractor) Extract(text, originalName string, created time.Time) Result {
	var r Result

	if stamp := reScannerStamp.FindString(originalName); stamp != "" {
		r.Timestamp, r.TimestampSource = stamp, TimestampScanner
	} else if !created.IsZero() {
		r.Timestamp, r.TimestampSource = created.Format(dates.ISOLayout), TimestampCreated
	}

	r.Company = e.company(text)
	r.DocumentType = e.documentType(text)
	r.LetterheadDate = letterheadDate(text)
	r.Reference = e.reference(text)

	r.Signal = r.Company != "" || r.DocumentType != "" || r.LetterheadDate != "" || r.Reference != ""
	r.Components = naming.Components{r.DateComponent(), r.Company, r.DocumentType, r.Reference}
	if r.Signal {
		r.Filename = naming.FromComponents(r.Components, originalName)
	} else {
		r.Filename = originalName
	}

	e.logger.Debug("heuristic.extract.done",
		"timestamp_source", string(r.TimestampSource),
		"letterhead_date", r.LetterheadDate,
		"company", r.Company,
		"document_type", r.DocumentType,
		"reference", r.Reference,
		"signal", r.Signal,
	)
	return r
}

func (e *Extractor) company(text string) string {
	for _, c := range e.cat.Companies {
		if strings.Contains(text, c) {
			return c
		}
	}
	return ""
}

func (e *Extractor) documentType(text string) string {
	for _, dt := range e.cat.DocumentTypes {
		if strings.Contains(text, dt.Match) {
			return dt.Label
		}
	}
	return ""
}

func (e *Extractor) reference(text string) string {
	for _, p := range e.cat.ReferencePatterns {
		m := p.Regexp().FindStringSubmatch(text)
		if m != nil && len(m[1]) >= MinReferenceLen {
			return m[1]
		}
	}
	return ""
}

// letterheadDate returns the first valid DD.MM.YYYY date of the letterhead
// region as ISO, else the first valid ISO date there.
func letterheadDate(text string) string {
	region := letterhead(text)
	for _, tok := range reGermanDate.FindAllString(region, -1) {
		if iso, ok := dates.ToISO(tok); ok {
			return iso
		}
	}
	for _, tok := range reISODate.FindAllString(region, -1) {
		if _, err := time.Parse(dates.ISOLayout, tok); err == nil {
			return tok
		}
	}
	return ""
}

func letterhead(text string) string {
	if utf8.RuneCountInString(text) <= LetterheadRunes {
		return text
	}
	return string([]rune(text)[:LetterheadRunes])
}
