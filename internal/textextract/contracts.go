// Package textextract turns document files into plain text, falling back to
// OCR when a PDF carries too little native text.
package textextract

import (
	"context"
	"time"

	"github.com/joseph-ayodele/docnamer/constants"
)

// Extraction methods reported in Result.Method.
const (
	MethodPlain    = "plain"
	MethodLatin1   = "plain-latin1"
	MethodDOCX     = "docx-xml"
	MethodPages    = "pages-xml"
	MethodPDFText  = "pdf-text"
	MethodPDFOCR   = "pdf-ocr"
	MethodImageOCR = "image-ocr"
	MethodHTML     = "html"
	MethodEML      = "eml"
	MethodNone     = "none"
)

// Result is what Extract returns for every file, readable or not.
type Result struct {
	Text         string
	Format       constants.Format
	Method       string
	Pages        int
	OCRAttempted bool
	Duration     time.Duration
	Warnings     []string
}

// PDFReader reads native text from the first maxPages pages of a PDF and
// reports the document's total page count.
type PDFReader interface {
	ReadText(ctx context.Context, path string, maxPages int) (text string, pages int, err error)
}
