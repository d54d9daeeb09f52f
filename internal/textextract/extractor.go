package textextract

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joseph-ayodele/docnamer/constants"
	"github.com/joseph-ayodele/docnamer/internal/common"
	"github.com/joseph-ayodele/docnamer/internal/ocr"
)

type Config struct {
	PDFMaxPages    int // default 5
	MinNativeChars int // PDFs with at most this many trimmed runes go to OCR, default 50
}

// ConfigFrom maps the application extract section onto a Config.
func ConfigFrom(c common.ExtractConfig) Config {
	return Config{PDFMaxPages: c.PDFMaxPages, MinNativeChars: c.MinNativeChars}
}

type Extractor struct {
	cfg    Config
	ocr    ocr.Recognizer
	pdf    PDFReader
	logger *slog.Logger
}

type Option func(*Extractor)

// WithPDFReader replaces the native PDF reader.
func WithPDFReader(r PDFReader) Option {
	return func(e *Extractor) { e.pdf = r }
}

// NewExtractor builds an Extractor. A nil recognizer disables OCR.
func NewExtractor(cfg Config, recognizer ocr.Recognizer, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PDFMaxPages <= 0 {
		cfg.PDFMaxPages = 5
	}
	if cfg.MinNativeChars <= 0 {
		cfg.MinNativeChars = 50
	}
	e := &Extractor{cfg: cfg, ocr: recognizer, pdf: NativePDFReader{}, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract never fails: unreadable files produce empty text and a warning.
func (e *Extractor) Extract(ctx context.Context, path string) Result {
	start := time.Now()
	format := constants.MapExtToFormat(filepath.Ext(path))
	reqID := common.RequestIDFromContext(ctx)

	var (
		res Result
		err error
	)
	switch format {
	case constants.TXT:
		res, err = readPlainText(path)
	case constants.DOCX:
		res, err = readDOCX(path)
	case constants.PAGES:
		res, err = readPages(path)
	case constants.HTML:
		res, err = readHTML(path)
	case constants.EML:
		res, err = readEML(path)
	case constants.PDF:
		res = e.extractPDF(ctx, path)
	case constants.IMAGE:
		res = e.runOCR(ctx, path, Result{Method: MethodNone}, MethodImageOCR)
	default:
		err = fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		e.logger.Warn("extract.failed", "req_id", reqID, "path", path, "format", string(format), "error", err)
		res.Warnings = append(res.Warnings, err.Error())
		res.Text = ""
		res.Method = MethodNone
	}

	res.Format = format
	res.Duration = time.Since(start)
	e.logger.Info("extract.done",
		"req_id", reqID,
		"path", path,
		"format", string(format),
		"method", res.Method,
		"text_len", utf8.RuneCountInString(res.Text),
		"ocr_attempted", res.OCRAttempted,
		"warnings", len(res.Warnings),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res
}

func (e *Extractor) extractPDF(ctx context.Context, path string) Result {
	res := Result{Method: MethodPDFText}
	text, pages, err := e.pdf.ReadText(ctx, path, e.cfg.PDFMaxPages)
	res.Pages = pages
	if err != nil {
		e.logger.Warn("extract.pdf.native_failed", "path", path, "error", err)
		res.Warnings = append(res.Warnings, fmt.Sprintf("native pdf text: %v", err))
	} else {
		res.Text = text
	}

	native := utf8.RuneCountInString(strings.TrimSpace(res.Text))
	if native > e.cfg.MinNativeChars {
		return res
	}
	e.logger.Info("extract.pdf.low_native_text", "path", path, "native_chars", native, "threshold", e.cfg.MinNativeChars)
	return e.runOCR(ctx, path, res, MethodPDFOCR)
}

// runOCR replaces prior's text with recognized text when recognition
// succeeds with something non-empty; otherwise prior is returned with a warning.
func (e *Extractor) runOCR(ctx context.Context, path string, prior Result, method string) Result {
	if e.ocr == nil || !e.ocr.Available(ctx) {
		prior.Warnings = append(prior.Warnings, "ocr engine unavailable")
		return prior
	}
	prior.OCRAttempted = true

	text, err := e.ocr.Recognize(ctx, path)
	if err != nil {
		e.logger.Warn("extract.ocr.failed", "path", path, "error", err)
		prior.Warnings = append(prior.Warnings, err.Error())
		return prior
	}
	text = strings.TrimSpace(text)
	if text == "" {
		prior.Warnings = append(prior.Warnings, "ocr produced no text")
		return prior
	}
	prior.Text = text
	prior.Method = method
	if prior.Pages == 0 {
		prior.Pages = 1
	}
	return prior
}
