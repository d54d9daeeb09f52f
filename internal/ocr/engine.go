// Package ocr wraps the tesseract executable behind the Recognizer interface.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docnamer/constants"
	"github.com/joseph-ayodele/docnamer/internal/common"
)

// Recognizer turns an image or scanned PDF into text.
type Recognizer interface {
	Available(ctx context.Context) bool
	Recognize(ctx context.Context, path string) (string, error)
}

type Config struct {
	Binary     string // binary name or absolute path; if empty -> "tesseract"
	Language   string // default "deu"
	PSM        int    // page segmentation mode, default 1 (automatic with OSD)
	Timeout    time.Duration
	Rasterizer string // renders the first PDF page; if empty -> "pdftoppm"
	DPI        int
	TempDir    string // if empty -> os.TempDir()
}

// ConfigFrom maps the application OCR section onto an engine Config.
func ConfigFrom(c common.OCRConfig) Config {
	return Config{
		Binary:     c.Binary,
		Language:   c.Language,
		PSM:        c.PSM,
		Timeout:    c.Timeout,
		Rasterizer: c.Rasterizer,
		DPI:        c.DPI,
	}
}

type Engine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

type Option func(*Engine)

// WithRunner replaces the process runner, mostly for tests.
func WithRunner(r Runner) Option {
	return func(e *Engine) { e.runner = r }
}

func NewEngine(cfg Config, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "deu"
	}
	if cfg.PSM <= 0 {
		cfg.PSM = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Rasterizer == "" {
		cfg.Rasterizer = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	e := &Engine{cfg: cfg, runner: ExecRunner{Logger: logger}, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Available probes the engine with a version call.
func (e *Engine) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()
	if _, _, err := e.runner.Run(ctx, e.cfg.Binary, "--version"); err != nil {
		e.logger.Warn("ocr.engine.unavailable", "binary", e.cfg.Binary, "error", err)
		return false
	}
	return true
}

// Recognize runs tesseract on path under the configured timeout. PDFs are
// rasterized first and only page one is recognized.
func (e *Engine) Recognize(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()
	start := time.Now()

	input := path
	if constants.MapExtToFormat(filepath.Ext(path)) == constants.PDF {
		page, cleanup, err := e.rasterizeFirstPage(ctx, path)
		if err != nil {
			return "", e.wrap(ctx, "rasterize", err)
		}
		defer cleanup()
		input = page
	}

	// tesseract <in> <base> -l deu --psm 1 writes <base>.txt
	base := filepath.Join(e.cfg.TempDir, "docnamer-ocr-"+uuid.NewString())
	outFile := base + ".txt"
	defer func() {
		if err := os.Remove(outFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			e.logger.Warn("ocr.engine.cleanup_failed", "file", outFile, "error", err)
		}
	}()

	args := []string{input, base, "-l", e.cfg.Language, "--psm", strconv.Itoa(e.cfg.PSM)}
	if _, errb, err := e.runner.Run(ctx, e.cfg.Binary, args...); err != nil {
		e.logger.Warn("ocr.engine.failed", "path", path, "stderr", truncate(string(errb), 512))
		return "", e.wrap(ctx, "tesseract", err)
	}

	raw, err := os.ReadFile(outFile)
	if err != nil {
		return "", fmt.Errorf("%w: read ocr output: %v", common.ErrExtraction, err)
	}
	text := Normalize(string(raw))

	e.logger.Info("ocr.engine.ok",
		"path", path,
		"lang", e.cfg.Language,
		"text_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

func (e *Engine) rasterizeFirstPage(ctx context.Context, path string) (string, func(), error) {
	tmpDir, err := os.MkdirTemp(e.cfg.TempDir, "docnamer-pp-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("ocr.engine.cleanup_failed", "dir", tmpDir, "error", err)
		}
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -f 1 -l 1 -singlefile -r 300 -png <in.pdf> <tmp/page> writes <tmp/page>.png
	_, errb, err := e.runner.Run(ctx, e.cfg.Rasterizer,
		"-f", "1", "-l", "1", "-singlefile", "-r", strconv.Itoa(e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("%s: %w: %s", e.cfg.Rasterizer, err, truncate(string(errb), 512))
	}
	out := prefix + ".png"
	if _, err := os.Stat(out); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("%s produced no image: %w", e.cfg.Rasterizer, err)
	}
	return out, cleanup, nil
}

func (e *Engine) wrap(ctx context.Context, stage string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return common.NewAppError(common.CodeExtraction, fmt.Sprintf("%s timed out after %s", stage, e.cfg.Timeout), common.ErrExtraction)
	}
	return common.NewAppError(common.CodeExtraction, fmt.Sprintf("%s: %v", stage, err), common.ErrExtraction)
}
