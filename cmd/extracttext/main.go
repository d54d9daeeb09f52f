package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/joseph-ayodele/docnamer/internal/app"
	"github.com/joseph-ayodele/docnamer/internal/common"
	"github.com/joseph-ayodele/docnamer/internal/pipeline"
)

func main() {
	fs := pflag.NewFlagSet("extracttext", pflag.ContinueOnError)
	cfg, err := common.LoadConfig(fs, os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	logger := common.NewLogger(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	slog.SetDefault(logger)

	if fs.NArg() != 1 {
		logger.Error("usage", "cmd", "extracttext [flags] <file>")
		os.Exit(2)
	}
	path := fs.Arg(0)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// the remote extractor is wired only when enabled and a key is configured
	comps := app.Build(cfg, logger)

	start := time.Now()
	res := comps.Text.Extract(ctx, path)
	logger.Info("text extraction done",
		"method", res.Method,
		"pages", res.Pages,
		"ocr", res.OCRAttempted,
		"bytes", len(res.Text),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	for _, w := range res.Warnings {
		logger.Warn("extract warning", "warning", w)
	}

	fmt.Printf("=== %s (%s) ===\n%s\n\n", filepath.Base(path), res.Method, res.Text)

	h := comps.Heuristic.Extract(res.Text, filepath.Base(path), pipeline.CreationTime(path))
	fmt.Printf("Heuristik:  %s\n", h.Filename)
	fmt.Printf("  Datum:    %s (%s)\n", h.DateComponent(), h.TimestampSource)
	fmt.Printf("  Firma:    %s\n", h.Company)
	fmt.Printf("  Typ:      %s\n", h.DocumentType)
	fmt.Printf("  Referenz: %s\n", h.Reference)

	if comps.AIEnabled() {
		s := comps.Processor.Suggest(ctx, path)
		fmt.Printf("Vorschlag: %s [%s, ai=%s]\n", s.Filename, s.Source, s.AIStatus)
		if s.Folder != "" {
			fmt.Printf("  Ordner:   %s\n", s.Folder)
		}
	}
}
