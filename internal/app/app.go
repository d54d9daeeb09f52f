// Package app wires the configured components into a ready pipeline.
package app

import (
	"log/slog"

	"github.com/joseph-ayodele/docnamer/internal/catalog"
	"github.com/joseph-ayodele/docnamer/internal/category"
	"github.com/joseph-ayodele/docnamer/internal/common"
	"github.com/joseph-ayodele/docnamer/internal/dates"
	"github.com/joseph-ayodele/docnamer/internal/heuristic"
	"github.com/joseph-ayodele/docnamer/internal/llm"
	"github.com/joseph-ayodele/docnamer/internal/llm/perplexity"
	"github.com/joseph-ayodele/docnamer/internal/ocr"
	"github.com/joseph-ayodele/docnamer/internal/pipeline"
	"github.com/joseph-ayodele/docnamer/internal/textextract"
)

// Components are the long-lived pieces shared by every command.
type Components struct {
	OCR        *ocr.Engine
	Text       *textextract.Extractor
	Heuristic  *heuristic.Extractor
	Classifier *category.Classifier
	Completer  llm.Completer // nil when the AI path is off
	Processor  *pipeline.Processor
}

// AIEnabled reports whether a remote completer was wired.
func (c *Components) AIEnabled() bool { return c.Completer != nil }

type Option func(*options)

type options struct {
	completer llm.Completer
	runner    ocr.Runner
}

// WithCompleter replaces the remote completion client.
func WithCompleter(c llm.Completer) Option {
	return func(o *options) { o.completer = c }
}

// WithOCRRunner replaces the process runner used by the OCR engine.
func WithOCRRunner(r ocr.Runner) Option {
	return func(o *options) { o.runner = r }
}

// Build constructs the pipeline from cfg. The AI path is wired only when it
// is enabled and a usable key is present.
func Build(cfg *common.Config, logger *slog.Logger, opts ...Option) *Components {
	if logger == nil {
		logger = slog.Default()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cat := catalog.Default()

	var engineOpts []ocr.Option
	if o.runner != nil {
		engineOpts = append(engineOpts, ocr.WithRunner(o.runner))
	}
	engine := ocr.NewEngine(ocr.ConfigFrom(cfg.OCR), logger, engineOpts...)

	c := &Components{
		OCR:        engine,
		Text:       textextract.NewExtractor(textextract.ConfigFrom(cfg.Extract), engine, logger),
		Heuristic:  heuristic.NewExtractor(cat, logger),
		Classifier: category.NewClassifier(cat),
	}

	switch {
	case o.completer != nil:
		c.Completer = o.completer
	case cfg.AIReady():
		c.Completer = perplexity.NewClient(perplexity.ConfigFrom(cfg.AI), logger)
	}

	procOpts := []pipeline.Option{pipeline.WithMinTextChars(cfg.Extract.MinTextChars)}
	if c.Completer != nil {
		procOpts = append(procOpts, pipeline.WithAnalyzer(llm.NewAnalyzer(c.Completer, logger)))
		if cfg.AI.Disambiguate {
			procOpts = append(procOpts, pipeline.WithDateSelector(dates.NewDisambiguator(c.Completer, logger)))
		}
		logger.Info("app.ai.enabled", "model", cfg.AI.Model, "disambiguate", cfg.AI.Disambiguate)
	} else {
		logger.Info("app.ai.disabled", "reason", aiOffReason(cfg))
	}

	c.Processor = pipeline.NewProcessor(c.Text, c.Heuristic, c.Classifier, logger, procOpts...)
	return c
}

func aiOffReason(cfg *common.Config) string {
	if !cfg.AI.Enabled {
		return "disabled by flag"
	}
	return "no api key"
}
