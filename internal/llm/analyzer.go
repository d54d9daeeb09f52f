package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/docnamer/internal/common"
	"github.com/joseph-ayodele/docnamer/internal/metadata"
)

// Analyzer is the AI metadata extractor. It never returns an error: every
// failure becomes an absent metadata.Result.
type Analyzer struct {
	completer Completer
	logger    *slog.Logger
}

// NewAnalyzer builds an Analyzer. A nil completer yields not_configured for every call.
func NewAnalyzer(completer Completer, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{completer: completer, logger: logger}
}

// Analyze asks the model for structured metadata about text.
func (a *Analyzer) Analyze(ctx context.Context, text string) metadata.Result {
	if a == nil || a.completer == nil {
		return metadata.Absent(metadata.StatusNotConfigured, common.ErrNotConfigured)
	}
	reqID := common.RequestIDFromContext(ctx)
	start := time.Now()

	content, err := a.completer.Complete(ctx, CompletionRequest{
		Purpose:  "analyze",
		Messages: BuildAnalysisMessages(text),
	})
	if err != nil {
		if errors.Is(err, common.ErrNotConfigured) {
			a.logger.Debug("llm.analyze.not_configured", "req_id", reqID)
			return metadata.Absent(metadata.StatusNotConfigured, err)
		}
		a.logger.Warn("llm.analyze.call_failed", "req_id", reqID, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return metadata.Absent(metadata.StatusFailed, err)
	}

	m, err := ParseAnalysis(content, a.logger.With("req_id", reqID))
	if err != nil {
		a.logger.Warn("llm.analyze.unusable_response", "req_id", reqID, "error", err,
			"content", TruncateRunes(content, 200))
		return metadata.Absent(metadata.StatusUnusable, err)
	}
	if !m.HasSignal() {
		a.logger.Warn("llm.analyze.empty_signal", "req_id", reqID, "category", m.Category)
		return metadata.Absent(metadata.StatusUnusable, common.ErrValidation)
	}

	a.logger.Info("llm.analyze.ok",
		"req_id", reqID,
		"category", m.Category,
		"company", m.Company,
		"document_type", m.DocumentType,
		"keywords", len(m.Keywords),
		"confidence", m.Confidence,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return metadata.Found(m)
}
