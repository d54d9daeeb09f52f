package dates

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/joseph-ayodele/docnamer/internal/common"
	"github.com/joseph-ayodele/docnamer/internal/llm"
)

const answerMaxTokens = 20

// Disambiguator selects the authored date among several candidates.
type Disambiguator struct {
	completer llm.Completer
	logger    *slog.Logger
}

// NewDisambiguator builds a Disambiguator. With a nil completer only the
// zero and one candidate cases resolve.
func NewDisambiguator(completer llm.Completer, logger *slog.Logger) *Disambiguator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Disambiguator{completer: completer, logger: logger}
}

// Select returns the candidate the model names as the letter date. The answer
// is accepted only if it is a DD.MM.YYYY token from candidates.
func (d *Disambiguator) Select(ctx context.Context, text string, candidates []string) (string, bool) {
	switch len(candidates) {
	case 0:
		return "", false
	case 1:
		return candidates[0], true
	}
	if d == nil || d.completer == nil {
		return "", false
	}

	reqID := common.RequestIDFromContext(ctx)
	start := time.Now()
	temp := 0.0
	answer, err := d.completer.Complete(ctx, llm.CompletionRequest{
		Purpose:     "date",
		Messages:    llm.BuildDateMessages(text, candidates),
		MaxTokens:   answerMaxTokens,
		Temperature: &temp,
	})
	if err != nil {
		d.logger.Warn("dates.select.call_failed", "req_id", reqID, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", false
	}

	answer = strings.Trim(strings.TrimSpace(answer), `"'.`+"`")
	if !reExact.MatchString(answer) || !slices.Contains(candidates, answer) {
		d.logger.Warn("dates.select.rejected", "req_id", reqID, "answer", llm.TruncateRunes(answer, 40),
			"candidates", len(candidates))
		return "", false
	}

	d.logger.Info("dates.select.ok", "req_id", reqID, "date", answer,
		"candidates", len(candidates), "elapsed_ms", time.Since(start).Milliseconds())
	return answer, true
}
