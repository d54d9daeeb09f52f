// Package pipeline runs one document through text extraction, both metadata
// extractors and filename synthesis.
package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/djherbis/times"

	"github.com/joseph-ayodele/docnamer/constants"
	"github.com/joseph-ayodele/docnamer/internal/category"
	"github.com/joseph-ayodele/docnamer/internal/common"
	"github.com/joseph-ayodele/docnamer/internal/dates"
	"github.com/joseph-ayodele/docnamer/internal/heuristic"
	"github.com/joseph-ayodele/docnamer/internal/metadata"
	"github.com/joseph-ayodele/docnamer/internal/naming"
	"github.com/joseph-ayodele/docnamer/internal/textextract"
)

// DefaultMinTextChars is the least extracted text worth naming a file after.
const DefaultMinTextChars = 10

type TextExtractor interface {
	Extract(ctx context.Context, path string) textextract.Result
}

type HeuristicExtractor interface {
	Extract(text, originalName string, created time.Time) heuristic.Result
}

type MetadataAnalyzer interface {
	Analyze(ctx context.Context, text string) metadata.Result
}

type DateSelector interface {
	Select(ctx context.Context, text string, candidates []string) (string, bool)
}

type CompanyClassifier interface {
	Classify(company string) (category.Entry, bool)
}

// Processor coordinates extraction, the two extractors and synthesis.
type Processor struct {
	text         TextExtractor
	heuristic    HeuristicExtractor
	classifier   CompanyClassifier
	analyzer     MetadataAnalyzer
	dates        DateSelector
	createdAt    func(path string) time.Time
	minTextChars int
	logger       *slog.Logger
}

type Option func(*Processor)

// WithAnalyzer enables the AI path.
func WithAnalyzer(a MetadataAnalyzer) Option {
	return func(p *Processor) { p.analyzer = a }
}

// WithDateSelector enables letter-date disambiguation on the AI path.
func WithDateSelector(d DateSelector) Option {
	return func(p *Processor) { p.dates = d }
}

// WithCreationTime replaces the file creation time lookup.
func WithCreationTime(fn func(path string) time.Time) Option {
	return func(p *Processor) { p.createdAt = fn }
}

// WithMinTextChars sets the skip threshold for near-empty documents.
func WithMinTextChars(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.minTextChars = n
		}
	}
}

func NewProcessor(text TextExtractor, heur HeuristicExtractor, classifier CompanyClassifier, logger *slog.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		text:         text,
		heuristic:    heur,
		classifier:   classifier,
		createdAt:    CreationTime,
		minTextChars: DefaultMinTextChars,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Suggest proposes a filename for path. It never fails; problems show up as
// Outcome, Reason and Warnings on the returned Suggestion.
func (p *Processor) Suggest(ctx context.Context, path string) Suggestion {
	ctx, reqID := common.EnsureRequestID(ctx)
	ctx = common.WithPath(ctx, path)
	start := time.Now()

	name := filepath.Base(path)
	s := Suggestion{
		Path:         path,
		OriginalName: name,
		Filename:     name,
		Source:       constants.SourceOriginal,
		AIStatus:     metadata.StatusNotConfigured,
		RequestID:    reqID,
	}

	if !constants.IsSupportedExt(filepath.Ext(name)) {
		s.Outcome, s.Reason = constants.OutcomeSkipped, "unsupported format"
		p.logger.Info("pipeline.suggest.skipped", "req_id", reqID, "path", path, "reason", s.Reason)
		return s
	}

	tr := p.text.Extract(ctx, path)
	s.Method = tr.Method
	s.Warnings = append(s.Warnings, tr.Warnings...)
	s.TextLen = utf8.RuneCountInString(strings.TrimSpace(tr.Text))
	if s.TextLen < p.minTextChars {
		s.Outcome, s.Reason = constants.OutcomeSkipped, "too little text"
		p.logger.Info("pipeline.suggest.skipped", "req_id", reqID, "path", path, "reason", s.Reason, "text_len", s.TextLen)
		return s
	}

	s.Heuristic = p.heuristic.Extract(tr.Text, name, p.createdAt(path))

	aiRes := metadata.Absent(metadata.StatusNotConfigured, common.ErrNotConfigured)
	if p.analyzer != nil {
		aiRes = p.analyzer.Analyze(ctx, tr.Text)
	}
	s.AIStatus = aiRes.Status
	if aiRes.Err != nil && aiRes.Status != metadata.StatusNotConfigured {
		s.Warnings = append(s.Warnings, "ai: "+aiRes.String())
	}

	if aiRes.OK() {
		m := aiRes.Metadata
		ext := filepath.Ext(name)
		if fn := naming.FromAI(m, p.timestamp(ctx, tr.Text, s.Heuristic), ext); strings.TrimSuffix(fn, ext) != "" {
			s.Filename, s.Source, s.Metadata = fn, constants.SourceAI, &m
			s.AICategory, _ = constants.Canonicalize(m.Category)
		}
	}
	if s.Source != constants.SourceAI && s.Heuristic.Signal {
		s.Filename, s.Source = s.Heuristic.Filename, constants.SourceHeuristic
	}

	if entry, ok := p.classify(s); ok {
		s.Category, s.Folder = entry.Name, entry.Folder
	}

	s.Outcome = constants.OutcomePreview
	if !s.Changed() {
		s.Outcome = constants.OutcomeUnchanged
	}

	p.logger.Info("pipeline.suggest.done",
		"req_id", reqID,
		"path", path,
		"filename", s.Filename,
		"source", string(s.Source),
		"ai_status", string(s.AIStatus),
		"category", s.Category,
		"text_len", s.TextLen,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return s
}

// timestamp picks the leading date of an AI filename: the disambiguated
// letter date when one resolves, else the heuristic date component.
func (p *Processor) timestamp(ctx context.Context, text string, h heuristic.Result) string {
	if p.dates != nil {
		if picked, ok := p.dates.Select(ctx, text, dates.Candidates(text)); ok {
			if iso, ok := dates.ToISO(picked); ok {
				return iso
			}
		}
	}
	return h.DateComponent()
}

func (p *Processor) classify(s Suggestion) (category.Entry, bool) {
	if p.classifier == nil {
		return category.Entry{}, false
	}
	if s.Metadata != nil && s.Metadata.Confidence >= naming.MinCompanyConfidence {
		if e, ok := p.classifier.Classify(s.Metadata.Company); ok {
			return e, true
		}
	}
	return p.classifier.Classify(s.Heuristic.Company)
}

// CreationTime returns the file's birth time where the filesystem records
// one, else its modification time. Zero when the file cannot be stat'ed.
func CreationTime(path string) time.Time {
	ts, err := times.Stat(path)
	if err != nil {
		return time.Time{}
	}
	if ts.HasBirthTime() {
		return ts.BirthTime()
	}
	return ts.ModTime()
}
