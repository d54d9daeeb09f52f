// Package batch drives the pipeline over many files, previewing or renaming.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/docnamer/constants"
	"github.com/joseph-ayodele/docnamer/internal/common"
	"github.com/joseph-ayodele/docnamer/internal/pipeline"
	"github.com/joseph-ayodele/docnamer/internal/rename"
)

// Suggester is the part of pipeline.Processor the runner needs.
type Suggester interface {
	Suggest(ctx context.Context, path string) pipeline.Suggestion
}

// RenameFunc performs a rename that never replaces an existing file.
type RenameFunc func(oldPath, newPath string) error

type Runner struct {
	proc      Suggester
	execute   bool
	workers   int
	rename    RenameFunc
	onRenamed func(oldPath, newPath string)
	logger    *slog.Logger
}

type Option func(*Runner)

// WithExecute switches from preview to renaming files on disk.
func WithExecute(on bool) Option {
	return func(r *Runner) { r.execute = on }
}

func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

func WithRenameFunc(fn RenameFunc) Option {
	return func(r *Runner) {
		if fn != nil {
			r.rename = fn
		}
	}
}

// WithOnRenamed registers a callback invoked after each successful rename.
func WithOnRenamed(fn func(oldPath, newPath string)) Option {
	return func(r *Runner) { r.onRenamed = fn }
}

func NewRunner(proc Suggester, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{
		proc:    proc,
		workers: 1,
		rename:  rename.IfAbsent,
		logger:  logger,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Executes reports whether the runner renames files.
func (r *Runner) Executes() bool { return r.execute }

// Run processes every path independently. Results keep the order of paths.
func (r *Runner) Run(ctx context.Context, paths []string) Report {
	start := time.Now()
	results := make([]pipeline.Suggestion, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, p := range paths {
		g.Go(func() error {
			results[i] = r.One(gctx, p)
			return nil
		})
	}
	_ = g.Wait()

	rep := Report{Results: results, Execute: r.execute, Elapsed: time.Since(start)}
	rep.Stats = Tally(results)
	r.logger.Info("batch.run.done",
		"total", rep.Stats.Total,
		"renamed", rep.Stats.Renamed,
		"previewed", rep.Stats.Previewed,
		"unchanged", rep.Stats.Unchanged,
		"skipped", rep.Stats.Skipped,
		"failed", rep.Stats.Failed,
		"execute", r.execute,
		"elapsed_ms", rep.Elapsed.Milliseconds(),
	)
	return rep
}

// One suggests a name for path and, in execute mode, applies it. A panic
// anywhere below is turned into a failed result.
func (r *Runner) One(ctx context.Context, path string) (s pipeline.Suggestion) {
	defer func() {
		if rec := recover(); rec != nil {
			name := filepath.Base(path)
			s = pipeline.Suggestion{
				Path:         path,
				OriginalName: name,
				Filename:     name,
				Source:       constants.SourceOriginal,
				Outcome:      constants.OutcomeFailed,
				Err:          fmt.Errorf("panic: %v", rec),
			}
			r.logger.Error("batch.file.panic", "path", path, "error", s.Err)
		}
	}()

	if err := ctx.Err(); err != nil {
		name := filepath.Base(path)
		return pipeline.Suggestion{
			Path: path, OriginalName: name, Filename: name,
			Source: constants.SourceOriginal, Outcome: constants.OutcomeFailed, Err: err,
		}
	}

	s = r.proc.Suggest(ctx, path)
	if !r.execute || s.Outcome != constants.OutcomePreview {
		return s
	}

	target := s.Target()
	err := r.rename(s.Path, target)
	switch {
	case err == nil:
		s.Outcome = constants.OutcomeRenamed
		r.logger.Info("batch.file.renamed", "req_id", s.RequestID, "path", s.Path, "target", target)
		if r.onRenamed != nil {
			r.onRenamed(s.Path, target)
		}
	case errors.Is(err, common.ErrTargetExists):
		s.Outcome, s.Reason = constants.OutcomeSkipped, "target exists"
		s.Err = err
		r.logger.Warn("batch.file.target_exists", "req_id", s.RequestID, "path", s.Path, "target", target)
	default:
		s.Outcome, s.Err = constants.OutcomeFailed, err
		r.logger.Error("batch.file.rename_failed", "req_id", s.RequestID, "path", s.Path, "target", target, "error", err)
	}
	return s
}

// Stats counts outcomes of a run.
type Stats struct {
	Total     int
	Renamed   int
	Previewed int
	Unchanged int
	Skipped   int
	Failed    int
}

// Successful counts files that were processed without error.
func (s Stats) Successful() int {
	return s.Total - s.Failed
}

func Tally(results []pipeline.Suggestion) Stats {
	st := Stats{Total: len(results)}
	for _, s := range results {
		switch s.Outcome {
		case constants.OutcomeRenamed:
			st.Renamed++
		case constants.OutcomePreview:
			st.Previewed++
		case constants.OutcomeUnchanged:
			st.Unchanged++
		case constants.OutcomeSkipped:
			st.Skipped++
		case constants.OutcomeFailed:
			st.Failed++
		}
	}
	return st
}

// Report is the outcome of one Run.
type Report struct {
	Results []pipeline.Suggestion
	Stats   Stats
	Execute bool
	Elapsed time.Duration
}

// Notice is the one-line summary used for desktop notifications.
func (rep Report) Notice() string {
	st := rep.Stats
	if rep.Execute {
		return fmt.Sprintf("%d umbenannt, %d übersprungen, %d Fehler", st.Renamed, st.Skipped+st.Unchanged, st.Failed)
	}
	return fmt.Sprintf("%d Vorschläge, %d übersprungen, %d Fehler", st.Previewed, st.Skipped+st.Unchanged, st.Failed)
}

// Summary renders the human-readable batch summary.
func (rep Report) Summary() string {
	var b strings.Builder
	st := rep.Stats
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(&b, "%s\nZUSAMMENFASSUNG - %d Dateien verarbeitet\n%s\n", rule, st.Total, rule)
	fmt.Fprintf(&b, "Erfolgreich:   %d\n", st.Successful())
	if rep.Execute {
		fmt.Fprintf(&b, "Umbenannt:     %d\n", st.Renamed)
	} else {
		fmt.Fprintf(&b, "Vorschläge:    %d\n", st.Previewed)
	}
	fmt.Fprintf(&b, "Unverändert:   %d\n", st.Unchanged)
	fmt.Fprintf(&b, "Übersprungen:  %d\n", st.Skipped)
	fmt.Fprintf(&b, "Fehler:        %d\n", st.Failed)

	var changed, failed []pipeline.Suggestion
	for _, s := range rep.Results {
		switch s.Outcome {
		case constants.OutcomeRenamed, constants.OutcomePreview:
			changed = append(changed, s)
		case constants.OutcomeFailed:
			failed = append(failed, s)
		}
	}
	if len(changed) > 0 {
		if rep.Execute {
			b.WriteString("\nUmbenannte Dateien:\n")
		} else {
			b.WriteString("\nVorgeschlagene Namen:\n")
		}
		for _, s := range changed {
			fmt.Fprintf(&b, "  • %s\n    → %s\n", s.OriginalName, s.Filename)
		}
	}
	if len(failed) > 0 {
		b.WriteString("\nFehlerhafte Dateien:\n")
		for _, s := range failed {
			fmt.Fprintf(&b, "  • %s: %v\n", s.OriginalName, s.Err)
		}
	}
	return b.String()
}
