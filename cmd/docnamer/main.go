package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/joseph-ayodele/docnamer/constants"
	"github.com/joseph-ayodele/docnamer/internal/app"
	"github.com/joseph-ayodele/docnamer/internal/async"
	"github.com/joseph-ayodele/docnamer/internal/batch"
	"github.com/joseph-ayodele/docnamer/internal/common"
	"github.com/joseph-ayodele/docnamer/internal/export"
	"github.com/joseph-ayodele/docnamer/internal/ingest"
	"github.com/joseph-ayodele/docnamer/internal/mcpserver"
	"github.com/joseph-ayodele/docnamer/internal/notify"
	"github.com/joseph-ayodele/docnamer/internal/pipeline"
)

var version = "dev"

const usage = `Usage:
  docnamer [flags] scan <file|dir>...   suggest names (add --execute to rename)
  docnamer [flags] watch <dir>...       process new files as they arrive
  docnamer [flags] mcp                  serve MCP tools on stdio

Flags:
`

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	fs := pflag.NewFlagSet("docnamer", pflag.ContinueOnError)
	fs.Usage = func() {
		printError("%s%s", usage, fs.FlagUsages())
	}

	cfg, err := common.LoadConfig(fs, os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr so stdout stays free for results and the MCP transport.
	logger := common.NewLogger(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	slog.SetDefault(logger)

	args := fs.Args()
	if len(args) == 0 {
		fs.Usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	comps := app.Build(cfg, logger)
	if !comps.OCR.Available(ctx) {
		logger.Warn("ocr engine unavailable; scans and images will be skipped", "binary", cfg.OCR.Binary)
	}

	var notifier notify.Notifier = notify.Noop{}
	if !cfg.Batch.Silent {
		notifier = notify.NewDesktop(logger)
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "scan":
		err = runScan(ctx, cfg, comps, notifier, rest, logger)
	case "watch":
		err = runWatch(ctx, cfg, comps, notifier, rest, logger)
	case "mcp":
		err = runMCP(ctx, comps, logger)
	default:
		// bare paths behave like scan
		err = runScan(ctx, cfg, comps, notifier, args, logger)
	}
	if err != nil {
		logger.Error("docnamer failed", "error", err)
		os.Exit(1)
	}
}

func runScan(ctx context.Context, cfg *common.Config, comps *app.Components, n notify.Notifier, paths []string, logger *slog.Logger) error {
	files, stats, err := ingest.Collect(paths, cfg.Batch.SkipHidden, logger)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		printError("Keine unterstützten Dateien gefunden (%d geprüft)\n", stats.Scanned)
		return nil
	}

	if len(files) > 1 {
		_ = n.Notify("docnamer", fmt.Sprintf("Verarbeite %d Dateien", len(files)), false)
	}

	runner := batch.NewRunner(comps.Processor, logger,
		batch.WithExecute(cfg.Batch.Execute),
		batch.WithWorkers(cfg.Batch.Workers),
	)
	rep := runner.Run(ctx, files)

	for _, s := range rep.Results {
		printSuggestion(s)
	}
	if len(rep.Results) > 1 {
		fmt.Println()
		fmt.Print(rep.Summary())
		_ = n.Notify("docnamer abgeschlossen", rep.Notice(), true)
	} else {
		notifySingle(n, rep.Results[0])
	}

	if cfg.Batch.Report != "" {
		data, err := export.ReportXLSX(rep.Results, logger)
		if err != nil {
			return fmt.Errorf("build report: %w", err)
		}
		if err := os.WriteFile(cfg.Batch.Report, data, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		logger.Info("report written", "path", cfg.Batch.Report, "rows", len(rep.Results))
	}
	return nil
}

func runWatch(ctx context.Context, cfg *common.Config, comps *app.Components, n notify.Notifier, dirs []string, logger *slog.Logger) error {
	if len(dirs) == 0 {
		return errors.New("watch needs at least one directory")
	}

	produced := newRecentSet(time.Minute)
	runner := batch.NewRunner(comps.Processor, logger,
		batch.WithExecute(cfg.Batch.Execute),
		batch.WithOnRenamed(func(_, newPath string) { produced.Add(newPath) }),
	)

	q := async.NewQueue(func(ctx context.Context, job async.Job) error {
		s := runner.One(ctx, job.Path)
		printSuggestion(s)
		notifySingle(n, s)
		if s.Outcome == constants.OutcomeFailed {
			return s.Err
		}
		return nil
	}, logger, async.WithWorkers(cfg.Batch.Workers))

	events, errs, err := ingest.Watch(ctx, ingest.WatchConfig{
		Roots:      dirs,
		Debounce:   cfg.Watch.Debounce,
		SkipHidden: cfg.Batch.SkipHidden,
		Ignore:     produced.Seen,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	logger.Info("watching", "dirs", dirs, "execute", cfg.Batch.Execute, "debounce", cfg.Watch.Debounce.String())

	for events != nil || errs != nil {
		select {
		case p, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if err := q.Enqueue(ctx, async.Job{Path: p}); err != nil {
				logger.Warn("enqueue failed", "path", p, "error", err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watch error", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	q.Shutdown(shutdownCtx)
	return nil
}

func runMCP(ctx context.Context, comps *app.Components, logger *slog.Logger) error {
	srv, err := mcpserver.NewServer(version, mcpserver.Deps{
		Suggester:  comps.Processor,
		Text:       comps.Text,
		Classifier: comps.Classifier,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

func printSuggestion(s pipeline.Suggestion) {
	switch s.Outcome {
	case constants.OutcomeRenamed:
		fmt.Printf("RENAMED   %s\n       -> %s\n", s.OriginalName, s.Filename)
	case constants.OutcomePreview:
		fmt.Printf("PREVIEW   %s\n       -> %s  [%s]\n", s.OriginalName, s.Filename, s.Source)
	case constants.OutcomeUnchanged:
		fmt.Printf("UNCHANGED %s\n", s.OriginalName)
	case constants.OutcomeSkipped:
		fmt.Printf("SKIPPED   %s (%s)\n", s.OriginalName, s.Reason)
	case constants.OutcomeFailed:
		fmt.Printf("FAILED    %s: %v\n", s.OriginalName, s.Err)
	}
	if s.Folder != "" {
		fmt.Printf("          Ordner: %s\n", s.Folder)
	}
}

func notifySingle(n notify.Notifier, s pipeline.Suggestion) {
	switch s.Outcome {
	case constants.OutcomeRenamed:
		_ = n.Notify("docnamer", "Umbenannt zu:\n"+s.Filename, true)
	case constants.OutcomePreview:
		_ = n.Notify("docnamer", "Vorschlag: "+s.Filename, false)
	case constants.OutcomeUnchanged:
		_ = n.Notify("docnamer", "Name ist bereits optimal", false)
	case constants.OutcomeFailed:
		_ = n.Notify("docnamer Fehler", fmt.Sprintf("%s: %v", s.OriginalName, s.Err), false)
	}
}

// recentSet remembers paths for a limited time.
type recentSet struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[string]time.Time
}

func newRecentSet(ttl time.Duration) *recentSet {
	return &recentSet{ttl: ttl, m: map[string]time.Time{}}
}

func (r *recentSet) Add(p string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[filepath.Clean(p)] = time.Now()
}

func (r *recentSet) Seen(p string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for k, t := range r.m {
		if now.Sub(t) > r.ttl {
			delete(r.m, k)
		}
	}
	_, ok := r.m[filepath.Clean(p)]
	return ok
}
