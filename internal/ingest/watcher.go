package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

type WatchConfig struct {
	Roots       []string      // directories to watch (recursive)
	InitialScan bool          // if true, walk roots and emit existing files
	Debounce    time.Duration // quiet period after the last event for a path
	SkipHidden  bool
	// Ignore drops paths the caller produced itself, e.g. freshly renamed files.
	Ignore func(path string) bool
	Logger *slog.Logger
}

// Watch emits supported documents that appear under cfg.Roots. Bursts of
// create and write events for the same path are coalesced: a path is emitted
// once it has been quiet for cfg.Debounce. Both channels close when ctx ends.
func Watch(ctx context.Context, cfg WatchConfig) (<-chan string, <-chan error, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Roots) == 0 {
		logger.Error("ingest.watch.start_failed", "error", "no roots provided")
		return nil, nil, errors.New("no roots provided")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("ingest.watch.start_failed", "error", err)
		return nil, nil, err
	}

	// addDir watches root and every directory below it, reporting supported files to found.
	addDir := func(root string, found func(string)) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if path != root && cfg.SkipHidden && IsHidden(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return w.Add(path)
			}
			if found != nil && AllowedExt(filepath.Ext(path)) {
				found(path)
			}
			return nil
		})
	}
	var initial []string
	var collect func(string)
	if cfg.InitialScan {
		collect = func(p string) { initial = append(initial, p) }
	}
	for _, r := range cfg.Roots {
		if err := addDir(r, collect); err != nil {
			logger.Error("ingest.watch.add_root_failed", "root", r, "error", err)
			_ = w.Close()
			return nil, nil, err
		}
	}

	evCh := make(chan string, 256)
	errCh := make(chan error, 1)

	go func() {
		defer close(evCh)
		defer close(errCh)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Warn("ingest.watch.close_failed", "error", err)
			}
		}()

		emit := func(p string) bool {
			if cfg.Ignore != nil && cfg.Ignore(p) {
				logger.Debug("ingest.watch.ignored", "path", p)
				return true
			}
			select {
			case evCh <- p:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for _, p := range initial {
			if !emit(p) {
				return
			}
		}

		pending := map[string]time.Time{}
		var timer *time.Timer
		var timerC <-chan time.Time
		arm := func(d time.Duration) {
			if timer == nil {
				timer = time.NewTimer(d)
			} else {
				timer.Stop()
				timer.Reset(d)
			}
			timerC = timer.C
		}
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		flush := func(now time.Time) bool {
			var next time.Duration
			for p, last := range pending {
				wait := cfg.Debounce - now.Sub(last)
				if wait > 0 {
					if next == 0 || wait < next {
						next = wait
					}
					continue
				}
				delete(pending, p)
				if info, err := os.Stat(p); err != nil || !info.Mode().IsRegular() {
					continue
				}
				if !emit(p) {
					return false
				}
			}
			timerC = nil
			if next > 0 {
				arm(next)
			}
			return true
		}

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if cfg.SkipHidden && IsHidden(e.Name) {
					continue
				}
				if e.Has(fsnotify.Create) {
					if info, err := os.Stat(e.Name); err == nil && info.IsDir() {
						// files moved in together with the directory raise no events of their own
						err := addDir(e.Name, func(p string) { pending[p] = time.Now() })
						if err != nil {
							logger.Warn("ingest.watch.add_dir_failed", "path", e.Name, "error", err)
						}
						if len(pending) > 0 && timerC == nil {
							arm(max(cfg.Debounce, time.Millisecond))
						}
						continue
					}
				}
				if !AllowedExt(filepath.Ext(e.Name)) || !(e.Has(fsnotify.Create) || e.Has(fsnotify.Write)) {
					continue
				}
				pending[e.Name] = time.Now()
				if cfg.Debounce <= 0 {
					if !flush(time.Now()) {
						return
					}
					continue
				}
				if timerC == nil {
					arm(cfg.Debounce)
				}
			case now := <-timerC:
				if !flush(now) {
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("ingest.watch.error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}
