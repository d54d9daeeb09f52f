// Package ingest discovers documents to process, either once over a set of
// paths or continuously by watching an inbox directory.
package ingest

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/docnamer/constants"
	"github.com/joseph-ayodele/docnamer/internal/common"
)

// DirStats summarizes a Collect run.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Hidden  uint32
	Failed  uint32
}

// AllowedExt reports whether ext (with or without the dot) is a supported document type.
func AllowedExt(ext string) bool {
	_, ok := constants.AllowedExtensions[constants.NormalizeExt(ext)]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}

// Collect expands roots into the supported documents they contain. A root may
// be a file or a directory; directories are walked recursively. Paths are
// returned once each, in walk order. Unreadable entries are counted as failed
// and skipped, they never abort the walk.
func Collect(roots []string, skipHidden bool, logger *slog.Logger) ([]string, DirStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var stats DirStats
	if len(roots) == 0 {
		return nil, stats, fmt.Errorf("%w: no paths given", common.ErrInvalidInput)
	}

	seen := make(map[string]struct{})
	var out []string
	add := func(path string) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if _, dup := seen[path]; dup {
			return
		}
		seen[path] = struct{}{}
		stats.Matched++
		out = append(out, path)
	}

	for _, root := range roots {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		info, err := os.Stat(root)
		if err != nil {
			stats.Failed++
			logger.Warn("ingest.collect.stat_failed", "path", root, "error", err)
			continue
		}
		if !info.IsDir() {
			// an explicitly named file is taken even when hidden
			stats.Scanned++
			if AllowedExt(filepath.Ext(root)) {
				add(root)
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				stats.Failed++
				logger.Warn("ingest.collect.walk_failed", "path", path, "error", walkErr)
				if d != nil && d.IsDir() && path != root {
					return filepath.SkipDir
				}
				return nil
			}
			if path != root && skipHidden && IsHidden(path) {
				stats.Hidden++
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			stats.Scanned++
			if AllowedExt(filepath.Ext(path)) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return out, stats, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	logger.Info("ingest.collect.done",
		"roots", len(roots),
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"hidden", stats.Hidden,
		"failed", stats.Failed,
	)
	return out, stats, nil
}
