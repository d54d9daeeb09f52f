package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docnamer/constants"
	"github.com/joseph-ayodele/docnamer/internal/pipeline"
)

// fakeSuggester maps base names to suggested names; "" means unchanged.
type fakeSuggester struct {
	names map[string]string
	panic string
}

func (f fakeSuggester) Suggest(_ context.Context, path string) pipeline.Suggestion {
	base := filepath.Base(path)
	if base == f.panic {
		panic("extractor exploded")
	}
	s := pipeline.Suggestion{Path: path, OriginalName: base, Filename: base, Outcome: constants.OutcomeUnchanged}
	switch want := f.names[base]; want {
	case "":
	case "SKIP":
		s.Outcome, s.Reason = constants.OutcomeSkipped, "too little text"
	default:
		s.Filename, s.Outcome, s.Source = want, constants.OutcomePreview, constants.SourceHeuristic
	}
	return s
}

func mkfiles(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	var out []string
	for _, n := range names {
		p := filepath.Join(dir, n)
		require.NoError(t, os.WriteFile(p, []byte(n), 0o600))
		out = append(out, p)
	}
	return out
}

func TestRun_PreviewTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	paths := mkfiles(t, dir, "scan1.pdf", "scan2.pdf", "empty.pdf")
	r := NewRunner(fakeSuggester{names: map[string]string{
		"scan1.pdf": "2024-03-15_Vodafone_Rechnung.pdf",
		"empty.pdf": "SKIP",
	}}, nil, WithWorkers(2))

	rep := r.Run(context.Background(), paths)
	require.Len(t, rep.Results, 3)
	assert.Equal(t, "2024-03-15_Vodafone_Rechnung.pdf", rep.Results[0].Filename, "results keep input order")
	assert.Equal(t, Stats{Total: 3, Previewed: 1, Unchanged: 1, Skipped: 1}, rep.Stats)

	_, err := os.Stat(paths[0])
	assert.NoError(t, err)
	assert.Contains(t, rep.Summary(), "Vorgeschlagene Namen:")
	assert.Equal(t, "1 Vorschläge, 2 übersprungen, 0 Fehler", rep.Notice())
}

func TestRun_ExecuteRenamesAndResolvesCollisions(t *testing.T) {
	dir := t.TempDir()
	paths := mkfiles(t, dir, "a.pdf", "b.pdf", "c.pdf", "taken.pdf")
	var mu sync.Mutex
	var renamed []string
	r := NewRunner(fakeSuggester{names: map[string]string{
		"a.pdf": "2024_Allianz_Vertrag.pdf",
		"b.pdf": "2024_Allianz_Vertrag.pdf",
		"c.pdf": "taken.pdf",
	}}, nil, WithExecute(true), WithWorkers(4), WithOnRenamed(func(_, newPath string) {
		mu.Lock()
		renamed = append(renamed, newPath)
		mu.Unlock()
	}))

	rep := r.Run(context.Background(), paths)
	assert.Equal(t, 1, rep.Stats.Renamed)
	assert.Equal(t, 2, rep.Stats.Skipped, "second claimant and existing target are skipped")
	assert.Equal(t, 1, rep.Stats.Unchanged)
	assert.Equal(t, []string{filepath.Join(dir, "2024_Allianz_Vertrag.pdf")}, renamed)

	got, err := os.ReadFile(filepath.Join(dir, "taken.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "taken.pdf", string(got), "existing file is never replaced")
	_, err = os.Stat(filepath.Join(dir, "c.pdf"))
	assert.NoError(t, err)
	assert.Contains(t, rep.Summary(), "Umbenannt:     1")
}

func TestRun_FailuresAreIsolated(t *testing.T) {
	dir := t.TempDir()
	paths := mkfiles(t, dir, "boom.pdf", "ok.pdf", "ro.pdf")
	r := NewRunner(fakeSuggester{
		names: map[string]string{"ok.pdf": "new.pdf", "ro.pdf": "other.pdf"},
		panic: "boom.pdf",
	}, nil, WithExecute(true), WithRenameFunc(func(oldPath, newPath string) error {
		if filepath.Base(oldPath) == "ro.pdf" {
			return errors.New("read-only file system")
		}
		return os.Rename(oldPath, newPath)
	}))

	rep := r.Run(context.Background(), paths)
	assert.Equal(t, constants.OutcomeFailed, rep.Results[0].Outcome)
	assert.ErrorContains(t, rep.Results[0].Err, "panic")
	assert.Equal(t, constants.OutcomeRenamed, rep.Results[1].Outcome)
	assert.Equal(t, constants.OutcomeFailed, rep.Results[2].Outcome)
	assert.Equal(t, Stats{Total: 3, Renamed: 1, Failed: 2}, rep.Stats)
	assert.Equal(t, 1, rep.Stats.Successful())
	assert.Contains(t, rep.Summary(), "Fehlerhafte Dateien:")
	assert.Equal(t, "1 umbenannt, 0 übersprungen, 2 Fehler", rep.Notice())
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rep := NewRunner(fakeSuggester{}, nil).Run(ctx, []string{"/x/a.pdf"})
	assert.Equal(t, 1, rep.Stats.Failed)
}
