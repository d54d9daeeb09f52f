package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docnamer/internal/common"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.pdf"))
	touch(t, filepath.Join(dir, "b.TXT"))
	touch(t, filepath.Join(dir, "c.zip"))
	touch(t, filepath.Join(dir, "sub", "d.docx"))
	touch(t, filepath.Join(dir, ".hidden.pdf"))
	touch(t, filepath.Join(dir, ".cache", "e.pdf"))

	t.Run("skip hidden", func(t *testing.T) {
		paths, stats, err := Collect([]string{dir}, true, nil)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			filepath.Join(dir, "a.pdf"),
			filepath.Join(dir, "b.TXT"),
			filepath.Join(dir, "sub", "d.docx"),
		}, paths)
		assert.EqualValues(t, 3, stats.Matched)
		assert.EqualValues(t, 4, stats.Scanned)
		assert.EqualValues(t, 2, stats.Hidden)
	})

	t.Run("include hidden", func(t *testing.T) {
		paths, _, err := Collect([]string{dir}, false, nil)
		require.NoError(t, err)
		assert.Len(t, paths, 5)
	})

	t.Run("files and duplicates", func(t *testing.T) {
		file := filepath.Join(dir, "a.pdf")
		paths, stats, err := Collect([]string{file, dir, filepath.Join(dir, "missing.pdf")}, true, nil)
		require.NoError(t, err)
		assert.Equal(t, file, paths[0])
		assert.Len(t, paths, 3)
		assert.EqualValues(t, 1, stats.Failed)
	})

	t.Run("no roots", func(t *testing.T) {
		_, _, err := Collect(nil, true, nil)
		assert.ErrorIs(t, err, common.ErrInvalidInput)
	})
}

func TestIsHiddenAndAllowedExt(t *testing.T) {
	assert.True(t, IsHidden("/x/.git"))
	assert.False(t, IsHidden("/x/."))
	assert.False(t, IsHidden("/x/scan.pdf"))
	assert.True(t, AllowedExt(".PDF"))
	assert.True(t, AllowedExt("eml"))
	assert.False(t, AllowedExt(".heic"))
}

func TestWatch_EmitsNewFilesOnce(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := Watch(ctx, WatchConfig{
		Roots:      []string{dir},
		Debounce:   50 * time.Millisecond,
		SkipHidden: true,
		Ignore:     func(p string) bool { return filepath.Base(p) == "renamed.pdf" },
	})
	require.NoError(t, err)

	target := filepath.Join(dir, "scan.pdf")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(target, []byte("chunk"), 0o600))
	}
	touch(t, filepath.Join(dir, "notes.zip"))
	touch(t, filepath.Join(dir, ".partial.pdf"))
	touch(t, filepath.Join(dir, "renamed.pdf"))

	select {
	case got := <-events:
		assert.Equal(t, target, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no event")
	}

	select {
	case got := <-events:
		t.Fatalf("unexpected second event %q", got)
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	for range events {
	}
}

func TestWatch_InitialScanAndNewDirectory(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "old.pdf")
	touch(t, existing)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := Watch(ctx, WatchConfig{Roots: []string{dir}, InitialScan: true, Debounce: 20 * time.Millisecond})
	require.NoError(t, err)

	select {
	case got := <-events:
		assert.Equal(t, existing, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no initial event")
	}

	sub := filepath.Join(dir, "2024")
	require.NoError(t, os.Mkdir(sub, 0o755))
	// give the watcher a moment to register the new directory
	time.Sleep(100 * time.Millisecond)
	nested := filepath.Join(sub, "new.txt")
	touch(t, nested)

	select {
	case got := <-events:
		assert.Equal(t, nested, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no event from new directory")
	}
}

func TestWatch_NoRoots(t *testing.T) {
	_, _, err := Watch(context.Background(), WatchConfig{})
	assert.Error(t, err)
}
