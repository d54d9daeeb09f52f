package rename

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docnamer/internal/common"
)

func write(t *testing.T, p, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
}

func TestIfAbsent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "scan.pdf")
	dst := filepath.Join(dir, "2024-03-15_Vodafone_Rechnung.pdf")
	write(t, src, "content")

	require.NoError(t, IfAbsent(src, dst))

	_, err := os.Stat(src)
	assert.True(t, os.IsNotExist(err))
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "content", string(got))
}

func TestIfAbsent_TargetExists(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.pdf")
	dst := filepath.Join(dir, "b.pdf")
	write(t, src, "new")
	write(t, dst, "old")

	err := IfAbsent(src, dst)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrTargetExists)

	got, _ := os.ReadFile(dst)
	assert.Equal(t, "old", string(got))
	got, _ = os.ReadFile(src)
	assert.Equal(t, "new", string(got))
}

func TestIfAbsent_SamePathAndMissingSource(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.pdf")
	write(t, p, "x")
	assert.NoError(t, IfAbsent(p, p))

	err := IfAbsent(filepath.Join(dir, "missing.pdf"), filepath.Join(dir, "c.pdf"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrTargetExists)
}

func TestIfAbsent_ConcurrentClaims(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "target.pdf")

	const n = 8
	srcs := make([]string, n)
	for i := range srcs {
		srcs[i] = filepath.Join(dir, "src"+string(rune('a'+i))+".pdf")
		write(t, srcs[i], srcs[i])
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range srcs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = IfAbsent(srcs[i], dst)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, common.ErrTargetExists)
		}
	}
	assert.Equal(t, 1, wins)
}
