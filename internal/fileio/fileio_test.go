package fileio

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, name string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sub", name)
	w, err := Create(path)
	require.NoError(t, err)
	_, err = io.WriteString(w, "q1\ts1\t99.0\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "q1\ts1\t99.0\n", string(b))
}

func TestCompressionByExtension(t *testing.T) {
	for _, name := range []string{"plain.tsv", "hits.tsv.gz", "hits.tsv.lz4", "UPPER.TSV.GZ"} {
		t.Run(name, func(t *testing.T) { roundTrip(t, name) })
	}
}

func TestGzipIsActuallyCompressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.gz")
	w, err := Create(path)
	require.NoError(t, err)
	_, _ = io.WriteString(w, "hello")
	require.NoError(t, w.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(b), 2)
	assert.Equal(t, []byte{0x1f, 0x8b}, b[:2])
}

func TestCheckOutput(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, CheckOutput("", false))
	assert.NoError(t, CheckOutput(filepath.Join(dir, "new.tsv"), false))
	assert.ErrorIs(t, CheckOutput(dir, true), ErrOutputIsDir)

	existing := filepath.Join(dir, "old.tsv")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0o644))
	assert.ErrorIs(t, CheckOutput(existing, false), ErrOutputExists)
	assert.NoError(t, CheckOutput(existing, true))
}
