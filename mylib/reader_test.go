// ABOUTME: Tests for the in-memory and file-backed line readers
// ABOUTME: Both return lines with their newline and an empty string at the end

package mylib

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(r LineReader) []string {
	var lines []string
	for {
		line := r.Readline()
		if line.Len() == 0 {
			return lines
		}
		lines = append(lines, line.String())
	}
}

func TestBufLineReader(t *testing.T) {
	h := testHeap()
	r := NewBufLineReader(h, StrFromC(h, "a\nbb\n\nccc"))

	assert.Equal(t, []string{"a\n", "bb\n", "\n", "ccc"}, readAll(&r))
	assert.Equal(t, 0, r.Readline().Len(), "reading past the end stays empty")
	assert.False(t, r.Isatty())
	assert.ErrorIs(t, fatal(func() { r.Fileno() }), ErrNotImplemented)
}

func TestBufLineReaderSurvivesCollections(t *testing.T) {
	h := tinyHeap()
	var src Str
	var r BufLineReader
	defer h.PushRoots(&src, &r).Pop()

	w := NewBufWriter(h)
	func() {
		defer h.PushRoots(&w).Pop()
		for i := 0; i < 100; i++ {
			w.Write(HexLower(h, i))
			w.Write(StrFromC(h, "\n"))
		}
	}()
	src = w.Getvalue()
	r = NewBufLineReader(h, src)
	src = Str{}

	for i := 0; i < 100; i++ {
		require.Equal(t, fmt.Sprintf("%x\n", i), r.Readline().String())
	}
	require.Greater(t, h.Stats().NumCollections, 0)
}

func TestCFileLineReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\nthree"), 0o644))

	h := testHeap()
	r, err := Open(h, path)
	require.NoError(t, err)
	defer r.Close()

	assert.False(t, r.Isatty())
	assert.Positive(t, r.Fileno())
	assert.Equal(t, []string{"one\n", "two\n", "three"}, readAll(r))
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(testHeap(), filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteThenRead(t *testing.T) {
	h := testHeap()
	path := filepath.Join(t.TempDir(), "round.txt")
	f, err := os.Create(path)
	require.NoError(t, err)

	w := NewCFileWriter(h, f)
	w.Write(StrFromC(h, "x=1\ny=2\n"))
	require.NoError(t, w.Flush())
	require.NoError(t, f.Close())

	r, err := Open(h, path)
	require.NoError(t, err)
	defer r.Close()
	k, v, ok := r.Readline().SplitOnce(StrFromC(h, "="))
	require.True(t, ok)
	assert.Equal(t, "x", k.String())
	assert.Equal(t, "1\n", v.String())
}
