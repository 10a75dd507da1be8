// ABOUTME: Tests for BufWriter, MutableStr and the file-backed writer
// ABOUTME: Covers getvalue invalidation and growth under collection pressure

package mylib

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prateek/gcheap/heap"
)

func TestBufWriter(t *testing.T) {
	h := testHeap()
	w := NewBufWriter(h)
	assert.True(t, w.Valid())
	assert.False(t, w.Isatty())
	assert.NoError(t, w.Flush())

	for _, s := range []string{"hello", " ", "world"} {
		w.Write(StrFromC(h, s))
	}
	assert.Equal(t, 11, w.Len())

	s := w.Getvalue()
	assert.Equal(t, "hello world", s.String())
	assert.Equal(t, heap.KindStr, h.Header(s.Ref()).Kind)
	assert.False(t, w.Valid())

	assert.ErrorIs(t, fatal(func() { w.Write(StrFromC(h, "x")) }), ErrInvalidOperation)
	assert.ErrorIs(t, fatal(func() { w.Getvalue() }), ErrInvalidOperation)
	assert.Equal(t, "hello world", s.String(), "the returned string is unaffected")
}

func TestBufWriterEmpty(t *testing.T) {
	h := testHeap()
	w := NewBufWriter(h)
	w.Write(StrFromC(h, ""))
	assert.Equal(t, "", w.Getvalue().String())
}

func TestBufWriterGrows(t *testing.T) {
	h := tinyHeap()
	var w BufWriter
	defer h.PushRoots(&w).Pop()
	w = NewBufWriter(h)

	var want strings.Builder
	for i := 0; i < 200; i++ {
		w.Write(HexUpper(h, i))
		fmt.Fprintf(&want, "%X", i)
	}
	require.Greater(t, h.Stats().NumCollections, 0)
	assert.Equal(t, want.String(), w.Getvalue().String())
}

func TestMutableStr(t *testing.T) {
	h := testHeap()
	m := NewMutableStr(h, 10)
	assert.Equal(t, 10, m.Cap())
	copy(m.Data(), "abc")
	assert.Equal(t, "abc\x00", string(m.Data()[:4]))
	assert.Equal(t, heap.KindMutableStr, h.Header(m.Load()).Kind)
}

func TestCFileWriter(t *testing.T) {
	h := testHeap()
	path := filepath.Join(t.TempDir(), "out.txt")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := NewCFileWriter(h, f)
	assert.Equal(t, int(f.Fd()), w.Fileno())
	assert.False(t, w.Isatty())
	w.Write(StrFromC(h, "first\n"))
	w.Write(StrFromBytes(h, []byte{'\x00', '\n'}))
	require.NoError(t, w.Flush())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first\n\x00\n", string(got))
}
