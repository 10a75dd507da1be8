// ABOUTME: Tests for the runtime's lazily created standard streams
// ABOUTME: Streams are redirected to temp files and must survive collection

package mylib

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prateek/gcheap/heap"
)

func tempFile(t *testing.T, name, content string) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestRuntimeStreams(t *testing.T) {
	h := testHeap()
	in := tempFile(t, "stdin", "first\nsecond\n")
	out := tempFile(t, "stdout", "")
	rt := New(h, WithStdio(in, out, nil))
	assert.Same(t, h, rt.Heap())

	stdout := rt.Stdout()
	assert.Same(t, stdout, rt.Stdout())
	stdin := rt.Stdin()
	assert.Same(t, stdin, rt.Stdin())

	h.Collect()
	assert.Equal(t, heap.KindFileWriter, h.Header(stdout.Load()).Kind)
	assert.Equal(t, heap.KindFileLineReader, h.Header(stdin.Load()).Kind)
	assert.Equal(t, 2, h.Stats().LiveObjects)

	assert.Equal(t, "first\n", stdin.Readline().String())
	stdout.Write(StrFromC(h, "hi\n"))
	require.NoError(t, rt.Flush())

	got, err := os.ReadFile(out.Name())
	require.NoError(t, err)
	assert.Equal(t, "hi\n", string(got))
}

func TestRuntimeFlushWithoutStreams(t *testing.T) {
	rt := New(testHeap())
	assert.NoError(t, rt.Flush())
}

func TestRuntimeBuf(t *testing.T) {
	h := testHeap()
	rt := New(h, WithEncoder(pairUpper))
	buf := rt.Buf()
	assert.Same(t, buf, rt.Buf())

	buf.Reset()
	buf.FormatR(StrFromC(h, "ab"))
	assert.Equal(t, "'AB'", buf.Getvalue().String())
}

func TestRuntimeMaybeCollect(t *testing.T) {
	h := tinyHeap()
	rt := New(h)
	for i := 0; i < 100; i++ {
		StrFromC(h, "garbage")
	}
	rt.MaybeCollect()
	assert.Positive(t, h.Stats().NumCollections)
}
