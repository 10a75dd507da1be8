// ABOUTME: Writers: an in-memory BufWriter over a MutableStr and a file writer
// ABOUTME: BufWriter hands its buffer out from Getvalue and is then invalid

package mylib

import (
	"bufio"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/prateek/gcheap/heap"
)

// Writer is the output stream abstraction used by generated code.
type Writer interface {
	heap.Slot
	Write(s Str)
	Flush() error
	Isatty() bool
}

// MutableStr is a fixed-capacity byte buffer on the heap. Unlike Str its
// contents change in place; it is only reachable through a BufWriter.
type MutableStr struct {
	h   *heap.Heap
	ref heap.Ref
}

// NewMutableStr allocates a zeroed buffer of capacity bytes.
func NewMutableStr(h *heap.Heap, capacity int) MutableStr {
	return MutableStr{h: h, ref: h.Allocate(heap.KindMutableStr, capacity, 0, true, capacity)}
}

// Load implements heap.Slot.
func (m *MutableStr) Load() heap.Ref {
	return m.ref
}

// Cap returns the buffer size in bytes.
func (m MutableStr) Cap() int {
	return m.h.Header(m.ref).Len
}

// Data aliases the buffer. Invalid after the next allocation.
func (m MutableStr) Data() []byte {
	return m.h.Bytes(m.ref)
}

// BufWriter fields.
const (
	bufStr      = iota // MutableStr, traced
	bufLen             // bytes written
	bufConsumed        // non-zero once Getvalue was called
	bufFields
)

const minBufCap = 16

// BufWriter accumulates writes in memory, like cStringIO.
type BufWriter struct {
	h   *heap.Heap
	ref heap.Ref
}

// NewBufWriter returns an empty writer. The buffer is allocated by the
// first write.
func NewBufWriter(h *heap.Heap) BufWriter {
	return BufWriter{h: h, ref: h.Allocate(heap.KindBufWriter, bufFields*8, heap.MaskBit(bufStr), false, 0)}
}

// Load implements heap.Slot.
func (w *BufWriter) Load() heap.Ref {
	return w.ref
}

// Len returns the number of bytes written.
func (w BufWriter) Len() int {
	return int(w.h.Word(w.ref, bufLen))
}

func (w BufWriter) capacity() int {
	buf := w.h.RefAt(w.ref, bufStr)
	if buf == heap.Nil {
		return 0
	}
	return w.h.Header(buf).Len
}

// Valid reports whether the writer still accepts writes.
func (w BufWriter) Valid() bool {
	return w.h.Word(w.ref, bufConsumed) == 0
}

func (w BufWriter) checkValid(op string) {
	if !w.Valid() {
		heap.Fail(ErrInvalidOperation, "BufWriter.%s after getvalue()", op)
	}
}

// ensureCapacity doubles the buffer until it holds n bytes. w and any
// operand must be rooted.
func (w BufWriter) ensureCapacity(n int) {
	c := w.capacity()
	if n <= c {
		return
	}
	newCap := max(c, minBufCap)
	for newCap < n {
		newCap *= 2
	}
	buf := NewMutableStr(w.h, newCap)
	if old := w.h.RefAt(w.ref, bufStr); old != heap.Nil {
		copy(buf.Data(), w.h.Bytes(old)[:w.Len()])
	}
	w.h.SetRefAt(w.ref, bufStr, buf.ref)
}

// Write appends the bytes of s. Writing after Getvalue is a usage error.
func (w BufWriter) Write(s Str) {
	w.checkValid("write")
	n, m := w.Len(), s.Len()
	if n+m > w.capacity() {
		func() {
			defer w.h.PushRoots(&w, &s).Pop()
			w.ensureCapacity(n + m)
		}()
	}
	buf := w.h.RefAt(w.ref, bufStr)
	if m > 0 {
		copy(w.h.Bytes(buf)[n:], s.view())
	}
	w.h.SetWord(w.ref, bufLen, uint64(n+m))
}

// Flush does nothing for an in-memory writer.
func (w BufWriter) Flush() error {
	return nil
}

// Isatty is always false for an in-memory writer.
func (w BufWriter) Isatty() bool {
	return false
}

// Getvalue returns everything written as an immutable Str. The buffer
// becomes the string without a copy, so the writer is invalid afterwards.
func (w BufWriter) Getvalue() Str {
	w.checkValid("getvalue")
	w.h.SetWord(w.ref, bufConsumed, 1)
	buf := w.h.RefAt(w.ref, bufStr)
	if buf == heap.Nil {
		return newStr(w.h, 0)
	}
	w.h.Retag(buf, heap.KindStr, w.Len())
	w.h.SetRefAt(w.ref, bufStr, heap.Nil)
	return Str{h: w.h, ref: buf}
}

// CFileWriter writes to an operating system file through a bufio.Writer.
// The heap object records the descriptor; the file itself is not managed.
type CFileWriter struct {
	h   *heap.Heap
	ref heap.Ref
	f   *os.File
	w   *bufio.Writer
}

// NewCFileWriter wraps f.
func NewCFileWriter(h *heap.Heap, f *os.File) *CFileWriter {
	ref := h.Allocate(heap.KindFileWriter, 8, 0, false, 0)
	h.SetWord(ref, 0, uint64(f.Fd()))
	return &CFileWriter{h: h, ref: ref, f: f, w: bufio.NewWriter(f)}
}

// Load implements heap.Slot.
func (w *CFileWriter) Load() heap.Ref {
	return w.ref
}

// Write buffers the bytes of s.
func (w *CFileWriter) Write(s Str) {
	if _, err := w.w.Write(s.view()); err != nil {
		heap.Fail(err, "write to %s", w.f.Name())
	}
}

// Flush writes buffered bytes to the file.
func (w *CFileWriter) Flush() error {
	return w.w.Flush()
}

// Isatty reports whether the file is a terminal.
func (w *CFileWriter) Isatty() bool {
	return isTerminal(w.f)
}

// Fileno returns the file descriptor.
func (w *CFileWriter) Fileno() int {
	return int(w.f.Fd())
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
