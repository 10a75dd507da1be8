// ABOUTME: Line readers over a managed string or an operating system file
// ABOUTME: Readline returns an empty string at end of input

package mylib

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prateek/gcheap/heap"
)

// LineReader is the input stream abstraction used by generated code.
type LineReader interface {
	heap.Slot
	Readline() Str
	Isatty() bool
	Fileno() int
}

// BufLineReader fields.
const (
	readerStr = iota // source Str, traced
	readerPos        // offset of the next line
	readerFields
)

// BufLineReader reads lines from a Str.
type BufLineReader struct {
	h   *heap.Heap
	ref heap.Ref
}

// NewBufLineReader returns a reader positioned at the start of s.
func NewBufLineReader(h *heap.Heap, s Str) BufLineReader {
	defer h.PushRoots(&s).Pop()
	ref := h.Allocate(heap.KindBufLineReader, readerFields*8, heap.MaskBit(readerStr), false, 0)
	h.SetRefAt(ref, readerStr, s.ref)
	return BufLineReader{h: h, ref: ref}
}

// Load implements heap.Slot.
func (r *BufLineReader) Load() heap.Ref {
	return r.ref
}

// Readline returns the next line including its newline, or an empty string
// once the input is exhausted.
func (r BufLineReader) Readline() Str {
	s := Str{h: r.h, ref: r.h.RefAt(r.ref, readerStr)}
	pos := int(r.h.Word(r.ref, readerPos))
	rest := s.view()[pos:]
	end := len(rest)
	if i := bytes.IndexByte(rest, '\n'); i >= 0 {
		end = i + 1
	}
	defer r.h.PushRoots(&r).Pop()
	line := s.SliceTo(pos, pos+end)
	r.h.SetWord(r.ref, readerPos, uint64(pos+end))
	return line
}

// Isatty is always false for an in-memory reader.
func (r BufLineReader) Isatty() bool {
	return false
}

// Fileno fails: an in-memory reader has no descriptor.
func (r BufLineReader) Fileno() int {
	heap.Fail(ErrNotImplemented, "BufLineReader.fileno()")
	return -1
}

// CFileLineReader reads lines from an operating system file.
type CFileLineReader struct {
	h   *heap.Heap
	ref heap.Ref
	f   *os.File
	r   *bufio.Reader
}

// NewCFileLineReader wraps f.
func NewCFileLineReader(h *heap.Heap, f *os.File) *CFileLineReader {
	ref := h.Allocate(heap.KindFileLineReader, 8, 0, false, 0)
	h.SetWord(ref, 0, uint64(f.Fd()))
	return &CFileLineReader{h: h, ref: ref, f: f, r: bufio.NewReader(f)}
}

// Open opens path for line reading.
func Open(h *heap.Heap, path string) (*CFileLineReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return NewCFileLineReader(h, f), nil
}

// Load implements heap.Slot.
func (r *CFileLineReader) Load() heap.Ref {
	return r.ref
}

// Readline returns the next line including its newline, or an empty string
// at end of file. Read errors other than EOF are fatal.
func (r *CFileLineReader) Readline() Str {
	line, err := r.r.ReadBytes('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		heap.Fail(err, "read from %s", r.f.Name())
	}
	return StrFromBytes(r.h, line)
}

// Isatty reports whether the file is a terminal.
func (r *CFileLineReader) Isatty() bool {
	return isTerminal(r.f)
}

// Fileno returns the file descriptor.
func (r *CFileLineReader) Fileno() int {
	return int(r.f.Fd())
}

// Close closes the underlying file.
func (r *CFileLineReader) Close() error {
	return r.f.Close()
}
