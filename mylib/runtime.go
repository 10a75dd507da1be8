// ABOUTME: Runtime context owning the standard stream singletons
// ABOUTME: Streams are created on first use and rooted for the heap's lifetime

package mylib

import (
	"os"

	"github.com/prateek/gcheap/heap"
)

// Runtime is the context generated code runs against: a heap plus the
// process-wide stream handles and format buffer.
type Runtime struct {
	h *heap.Heap

	inFile, outFile, errFile *os.File
	enc                      UnitEncoder

	stdin  *CFileLineReader
	stdout *CFileWriter
	stderr *CFileWriter
	buf    *FormatStringer
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithStdio replaces the files behind Stdin, Stdout and Stderr. A nil file
// keeps the os default.
func WithStdio(in, out, errOut *os.File) Option {
	return func(rt *Runtime) {
		if in != nil {
			rt.inFile = in
		}
		if out != nil {
			rt.outFile = out
		}
		if errOut != nil {
			rt.errFile = errOut
		}
	}
}

// WithEncoder sets the encoder used for repr-style quoting.
func WithEncoder(enc UnitEncoder) Option {
	return func(rt *Runtime) {
		rt.enc = enc
	}
}

// New returns a runtime over h.
func New(h *heap.Heap, opts ...Option) *Runtime {
	rt := &Runtime{
		h:       h,
		inFile:  os.Stdin,
		outFile: os.Stdout,
		errFile: os.Stderr,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Heap returns the runtime's heap.
func (rt *Runtime) Heap() *heap.Heap {
	return rt.h
}

// MaybeCollect gives the collector a safe point.
func (rt *Runtime) MaybeCollect() {
	rt.h.MaybeCollect()
}

// Stdin returns the standard input reader.
func (rt *Runtime) Stdin() LineReader {
	if rt.stdin == nil {
		rt.stdin = NewCFileLineReader(rt.h, rt.inFile)
		rt.h.RootGlobalVar(rt.stdin)
	}
	return rt.stdin
}

// Stdout returns the standard output writer.
func (rt *Runtime) Stdout() Writer {
	if rt.stdout == nil {
		rt.stdout = NewCFileWriter(rt.h, rt.outFile)
		rt.h.RootGlobalVar(rt.stdout)
	}
	return rt.stdout
}

// Stderr returns the standard error writer.
func (rt *Runtime) Stderr() Writer {
	if rt.stderr == nil {
		rt.stderr = NewCFileWriter(rt.h, rt.errFile)
		rt.h.RootGlobalVar(rt.stderr)
	}
	return rt.stderr
}

// Buf returns the shared format buffer. Callers Reset it before use.
func (rt *Runtime) Buf() *FormatStringer {
	if rt.buf == nil {
		rt.buf = NewFormatStringer(rt.h, rt.enc)
	}
	return rt.buf
}

// Flush flushes the output streams that have been created.
func (rt *Runtime) Flush() error {
	for _, w := range []*CFileWriter{rt.stdout, rt.stderr} {
		if w == nil {
			continue
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}
