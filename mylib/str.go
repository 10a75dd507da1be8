// ABOUTME: Immutable managed strings stored as variable-length heap blocks
// ABOUTME: Every transforming operation allocates a new string

package mylib

import (
	"bytes"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/prateek/gcheap/heap"
)

// Str is a handle to an immutable byte string on the managed heap. The
// zero Str is the null string. A Str held in a local across an allocation
// must be rooted:
//
//	var s mylib.Str
//	defer h.PushRoots(&s).Pop()
type Str struct {
	h   *heap.Heap
	ref heap.Ref
}

func newStr(h *heap.Heap, n int) Str {
	return Str{h: h, ref: h.Allocate(heap.KindStr, n, 0, true, n)}
}

// StrFromC copies a Go string onto the heap.
func StrFromC(h *heap.Heap, s string) Str {
	out := newStr(h, len(s))
	copy(out.view(), s)
	return out
}

// StrFromBytes copies b onto the heap. b may contain any bytes, including
// NUL and invalid UTF-8.
func StrFromBytes(h *heap.Heap, b []byte) Str {
	out := newStr(h, len(b))
	copy(out.view(), b)
	return out
}

// Load implements heap.Slot.
func (s *Str) Load() heap.Ref {
	return s.ref
}

// Ref returns the string's heap reference.
func (s Str) Ref() heap.Ref {
	return s.ref
}

// IsNil reports whether s is the null string.
func (s Str) IsNil() bool {
	return s.ref == heap.Nil
}

// view aliases the heap bytes. It is invalid after the next allocation.
func (s Str) view() []byte {
	return s.h.Bytes(s.ref)
}

// Len returns the length in bytes.
func (s Str) Len() int {
	return s.h.Header(s.ref).Len
}

// ByteAt returns byte i, which must be in [0, Len).
func (s Str) ByteAt(i int) byte {
	b := s.view()
	return b[index(i, len(b))]
}

// Bytes returns a copy of the contents.
func (s Str) Bytes() []byte {
	return bytes.Clone(s.view())
}

// String returns the contents as a Go string. The null string prints as
// "None".
func (s Str) String() string {
	if s.IsNil() {
		return "None"
	}
	return string(s.view())
}

// Equal compares contents.
func (s Str) Equal(other Str) bool {
	if s.ref == other.ref {
		return true
	}
	if s.IsNil() || other.IsNil() {
		return false
	}
	return bytes.Equal(s.view(), other.view())
}

// Hash hashes the contents.
func (s Str) Hash() uint64 {
	return xxhash.Sum64(s.view())
}

// Word returns the string's Ref as an arena word.
func (s Str) Word() uint64 {
	return uint64(s.ref)
}

// FromWord rebuilds a Str handle from a stored Ref.
func (Str) FromWord(h *heap.Heap, w uint64) Str {
	return Str{h: h, ref: heap.Ref(w)}
}

// Traced is true: a stored Str is followed by the collector.
func (Str) Traced() bool {
	return true
}

// Replace returns a copy of s with every non-overlapping occurrence of old,
// scanning left to right, replaced by new. An empty old matches before
// every byte and at the end. If nothing matches s itself is returned.
func (s Str) Replace(old, new Str) Str {
	h := s.h
	src, pat, rep := s.view(), old.view(), new.view()
	var n int
	if len(pat) == 0 {
		n = len(src) + 1
	} else {
		n = bytes.Count(src, pat)
	}
	if n == 0 {
		return s
	}

	defer h.PushRoots(&s, &old, &new).Pop()
	out := newStr(h, len(src)+n*(len(rep)-len(pat)))
	src, pat, rep = s.view(), old.view(), new.view()
	dst := out.view()

	w := 0
	if len(pat) == 0 {
		for i := 0; i < len(src); i++ {
			w += copy(dst[w:], rep)
			dst[w] = src[i]
			w++
		}
		copy(dst[w:], rep)
		return out
	}
	for {
		j := bytes.Index(src, pat)
		if j < 0 {
			break
		}
		w += copy(dst[w:], src[:j])
		w += copy(dst[w:], rep)
		src = src[j+len(pat):]
	}
	copy(dst[w:], src)
	return out
}

// Slice returns s[start:] with Python index semantics.
func (s Str) Slice(start int) Str {
	return s.SliceTo(start, s.Len())
}

// SliceTo returns s[start:end] with Python index semantics: negative
// indexes count from the end and out-of-range bounds are clamped.
func (s Str) SliceTo(start, end int) Str {
	start, end = clampSlice(start, end, s.Len())
	defer s.h.PushRoots(&s).Pop()
	out := newStr(s.h, end-start)
	copy(out.view(), s.view()[start:end])
	return out
}

// Add returns the concatenation of s and other.
func (s Str) Add(other Str) Str {
	defer s.h.PushRoots(&s, &other).Pop()
	a, b := s.Len(), other.Len()
	out := newStr(s.h, a+b)
	dst := out.view()
	copy(dst, s.view())
	copy(dst[a:], other.view())
	return out
}

// Find returns the index of the first occurrence of sub, or -1.
func (s Str) Find(sub Str) int {
	return bytes.Index(s.view(), sub.view())
}

// SplitOnce splits s around the first occurrence of delim. When delim is
// absent it returns s, the null string and false.
func (s Str) SplitOnce(delim Str) (before, after Str, found bool) {
	i := s.Find(delim)
	if i < 0 {
		return s, Str{}, false
	}
	n := delim.Len()
	defer s.h.PushRoots(&s, &before).Pop()
	before = s.SliceTo(0, i)
	after = s.Slice(i + n)
	return before, after, true
}

// Chr returns the one-byte string holding b.
func Chr(h *heap.Heap, b byte) Str {
	out := newStr(h, 1)
	out.view()[0] = b
	return out
}

// Ord returns the value of a one-byte string.
func Ord(s Str) int {
	b := s.view()
	if len(b) != 1 {
		heap.Fail(ErrInvalidOperation, "ord() of string with length %d", len(b))
	}
	return int(b[0])
}

// IntBufSize bounds the digits of a 64-bit integer in base 8 or larger,
// plus a sign and a terminator.
const IntBufSize = 8*8/3 + 3

// formatUint renders i in base with a fixed local buffer, as two's
// complement for negative values like C's %x and %o.
func formatUint(h *heap.Heap, i int, base int, upper bool) Str {
	var buf [IntBufSize]byte
	b := strconv.AppendUint(buf[:0], uint64(i), base)
	if upper {
		b = bytes.ToUpper(b)
	}
	return StrFromBytes(h, b)
}

// HexLower formats i like printf("%x").
func HexLower(h *heap.Heap, i int) Str {
	return formatUint(h, i, 16, false)
}

// HexUpper formats i like printf("%X").
func HexUpper(h *heap.Heap, i int) Str {
	return formatUint(h, i, 16, true)
}

// Octal formats i like printf("%o").
func Octal(h *heap.Heap, i int) Str {
	return formatUint(h, i, 8, false)
}
