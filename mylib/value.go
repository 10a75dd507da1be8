// ABOUTME: Element constraints for managed containers and the Int value type
// ABOUTME: Values encode to a single arena word; traced values are Refs

package mylib

import (
	"encoding/binary"
	"errors"

	"github.com/cespare/xxhash/v2"

	"github.com/prateek/gcheap/heap"
)

var (
	// ErrIndexOutOfRange is raised for container and string indexes outside [0, len)
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidOperation is raised when an operation is used against its contract
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrNotImplemented is raised by capabilities a concrete type doesn't have
	ErrNotImplemented = errors.New("not implemented")
)

// Value is implemented by every type a List or Dict can hold. A value must
// fit in one arena word; Traced reports whether that word is a heap.Ref the
// collector follows. FromWord is called on the zero value.
type Value[T any] interface {
	Word() uint64
	FromWord(h *heap.Heap, w uint64) T
	Traced() bool
}

// Key is a Value usable as a Dict key.
type Key[T any] interface {
	Value[T]
	Hash() uint64
	Equal(other T) bool
}

// Int is an untraced machine integer.
type Int int

// Word returns the integer as an arena word.
func (i Int) Word() uint64 {
	return uint64(i)
}

// FromWord decodes an integer stored by Word.
func (Int) FromWord(_ *heap.Heap, w uint64) Int {
	return Int(w)
}

// Traced is false: integers are plain data.
func (Int) Traced() bool {
	return false
}

// Hash hashes the integer's little-endian bytes.
func (i Int) Hash() uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(i))
	return xxhash.Sum64(b[:])
}

// Equal compares values.
func (i Int) Equal(other Int) bool {
	return i == other
}

// refOf returns the Ref behind a traced value, or Nil for plain data, so
// callers can root operands across an allocation.
func refOf[T Value[T]](v T) heap.Ref {
	if !v.Traced() {
		return heap.Nil
	}
	return heap.Ref(v.Word())
}

// index normalizes a Python-style index against n, failing when it is
// outside the container.
func index(i, n int) int {
	j := i
	if j < 0 {
		j += n
	}
	if j < 0 || j >= n {
		heap.Fail(ErrIndexOutOfRange, "index %d with length %d", i, n)
	}
	return j
}

// clampSlice normalizes Python-style slice bounds against n.
func clampSlice(start, end, n int) (int, int) {
	if start < 0 {
		start = max(start+n, 0)
	}
	if end < 0 {
		end = max(end+n, 0)
	}
	start = min(start, n)
	end = min(end, n)
	if end < start {
		end = start
	}
	return start, end
}
