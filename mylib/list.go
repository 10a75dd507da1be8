// ABOUTME: Growable managed list with a separately allocated element slab
// ABOUTME: Appends double capacity; slicing always copies

package mylib

import (
	"github.com/prateek/gcheap/heap"
)

// List object fields.
const (
	listLen  = iota // logical length
	listSlab        // element slab, traced
	listFields
)

const minListCap = 4

// List is a handle to a growable array of T. The list object keeps its
// identity when the slab is reallocated, so a List handle stays valid
// across appends.
type List[T Value[T]] struct {
	h   *heap.Heap
	ref heap.Ref
}

// NewList returns a list of n copies of fill.
func NewList[T Value[T]](h *heap.Heap, fill T, n int) List[T] {
	if n < 0 {
		heap.Fail(heap.ErrBadLength, "list of length %d", n)
	}
	item := refOf(fill)
	l := List[T]{h: h}
	defer h.PushRoots(&item, &l).Pop()

	l.ref = h.Allocate(heap.KindList, listFields*8, heap.MaskBit(listSlab), false, 0)
	if n > 0 {
		l.reserve(n)
		slab := l.slab()
		w := fill.Word()
		for i := 0; i < n; i++ {
			h.SetWord(slab, i, w)
		}
		l.setLen(n)
	}
	return l
}

// Load implements heap.Slot.
func (l *List[T]) Load() heap.Ref {
	return l.ref
}

// Ref returns the list's heap reference.
func (l List[T]) Ref() heap.Ref {
	return l.ref
}

// IsNil reports whether l is the null list.
func (l List[T]) IsNil() bool {
	return l.ref == heap.Nil
}

// Word returns the list's Ref as an arena word.
func (l List[T]) Word() uint64 {
	return uint64(l.ref)
}

// FromWord rebuilds a List handle from a stored Ref.
func (List[T]) FromWord(h *heap.Heap, w uint64) List[T] {
	return List[T]{h: h, ref: heap.Ref(w)}
}

// Traced is true: a stored List is followed by the collector.
func (List[T]) Traced() bool {
	return true
}

// Len returns the number of elements.
func (l List[T]) Len() int {
	return int(l.h.Word(l.ref, listLen))
}

func (l List[T]) setLen(n int) {
	l.h.SetWord(l.ref, listLen, uint64(n))
}

func (l List[T]) slab() heap.Ref {
	return l.h.RefAt(l.ref, listSlab)
}

// Cap returns the slab capacity.
func (l List[T]) Cap() int {
	slab := l.slab()
	if slab == heap.Nil {
		return 0
	}
	return l.h.Header(slab).Len
}

func newSlab[T Value[T]](h *heap.Heap, n int) heap.Ref {
	var zero T
	var mask heap.FieldMask
	if zero.Traced() {
		mask = 1
	}
	return h.Allocate(heap.KindSlab, n*8, mask, true, n)
}

// reserve grows the slab to hold at least n elements. l must be rooted.
func (l List[T]) reserve(n int) {
	c := l.Cap()
	if n <= c {
		return
	}
	slab := newSlab[T](l.h, max(c*2, n, minListCap))
	if old := l.slab(); old != heap.Nil {
		copy(l.h.Words(slab), l.h.Words(old)[:l.Len()])
	}
	l.h.SetRefAt(l.ref, listSlab, slab)
}

// Append adds v at the end, growing the slab by doubling when full.
func (l List[T]) Append(v T) {
	n := l.Len()
	if n == l.Cap() {
		item := refOf(v)
		func() {
			defer l.h.PushRoots(&l, &item).Pop()
			l.reserve(n + 1)
		}()
	}
	l.h.SetWord(l.slab(), n, v.Word())
	l.setLen(n + 1)
}

// Extend appends every element of other.
func (l List[T]) Extend(other List[T]) {
	n, m := l.Len(), other.Len()
	if n+m > l.Cap() {
		func() {
			defer l.h.PushRoots(&l, &other).Pop()
			l.reserve(n + m)
		}()
	}
	if m > 0 {
		copy(l.h.Words(l.slab())[n:], l.h.Words(other.slab())[:m])
	}
	l.setLen(n + m)
}

// Get returns element i; negative indexes count from the end.
func (l List[T]) Get(i int) T {
	i = index(i, l.Len())
	var zero T
	return zero.FromWord(l.h, l.h.Word(l.slab(), i))
}

// Set replaces element i; negative indexes count from the end.
func (l List[T]) Set(i int, v T) {
	i = index(i, l.Len())
	l.h.SetWord(l.slab(), i, v.Word())
}

// Pop removes and returns the last element. The vacated slot is cleared so
// the slab doesn't keep it alive.
func (l List[T]) Pop() T {
	n := l.Len()
	if n == 0 {
		heap.Fail(ErrIndexOutOfRange, "pop from empty list")
	}
	v := l.Get(n - 1)
	l.h.SetWord(l.slab(), n-1, 0)
	l.setLen(n - 1)
	return v
}

// Slice returns a new list holding l[start:] with Python index semantics.
// The result never shares a slab with l.
func (l List[T]) Slice(start int) List[T] {
	n := l.Len()
	start, _ = clampSlice(start, n, n)
	defer l.h.PushRoots(&l).Pop()

	var zero T
	out := NewList[T](l.h, zero, 0)
	if m := n - start; m > 0 {
		defer l.h.PushRoots(&out).Pop()
		out.reserve(m)
		copy(l.h.Words(out.slab()), l.h.Words(l.slab())[start:n])
		out.setLen(m)
	}
	return out
}

// Items copies the elements into a Go slice. Traced elements in the result
// are not rooted.
func (l List[T]) Items() []T {
	n := l.Len()
	out := make([]T, n)
	if n == 0 {
		return out
	}
	var zero T
	for i, w := range l.h.Words(l.slab())[:n] {
		out[i] = zero.FromWord(l.h, w)
	}
	return out
}
