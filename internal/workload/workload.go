// ABOUTME: Allocation stress workloads exercising the collector through mylib
// ABOUTME: Each returns a checksum with a closed-form expected value

package workload

import (
	"errors"
	"fmt"
	"sort"

	"github.com/prateek/gcheap/heap"
	"github.com/prateek/gcheap/mylib"
)

var (
	// ErrUnknownWorkload is returned by Lookup for an unregistered name
	ErrUnknownWorkload = errors.New("unknown workload")

	// ErrChecksum is returned when a workload's total is not the expected one
	ErrChecksum = errors.New("checksum mismatch")
)

// Workload is one named stress loop.
type Workload struct {
	Name        string
	Description string

	// N is the default iteration count
	N int

	run  func(h *heap.Heap, n int, peek func()) int
	want func(n int) int
}

// Expected returns the checksum Run must produce for n iterations.
func (w Workload) Expected(n int) int {
	return w.want(n)
}

// Run resets h to its configured initial size, runs n iterations and
// checks the total. Collector failures come back as *heap.FatalError.
// The reset drops global roots, and h must have no active root frames.
func (w Workload) Run(h *heap.Heap, n int) (int, error) {
	return w.RunWithPeek(h, n, nil)
}

// RunWithPeek is Run with a callback made once at the workload's peak,
// while its data is still rooted. peek must not allocate on h.
func (w Workload) RunWithPeek(h *heap.Heap, n int, peek func(h *heap.Heap)) (total int, err error) {
	defer heap.Recover(&err)
	if d := h.RootDepth(); d != 0 {
		heap.Fail(heap.ErrRootOrder, "%s: %d root frames active before reset", w.Name, d)
	}
	h.Init(0)
	called := false
	total = w.run(h, n, func() {
		if peek != nil && !called {
			called = true
			peek(h)
		}
	})
	if want := w.want(n); total != want {
		return total, fmt.Errorf("%s: %w: got %d, want %d", w.Name, ErrChecksum, total, want)
	}
	return total, nil
}

var workloads = map[string]Workload{}

func register(w Workload) {
	workloads[w.Name] = w
}

// Lookup returns the workload called name.
func Lookup(name string) (Workload, error) {
	w, ok := workloads[name]
	if !ok {
		return Workload{}, fmt.Errorf("%w: %q", ErrUnknownWorkload, name)
	}
	return w, nil
}

// All returns every workload sorted by name.
func All() []Workload {
	all := make([]Workload, 0, len(workloads))
	for _, w := range workloads {
		all = append(all, w)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

func init() {
	register(Workload{
		Name:        "count",
		Description: "recursion registering a root in every frame",
		N:           25000,
		run:         countRoots,
		want:        func(n int) int { return n },
	})
	register(Workload{
		Name:        "str-simple",
		Description: "chr/ord round trips of single-byte strings",
		N:           400,
		run:         strSimple,
		want:        func(n int) int { return n },
	})
	register(Workload{
		Name:        "str-growth",
		Description: "string growing by one byte per replace",
		N:           300,
		run:         strGrowth,
		want:        triangle,
	})
	register(Workload{
		Name:        "list-append",
		Description: "appends to an int list starting at length 1",
		N:           1000,
		run:         listAppend,
		want:        func(n int) int { return n + n*(n-1)/2 },
	})
	register(Workload{
		Name:        "list-slice-append",
		Description: "drop the head and append, keeping length 5",
		N:           300,
		run:         listSliceAppend,
		want:        func(n int) int { return n * sliceLen },
	})
	register(Workload{
		Name:        "list-str-growth",
		Description: "list of strings each one byte longer than the last",
		N:           300,
		run:         listStrGrowth,
		want:        triangle,
	})
	register(Workload{
		Name:        "dict-growth",
		Description: "dict keyed by a growing string",
		N:           40,
		run:         dictGrowth,
		want:        func(n int) int { return len(dictSeed)*n + n*(n-1)/2 },
	})
}

func triangle(n int) int {
	return n * (n + 1) / 2
}

// count recurses n levels, each registering a root frame. Every hundredth
// level allocates so collections happen with the whole stack rooted.
func count(h *heap.Heap, n int, peek func()) int {
	var s mylib.Str
	defer h.PushRoots(&s).Pop()
	if n == 0 {
		peek()
		return 0
	}
	if n%100 == 0 {
		s = mylib.Chr(h, byte(n/100))
	}
	return 1 + count(h, n-1, peek)
}

func countRoots(h *heap.Heap, n int, peek func()) int {
	got := count(h, n, peek)
	if d := h.RootDepth(); d != 0 {
		heap.Fail(heap.ErrRootOrder, "%d frames left after recursion", d)
	}
	return got
}

func strSimple(h *heap.Heap, n int, peek func()) int {
	var s mylib.Str
	defer h.PushRoots(&s).Pop()

	total := 0
	for i := 0; i < n; i++ {
		c := byte(i % 256)
		s = mylib.Chr(h, c)
		if got := mylib.Ord(s); got != int(c) {
			heap.Fail(heap.ErrCorruptHeap, "ord(chr(%d)) = %d", c, got)
		}
		total += s.Len()
	}
	peek()
	return total
}

func strGrowth(h *heap.Heap, n int, peek func()) int {
	var s, b, bx mylib.Str
	defer h.PushRoots(&s, &b, &bx).Pop()
	b = mylib.StrFromC(h, "b")
	bx = mylib.StrFromC(h, "bx")

	s = mylib.StrFromC(h, "b")
	total := 0
	for i := 0; i < n; i++ {
		total += s.Len()
		s = s.Replace(b, bx)
	}
	peek()
	return total
}

func listAppend(h *heap.Heap, n int, peek func()) int {
	var l mylib.List[mylib.Int]
	defer h.PushRoots(&l).Pop()
	l = mylib.NewList[mylib.Int](h, 42, 1)

	total := 0
	for i := 0; i < n; i++ {
		total += l.Len()
		l.Append(43)
	}
	peek()
	return total
}

const sliceLen = 5

func listSliceAppend(h *heap.Heap, n int, peek func()) int {
	var l mylib.List[mylib.Int]
	defer h.PushRoots(&l).Pop()
	l = mylib.NewList[mylib.Int](h, 42, sliceLen)

	total := 0
	for i := 0; i < n; i++ {
		total += l.Len()
		l = l.Slice(1)
		if l.Len() != sliceLen-1 {
			heap.Fail(heap.ErrCorruptHeap, "sliced length %d", l.Len())
		}
		l.Append(43)
		if l.Len() != sliceLen {
			heap.Fail(heap.ErrCorruptHeap, "appended length %d", l.Len())
		}
	}
	peek()
	return total
}

func listStrGrowth(h *heap.Heap, n int, peek func()) int {
	var s, b, bx mylib.Str
	var l mylib.List[mylib.Str]
	defer h.PushRoots(&s, &b, &bx, &l).Pop()
	b = mylib.StrFromC(h, "b")
	bx = mylib.StrFromC(h, "bx")
	s = mylib.StrFromC(h, "b")
	l = mylib.NewList[mylib.Str](h, mylib.Str{}, 0)

	total := 0
	for i := 0; i < n; i++ {
		total += s.Len()
		l.Append(s)
		s = s.Replace(b, bx)
	}
	// Every string appended must have survived the collections.
	for i := 0; i < n; i++ {
		if got := l.Get(i).Len(); got != i+1 {
			heap.Fail(heap.ErrCorruptHeap, "list item %d has length %d", i, got)
		}
	}
	peek()
	return total
}

const dictSeed = "abcdefg"

func dictGrowth(h *heap.Heap, n int, peek func()) int {
	var s, b, bx mylib.Str
	var d mylib.Dict[mylib.Str, mylib.Int]
	defer h.PushRoots(&s, &b, &bx, &d).Pop()
	b = mylib.StrFromC(h, "b")
	bx = mylib.StrFromC(h, "bx")
	s = mylib.StrFromC(h, dictSeed)
	d = mylib.NewDict[mylib.Str, mylib.Int](h)

	total := 0
	for i := 0; i < n; i++ {
		total += s.Len()
		s = s.Replace(b, bx)
		d.Set(s, mylib.Int(i))
	}
	if d.Len() != n {
		heap.Fail(heap.ErrCorruptHeap, "dict has %d entries after %d inserts", d.Len(), n)
	}
	if v, ok := d.Get(s); !ok || int(v) != n-1 {
		heap.Fail(heap.ErrCorruptHeap, "latest key maps to %d, %v", v, ok)
	}
	peek()
	return total
}
