// ABOUTME: Integration tests across the heap, runtime, graph and dump packages
// ABOUTME: Builds live heaps, snapshots them and checks analysis against the collector

package gcheap_test

import (
	"bytes"
	"os"
	"reflect"
	"testing"

	"github.com/prateek/gcheap/graph"
	"github.com/prateek/gcheap/heap"
	"github.com/prateek/gcheap/heapdump"
	"github.com/prateek/gcheap/mylib"
)

func TestSnapshotFile(t *testing.T) {
	file, err := os.Open("testdata/snapshot.yaml")
	if err != nil {
		t.Fatalf("Failed to open test file: %v", err)
	}
	defer file.Close()

	g, err := heapdump.Open(file)
	if err != nil {
		t.Fatalf("Failed to parse dump: %v", err)
	}
	if g.NumObjects() != 10 {
		t.Errorf("Expected 10 objects, got %d", g.NumObjects())
	}

	garbage, size := graph.Garbage(g)
	if !reflect.DeepEqual(garbage, []graph.ObjID{61}) || size != 24 {
		t.Errorf("Expected garbage [61] of 24 bytes, got %v of %d", garbage, size)
	}

	// The shared list slab is dominated by the value slab, not either list.
	idom := graph.Dominators(g)
	if idom[55] != 29 {
		t.Errorf("Expected idom(55) = 29, got %d", idom[55])
	}
	retained := graph.RetainedSize(g)
	if retained[2] != 456 {
		t.Errorf("Expected dict to retain 456 bytes, got %d", retained[2])
	}
	if retained[29] != 192 {
		t.Errorf("Expected value slab to retain 192 bytes, got %d", retained[29])
	}

	paths := graph.PathsToRoots(g, 55, 5)
	want := []graph.Path{
		{IDs: []graph.ObjID{55, 45, 29, 2}},
		{IDs: []graph.ObjID{55, 50, 29, 2}},
	}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("Expected paths %v, got %v", want, paths)
	}
}

// buildHeap fills a small heap with a dict of lists and some garbage, and
// returns it with the dict still rooted by a global.
func buildHeap(t *testing.T) (*heap.Heap, *mylib.Dict[mylib.Str, mylib.List[mylib.Int]]) {
	t.Helper()
	h := heap.New(heap.Config{InitialBytes: heap.KiB(1), Verify: true})
	d := new(mylib.Dict[mylib.Str, mylib.List[mylib.Int]])
	*d = mylib.NewDict[mylib.Str, mylib.List[mylib.Int]](h)
	h.RootGlobalVar(d)

	var key mylib.Str
	var list mylib.List[mylib.Int]
	defer h.PushRoots(&key, &list).Pop()
	for i := 0; i < 50; i++ {
		key = mylib.HexLower(h, i)
		list = mylib.NewList[mylib.Int](h, mylib.Int(i), i%7)
		d.Set(key, list)
		mylib.StrFromC(h, "garbage")
	}
	return h, d
}

func TestHeapSnapshotMatchesCollector(t *testing.T) {
	h, d := buildHeap(t)
	if d.Len() != 50 {
		t.Fatalf("Expected 50 entries, got %d", d.Len())
	}

	before := graph.FromHeap(h)
	live := graph.Reachable(before)
	_, garbageBytes := graph.Garbage(before)
	if garbageBytes == 0 {
		t.Fatal("Expected uncollected garbage in the snapshot")
	}

	freed := h.Stats().NumFreed
	h.Collect()
	stats := h.Stats()
	if got := stats.NumFreed - freed; got != before.NumObjects()-len(live) {
		t.Errorf("Collector freed %d blocks, snapshot predicted %d", got, before.NumObjects()-len(live))
	}

	after := graph.FromHeap(h)
	if after.NumObjects() != len(live) {
		t.Errorf("Expected %d blocks after collection, got %d", len(live), after.NumObjects())
	}
	retained := graph.RetainedSize(after)
	if got := retained[graph.IDOf(d.Ref())]; got != uint64(stats.LiveBytes) {
		t.Errorf("Expected the dict to retain all %d live bytes, got %d", stats.LiveBytes, got)
	}

	// Every list survived with its contents.
	for i := 0; i < 50; i++ {
		list, ok := d.Get(mylib.HexLower(h, i))
		if !ok {
			t.Fatalf("Key %x missing", i)
		}
		if list.Len() != i%7 {
			t.Errorf("List %x has length %d, want %d", i, list.Len(), i%7)
		}
	}
}

func TestHeapSnapshotRoundTrip(t *testing.T) {
	h, _ := buildHeap(t)
	h.Collect()
	g := graph.FromHeap(h)

	for _, format := range heapdump.Formats() {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := heapdump.Write(&buf, format, g, heapdump.Options{Retained: true}); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			parsed, err := heapdump.Open(&buf)
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			if !reflect.DeepEqual(graph.RetainedSize(parsed), graph.RetainedSize(g)) {
				t.Error("Retained sizes differ after round trip")
			}
			if !reflect.DeepEqual(graph.Dominators(parsed), graph.Dominators(g)) {
				t.Error("Dominators differ after round trip")
			}
		})
	}
}
