// ABOUTME: Tests building graphs from a live heap
// ABOUTME: Checks snapshot reachability and retained sizes against the collector

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prateek/gcheap/heap"
	"github.com/prateek/gcheap/mylib"
)

func TestFromHeap(t *testing.T) {
	h := heap.New(heap.Config{InitialBytes: heap.KiB(64)})

	list := mylib.NewList[mylib.Str](h, mylib.Str{}, 0)
	defer h.PushRoots(&list).Pop()
	for _, s := range []string{"alpha", "beta", "gamma"} {
		list.Append(mylib.StrFromC(h, s))
	}
	garbage := mylib.StrFromC(h, "unrooted")

	g := FromHeap(h)
	require.Equal(t, []ObjID{IDOf(list.Ref())}, g.GetRoots().IDs)

	root := g.GetObject(IDOf(list.Ref()))
	require.NotNil(t, root)
	assert.Equal(t, heap.KindList.String(), root.Type)
	require.Len(t, root.Ptrs, 1, "list points at its slab")

	slab := g.GetObject(root.Ptrs[0])
	require.NotNil(t, slab)
	assert.Equal(t, heap.KindSlab.String(), slab.Type)
	assert.Equal(t, 3, len(slab.Ptrs))

	live := Reachable(g)
	want := h.Reachable()
	assert.Len(t, live, len(want))
	for ref := range want {
		assert.True(t, live[IDOf(ref)], "block %d reachable in heap but not in graph", ref)
	}

	ids, size := Garbage(g)
	assert.Contains(t, ids, IDOf(garbage.Ref()))
	assert.Equal(t, uint64(h.Object(garbage.Ref()).Bytes), size)

	// The only root retains every live block.
	var liveBytes uint64
	for id := range live {
		liveBytes += g.GetObject(id).Size
	}
	assert.Equal(t, liveBytes, RetainedSize(g)[root.ID])

	// After a collection the garbage is gone and the live set is unchanged.
	h.Collect()
	after := FromHeap(h)
	assert.Nil(t, after.GetObject(IDOf(garbage.Ref())))
	assert.Equal(t, len(live), after.NumObjects())
	assert.Equal(t, uint64(h.Stats().LiveBytes), liveBytes)
}

func TestFromHeapDedupesRoots(t *testing.T) {
	h := heap.New(heap.Config{InitialBytes: heap.KiB(16)})
	s := mylib.StrFromC(h, "shared")
	alias := s
	h.RootGlobalVar(&s)
	defer h.PushRoots(&alias).Pop()

	g := FromHeap(h)
	assert.Equal(t, []ObjID{IDOf(s.Ref())}, g.GetRoots().IDs)
	assert.Equal(t, map[ObjID]ObjID{IDOf(s.Ref()): SuperRoot}, Dominators(g))
}
