// ABOUTME: Builds an object graph from the live state of a managed heap
// ABOUTME: Also answers which nodes the next collection would reclaim

package graph

import "github.com/prateek/gcheap/heap"

// FromHeap snapshots every allocated block of h, garbage included, with
// the current global and stack roots. Roots are deduplicated in first-seen
// order. The heap must not be collecting.
func FromHeap(h *heap.Heap) *MemGraph {
	g := NewMemGraph()
	h.Walk(func(info heap.ObjectInfo) {
		ptrs := make([]ObjID, len(info.Ptrs))
		for i, p := range info.Ptrs {
			ptrs[i] = IDOf(p)
		}
		g.AddObject(&Object{
			ID:   IDOf(info.Ref),
			Type: info.Kind.String(),
			Len:  info.Len,
			Size: uint64(info.Bytes),
			Ptrs: ptrs,
		})
	})

	seen := make(map[ObjID]bool)
	roots := Roots{IDs: []ObjID{}}
	for _, ref := range h.RootRefs() {
		id := IDOf(ref)
		if !seen[id] {
			seen[id] = true
			roots.IDs = append(roots.IDs, id)
		}
	}
	g.SetRoots(roots)
	return g
}

// Reachable returns the nodes reachable from the roots.
func Reachable(g Graph) map[ObjID]bool {
	seen := make(map[ObjID]bool)
	stack := append([]ObjID(nil), g.GetRoots().IDs...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		if obj := g.GetObject(id); obj != nil {
			stack = append(stack, obj.Ptrs...)
		}
	}
	return seen
}

// Garbage returns the unreachable nodes in insertion order along with
// their total size: what a collection at this point would free.
func Garbage(g Graph) ([]ObjID, uint64) {
	live := Reachable(g)
	var ids []ObjID
	var size uint64
	g.ForEachObject(func(obj *Object) {
		if !live[obj.ID] {
			ids = append(ids, obj.ID)
			size += obj.Size
		}
	})
	return ids, size
}
